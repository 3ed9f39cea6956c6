// internal/api/dto.go
package api

import (
	"listing-service/internal/common/errors"
	"listing-service/internal/listing"
	"listing-service/internal/pagination"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool             `json:"success"`
	Error   errors.ErrorCode `json:"error"`
	Message string           `json:"message"`
	Details string           `json:"details,omitempty"`
}

// MessageResponse acknowledges a write that returns no resource.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ListResponse is one page of the browse view.
type ListResponse struct {
	Success    bool               `json:"success"`
	Count      int                `json:"count"`
	Total      int                `json:"total"`
	Items      []listing.Record   `json:"items"`
	Pagination pagination.Meta    `json:"pagination"`
	Window     []pagination.Entry `json:"window"`
	Fallback   bool               `json:"fallback"`
	Message    string             `json:"message,omitempty"`
}

func newListResponse(res listing.Result, fallback bool, message string) ListResponse {
	items := res.Items
	if items == nil {
		items = []listing.Record{}
	}
	return ListResponse{
		Success:    true,
		Count:      len(items),
		Total:      res.Total,
		Items:      items,
		Pagination: res.Meta,
		Window:     res.Window,
		Fallback:   fallback,
		Message:    message,
	}
}

// respondError writes err as an ErrorResponse with the status of its code.
func (h *handlers) respondError(c *gin.Context, err error) {
	std := errors.FromError(err)
	status := std.HTTPStatus()

	fields := map[string]interface{}{
		"code":      std.Code,
		"status":    status,
		"path":      c.FullPath(),
		"requestId": c.GetString(ctxRequestID),
		"error":     err.Error(),
	}
	if status >= 500 {
		h.logger.Error("request failed", fields)
	} else {
		h.logger.Debug("request rejected", fields)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error:   std.Code,
		Message: std.Message,
		Details: std.Details,
	})
}
