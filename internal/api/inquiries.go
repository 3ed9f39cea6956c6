// internal/api/inquiries.go
package api

import (
	"encoding/json"
	"net/http"

	"listing-service/internal/common/errors"
	"listing-service/internal/common/validation"
	"listing-service/internal/inquiry"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func nonNil(inqs []inquiry.Inquiry) []inquiry.Inquiry {
	if inqs == nil {
		return []inquiry.Inquiry{}
	}
	return inqs
}

func inquiriesResponse(inqs []inquiry.Inquiry) gin.H {
	return gin.H{"success": true, "count": len(inqs), "inquiries": nonNil(inqs)}
}

func (h *handlers) createInquiry(c *gin.Context) {
	body, err := readValidated(c, validation.SchemaInquiry)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var req inquiry.CreateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.respondError(c, errors.NewInvalidRequestError(err.Error()))
		return
	}

	inq, err := h.deps.Inquiries.Create(c.Request.Context(), c.GetInt64(ctxUserID), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Inquiry created successfully",
		"inquiry": inq,
	})
}

// listInquiries returns the inquiries the caller wrote.
func (h *handlers) listInquiries(c *gin.Context) {
	inqs, err := h.deps.Inquiries.ForBuyer(c.Request.Context(), c.GetInt64(ctxUserID))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inquiriesResponse(inqs))
}

func (h *handlers) propertyInquiries(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	inqs, err := h.deps.Inquiries.ForProperty(c.Request.Context(), c.GetInt64(ctxAgentID), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inquiriesResponse(inqs))
}

func inquiryID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, errors.NewInvalidRequestError("invalid inquiry id")
	}
	return id, nil
}

func (h *handlers) getInquiry(c *gin.Context) {
	id, err := inquiryID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	inq, err := h.deps.Inquiries.Get(c.Request.Context(), c.GetInt64(ctxUserID), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "inquiry": inq})
}

func (h *handlers) deleteInquiry(c *gin.Context) {
	id, err := inquiryID(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.deps.Inquiries.Delete(c.Request.Context(), c.GetInt64(ctxUserID), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "Inquiry deleted successfully"})
}
