// internal/api/middleware.go
package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"listing-service/internal/common/errors"
	"listing-service/internal/common/logger"
	"listing-service/internal/common/observability"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Identity headers. Authentication happens upstream; the gateway forwards
// the caller's id.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderAgentID   = "X-Agent-ID"
	HeaderUserID    = "X-User-ID"
)

const (
	ctxRequestID = "requestId"
	ctxAgentID   = "agentId"
	ctxUserID    = "userId"
)

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]interface{}{
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    c.Writer.Status(),
			"latencyMs": time.Since(start).Milliseconds(),
			"requestId": c.GetString(ctxRequestID),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Warn("request completed", fields)
			return
		}
		log.Debug("request completed", fields)
	}
}

func tracing(obs *observability.Observability) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ctx, span := obs.StartSpan(c.Request.Context(), c.Request.Method+" "+route,
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
		)
		c.Request = c.Request.WithContext(ctx)
		c.Next()

		span.SetAttributes(attribute.Int("http.status_code", c.Writer.Status()))
		var err error
		if c.Writer.Status() >= http.StatusInternalServerError {
			// Last returns a typed nil when no handler called c.Error
			if last := c.Errors.Last(); last != nil {
				err = last
			} else {
				err = fmt.Errorf("status %d", c.Writer.Status())
			}
		}
		observability.EndSpan(span, err)
	}
}

func recovery(h *handlers) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec interface{}) {
		if c.Writer.Written() {
			h.logger.Error("panic after response was written", map[string]interface{}{"panic": fmt.Sprint(rec)})
			c.Abort()
			return
		}
		h.respondError(c, errors.New(errors.ErrCodeInternal, fmt.Sprintf("panic: %v", rec)))
	})
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID, X-Agent-ID, X-User-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requireIdentity reads a positive numeric id from header into key.
func (h *handlers) requireIdentity(header, key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(header)
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.respondError(c, errors.New(errors.ErrCodeUnauthorized, header+" header required"))
			return
		}
		c.Set(key, id)
		c.Next()
	}
}

// pathID parses the named numeric path parameter.
func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidRequestError("invalid " + name)
	}
	return id, nil
}
