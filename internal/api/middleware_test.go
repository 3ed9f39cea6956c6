// internal/api/middleware_test.go
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"listing-service/internal/common/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiddlewareEngine(t *testing.T) *gin.Engine {
	h := &handlers{logger: logger.NewTestLogger(t)}
	r := gin.New()
	r.Use(recovery(h), tracing(nil))
	return r
}

// ==========================
// tracing
// ==========================

func TestTracing_ServerErrorWithoutGinError(t *testing.T) {
	r := newMiddlewareEngine(t)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body must be a single JSON document: %s", w.Body.String())
	assert.Equal(t, "not ready", body["status"])
}

func TestTracing_ServerErrorWithGinError(t *testing.T) {
	r := newMiddlewareEngine(t)
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("database down"))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
}

// ==========================
// recovery
// ==========================

func TestRecovery_BeforeWrite(t *testing.T) {
	r := newMiddlewareEngine(t)
	r.GET("/panic", func(c *gin.Context) { panic("nil map") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
}

func TestRecovery_AfterWriteKeepsResponse(t *testing.T) {
	r := newMiddlewareEngine(t)
	r.GET("/late", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
		panic("after write")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/late", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
}
