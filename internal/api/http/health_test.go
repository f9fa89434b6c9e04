package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func serveHealth(t *testing.T, h *HealthHandler, method, path string) (*httptest.ResponseRecorder, HealthResponse) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.HandleMethodNotAllowed = true
	h.RegisterRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(method, path, nil))

	var resp HealthResponse
	if rr.Code != http.StatusMethodNotAllowed {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	}
	return rr, resp
}

func TestHealthCheck(t *testing.T) {
	h := NewHealthHandler("test-service", "1.0.0", PingFunc(up), PingFunc(up))

	for _, path := range []string{"/health", "/healthz"} {
		rr, resp := serveHealth(t, h, http.MethodGet, path)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "test-service", resp.Service)
		assert.Equal(t, "1.0.0", resp.Version)
		assert.Equal(t, "up", resp.DB)
		assert.Equal(t, "up", resp.Redis)
	}
}

func TestHealthCheck_Dependencies(t *testing.T) {
	t.Run("database down is unhealthy", func(t *testing.T) {
		rr, resp := serveHealth(t, NewHealthHandler("svc", "v", PingFunc(down), PingFunc(up)), http.MethodGet, "/health")
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "down", resp.DB)
	})

	t.Run("redis down is degraded", func(t *testing.T) {
		rr, resp := serveHealth(t, NewHealthHandler("svc", "v", PingFunc(up), PingFunc(down)), http.MethodGet, "/health")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "degraded", resp.Status)
	})

	t.Run("nil dependencies are disabled", func(t *testing.T) {
		rr, resp := serveHealth(t, NewHealthHandler("svc", "v", nil, nil), http.MethodGet, "/health")
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "disabled", resp.DB)
		assert.Equal(t, "disabled", resp.Redis)
	})
}

func TestHealthCheckMethodNotAllowed(t *testing.T) {
	rr, _ := serveHealth(t, NewHealthHandler("svc", "v", nil, nil), http.MethodPost, "/health")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
