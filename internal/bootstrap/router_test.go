package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataportfolio/portfolio-api/internal/api/http/middleware"
	"github.com/dataportfolio/portfolio-api/internal/auth"
	"github.com/dataportfolio/portfolio-api/internal/profile"
	"github.com/dataportfolio/portfolio-api/internal/records"
	"github.com/dataportfolio/portfolio-api/internal/storage/objectstore"
	"github.com/dataportfolio/portfolio-api/internal/uploads"
)

type educationStub struct{}

func (educationStub) Schema() records.Schema { return profile.EducationSchema }

func (educationStub) List(context.Context, string) ([]profile.Education, error) {
	return nil, nil
}

func (educationStub) Create(context.Context, string, records.Values) (profile.Education, error) {
	return profile.Education{}, nil
}

func (educationStub) Update(context.Context, string, string, records.Values) (profile.Education, error) {
	return profile.Education{}, nil
}

func (educationStub) Delete(context.Context, string, string) error { return nil }

func newTestRouter(t *testing.T, opts ...func(*RouterDeps)) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := uploads.NewService(objectstore.NewMemoryStore(""), nil, 1<<20, nil)
	dep := RouterDeps{
		ServiceName:    "portfolio-api",
		Version:        "test",
		AllowedOrigins: []string{"http://localhost:5173"},
		Registry:       prometheus.NewRegistry(),
		Limiter:        middleware.NewIPRateLimiter(100, 100),
		Verifier:       auth.HeaderVerifier{},
		Uploads:        uploads.NewHandler(svc),
		Educations:     records.NewHandler[profile.Education](educationStub{}, "education"),
	}
	for _, opt := range opts {
		opt(&dep)
	}
	r, err := BuildRouter(dep)
	require.NoError(t, err)
	return r
}

func TestBuildRouter_Health(t *testing.T) {
	r := newTestRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(middleware.HeaderRequestID))
}

func TestBuildRouter_Metrics(t *testing.T) {
	r := newTestRouter(t)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "portfolio_http_requests_total")
}

func TestBuildRouter_CORSPreflight(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/dashboard/uploads/image", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestBuildRouter_DashboardRequiresAuth(t *testing.T) {
	r := newTestRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/api/v1/dashboard/uploads/image?url=x", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestBuildRouter_ForwardedForIgnoredByDefault(t *testing.T) {
	r := newTestRouter(t, func(d *RouterDeps) {
		d.Limiter = middleware.NewIPRateLimiter(0.001, 1)
	})

	codes := map[int]int{}
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/profiles/u1/educations", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		req.Header.Set("X-Real-IP", fmt.Sprintf("198.51.100.%d", i+1))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		codes[rr.Code]++
	}

	assert.Equal(t, 1, codes[http.StatusOK])
	assert.Equal(t, 19, codes[http.StatusTooManyRequests])
}

func TestBuildRouter_TrustedProxyForwardedFor(t *testing.T) {
	r := newTestRouter(t, func(d *RouterDeps) {
		d.Limiter = middleware.NewIPRateLimiter(0.001, 1)
		d.TrustedProxies = []string{"10.0.0.0/8"}
	})

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/profiles/u1/educations", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code, "client %d", i)
	}
}

func TestBuildRouter_BadTrustedProxy(t *testing.T) {
	_, err := BuildRouter(RouterDeps{TrustedProxies: []string{"not-an-ip"}})
	require.Error(t, err)
}
