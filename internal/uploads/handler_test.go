package uploads

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataportfolio/portfolio-api/internal/auth"
)

func newRouter(svc *Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/dashboard")
	g.Use(auth.Require(auth.HeaderVerifier{}, nil))
	NewHandler(svc).Register(g)
	return r
}

func multipartBody(t *testing.T, filename string, data []byte, folder string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	if folder != "" {
		require.NoError(t, w.WriteField("folder", folder))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestHandler_UploadAndDelete(t *testing.T) {
	svc, store, _ := newTestService(1 << 20)
	r := newRouter(svc)

	body, ct := multipartBody(t, "shot.png", pngBytes, "gallery")
	req := httptest.NewRequest(http.MethodPost, "/dashboard/uploads/image", body)
	req.Header.Set("Content-Type", ct)
	req.Header.Set("X-User-Id", "u1")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp struct {
		OK     bool   `json:"ok"`
		Upload Result `json:"upload"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "u1/gallery/1700000000123.png", resp.Upload.Key)
	assert.Equal(t, 1, store.Len())

	req = httptest.NewRequest(http.MethodDelete, "/dashboard/uploads/image?url="+url.QueryEscape(resp.Upload.URL), nil)
	req.Header.Set("X-User-Id", "u2")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	req.Header.Set("X-User-Id", "u1")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 0, store.Len())
}

func TestHandler_Errors(t *testing.T) {
	svc, _, _ := newTestService(1 << 20)
	r := newRouter(svc)

	cases := []struct {
		name string
		kind string
		file string
		data []byte
		want int
	}{
		{"unknown kind", "video", "a.mp4", []byte("x"), http.StatusNotFound},
		{"not an image", "avatar", "a.png", []byte("hello"), http.StatusUnsupportedMediaType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, ct := multipartBody(t, tc.file, tc.data, "")
			req := httptest.NewRequest(http.MethodPost, "/dashboard/uploads/"+tc.kind, body)
			req.Header.Set("Content-Type", ct)
			req.Header.Set("X-User-Id", "u1")
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			assert.Equal(t, tc.want, rr.Code, rr.Body.String())
		})
	}

	t.Run("missing file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/dashboard/uploads/image", nil)
		req.Header.Set("X-User-Id", "u1")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing url", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/dashboard/uploads/image", nil)
		req.Header.Set("X-User-Id", "u1")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/dashboard/uploads/image?url=x", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
