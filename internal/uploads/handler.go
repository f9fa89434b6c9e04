package uploads

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dataportfolio/portfolio-api/internal/auth"
	"github.com/dataportfolio/portfolio-api/internal/logger"
	"github.com/dataportfolio/portfolio-api/internal/storage/objectstore"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Register mounts the upload routes; rg must already require auth.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/uploads/:kind", h.upload)
	rg.DELETE("/uploads/:kind", h.remove)
}

func (h *Handler) upload(c *gin.Context) {
	uid := auth.UserID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.svc.maxBytes+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": ErrTooLarge.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "cannot read file"})
		return
	}
	defer f.Close()

	res, err := h.svc.Upload(c.Request.Context(), uid, c.Param("kind"), c.PostForm("folder"), fh.Filename, f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "upload": res})
}

func (h *Handler) remove(c *gin.Context) {
	uid := auth.UserID(c)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"})
		return
	}
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "url is required"})
		return
	}
	if err := h.svc.Delete(c.Request.Context(), uid, c.Param("kind"), url); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrUnknownKind):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, ErrNotImage):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, ErrEmptyFile), errors.Is(err, ErrBadFolder):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, ErrForeignURL):
		c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, objectstore.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "storage temporarily unavailable"})
	default:
		logger.FromContext(c.Request.Context()).Error("upload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "upload failed"})
	}
}
