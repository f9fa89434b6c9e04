package records

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dataportfolio/portfolio-api/internal/auth"
	"github.com/dataportfolio/portfolio-api/internal/logger"
)

// Repository is what the handler needs; *Store[T] satisfies it.
type Repository[T any] interface {
	Schema() Schema
	List(ctx context.Context, ownerID string) ([]T, error)
	Create(ctx context.Context, ownerID string, v Values) (T, error)
	Update(ctx context.Context, ownerID, id string, v Values) (T, error)
	Delete(ctx context.Context, ownerID, id string) error
}

// Handler serves one record type. Key is the JSON key for a single record
// ("education"); lists are returned under Key+"s".
type Handler[T any] struct {
	repo Repository[T]
	key  string
}

func NewHandler[T any](repo Repository[T], key string) *Handler[T] {
	return &Handler[T]{repo: repo, key: key}
}

// RegisterPublic mounts GET <path> where path carries an :owner param.
func (h *Handler[T]) RegisterPublic(rg gin.IRouter, path string) {
	rg.GET(path, h.listForOwner)
}

// RegisterDashboard mounts the authenticated CRUD routes under path.
func (h *Handler[T]) RegisterDashboard(rg gin.IRouter, path string) {
	rg.GET(path, h.listMine)
	rg.POST(path, h.create)
	rg.PATCH(path+"/:id", h.update)
	rg.DELETE(path+"/:id", h.delete)
}

func (h *Handler[T]) listForOwner(c *gin.Context) {
	h.list(c, strings.TrimSpace(c.Param("owner")))
}

func (h *Handler[T]) listMine(c *gin.Context) {
	h.list(c, auth.UserID(c))
}

func (h *Handler[T]) list(c *gin.Context, ownerID string) {
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "owner required"})
		return
	}
	items, err := h.repo.List(c.Request.Context(), ownerID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, h.key + "s": items})
}

func (h *Handler[T]) create(c *gin.Context) {
	values, ok := h.bind(c, false)
	if !ok {
		return
	}
	rec, err := h.repo.Create(c.Request.Context(), auth.UserID(c), values)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, h.key: rec})
}

func (h *Handler[T]) update(c *gin.Context) {
	values, ok := h.bind(c, true)
	if !ok {
		return
	}
	rec, err := h.repo.Update(c.Request.Context(), auth.UserID(c), c.Param("id"), values)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, h.key: rec})
}

func (h *Handler[T]) delete(c *gin.Context) {
	if err := h.repo.Delete(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler[T]) bind(c *gin.Context, partial bool) (Values, bool) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return nil, false
	}
	values, err := h.repo.Schema().Parse(body, partial)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return nil, false
	}
	return values, true
}

func (h *Handler[T]) fail(c *gin.Context, err error) {
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": h.key + " not found"})
		return
	}
	if errors.Is(err, ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}
	logger.FromContext(c.Request.Context()).Error("record operation failed",
		zap.String("record", h.key), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
}
