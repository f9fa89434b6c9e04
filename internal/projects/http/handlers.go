package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dataportfolio/portfolio-api/internal/auth"
	"github.com/dataportfolio/portfolio-api/internal/discovery"
	"github.com/dataportfolio/portfolio-api/internal/logger"
	"github.com/dataportfolio/portfolio-api/internal/projects/domain"
)

func (h *Handler) list(c *gin.Context) {
	items, err := h.projects.Snapshot(c.Request.Context(), c.Query("owner"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

// discover serves one page of the discovery grid. category may repeat or be
// comma separated; a missing or malformed page means page 1.
func (h *Handler) discover(c *gin.Context) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		page = 1
	}
	q := discovery.Query{
		Search:     c.Query("q"),
		Categories: splitList(c.QueryArray("category")),
		Page:       page,
		PageSize:   h.projects.PageSize(),
	}

	res, err := h.projects.Discover(c.Request.Context(), c.Query("owner"), q)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "result": discoverResp{
		Result:         res,
		Page:           page,
		PageSize:       q.PageSize,
		Pages:          discovery.PageWindow(page, res.TotalPages),
		PageOutOfRange: res.OutOfRange(),
		Search:         q.Search,
		Categories:     q.Categories,
	}})
}

func (h *Handler) categories(c *gin.Context) {
	cats, err := h.projects.Categories(c.Request.Context(), c.Query("owner"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "categories": cats})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.projects.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) stats(c *gin.Context) {
	st, err := h.projects.Stats(c.Request.Context(), auth.UserID(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stats": st})
}

func (h *Handler) create(c *gin.Context) {
	var req domain.ProjectInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.projects.Create(c.Request.Context(), auth.UserID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) update(c *gin.Context) {
	var req domain.ProjectPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	p, err := h.projects.Update(c.Request.Context(), auth.UserID(c), c.Param("id"), req)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), auth.UserID(c), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) listScreenshots(c *gin.Context) {
	items, err := h.screenshots.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "screenshots": items})
}

func (h *Handler) addScreenshot(c *gin.Context) {
	var req screenshotReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	s, err := h.screenshots.Add(c.Request.Context(), auth.UserID(c), c.Param("id"), req.ImageURL, req.Caption)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "screenshot": s})
}

func (h *Handler) updateScreenshot(c *gin.Context) {
	var req captionReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Caption == nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "caption is required"})
		return
	}

	s, err := h.screenshots.UpdateCaption(c.Request.Context(), auth.UserID(c), c.Param("sid"), *req.Caption)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "screenshot": s})
}

func (h *Handler) deleteScreenshot(c *gin.Context) {
	if err := h.screenshots.Delete(c.Request.Context(), auth.UserID(c), c.Param("sid")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "not found"})
	default:
		logger.FromContext(c.Request.Context()).Error("project request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
	}
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
