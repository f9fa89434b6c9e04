package http

import "github.com/gin-gonic/gin"

// RegisterPublic attaches the read-only portfolio routes.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.GET("/projects", h.list)
	rg.GET("/projects/discover", h.discover)
	rg.GET("/projects/categories", h.categories)
	rg.GET("/projects/:id", h.get)
	rg.GET("/projects/:id/screenshots", h.listScreenshots)
}

// RegisterDashboard attaches the owner-only routes; rg must already require auth.
func (h *Handler) RegisterDashboard(rg *gin.RouterGroup) {
	rg.GET("/stats", h.stats)
	rg.POST("/projects", h.create)
	rg.PATCH("/projects/:id", h.update)
	rg.DELETE("/projects/:id", h.delete)

	rg.POST("/projects/:id/screenshots", h.addScreenshot)
	rg.PATCH("/screenshots/:sid", h.updateScreenshot)
	rg.DELETE("/screenshots/:sid", h.deleteScreenshot)
}
