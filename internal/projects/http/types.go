package http

import (
	"github.com/dataportfolio/portfolio-api/internal/discovery"
	"github.com/dataportfolio/portfolio-api/internal/projects/service"
)

// Handler bundles the dependencies for project HTTP endpoints.
type Handler struct {
	projects    *service.ProjectService
	screenshots *service.ScreenshotService
}

func New(projects *service.ProjectService, screenshots *service.ScreenshotService) *Handler {
	return &Handler{projects: projects, screenshots: screenshots}
}

// discoverResp is a discovery.Result plus what the grid needs to draw its
// pager.
type discoverResp struct {
	discovery.Result
	Page           int      `json:"page"`
	PageSize       int      `json:"page_size"`
	Pages          []int    `json:"pages"`
	PageOutOfRange bool     `json:"page_out_of_range"`
	Search         string   `json:"search"`
	Categories     []string `json:"categories"`
}

type screenshotReq struct {
	ImageURL string `json:"image_url"`
	Caption  string `json:"caption"`
}

type captionReq struct {
	Caption *string `json:"caption"`
}
