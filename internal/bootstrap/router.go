package bootstrap

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httpapi "github.com/dataportfolio/portfolio-api/internal/api/http"
	"github.com/dataportfolio/portfolio-api/internal/api/http/middleware"
	"github.com/dataportfolio/portfolio-api/internal/auth"
	"github.com/dataportfolio/portfolio-api/internal/events"
	"github.com/dataportfolio/portfolio-api/internal/profile"
	projecthttp "github.com/dataportfolio/portfolio-api/internal/projects/http"
	"github.com/dataportfolio/portfolio-api/internal/records"
	"github.com/dataportfolio/portfolio-api/internal/uploads"
)

// RouterDeps carries everything BuildRouter mounts. Nil handlers are skipped.
type RouterDeps struct {
	ServiceName    string
	Version        string
	Log            *zap.Logger
	AllowedOrigins []string
	TrustedProxies []string

	DBPing    httpapi.Pinger
	RedisPing httpapi.Pinger
	Registry  *prometheus.Registry
	Limiter   *middleware.IPRateLimiter

	Verifier auth.Verifier
	Users    auth.UserSyncer

	Projects    *projecthttp.Handler
	Educations  *records.Handler[profile.Education]
	Experiences *records.Handler[profile.Experience]
	Uploads     *uploads.Handler
	Events      *events.Handler
}

// BuildRouter fails only when TrustedProxies holds something that is not an
// IP or CIDR.
func BuildRouter(dep RouterDeps) (*gin.Engine, error) {
	log := dep.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	// nil trusts no proxy: ClientIP is the socket peer.
	if err := r.SetTrustedProxies(dep.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(log))
	if dep.Registry != nil {
		r.Use(middleware.NewHTTPMetrics(dep.Registry).Middleware())
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(dep.Registry, promhttp.HandlerOpts{})))
	}
	corsCfg := cors.Config{
		AllowOrigins:     dep.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(dep.AllowedOrigins) == 0 {
		// cors.New panics without any allowed origin
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))

	httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DBPing, dep.RedisPing).RegisterRoutes(r)

	api := r.Group("/api/v1")

	public := api.Group("")
	if dep.Limiter != nil {
		public.Use(dep.Limiter.Middleware())
	}
	if dep.Projects != nil {
		dep.Projects.RegisterPublic(public)
	}
	if dep.Educations != nil {
		dep.Educations.RegisterPublic(public, "/profiles/:owner/educations")
	}
	if dep.Experiences != nil {
		dep.Experiences.RegisterPublic(public, "/profiles/:owner/experiences")
	}
	if dep.Events != nil {
		dep.Events.Register(public)
	}

	if dep.Verifier == nil {
		log.Warn("no token verifier configured, dashboard routes disabled")
		return r, nil
	}

	dash := api.Group("/dashboard")
	dash.Use(auth.Require(dep.Verifier, dep.Users))
	if dep.Projects != nil {
		dep.Projects.RegisterDashboard(dash)
	}
	if dep.Educations != nil {
		dep.Educations.RegisterDashboard(dash, "/educations")
	}
	if dep.Experiences != nil {
		dep.Experiences.RegisterDashboard(dash, "/experiences")
	}
	if dep.Uploads != nil {
		dep.Uploads.Register(dash)
	}

	return r, nil
}
