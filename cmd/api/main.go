package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/dataportfolio/portfolio-api/config"
	httpapi "github.com/dataportfolio/portfolio-api/internal/api/http"
	"github.com/dataportfolio/portfolio-api/internal/api/http/middleware"
	"github.com/dataportfolio/portfolio-api/internal/bootstrap"
	"github.com/dataportfolio/portfolio-api/internal/events"
	logpkg "github.com/dataportfolio/portfolio-api/internal/logger"
	"github.com/dataportfolio/portfolio-api/internal/profile"
	projecthttp "github.com/dataportfolio/portfolio-api/internal/projects/http"
	"github.com/dataportfolio/portfolio-api/internal/projects/repository"
	"github.com/dataportfolio/portfolio-api/internal/projects/service"
	"github.com/dataportfolio/portfolio-api/internal/records"
	"github.com/dataportfolio/portfolio-api/internal/storage/postgres"
	"github.com/dataportfolio/portfolio-api/internal/uploads"
	"github.com/dataportfolio/portfolio-api/internal/users"
)

const serviceName = "portfolio-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(logpkg.Options{
		Env:     cfg.App.Environment,
		Level:   cfg.App.LogLevel,
		Service: serviceName,
		Version: cfg.App.Version,
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	bootstrap.SetGinMode(cfg.App.Environment)

	logger.Info("Starting portfolio API",
		zap.String("env", cfg.App.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("auth_provider", cfg.Auth.Provider),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	ctx := context.Background()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{
		DSN:      postgres.DSN(&cfg.Database),
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		logger.Fatal("Failed to open pgx pool", zap.Error(err))
	}
	defer pool.Close()

	sqlDB, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer sqlDB.Close()

	// Redis backs the snapshot cache and the event bus; the API still serves
	// straight from Postgres without it.
	var (
		cache     service.SnapshotCache
		bus       *events.Bus
		pub       events.Publisher
		redisPing httpapi.Pinger
	)
	rdb, err := bootstrap.NewRedis(ctx, &cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, running without cache and events", zap.Error(err))
	} else {
		defer rdb.Close()
		cache = repository.NewSnapshotCache(rdb, cfg.Redis.SnapshotTTL)
		bus = events.NewBus(rdb, logger)
		pub = bus
		redisPing = httpapi.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}

	sb, err := bootstrap.NewSupabase(&cfg.Supabase)
	if err != nil {
		logger.Fatal("Failed to create supabase client", zap.Error(err))
	}
	verifier, err := bootstrap.NewVerifier(ctx, cfg, sb)
	if err != nil {
		logger.Fatal("Failed to create token verifier", zap.Error(err))
	}
	store, err := bootstrap.NewObjectStore(ctx, cfg, sb, logger)
	if err != nil {
		logger.Fatal("Failed to create object store", zap.Error(err))
	}

	projectRepo := repository.NewProjectRepository(sqlDB)
	projectSvc := service.NewProjectService(projectRepo, cache, pub, cfg.Discovery.PageSize, logger)
	uploadSvc := uploads.NewService(store, pub, cfg.Storage.MaxUploadBytes, logger)
	screenshotSvc := service.NewScreenshotService(repository.NewScreenshotRepository(sqlDB), projectRepo).
		WithImageCleanup(uploadSvc, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	limiter := middleware.NewIPRateLimiter(cfg.Discovery.RateLimitRPS, cfg.Discovery.RateLimitBurst)

	deps := bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		Log:            logger,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		TrustedProxies: cfg.Server.TrustedProxies,
		DBPing:         pool,
		RedisPing:      redisPing,
		Registry:       reg,
		Limiter:        limiter,
		Verifier:       verifier,
		Users:          users.NewRepo(pool),
		Projects:       projecthttp.New(projectSvc, screenshotSvc),
		Educations:     records.NewHandler[profile.Education](profile.NewEducationStore(pool), "education"),
		Experiences:    records.NewHandler[profile.Experience](profile.NewExperienceStore(pool), "experience"),
		Uploads:        uploads.NewHandler(uploadSvc),
	}
	if bus != nil {
		deps.Events = events.NewHandler(bus)
	}
	r, err := bootstrap.BuildRouter(deps)
	if err != nil {
		logger.Fatal("Failed to build router", zap.Error(err))
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go func() {
		t := time.NewTicker(time.Minute)
		defer t.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-t.C:
				if n := limiter.Sweep(); n > 0 {
					logger.Debug("Swept idle rate limiters", zap.Int("count", n))
				}
			}
		}
	}()

	srv := bootstrap.NewServer(":"+cfg.Server.Port, r)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
