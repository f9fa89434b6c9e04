package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/dataportfolio/portfolio-api/config"
	"github.com/dataportfolio/portfolio-api/internal/bootstrap"
	logpkg "github.com/dataportfolio/portfolio-api/internal/logger"
	"github.com/dataportfolio/portfolio-api/internal/projects/repository"
	"github.com/dataportfolio/portfolio-api/internal/projects/service"
	"github.com/dataportfolio/portfolio-api/internal/storage/postgres"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: worker refresh [owner...] | worker schedule")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logpkg.New(logpkg.Options{Env: cfg.App.Environment, Level: cfg.App.LogLevel})
	if err != nil {
		log.Fatalf("create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()
	sqlDB, err := postgres.NewConnection(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("Failed to open database", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := bootstrap.NewRedis(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal("Redis is required for snapshot refresh", zap.Error(err))
	}
	defer rdb.Close()

	repo := repository.NewProjectRepository(sqlDB)
	svc := service.NewProjectService(repo, repository.NewSnapshotCache(rdb, cfg.Redis.SnapshotTTL), nil, cfg.Discovery.PageSize, logger)
	r := &refresher{svc: svc, log: logger}

	switch os.Args[1] {
	case "refresh":
		if err := r.Run(ctx, os.Args[2:]...); err != nil {
			logger.Fatal("Refresh failed", zap.Error(err))
		}
	case "schedule":
		if err := RunSchedule(ctx, cfg.Worker.RefreshSchedule, r, logger); err != nil {
			logger.Fatal("Scheduler failed", zap.Error(err))
		}
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
}
