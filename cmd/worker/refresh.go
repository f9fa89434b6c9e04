package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dataportfolio/portfolio-api/internal/projects/domain"
)

type snapshotRefresher interface {
	RefreshSnapshot(ctx context.Context, ownerID string) ([]domain.Project, error)
}

// refresher re-primes the discovery snapshot cache: the everyone snapshot
// plus one per owner found in it.
type refresher struct {
	svc snapshotRefresher
	log *zap.Logger
}

// Run refreshes the listed owners, or every owner when none are given.
func (r *refresher) Run(ctx context.Context, owners ...string) error {
	if len(owners) == 0 {
		all, err := r.svc.RefreshSnapshot(ctx, "")
		if err != nil {
			return fmt.Errorf("refresh all: %w", err)
		}
		owners = ownersOf(all)
		r.log.Info("Refreshed global snapshot", zap.Int("projects", len(all)), zap.Int("owners", len(owners)))
	}

	var errs []error
	for _, owner := range owners {
		projects, err := r.svc.RefreshSnapshot(ctx, owner)
		if err != nil {
			r.log.Error("Refresh failed", zap.String("owner", owner), zap.Error(err))
			errs = append(errs, fmt.Errorf("owner %s: %w", owner, err))
			continue
		}
		r.log.Debug("Refreshed owner snapshot", zap.String("owner", owner), zap.Int("projects", len(projects)))
	}
	return errors.Join(errs...)
}

func ownersOf(projects []domain.Project) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range projects {
		if p.OwnerID == "" {
			continue
		}
		if _, ok := seen[p.OwnerID]; ok {
			continue
		}
		seen[p.OwnerID] = struct{}{}
		out = append(out, p.OwnerID)
	}
	return out
}

// RunSchedule refreshes once immediately, then on spec until SIGINT/SIGTERM.
func RunSchedule(ctx context.Context, spec string, r *refresher, log *zap.Logger) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if err := r.Run(ctx); err != nil {
			log.Error("Scheduled refresh failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("bad schedule %q: %w", spec, err)
	}

	if err := r.Run(ctx); err != nil {
		log.Error("Initial refresh failed", zap.Error(err))
	}

	c.Start()
	log.Info("Snapshot refresh scheduled", zap.String("spec", spec))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	<-c.Stop().Done()
	log.Info("Scheduler stopped")
	return nil
}
