package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dataportfolio/portfolio-api/internal/discovery"
	"github.com/dataportfolio/portfolio-api/internal/events"
	"github.com/dataportfolio/portfolio-api/internal/projects/domain"
	"github.com/dataportfolio/portfolio-api/internal/validation"
)

// Repository is the project store. *repository.ProjectRepository satisfies it.
type Repository interface {
	List(ctx context.Context, ownerID string) ([]domain.Project, error)
	Get(ctx context.Context, id string) (*domain.Project, error)
	Create(ctx context.Context, ownerID string, in domain.ProjectInput) (*domain.Project, error)
	Update(ctx context.Context, ownerID, id string, patch domain.ProjectPatch) (*domain.Project, error)
	SoftDelete(ctx context.Context, ownerID, id string) (bool, error)
}

// SnapshotCache holds whole-portfolio snapshots keyed by owner ("" = everyone).
type SnapshotCache interface {
	Get(ctx context.Context, ownerID string) ([]domain.Project, bool, error)
	Set(ctx context.Context, ownerID string, projects []domain.Project) error
	Invalidate(ctx context.Context, ownerID string) error
}

// ProjectService handles project business logic and feeds the discovery pipeline.
type ProjectService struct {
	repo     Repository
	cache    SnapshotCache
	events   events.Publisher
	pageSize int
	log      *zap.Logger
}

// NewProjectService wires the service. cache and pub may be nil.
func NewProjectService(repo Repository, cache SnapshotCache, pub events.Publisher, pageSize int, log *zap.Logger) *ProjectService {
	if pageSize <= 0 {
		pageSize = discovery.DefaultPageSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ProjectService{repo: repo, cache: cache, events: pub, pageSize: pageSize, log: log}
}

func (s *ProjectService) PageSize() int { return s.pageSize }

// Snapshot returns the current project list for ownerID, served from the
// cache when possible. Cache failures are logged and bypassed.
func (s *ProjectService) Snapshot(ctx context.Context, ownerID string) ([]domain.Project, error) {
	if s.cache != nil {
		projects, ok, err := s.cache.Get(ctx, ownerID)
		if err != nil {
			s.log.Warn("snapshot cache read failed", zap.String("owner", ownerID), zap.Error(err))
		} else if ok {
			return projects, nil
		}
	}
	return s.RefreshSnapshot(ctx, ownerID)
}

// RefreshSnapshot reloads ownerID's projects from the store and re-primes the cache.
func (s *ProjectService) RefreshSnapshot(ctx context.Context, ownerID string) ([]domain.Project, error) {
	projects, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, ownerID, projects); err != nil {
			s.log.Warn("snapshot cache write failed", zap.String("owner", ownerID), zap.Error(err))
		}
	}
	return projects, nil
}

// Discover runs the discovery pipeline over the owner's snapshot.
func (s *ProjectService) Discover(ctx context.Context, ownerID string, q discovery.Query) (discovery.Result, error) {
	projects, err := s.Snapshot(ctx, ownerID)
	if err != nil {
		return discovery.Result{}, err
	}
	if q.PageSize <= 0 {
		q.PageSize = s.pageSize
	}
	return discovery.Compute(projects, q), nil
}

func (s *ProjectService) Categories(ctx context.Context, ownerID string) ([]string, error) {
	projects, err := s.Snapshot(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return discovery.Categories(projects), nil
}

func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	return s.repo.Get(ctx, id)
}

// Stats counts the owner's projects straight from the store. Technologies are
// distinct as typed, so "SQL" and "sql" count twice.
func (s *ProjectService) Stats(ctx context.Context, ownerID string) (domain.Stats, error) {
	projects, err := s.repo.List(ctx, ownerID)
	if err != nil {
		return domain.Stats{}, err
	}

	seen := make(map[string]struct{})
	stats := domain.Stats{TotalProjects: len(projects)}
	for _, p := range projects {
		if p.Featured {
			stats.FeaturedProjects++
		}
		for _, t := range p.TechStack {
			seen[t] = struct{}{}
		}
	}
	stats.Technologies = len(seen)
	return stats, nil
}

func (s *ProjectService) Create(ctx context.Context, ownerID string, in domain.ProjectInput) (*domain.Project, error) {
	if err := validation.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	p, err := s.repo.Create(ctx, ownerID, in)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, ownerID, p.ID, "created")
	return p, nil
}

func (s *ProjectService) Update(ctx context.Context, ownerID, id string, patch domain.ProjectPatch) (*domain.Project, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", domain.ErrInvalidInput)
	}
	if err := validation.Struct(patch); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	p, err := s.repo.Update(ctx, ownerID, id, patch)
	if err != nil {
		return nil, err
	}
	s.changed(ctx, ownerID, p.ID, "updated")
	return p, nil
}

func (s *ProjectService) Delete(ctx context.Context, ownerID, id string) error {
	ok, err := s.repo.SoftDelete(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	s.changed(ctx, ownerID, id, "deleted")
	return nil
}

// changed drops cached snapshots and tells subscribers. Both are best effort:
// the write already succeeded and the cache TTL bounds staleness.
func (s *ProjectService) changed(ctx context.Context, ownerID, projectID, action string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, ownerID); err != nil {
			s.log.Warn("snapshot invalidate failed", zap.String("owner", ownerID), zap.Error(err))
		}
	}
	if s.events != nil {
		ev := events.New(events.TopicProjects, ownerID, action)
		ev.ResourceID = projectID
		if err := s.events.Publish(ctx, ev); err != nil {
			s.log.Warn("publish project event failed", zap.String("project", projectID), zap.Error(err))
		}
	}
}
