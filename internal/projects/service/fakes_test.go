package service

import (
	"context"
	"errors"
	"sync"

	"github.com/dataportfolio/portfolio-api/internal/events"
	"github.com/dataportfolio/portfolio-api/internal/projects/domain"
)

type fakeRepo struct {
	projects  []domain.Project
	listCalls int
	listErr   error
	deleted   map[string]bool
}

func (f *fakeRepo) List(_ context.Context, ownerID string) ([]domain.Project, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := []domain.Project{}
	for _, p := range f.projects {
		if ownerID == "" || p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeRepo) Get(_ context.Context, id string) (*domain.Project, error) {
	for _, p := range f.projects {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRepo) Create(_ context.Context, ownerID string, in domain.ProjectInput) (*domain.Project, error) {
	p := domain.Project{ID: "proj-new", OwnerID: ownerID, Title: in.Title, TechStack: in.TechStack, Featured: in.Featured}
	f.projects = append(f.projects, p)
	return &p, nil
}

func (f *fakeRepo) Update(_ context.Context, ownerID, id string, patch domain.ProjectPatch) (*domain.Project, error) {
	for i, p := range f.projects {
		if p.ID == id && p.OwnerID == ownerID {
			if patch.Title != nil {
				f.projects[i].Title = *patch.Title
			}
			out := f.projects[i]
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRepo) SoftDelete(_ context.Context, ownerID, id string) (bool, error) {
	for _, p := range f.projects {
		if p.ID == id && p.OwnerID == ownerID {
			if f.deleted == nil {
				f.deleted = map[string]bool{}
			}
			f.deleted[id] = true
			return true, nil
		}
	}
	return false, nil
}

type fakeCache struct {
	data        map[string][]domain.Project
	getErr      error
	invalidated []string
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]domain.Project{}} }

func (c *fakeCache) Get(_ context.Context, ownerID string) ([]domain.Project, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	p, ok := c.data[ownerID]
	return p, ok, nil
}

func (c *fakeCache) Set(_ context.Context, ownerID string, projects []domain.Project) error {
	c.data[ownerID] = projects
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, ownerID string) error {
	c.invalidated = append(c.invalidated, ownerID)
	delete(c.data, ownerID)
	delete(c.data, "")
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

var errBoom = errors.New("boom")
