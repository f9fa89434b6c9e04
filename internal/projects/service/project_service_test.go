package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataportfolio/portfolio-api/internal/discovery"
	"github.com/dataportfolio/portfolio-api/internal/events"
	"github.com/dataportfolio/portfolio-api/internal/projects/domain"
)

func seededRepo() *fakeRepo {
	return &fakeRepo{projects: []domain.Project{
		{ID: "a", OwnerID: "me", Title: "Sales Dashboard", TechStack: []string{"Python", "Power BI"}},
		{ID: "b", OwnerID: "me", Title: "HR Analytics", TechStack: []string{"SQL"}, Featured: true},
		{ID: "c", OwnerID: "you", Title: "Churn", TechStack: []string{"sql", "Python"}},
	}}
}

func TestProjectService_DiscoverUsesCache(t *testing.T) {
	repo := seededRepo()
	cache := newFakeCache()
	svc := NewProjectService(repo, cache, nil, 6, nil)
	ctx := context.Background()

	res, err := svc.Discover(ctx, "me", discovery.Query{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalFiltered)
	require.Len(t, res.Featured, 1)
	assert.Equal(t, "b", res.Featured[0].ID)

	_, err = svc.Discover(ctx, "me", discovery.Query{Search: "sales", Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls, "second call is served from cache")
}

func TestProjectService_CacheErrorFallsThrough(t *testing.T) {
	repo := seededRepo()
	cache := newFakeCache()
	cache.getErr = errBoom
	svc := NewProjectService(repo, cache, nil, 0, nil)

	projects, err := svc.Snapshot(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, projects, 3)
	assert.Equal(t, discovery.DefaultPageSize, svc.PageSize())
}

func TestProjectService_Categories(t *testing.T) {
	svc := NewProjectService(seededRepo(), nil, nil, 6, nil)

	cats, err := svc.Categories(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"all", "Python", "Power BI", "SQL", "sql"}, cats)
}

func TestProjectService_Stats(t *testing.T) {
	svc := NewProjectService(seededRepo(), nil, nil, 6, nil)

	stats, err := svc.Stats(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{TotalProjects: 3, Technologies: 4, FeaturedProjects: 1}, stats)

	stats, err = svc.Stats(context.Background(), "you")
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{TotalProjects: 1, Technologies: 2}, stats)
}

func TestProjectService_MutationsInvalidateAndPublish(t *testing.T) {
	repo := seededRepo()
	cache := newFakeCache()
	pub := &recordingPublisher{}
	svc := NewProjectService(repo, cache, pub, 6, nil)
	ctx := context.Background()

	_, err := svc.Snapshot(ctx, "me")
	require.NoError(t, err)

	created, err := svc.Create(ctx, "me", domain.ProjectInput{Title: "Forecast", TechStack: []string{"R"}})
	require.NoError(t, err)
	_, cached, _ := cache.Get(ctx, "me")
	assert.False(t, cached)

	title := "Forecast v2"
	_, err = svc.Update(ctx, "me", created.ID, domain.ProjectPatch{Title: &title})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "me", created.ID))

	require.Len(t, pub.events, 3)
	for i, action := range []string{"created", "updated", "deleted"} {
		assert.Equal(t, events.TopicProjects, pub.events[i].Topic)
		assert.Equal(t, action, pub.events[i].Action)
		assert.Equal(t, created.ID, pub.events[i].ResourceID)
		assert.Equal(t, "me", pub.events[i].OwnerID)
	}
	assert.Equal(t, []string{"me", "me", "me"}, cache.invalidated)
}

func TestProjectService_Validation(t *testing.T) {
	svc := NewProjectService(seededRepo(), nil, nil, 6, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "me", domain.ProjectInput{Title: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "title is required")

	_, err = svc.Create(ctx, "me", domain.ProjectInput{Title: "x", LiveLink: "not-a-link"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Update(ctx, "me", "a", domain.ProjectPatch{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProjectService_DeleteMissing(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewProjectService(seededRepo(), nil, pub, 6, nil)

	err := svc.Delete(context.Background(), "me", "c")
	assert.ErrorIs(t, err, domain.ErrNotFound, "c belongs to another owner")
	assert.Empty(t, pub.events)
}

func TestProjectService_ListErrorPropagates(t *testing.T) {
	repo := seededRepo()
	repo.listErr = errBoom
	svc := NewProjectService(repo, nil, nil, 6, nil)

	_, err := svc.Discover(context.Background(), "", discovery.Query{Page: 1})
	assert.ErrorIs(t, err, errBoom)
}
