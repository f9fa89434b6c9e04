package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dataportfolio/portfolio-api/internal/projects/domain"
)

type fakeRefresher struct {
	all   []domain.Project
	fail  map[string]bool
	calls []string
}

func (f *fakeRefresher) RefreshSnapshot(_ context.Context, ownerID string) ([]domain.Project, error) {
	f.calls = append(f.calls, ownerID)
	if f.fail[ownerID] {
		return nil, errors.New("boom")
	}
	return f.all, nil
}

func TestRefresher_AllOwners(t *testing.T) {
	f := &fakeRefresher{all: []domain.Project{
		{ID: "1", OwnerID: "u1"}, {ID: "2", OwnerID: "u2"}, {ID: "3", OwnerID: "u1"}, {ID: "4"},
	}}
	r := &refresher{svc: f, log: zap.NewNop()}

	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, []string{"", "u1", "u2"}, f.calls)
}

func TestRefresher_ExplicitOwnersAndErrors(t *testing.T) {
	f := &fakeRefresher{fail: map[string]bool{"u2": true}}
	r := &refresher{svc: f, log: zap.NewNop()}

	err := r.Run(context.Background(), "u1", "u2", "u3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner u2")
	assert.Equal(t, []string{"u1", "u2", "u3"}, f.calls)
}

func TestRefresher_GlobalFailureStops(t *testing.T) {
	f := &fakeRefresher{fail: map[string]bool{"": true}}
	r := &refresher{svc: f, log: zap.NewNop()}

	assert.Error(t, r.Run(context.Background()))
	assert.Equal(t, []string{""}, f.calls)
}
