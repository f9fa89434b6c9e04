package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dataportfolio/portfolio-api/internal/projects/domain"
)

const (
	snapshotKeyPrefix = "portfolio:projects:snapshot:" // portfolio:projects:snapshot:{owner}
	allOwnersKey      = "_all"
)

// SnapshotCache keeps serialized project snapshots in Redis so discovery
// requests do not hit postgres on every keystroke.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSnapshotCache(client *redis.Client, ttl time.Duration) *SnapshotCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SnapshotCache{client: client, ttl: ttl}
}

func (c *SnapshotCache) key(ownerID string) string {
	if ownerID == "" {
		ownerID = allOwnersKey
	}
	return snapshotKeyPrefix + ownerID
}

// Get returns the cached snapshot and whether it was present.
func (c *SnapshotCache) Get(ctx context.Context, ownerID string) ([]domain.Project, bool, error) {
	data, err := c.client.Get(ctx, c.key(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get snapshot: %w", err)
	}

	var projects []domain.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return projects, true, nil
}

func (c *SnapshotCache) Set(ctx context.Context, ownerID string, projects []domain.Project) error {
	if projects == nil {
		projects = []domain.Project{}
	}
	data, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.key(ownerID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	return nil
}

// Invalidate drops the owner's snapshot and the all-owners snapshot.
func (c *SnapshotCache) Invalidate(ctx context.Context, ownerID string) error {
	pipe := c.client.Pipeline()
	pipe.Del(ctx, c.key(allOwnersKey))
	if ownerID != "" {
		pipe.Del(ctx, c.key(ownerID))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("invalidate snapshot: %w", err)
	}
	return nil
}
