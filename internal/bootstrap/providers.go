package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"github.com/dataportfolio/portfolio-api/config"
	"github.com/dataportfolio/portfolio-api/internal/auth"
	"github.com/dataportfolio/portfolio-api/internal/storage/objectstore"
)

// NewSupabase returns nil when Supabase is not configured.
func NewSupabase(cfg *config.SupabaseConfig) (*supabase.Client, error) {
	if cfg.URL == "" || cfg.ServiceRoleKey == "" {
		return nil, nil
	}
	client, err := supabase.NewClient(cfg.URL, cfg.ServiceRoleKey, nil)
	if err != nil {
		return nil, fmt.Errorf("supabase client: %w", err)
	}
	return client, nil
}

func NewRedis(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// NewVerifier picks the bearer-token verifier named by cfg.Auth.Provider.
func NewVerifier(ctx context.Context, cfg *config.Config, sb *supabase.Client) (auth.Verifier, error) {
	switch cfg.Auth.Provider {
	case "firebase":
		client, err := auth.InitializeFirebase(ctx, &cfg.Auth.Firebase)
		if err != nil {
			return nil, err
		}
		return auth.NewFirebaseVerifier(client), nil
	case "supabase":
		if sb == nil {
			return nil, fmt.Errorf("supabase auth selected but supabase is not configured")
		}
		return auth.NewSupabaseVerifier(sb), nil
	case "header":
		return auth.HeaderVerifier{}, nil
	default:
		return nil, fmt.Errorf("unknown auth provider %q", cfg.Auth.Provider)
	}
}

// NewObjectStore picks the storage backend and wraps remote ones in a
// circuit breaker.
func NewObjectStore(ctx context.Context, cfg *config.Config, sb *supabase.Client, log *zap.Logger) (objectstore.Store, error) {
	switch cfg.Storage.Driver {
	case "supabase":
		if sb == nil {
			return nil, fmt.Errorf("supabase storage selected but supabase is not configured")
		}
		store := objectstore.NewSupabaseStore(sb)
		return objectstore.NewBreakerStore(store, objectstore.DefaultBreakerConfig("supabase-storage"), log), nil
	case "s3":
		client, err := objectstore.NewS3Client(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
		store := objectstore.NewS3Store(client, cfg.Storage.S3BucketPrefix, cfg.Storage.PublicBaseURL)
		return objectstore.NewBreakerStore(store, objectstore.DefaultBreakerConfig("s3-storage"), log), nil
	case "memory":
		return objectstore.NewMemoryStore(cfg.Storage.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
