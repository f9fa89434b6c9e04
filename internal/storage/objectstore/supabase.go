package objectstore

import (
	"context"
	"fmt"
	"io"
	"sync"

	storage_go "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"
)

// SupabaseStore writes to Supabase Storage buckets.
type SupabaseStore struct {
	// The SDK applies FileOptions to headers shared by the whole client,
	// so uploads are serialized.
	mu      sync.Mutex
	storage *storage_go.Client
}

func NewSupabaseStore(client *supabase.Client) *SupabaseStore {
	return &SupabaseStore{storage: client.Storage}
}

func (s *SupabaseStore) Put(ctx context.Context, bucket, key string, body io.Reader, _ int64, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	upsert := false
	cacheControl := "3600"

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.storage.UploadFile(bucket, key, body, storage_go.FileOptions{
		ContentType:  &contentType,
		CacheControl: &cacheControl,
		Upsert:       &upsert,
	})
	if err != nil {
		return fmt.Errorf("supabase upload %s/%s: %w", bucket, key, err)
	}
	return nil
}

func (s *SupabaseStore) Remove(ctx context.Context, bucket string, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.storage.RemoveFile(bucket, keys); err != nil {
		return fmt.Errorf("supabase remove from %s: %w", bucket, err)
	}
	return nil
}

func (s *SupabaseStore) PublicURL(bucket, key string) string {
	return s.storage.GetPublicUrl(bucket, key).SignedURL
}
