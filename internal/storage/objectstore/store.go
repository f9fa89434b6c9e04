// Package objectstore puts uploaded files into public buckets and hands back
// their URLs. Backends: Supabase Storage, S3-compatible stores, and memory.
package objectstore

import (
	"context"
	"errors"
	"io"
)

var ErrUnavailable = errors.New("object store unavailable")

// Store is a bucketed blob store with public read URLs.
type Store interface {
	Put(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, bucket string, keys ...string) error
	PublicURL(bucket, key string) string
}
