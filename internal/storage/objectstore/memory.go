package objectstore

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
)

type Object struct {
	Data        []byte
	ContentType string
}

// MemoryStore keeps objects in process. For local development and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
	baseURL string
}

func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "http://localhost/storage"
	}
	return &MemoryStore{objects: make(map[string]Object), baseURL: strings.TrimRight(baseURL, "/")}
}

func (m *MemoryStore) Put(_ context.Context, bucket, key string, body io.Reader, _ int64, contentType string) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = Object{Data: buf.Bytes(), ContentType: contentType}
	return nil
}

func (m *MemoryStore) Remove(_ context.Context, bucket string, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.objects, bucket+"/"+k)
	}
	return nil
}

func (m *MemoryStore) PublicURL(bucket, key string) string {
	return m.baseURL + "/" + bucket + "/" + key
}

func (m *MemoryStore) Get(bucket, key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[bucket+"/"+key]
	return o, ok
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
