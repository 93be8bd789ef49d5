package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process BlobStore for tests. It records every delete
// so reconciliation exactness can be asserted.
type MemoryStore struct {
	mu      sync.Mutex
	bucket  string
	base    string
	objects map[string][]byte

	Deletes []string
	// FailDeletes holds paths whose Delete call should fail.
	FailDeletes map[string]error
}

func NewMemoryStore(base, bucket string) *MemoryStore {
	return &MemoryStore{
		bucket:  bucket,
		base:    base,
		objects: make(map[string][]byte),
	}
}

func (m *MemoryStore) Put(_ context.Context, path string, data []byte, _ string) error {
	if path == "" {
		return fmt.Errorf("memory store: path cannot be empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[path] = buf
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes = append(m.Deletes, path)
	if err, ok := m.FailDeletes[path]; ok {
		return err
	}
	if _, ok := m.objects[path]; !ok {
		return fmt.Errorf("memory store: object %q not found", path)
	}
	delete(m.objects, path)
	return nil
}

func (m *MemoryStore) DownloadURL(path string) string {
	return BuildDownloadURL(m.base, m.bucket, path)
}

// Has reports whether an object is currently stored.
func (m *MemoryStore) Has(path string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[path]
	return ok
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
