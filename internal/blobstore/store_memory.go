package blobstore

import (
	"context"
	"fmt"
	"io"
	"sync"

	"kycgate/pkg/sentinel"
)

// InMemoryStore keeps blobs in memory for tests and local development.
type InMemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// NewInMemoryStore constructs an empty in-memory blob store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{objects: make(map[string][]byte)}
}

// Put reads the blob and stores it under a derived key, returning a
// memory:// reference.
func (s *InMemoryStore) Put(_ context.Context, content io.Reader, meta Metadata) (string, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("read blob: %w", err)
	}

	key := ObjectKey(meta)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return "memory://" + key, nil
}

// Get returns a stored blob by key. Used by tests.
func (s *InMemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("blob %s: %w", key, sentinel.ErrNotFound)
	}
	return append([]byte{}, data...), nil
}

// Len reports how many blobs are stored. Used by tests.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
