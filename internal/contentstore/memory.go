package contentstore

import (
	"context"
	"sync"
)

// memoryStore implements Store in process memory. Used in tests and when no
// Redis instance is configured.
type memoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemoryStore creates an in-process content store.
func NewMemoryStore() Store {
	return &memoryStore{blobs: make(map[string][]byte)}
}

func (s *memoryStore) Store(_ context.Context, data []byte) (string, error) {
	ref := Ref(data)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[ref]; !ok {
		blob := make([]byte, len(data))
		copy(blob, data)
		s.blobs[ref] = blob
	}
	return ref, nil
}

func (s *memoryStore) Retrieve(_ context.Context, contentRef string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[contentRef]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(blob))
	copy(out, blob)
	return out, nil
}
