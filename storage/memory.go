package storage

import (
	"context"
	"sync"

	"github.com/c360studio/memberdir/section"
)

// MemoryStore is an in-process SnapshotStore for tests.
type MemoryStore struct {
	mu   sync.Mutex
	snap *section.Snapshot
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get implements SnapshotStore.
func (s *MemoryStore) Get(_ context.Context) (*section.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		return nil, ErrNotFound
	}
	return s.snap, nil
}

// Set implements SnapshotStore.
func (s *MemoryStore) Set(_ context.Context, snap *section.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	return nil
}
