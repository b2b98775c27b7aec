package persistence

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/calmbox/internal/inbox/domain"
)

// MemorySnapshotRepository keeps encoded snapshots in process memory.
type MemorySnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
}

// NewMemorySnapshotRepository creates an empty repository.
func NewMemorySnapshotRepository() *MemorySnapshotRepository {
	return &MemorySnapshotRepository{snapshots: make(map[string][]byte)}
}

// Save implements domain.SnapshotRepository.
func (r *MemorySnapshotRepository) Save(ctx context.Context, snapshot domain.Snapshot) error {
	value, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[snapshot.UserID] = value
	return nil
}

// Load implements domain.SnapshotRepository.
func (r *MemorySnapshotRepository) Load(ctx context.Context, userID string) (*domain.Snapshot, error) {
	r.mu.RLock()
	value, ok := r.snapshots[userID]
	r.mu.RUnlock()

	if !ok {
		return nil, domain.ErrSnapshotNotFound
	}
	return decodeSnapshot(value)
}

// Delete implements domain.SnapshotRepository.
func (r *MemorySnapshotRepository) Delete(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.snapshots, userID)
	return nil
}
