package storage

import (
	"context"
	"sync"

	"paybook/internal/core"
)

// MemoryRepository keeps the encoded snapshot in memory. Encoding on save
// gives callers the same copy semantics as the durable backends.
type MemoryRepository struct {
	mu   sync.Mutex
	data []byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Load(_ context.Context) (core.Snapshot, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data == nil {
		return core.Snapshot{}, false, nil
	}
	snap, err := decodeSnapshot(r.data)
	if err != nil {
		return core.Snapshot{}, false, err
	}
	return snap, true, nil
}

func (r *MemoryRepository) Save(_ context.Context, snap core.Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = data
	return nil
}

func (r *MemoryRepository) Close() error { return nil }
