package cart

import (
	"context"
	"errors"
	"sync"
)

// ErrSnapshotNotFound is returned by Storage.Load when nothing was saved under the key.
var ErrSnapshotNotFound = errors.New("cart snapshot not found")

// Storage persists whole cart snapshots. Every Save replaces the previous value.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// MemoryStorage keeps snapshots in process memory.
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string][]byte)}
}

func (m *MemoryStorage) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrSnapshotNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStorage) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

// Ping always succeeds; it lets the memory driver satisfy readiness checks.
func (m *MemoryStorage) Ping(context.Context) error { return nil }
