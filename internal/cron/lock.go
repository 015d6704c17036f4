package cron

import (
	"context"
	"sync"
)

// Lock coordinates exclusive cron runs.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// LocalLock keeps cycles of one process from overlapping. Every job works on
// process-local state or idempotent deletes, so no cross-instance lock is needed.
type LocalLock struct {
	mu sync.Mutex
}

func NewLocalLock() *LocalLock { return &LocalLock{} }

// Acquire reports false while another cycle holds the lock.
func (l *LocalLock) Acquire(context.Context) (bool, error) {
	return l.mu.TryLock(), nil
}

// Release must only be called after a successful Acquire.
func (l *LocalLock) Release(context.Context) error {
	l.mu.Unlock()
	return nil
}
