package cart

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/fest-cart/internal/clock"
)

// Registry hands out one Engine per cart session, restoring it from storage on
// first use and caching it afterwards.
type Registry struct {
	mu      sync.Mutex
	storage Storage
	opts    []Option
	clock   clock.Clock
	engines map[string]*entry
}

type entry struct {
	engine   *Engine
	lastSeen time.Time
}

func NewRegistry(storage Storage, opts ...Option) *Registry {
	if storage == nil {
		storage = NewMemoryStorage()
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Registry{
		storage: storage,
		opts:    opts,
		clock:   o.clock,
		engines: make(map[string]*entry),
	}
}

// Get returns the engine for session, restoring it if it is not cached. The
// restore runs outside the registry lock; when two callers race, the first
// engine cached wins and the other restore is discarded.
func (r *Registry) Get(ctx context.Context, session string) *Engine {
	if engine, ok := r.cached(session); ok {
		return engine
	}

	restored := NewEngine(ctx, session, r.storage, r.opts...)

	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.clock.Now()
	if cached, ok := r.engines[session]; ok {
		cached.lastSeen = now
		return cached.engine
	}
	r.engines[session] = &entry{engine: restored, lastSeen: now}
	return restored
}

func (r *Registry) cached(session string) (*Engine, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cached, ok := r.engines[session]
	if !ok {
		return nil, false
	}
	cached.lastSeen = r.clock.Now()
	return cached.engine, true
}

// Forget drops the cached engine; the next Get restores from storage.
func (r *Registry) Forget(session string) {
	r.mu.Lock()
	delete(r.engines, session)
	r.mu.Unlock()
}

// EvictIdle forgets every engine not requested since cutoff. Engines with a
// checkout in flight are kept. It returns the number of evicted engines.
func (r *Registry) EvictIdle(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for session, cached := range r.engines {
		if !cached.lastSeen.Before(cutoff) || cached.engine.Processing() {
			continue
		}
		delete(r.engines, session)
		evicted++
	}
	return evicted
}

// Len returns the number of cached engines.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.engines)
}

// Storage exposes the backing store, e.g. for readiness checks.
func (r *Registry) Storage() Storage { return r.storage }
