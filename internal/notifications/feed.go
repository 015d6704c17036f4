package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/fest-cart/internal/cart"
	"github.com/angelmondragon/fest-cart/internal/clock"
	"github.com/google/uuid"
)

const (
	DefaultTTL   = 4 * time.Second
	DefaultLimit = 20
)

// FeedOptions configures a Feed. Zero values fall back to the defaults.
type FeedOptions struct {
	TTL   time.Duration
	Limit int
	Clock clock.Clock
}

// Feed keeps the live toasts of every cart session. It is a cart.Observer, so
// every Result reported by an engine becomes exactly one toast.
type Feed struct {
	mu     sync.Mutex
	ttl    time.Duration
	limit  int
	clock  clock.Clock
	toasts map[string][]Toast
}

func NewFeed(opts FeedOptions) *Feed {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Clock == nil {
		opts.Clock = clock.NewSystem()
	}
	return &Feed{
		ttl:    opts.TTL,
		limit:  opts.Limit,
		clock:  opts.Clock,
		toasts: make(map[string][]Toast),
	}
}

// Observe records the toast for res under the session key, unless ctx carries an
// open Delivery that takes it.
func (f *Feed) Observe(ctx context.Context, key string, res cart.Result) {
	toast := f.stamp(ToastFor(res))
	if d := deliveryFrom(ctx); d != nil && d.hold(f, key, toast) {
		return
	}
	f.insert(key, toast)
}

// Push stamps and stores toast, dropping the oldest ones past the per-session limit.
func (f *Feed) Push(session string, toast Toast) Toast {
	toast = f.stamp(toast)
	f.insert(session, toast)
	return toast
}

func (f *Feed) stamp(toast Toast) Toast {
	now := f.clock.Now()
	if toast.ID == uuid.Nil {
		toast.ID = uuid.New()
	}
	toast.CreatedAt = now
	toast.ExpiresAt = now.Add(f.ttl)
	return toast
}

func (f *Feed) insert(session string, toast Toast) {
	f.mu.Lock()
	defer f.mu.Unlock()
	live := append(f.liveLocked(session, f.clock.Now()), toast)
	if over := len(live) - f.limit; over > 0 {
		live = live[over:]
	}
	f.toasts[session] = live
}

// Drain returns the live toasts of session, oldest first, and forgets them.
func (f *Feed) Drain(session string) []Toast {
	f.mu.Lock()
	defer f.mu.Unlock()
	live := f.liveLocked(session, f.clock.Now())
	delete(f.toasts, session)
	if live == nil {
		return []Toast{}
	}
	return live
}

// Dismiss removes a single toast. It reports whether the toast was live.
func (f *Feed) Dismiss(session string, id uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	live := f.liveLocked(session, f.clock.Now())
	for i, toast := range live {
		if toast.ID == id {
			live = append(live[:i:i], live[i+1:]...)
			f.store(session, live)
			return true
		}
	}
	f.store(session, live)
	return false
}

// Pending is the number of live toasts for session.
func (f *Feed) Pending(session string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	live := f.liveLocked(session, f.clock.Now())
	f.store(session, live)
	return len(live)
}

func (f *Feed) liveLocked(session string, now time.Time) []Toast {
	var live []Toast
	for _, toast := range f.toasts[session] {
		if now.Before(toast.ExpiresAt) {
			live = append(live, toast)
		}
	}
	return live
}

func (f *Feed) store(session string, live []Toast) {
	if len(live) == 0 {
		delete(f.toasts, session)
		return
	}
	f.toasts[session] = live
}

// Sweep forgets expired toasts of every session and returns how many were dropped.
func (f *Feed) Sweep() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := f.clock.Now()
	dropped := 0
	for session, toasts := range f.toasts {
		live := f.liveLocked(session, now)
		dropped += len(toasts) - len(live)
		f.store(session, live)
	}
	return dropped
}

// Sessions is the number of sessions holding at least one stored toast.
func (f *Feed) Sessions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.toasts)
}
