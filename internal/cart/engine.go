package cart

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"
)

// Engine owns one visitor's cart: the ordered items, the drawer visibility and the
// checkout state. It is safe for concurrent use; every mutation is written through
// to storage before the call returns.
type Engine struct {
	mu         sync.Mutex
	key        string
	storage    Storage
	items      []Item
	visible    bool
	processing bool
	opts       options
}

// NewEngine restores the cart saved under key. Missing or unreadable snapshots
// start an empty cart; restore problems are logged, never returned.
func NewEngine(ctx context.Context, key string, storage Storage, opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if storage == nil {
		storage = NewMemoryStorage()
	}
	e := &Engine{key: key, storage: storage, opts: o}
	e.items = e.restore(ctx)
	return e
}

func (e *Engine) restore(ctx context.Context) []Item {
	logg := e.opts.logg
	data, err := e.storage.Load(ctx, e.key)
	if err != nil {
		if !errors.Is(err, ErrSnapshotNotFound) {
			logg.Warn(logg.WithField(logg.WithField(ctx, "cart_key", e.key), "error", err.Error()), "cart.restore.load_failed")
		}
		return nil
	}
	items, err := decodeItems(data)
	if err != nil {
		logg.Warn(logg.WithField(logg.WithField(ctx, "cart_key", e.key), "error", err.Error()), "cart.restore.corrupt_snapshot")
		return nil
	}
	return items
}

// Key returns the storage key of this cart.
func (e *Engine) Key() string { return e.key }

// Add appends event unless it is already present, it would be a second featured
// event, or the cart is full, checked in that order.
func (e *Engine) Add(ctx context.Context, event Event) Result {
	e.mu.Lock()
	res := Result{EventID: event.ID, Title: event.Title}
	switch {
	case e.indexLocked(event.ID) >= 0:
		res.Outcome = OutcomeDuplicateItem
	case event.Featured && e.hasFeaturedLocked():
		res.Outcome = OutcomeFeaturedConflict
	case len(e.items) >= MaxTotalEvents:
		res.Outcome = OutcomeCapacityExceeded
	default:
		e.items = append(e.items, newItem(event, e.opts.clock.Now()))
		e.persistLocked(ctx)
		res.Outcome = OutcomeAdded
	}
	res.Size = len(e.items)
	e.mu.Unlock()

	e.notify(ctx, res)
	return res
}

// Remove drops the item with id. Removing an absent id still succeeds.
func (e *Engine) Remove(ctx context.Context, id string) Result {
	e.mu.Lock()
	res := Result{Outcome: OutcomeRemoved, EventID: id}
	if idx := e.indexLocked(id); idx >= 0 {
		res.Title = e.items[idx].Title
		e.items = append(e.items[:idx:idx], e.items[idx+1:]...)
	}
	e.persistLocked(ctx)
	res.Size = len(e.items)
	e.mu.Unlock()

	e.notify(ctx, res)
	return res
}

// Clear empties the cart.
func (e *Engine) Clear(ctx context.Context) Result {
	e.mu.Lock()
	e.items = nil
	e.persistLocked(ctx)
	e.mu.Unlock()

	res := Result{Outcome: OutcomeCleared}
	e.notify(ctx, res)
	return res
}

// Contains reports whether an item with id is in the cart.
func (e *Engine) Contains(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.indexLocked(id) >= 0
}

// Items returns a copy of the cart in insertion order.
func (e *Engine) Items() []Item {
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneItems(e.items)
}

func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.items)
}

// Total sums the integer amount of every item's price.
func (e *Engine) Total() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.totalLocked()
}

// RemainingSlots is MaxTotalEvents minus the cart size. It is not clamped.
func (e *Engine) RemainingSlots() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return MaxTotalEvents - len(e.items)
}

// Toggle flips the drawer visibility and returns the new value.
func (e *Engine) Toggle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.visible = !e.visible
	return e.visible
}

func (e *Engine) Visible() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.visible
}

func (e *Engine) SetVisible(visible bool) {
	e.mu.Lock()
	e.visible = visible
	e.mu.Unlock()
}

// Processing reports whether a checkout is waiting out its delay.
func (e *Engine) Processing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.processing
}

// Snapshot is a consistent read of everything a cart view renders.
type Snapshot struct {
	Items          []Item
	Total          int
	RemainingSlots int
	Visible        bool
	Processing     bool
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Items:          cloneItems(e.items),
		Total:          e.totalLocked(),
		RemainingSlots: MaxTotalEvents - len(e.items),
		Visible:        e.visible,
		Processing:     e.processing,
	}
}

// StartCheckout begins the simulated checkout. The returned Result is either
// checkout_started or a rejection; the channel yields the final Result
// (checked_out, or checkout_canceled when ctx ends during the delay) and is closed.
// Observers see only the final Result, or the rejection.
func (e *Engine) StartCheckout(ctx context.Context) (Result, <-chan Result) {
	done := make(chan Result, 1)

	e.mu.Lock()
	var rejected Outcome
	switch {
	case e.processing:
		rejected = OutcomeCheckoutInProgress
	case len(e.items) == 0:
		rejected = OutcomeEmptyCart
	}
	if rejected != "" {
		res := Result{Outcome: rejected, Size: len(e.items)}
		e.mu.Unlock()
		e.notify(ctx, res)
		done <- res
		close(done)
		return res, done
	}
	e.processing = true
	started := Result{Outcome: OutcomeCheckoutStarted, Count: len(e.items), Total: e.totalLocked(), Size: len(e.items)}
	delay := e.opts.checkoutDelay
	e.mu.Unlock()

	began := time.Now()
	go func() {
		defer close(done)
		done <- e.finishCheckout(ctx, delay, began)
	}()
	return started, done
}

// Checkout runs StartCheckout and waits for the final Result.
func (e *Engine) Checkout(ctx context.Context) Result {
	res, done := e.StartCheckout(ctx)
	if !res.OK() {
		return res
	}
	return <-done
}

func (e *Engine) finishCheckout(ctx context.Context, delay time.Duration, began time.Time) Result {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		e.mu.Lock()
		e.processing = false
		res := Result{Outcome: OutcomeCheckoutCanceled, Size: len(e.items), Elapsed: time.Since(began)}
		e.mu.Unlock()
		e.notify(context.WithoutCancel(ctx), res)
		return res
	case <-timer.C:
	}

	e.mu.Lock()
	res := Result{Outcome: OutcomeCheckedOut, Count: len(e.items), Total: e.totalLocked(), Elapsed: time.Since(began)}
	e.visible = false
	// Same effect as Clear, but the checked_out Result stands in for the cleared one:
	// a checkout yields a single notification.
	e.items = nil
	e.processing = false
	// The delay is over; a caller hanging up now must not leave a stale snapshot.
	e.persistLocked(context.WithoutCancel(ctx))
	e.mu.Unlock()

	e.notify(context.WithoutCancel(ctx), res)
	return res
}

func (e *Engine) indexLocked(id string) int {
	for i := range e.items {
		if e.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (e *Engine) hasFeaturedLocked() bool {
	for i := range e.items {
		if e.items[i].Featured {
			return true
		}
	}
	return false
}

// totalLocked saturates at math.MaxInt; restored snapshots are not re-checked
// against MaxTotalEvents, so the per-price cap alone does not bound the sum.
func (e *Engine) totalLocked() int {
	total := 0
	for i := range e.items {
		amount := e.items[i].Price.Amount()
		if total > math.MaxInt-amount {
			return math.MaxInt
		}
		total += amount
	}
	return total
}

// persistLocked writes the full snapshot. Failures are logged and otherwise ignored.
func (e *Engine) persistLocked(ctx context.Context) {
	logg := e.opts.logg
	data, err := encodeItems(e.items)
	if err != nil {
		logg.Error(logg.WithField(ctx, "cart_key", e.key), "cart.persist.encode_failed", err)
		return
	}
	if err := e.storage.Save(ctx, e.key, data); err != nil {
		logg.Error(logg.WithField(ctx, "cart_key", e.key), "cart.persist.save_failed", err)
	}
}

func (e *Engine) notify(ctx context.Context, res Result) {
	for _, obs := range e.opts.observers {
		obs.Observe(ctx, e.key, res)
	}
}
