package notifications

import (
	"context"
	"sync"

	"github.com/angelmondragon/fest-cart/internal/cart"
)

type deliveryKey struct{}

// Delivery holds the toasts produced while a request is still able to return
// them inline. A Feed observing a Result under a context carrying an open
// Delivery hands the toast to the Delivery instead of storing it, so each
// toast reaches the client through exactly one channel.
type Delivery struct {
	mu      sync.Mutex
	closed  bool
	pending []heldToast
}

type heldToast struct {
	feed    *Feed
	session string
	toast   Toast
}

// WithDelivery returns ctx carrying a new open Delivery.
func WithDelivery(ctx context.Context) (context.Context, *Delivery) {
	d := &Delivery{}
	return context.WithValue(ctx, deliveryKey{}, d), d
}

func deliveryFrom(ctx context.Context) *Delivery {
	d, _ := ctx.Value(deliveryKey{}).(*Delivery)
	return d
}

func (d *Delivery) hold(f *Feed, session string, toast Toast) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	d.pending = append(d.pending, heldToast{feed: f, session: session, toast: toast})
	return true
}

// Close ends inline delivery and returns the held toast for outcome, if any.
// Every other held toast, such as a checkout that settled before the response
// was written, goes to its feed. Later Results are stored as usual.
func (d *Delivery) Close(outcome cart.Outcome) (Toast, bool) {
	d.mu.Lock()
	held := d.pending
	d.pending = nil
	d.closed = true
	d.mu.Unlock()

	var (
		inline Toast
		found  bool
	)
	for _, h := range held {
		if !found && h.toast.Outcome == outcome {
			inline, found = h.toast, true
			continue
		}
		h.feed.insert(h.session, h.toast)
	}
	return inline, found
}
