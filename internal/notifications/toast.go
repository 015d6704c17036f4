package notifications

import (
	"fmt"
	"time"

	"github.com/angelmondragon/fest-cart/internal/cart"
	"github.com/google/uuid"
)

// Kind is the toast style.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Toast is a short-lived message produced for one cart Result.
type Toast struct {
	ID        uuid.UUID    `json:"id"`
	Kind      Kind         `json:"kind"`
	Message   string       `json:"message"`
	Icon      string       `json:"icon,omitempty"`
	Outcome   cart.Outcome `json:"outcome"`
	CreatedAt time.Time    `json:"created_at"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// ToastFor translates a Result into its user-facing message. Timestamps and the
// id are left for the caller to stamp.
func ToastFor(res cart.Result) Toast {
	t := Toast{Kind: KindSuccess, Outcome: res.Outcome}
	name := eventName(res)
	switch res.Outcome {
	case cart.OutcomeAdded:
		t.Message, t.Icon = fmt.Sprintf("%s added to cart", name), "🎟️"
	case cart.OutcomeRemoved:
		t.Message, t.Icon = fmt.Sprintf("%s removed from cart", name), "🗑️"
	case cart.OutcomeCleared:
		t.Message = "Cart cleared"
	case cart.OutcomeCheckoutStarted:
		t.Message, t.Icon = "Processing your registration...", "⏳"
	case cart.OutcomeCheckedOut:
		t.Message, t.Icon = fmt.Sprintf("Registered for %d %s. Total: ₹%d", res.Count, plural(res.Count, "event", "events"), res.Total), "🎉"
	case cart.OutcomeDuplicateItem:
		t.Kind, t.Message = KindError, fmt.Sprintf("%s is already in your cart", name)
	case cart.OutcomeFeaturedConflict:
		t.Kind, t.Message, t.Icon = KindError, "Only one featured event allowed per cart", "⭐"
	case cart.OutcomeCapacityExceeded:
		t.Kind, t.Message = KindError, fmt.Sprintf("Total limit reached: you can register for up to %d events", cart.MaxTotalEvents)
	case cart.OutcomeEmptyCart:
		t.Kind, t.Message = KindError, "Your cart is empty"
	case cart.OutcomeCheckoutInProgress:
		t.Kind, t.Message = KindError, "Checkout is already in progress"
	case cart.OutcomeCheckoutCanceled:
		t.Kind, t.Message = KindError, "Checkout was interrupted, your cart is unchanged"
	default:
		if !res.OK() {
			t.Kind = KindError
		}
		t.Message = string(res.Outcome)
	}
	return t
}

func eventName(res cart.Result) string {
	switch {
	case res.Title != "":
		return res.Title
	case res.EventID != "":
		return res.EventID
	}
	return "Event"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
