package cart

import (
	"time"

	pkgerrors "github.com/angelmondragon/fest-cart/pkg/errors"
)

// Outcome names what a cart operation did.
type Outcome string

const (
	OutcomeAdded           Outcome = "added"
	OutcomeRemoved         Outcome = "removed"
	OutcomeCleared         Outcome = "cleared"
	OutcomeCheckoutStarted Outcome = "checkout_started"
	OutcomeCheckedOut      Outcome = "checked_out"

	OutcomeDuplicateItem      Outcome = "duplicate_item"
	OutcomeFeaturedConflict   Outcome = "featured_conflict"
	OutcomeCapacityExceeded   Outcome = "capacity_exceeded"
	OutcomeEmptyCart          Outcome = "empty_cart"
	OutcomeCheckoutInProgress Outcome = "checkout_in_progress"
	OutcomeCheckoutCanceled   Outcome = "checkout_canceled"
)

var rejectionMessages = map[Outcome]string{
	OutcomeDuplicateItem:      "event is already in the cart",
	OutcomeFeaturedConflict:   "only one featured event is allowed per cart",
	OutcomeCapacityExceeded:   "cart already holds the maximum number of events",
	OutcomeEmptyCart:          "cart is empty",
	OutcomeCheckoutInProgress: "checkout is already in progress",
	OutcomeCheckoutCanceled:   "checkout was canceled",
}

// OK reports whether the outcome is a success (including no-op successes).
func (o Outcome) OK() bool {
	_, rejected := rejectionMessages[o]
	return !rejected
}

// Result is the structured outcome of a cart operation. Presentation layers turn
// it into notifications; the engine never formats user-facing text.
type Result struct {
	Outcome Outcome `json:"outcome"`
	EventID string  `json:"event_id,omitempty"`
	Title   string  `json:"title,omitempty"`
	// Count and Total describe the cart a checkout settled.
	Count int `json:"count,omitempty"`
	Total int `json:"total,omitempty"`
	// Size is the number of items in the cart once the call returned.
	Size int `json:"size"`
	// Elapsed is set on the final checkout Result: time spent in processing.
	Elapsed time.Duration `json:"-"`
}

func (r Result) OK() bool { return r.Outcome.OK() }

// Err returns nil on success, otherwise a STATE_CONFLICT error describing the rejection.
func (r Result) Err() error {
	msg, rejected := rejectionMessages[r.Outcome]
	if !rejected {
		return nil
	}
	details := map[string]any{"outcome": string(r.Outcome)}
	if r.EventID != "" {
		details["event_id"] = r.EventID
	}
	return pkgerrors.New(pkgerrors.CodeStateConflict, msg).WithDetails(details)
}
