package cartdto

import (
	"time"

	"github.com/angelmondragon/fest-cart/internal/cart"
	"github.com/angelmondragon/fest-cart/internal/notifications"
)

// AddItemRequest names the catalog event to put in the cart.
type AddItemRequest struct {
	EventID string `json:"event_id" validate:"required,max=128,printascii"`
}

// CartView is everything the cart drawer renders.
type CartView struct {
	Items          []cart.Item `json:"items"`
	Count          int         `json:"count"`
	Total          int         `json:"total"`
	RemainingSlots int         `json:"remaining_slots"`
	MaxItems       int         `json:"max_items"`
	Visible        bool        `json:"visible"`
	Processing     bool        `json:"processing"`
}

// Toast is the notification produced by the call that returned it. A toast
// returned here is never repeated by the notifications feed.
type Toast struct {
	ID        string             `json:"id,omitempty"`
	Kind      notifications.Kind `json:"kind"`
	Message   string             `json:"message"`
	Icon      string             `json:"icon,omitempty"`
	Outcome   cart.Outcome       `json:"outcome"`
	ExpiresAt *time.Time         `json:"expires_at,omitempty"`
}

// OperationResponse wraps the result of a mutating cart call.
type OperationResponse struct {
	Result cart.Result `json:"result"`
	Toast  Toast       `json:"toast"`
	Cart   CartView    `json:"cart"`
}

type VisibilityResponse struct {
	Visible bool `json:"visible"`
}

type NotificationsResponse struct {
	Items []notifications.Toast `json:"items"`
}

func NewCartView(snap cart.Snapshot) CartView {
	items := snap.Items
	if items == nil {
		items = []cart.Item{}
	}
	return CartView{
		Items:          items,
		Count:          len(items),
		Total:          snap.Total,
		RemainingSlots: snap.RemainingSlots,
		MaxItems:       cart.MaxTotalEvents,
		Visible:        snap.Visible,
		Processing:     snap.Processing,
	}
}

// NewToast renders res without feed stamping, e.g. for checkout_started.
func NewToast(res cart.Result) Toast {
	t := notifications.ToastFor(res)
	return Toast{Kind: t.Kind, Message: t.Message, Icon: t.Icon, Outcome: t.Outcome}
}

// FromToast renders a toast stamped by the feed.
func FromToast(t notifications.Toast) Toast {
	expires := t.ExpiresAt
	return Toast{
		ID:        t.ID.String(),
		Kind:      t.Kind,
		Message:   t.Message,
		Icon:      t.Icon,
		Outcome:   t.Outcome,
		ExpiresAt: &expires,
	}
}
