package notifications

import (
	"context"
	"testing"

	"github.com/angelmondragon/fest-cart/internal/cart"
	"github.com/angelmondragon/fest-cart/internal/clock"
	"github.com/google/uuid"
)

func TestDeliveryTakesInlineToastOnce(t *testing.T) {
	feed := NewFeed(FeedOptions{Clock: clock.NewManual(start)})
	ctx, delivery := WithDelivery(context.Background())

	feed.Observe(ctx, "alice", cart.Result{Outcome: cart.OutcomeAdded, Title: "Robo Wars"})
	if feed.Pending("alice") != 0 {
		t.Fatalf("toast returned inline must not also be queued")
	}

	toast, ok := delivery.Close(cart.OutcomeAdded)
	if !ok || toast.Message != "Robo Wars added to cart" || toast.ID == uuid.Nil || !toast.ExpiresAt.After(start) {
		t.Fatalf("expected the stamped added toast, got %+v (%v)", toast, ok)
	}
	if feed.Pending("alice") != 0 {
		t.Fatalf("taken toast must not be queued on close")
	}

	feed.Observe(ctx, "alice", cart.Result{Outcome: cart.OutcomeCheckedOut, Count: 1, Total: 300})
	if feed.Pending("alice") != 1 {
		t.Fatalf("results after close belong to the feed")
	}
}

func TestDeliveryFlushesUnclaimedToasts(t *testing.T) {
	feed := NewFeed(FeedOptions{Clock: clock.NewManual(start)})
	ctx, delivery := WithDelivery(context.Background())

	// A zero-delay checkout can settle before its 202 is written.
	feed.Observe(ctx, "alice", cart.Result{Outcome: cart.OutcomeCheckedOut, Count: 1, Total: 300})
	if _, ok := delivery.Close(cart.OutcomeCheckoutStarted); ok {
		t.Fatalf("checkout_started produces no toast")
	}
	toasts := feed.Drain("alice")
	if len(toasts) != 1 || toasts[0].Outcome != cart.OutcomeCheckedOut {
		t.Fatalf("expected the settled checkout toast in the feed, got %+v", toasts)
	}
}
