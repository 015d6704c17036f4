package notifications

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/fest-cart/internal/cart"
	"github.com/angelmondragon/fest-cart/internal/clock"
	"github.com/google/uuid"
)

var start = time.Date(2025, 3, 7, 9, 0, 0, 0, time.UTC)

func TestToastFor(t *testing.T) {
	cases := []struct {
		res     cart.Result
		kind    Kind
		contain string
	}{
		{cart.Result{Outcome: cart.OutcomeAdded, EventID: "robo", Title: "Robo Wars"}, KindSuccess, "Robo Wars added"},
		{cart.Result{Outcome: cart.OutcomeRemoved, EventID: "robo"}, KindSuccess, "robo removed"},
		{cart.Result{Outcome: cart.OutcomeCleared}, KindSuccess, "Cart cleared"},
		{cart.Result{Outcome: cart.OutcomeCheckedOut, Count: 2, Total: 800}, KindSuccess, "2 events. Total: ₹800"},
		{cart.Result{Outcome: cart.OutcomeCheckedOut, Count: 1, Total: 0}, KindSuccess, "1 event."},
		{cart.Result{Outcome: cart.OutcomeDuplicateItem, Title: "Robo Wars"}, KindError, "already in your cart"},
		{cart.Result{Outcome: cart.OutcomeFeaturedConflict}, KindError, "Only one featured event"},
		{cart.Result{Outcome: cart.OutcomeCapacityExceeded}, KindError, "up to 3 events"},
		{cart.Result{Outcome: cart.OutcomeEmptyCart}, KindError, "empty"},
		{cart.Result{Outcome: cart.OutcomeCheckoutInProgress}, KindError, "in progress"},
		{cart.Result{Outcome: cart.OutcomeCheckoutCanceled}, KindError, "unchanged"},
	}
	for _, tc := range cases {
		toast := ToastFor(tc.res)
		if toast.Kind != tc.kind {
			t.Fatalf("%s: expected kind %s, got %s", tc.res.Outcome, tc.kind, toast.Kind)
		}
		if !strings.Contains(toast.Message, tc.contain) {
			t.Fatalf("%s: expected %q in %q", tc.res.Outcome, tc.contain, toast.Message)
		}
		if toast.Outcome != tc.res.Outcome {
			t.Fatalf("%s: outcome not carried", tc.res.Outcome)
		}
	}
}

func TestFeedOneToastPerResult(t *testing.T) {
	feed := NewFeed(FeedOptions{Clock: clock.NewManual(start)})
	ctx := context.Background()

	feed.Observe(ctx, "alice", cart.Result{Outcome: cart.OutcomeAdded, Title: "A"})
	feed.Observe(ctx, "alice", cart.Result{Outcome: cart.OutcomeAdded, Title: "A"})
	feed.Observe(ctx, "bob", cart.Result{Outcome: cart.OutcomeEmptyCart})

	toasts := feed.Drain("alice")
	if len(toasts) != 2 {
		t.Fatalf("identical results must not be batched, got %d toasts", len(toasts))
	}
	if toasts[0].ID == toasts[1].ID || toasts[0].ID == uuid.Nil {
		t.Fatalf("each toast needs its own id")
	}
	if !toasts[0].ExpiresAt.Equal(start.Add(DefaultTTL)) {
		t.Fatalf("unexpected expiry %v", toasts[0].ExpiresAt)
	}
	if again := feed.Drain("alice"); len(again) != 0 {
		t.Fatalf("drain should forget toasts, got %d", len(again))
	}
	if feed.Pending("bob") != 1 {
		t.Fatalf("bob's toast must survive alice's drain")
	}
}

func TestFeedExpiresToasts(t *testing.T) {
	manual := clock.NewManual(start)
	feed := NewFeed(FeedOptions{TTL: time.Second, Clock: manual})

	feed.Observe(context.Background(), "alice", cart.Result{Outcome: cart.OutcomeCleared})
	manual.Advance(500 * time.Millisecond)
	feed.Observe(context.Background(), "alice", cart.Result{Outcome: cart.OutcomeEmptyCart})
	manual.Advance(600 * time.Millisecond)

	toasts := feed.Drain("alice")
	if len(toasts) != 1 || toasts[0].Outcome != cart.OutcomeEmptyCart {
		t.Fatalf("expected only the newer toast to be live, got %+v", toasts)
	}
}

func TestFeedLimitDropsOldest(t *testing.T) {
	feed := NewFeed(FeedOptions{Limit: 2, Clock: clock.NewManual(start)})
	for _, title := range []string{"one", "two", "three"} {
		feed.Observe(context.Background(), "alice", cart.Result{Outcome: cart.OutcomeAdded, Title: title})
	}
	toasts := feed.Drain("alice")
	if len(toasts) != 2 || !strings.HasPrefix(toasts[0].Message, "two") {
		t.Fatalf("expected the two newest toasts, got %+v", toasts)
	}
}

func TestFeedDismiss(t *testing.T) {
	feed := NewFeed(FeedOptions{Clock: clock.NewManual(start)})
	toast := feed.Push("alice", ToastFor(cart.Result{Outcome: cart.OutcomeCleared}))

	if !feed.Dismiss("alice", toast.ID) {
		t.Fatalf("expected dismiss to find the toast")
	}
	if feed.Dismiss("alice", toast.ID) {
		t.Fatalf("second dismiss should report false")
	}
	if feed.Pending("alice") != 0 {
		t.Fatalf("expected no pending toasts")
	}
}

func TestFeedObservesEngine(t *testing.T) {
	feed := NewFeed(FeedOptions{Clock: clock.NewManual(start)})
	registry := cart.NewRegistry(cart.NewMemoryStorage(), cart.WithObservers(feed), cart.WithCheckoutDelay(time.Millisecond))
	ctx := context.Background()
	engine := registry.Get(ctx, "alice")

	engine.Add(ctx, cart.Event{ID: "a", Title: "Hackathon", Featured: true, Price: cart.TextPrice("₹500")})
	engine.Add(ctx, cart.Event{ID: "b", Title: "Band Night", Featured: true})
	engine.Checkout(ctx)

	toasts := feed.Drain("alice")
	if len(toasts) != 3 {
		t.Fatalf("expected a toast per call, got %d", len(toasts))
	}
	if toasts[1].Kind != KindError || toasts[2].Outcome != cart.OutcomeCheckedOut {
		t.Fatalf("unexpected toasts %+v", toasts)
	}
	if !strings.Contains(toasts[2].Message, "₹500") {
		t.Fatalf("checkout toast should carry the total, got %q", toasts[2].Message)
	}
}

func TestFeedSweepDropsExpiredSessions(t *testing.T) {
	manual := clock.NewManual(start)
	feed := NewFeed(FeedOptions{TTL: time.Second, Clock: manual})
	ctx := context.Background()

	feed.Observe(ctx, "alice", cart.Result{Outcome: cart.OutcomeCleared})
	feed.Observe(ctx, "bob", cart.Result{Outcome: cart.OutcomeCleared})
	manual.Advance(700 * time.Millisecond)
	feed.Observe(ctx, "bob", cart.Result{Outcome: cart.OutcomeEmptyCart})
	manual.Advance(500 * time.Millisecond)

	if dropped := feed.Sweep(); dropped != 2 {
		t.Fatalf("expected 2 expired toasts, got %d", dropped)
	}
	if feed.Sessions() != 1 || feed.Pending("bob") != 1 {
		t.Fatalf("expected only bob's newer toast to survive")
	}
}
