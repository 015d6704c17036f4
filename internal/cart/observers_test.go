package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/fest-cart/pkg/logger"
	"github.com/angelmondragon/fest-cart/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsObserverCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	engine := NewEngine(context.Background(), "m", NewMemoryStorage(),
		WithObservers(MetricsObserver(metrics.NewCartMetrics(reg))),
		WithCheckoutDelay(time.Millisecond))
	ctx := context.Background()

	engine.Add(ctx, event("a", true, noPrice()))
	engine.Add(ctx, event("b", true, noPrice()))
	engine.Checkout(ctx)

	expected := `
# HELP cart_operations_total Cart operations by outcome, rejections included.
# TYPE cart_operations_total counter
cart_operations_total{outcome="added"} 1
cart_operations_total{outcome="checked_out"} 1
cart_operations_total{outcome="featured_conflict"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "cart_operations_total"); err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}
}

func TestLogObserverLevels(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Output: buf, Format: "json"})
	obs := LogObserver(logg)

	obs.Observe(context.Background(), "sess", Result{Outcome: OutcomeAdded, EventID: "a", Size: 1})
	obs.Observe(context.Background(), "sess", Result{Outcome: OutcomeEmptyCart})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}
	var first, second map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first["level"] != "info" || first["event_id"] != "a" || first["cart_key"] != "sess" {
		t.Fatalf("unexpected success line %v", first)
	}
	if second["level"] != "warn" || second["outcome"] != "empty_cart" {
		t.Fatalf("unexpected rejection line %v", second)
	}
}
