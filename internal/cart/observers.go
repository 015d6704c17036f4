package cart

import (
	"context"

	"github.com/angelmondragon/fest-cart/pkg/logger"
	"github.com/angelmondragon/fest-cart/pkg/metrics"
)

// MetricsObserver feeds every Result into the cart metrics.
func MetricsObserver(m *metrics.CartMetrics) Observer {
	return ObserverFunc(func(_ context.Context, _ string, res Result) {
		m.ObserveOperation(string(res.Outcome), res.OK(), res.Size)
		switch res.Outcome {
		case OutcomeCheckedOut, OutcomeCheckoutCanceled:
			m.ObserveCheckout(string(res.Outcome), res.Elapsed)
		}
	})
}

// LogObserver writes one structured line per Result: info for successes, warn for rejections.
func LogObserver(logg *logger.Logger) Observer {
	return ObserverFunc(func(ctx context.Context, key string, res Result) {
		if logg == nil {
			return
		}
		fields := map[string]any{
			"cart_key": key,
			"outcome":  string(res.Outcome),
			"size":     res.Size,
		}
		if res.EventID != "" {
			fields["event_id"] = res.EventID
		}
		if res.Outcome == OutcomeCheckedOut {
			fields["count"] = res.Count
			fields["total"] = res.Total
		}
		ctx = logg.WithFields(ctx, fields)
		if res.OK() {
			logg.Info(ctx, "cart.operation")
			return
		}
		logg.Warn(ctx, "cart.operation.rejected")
	})
}
