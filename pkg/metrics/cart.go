package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart operation outcomes and checkout latency.
type CartMetrics struct {
	operations *prometheus.CounterVec
	checkout   *prometheus.HistogramVec
	items      prometheus.Histogram
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart operations by outcome, rejections included.",
	}, []string{"outcome"})
	checkout := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_checkout_duration_seconds",
		Help:    "Time a checkout spent processing before it settled.",
		Buckets: []float64{0.1, 0.5, 1, 2, 2.5, 3, 5, 10},
	}, []string{"outcome"})
	items := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cart_items",
		Help:    "Cart size after each successful mutation.",
		Buckets: []float64{0, 1, 2, 3},
	})
	reg.MustRegister(operations, checkout, items)
	return &CartMetrics{
		operations: operations,
		checkout:   checkout,
		items:      items,
	}
}

// ObserveOperation counts one cart call. Cart size is only sampled for successes.
func (c *CartMetrics) ObserveOperation(outcome string, ok bool, size int) {
	if c == nil || c.operations == nil {
		return
	}
	c.operations.WithLabelValues(normalizeLabel(outcome)).Inc()
	if ok {
		c.items.Observe(float64(size))
	}
}

// ObserveCheckout records how long a settled checkout spent processing.
func (c *CartMetrics) ObserveCheckout(outcome string, duration time.Duration) {
	if c == nil || c.checkout == nil {
		return
	}
	c.checkout.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
