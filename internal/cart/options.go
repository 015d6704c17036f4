package cart

import (
	"context"
	"time"

	"github.com/angelmondragon/fest-cart/internal/clock"
	"github.com/angelmondragon/fest-cart/pkg/logger"
)

// DefaultCheckoutDelay is how long a simulated checkout stays in processing.
const DefaultCheckoutDelay = 2 * time.Second

// Observer receives exactly one Result per mutating call, rejections included.
type Observer interface {
	Observe(ctx context.Context, key string, res Result)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, key string, res Result)

func (f ObserverFunc) Observe(ctx context.Context, key string, res Result) { f(ctx, key, res) }

type options struct {
	logg          *logger.Logger
	clock         clock.Clock
	checkoutDelay time.Duration
	observers     []Observer
}

// Option configures an Engine or Registry.
type Option func(*options)

func defaultOptions() options {
	return options{
		logg:          logger.Nop(),
		clock:         clock.NewSystem(),
		checkoutDelay: DefaultCheckoutDelay,
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(o *options) {
		if logg != nil {
			o.logg = logg
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithCheckoutDelay sets the processing delay; negative values are treated as zero.
func WithCheckoutDelay(d time.Duration) Option {
	return func(o *options) {
		if d < 0 {
			d = 0
		}
		o.checkoutDelay = d
	}
}

func WithObservers(observers ...Observer) Option {
	return func(o *options) {
		for _, obs := range observers {
			if obs != nil {
				o.observers = append(o.observers, obs)
			}
		}
	}
}
