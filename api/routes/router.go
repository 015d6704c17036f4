package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/fest-cart/api/controllers"
	cartcontrollers "github.com/angelmondragon/fest-cart/api/controllers/cart"
	"github.com/angelmondragon/fest-cart/api/middleware"
	"github.com/angelmondragon/fest-cart/pkg/config"
	"github.com/angelmondragon/fest-cart/pkg/logger"
	"github.com/angelmondragon/fest-cart/pkg/metrics"
)

type eventCatalog interface {
	controllers.EventCatalog
	cartcontrollers.Events
}

// NewRouter wires the HTTP surface. lifetime bounds background work started by
// requests, such as checkouts still processing after their response was sent.
func NewRouter(
	lifetime context.Context,
	cfg *config.Config,
	logg *logger.Logger,
	checks map[string]controllers.Pinger,
	events eventCatalog,
	carts cartcontrollers.Carts,
	toasts cartcontrollers.Toasts,
	httpMetrics *metrics.HTTPMetrics,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.CORSOrigins, cfg.Cart.SessionHeader),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, checks))
	})

	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Get("/", controllers.EventList(events, logg))
			r.Get("/{eventId}", controllers.EventDetail(events, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.CartSession(cfg.Cart.SessionHeader, logg))
			r.Get("/", cartcontrollers.CartFetch(carts, logg))
			r.Delete("/", cartcontrollers.CartClear(carts, logg))
			r.Post("/items", cartcontrollers.CartAddItem(carts, events, logg))
			r.Delete("/items/{eventId}", cartcontrollers.CartRemoveItem(carts, logg))
			r.Post("/toggle", cartcontrollers.CartToggle(carts, logg))
			r.Post("/checkout", cartcontrollers.CartCheckout(lifetime, carts, logg))
			r.Get("/notifications", cartcontrollers.CartNotifications(toasts, logg))
			r.Delete("/notifications/{toastId}", cartcontrollers.CartDismissNotification(toasts, logg))
		})
	})

	return r
}
