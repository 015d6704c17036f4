package cart

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	cartdto "github.com/angelmondragon/fest-cart/api/controllers/cart/dto"
	"github.com/angelmondragon/fest-cart/api/middleware"
	"github.com/angelmondragon/fest-cart/api/responses"
	"github.com/angelmondragon/fest-cart/api/validators"
	cartsvc "github.com/angelmondragon/fest-cart/internal/cart"
	"github.com/angelmondragon/fest-cart/internal/notifications"
	pkgerrors "github.com/angelmondragon/fest-cart/pkg/errors"
	"github.com/angelmondragon/fest-cart/pkg/logger"
)

// Carts resolves the engine owning a session's cart.
type Carts interface {
	Get(ctx context.Context, session string) *cartsvc.Engine
}

// Events looks up catalog records by id.
type Events interface {
	Lookup(id string) (cartsvc.Event, bool)
}

// Toasts is the per-session notification feed.
type Toasts interface {
	Drain(session string) []notifications.Toast
	Dismiss(session string, id uuid.UUID) bool
}

// CartFetch returns the session's cart.
func CartFetch(carts Carts, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine, err := engineFor(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartdto.NewCartView(engine.Snapshot()))
	}
}

// CartAddItem adds a catalog event to the cart.
func CartAddItem(carts Carts, events Events, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if events == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "event catalog unavailable"))
			return
		}
		engine, err := engineFor(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload cartdto.AddItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, ok := events.Lookup(payload.EventID)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "event not found").
				WithDetails(map[string]any{"event_id": payload.EventID}))
			return
		}

		ctx, delivery := notifications.WithDelivery(r.Context())
		if logg != nil {
			ctx = logg.WithEventID(ctx, event.ID)
		}
		writeResult(ctx, logg, w, http.StatusCreated, engine, engine.Add(ctx, event), delivery)
	}
}

// CartRemoveItem removes an event; removing an absent event still succeeds.
func CartRemoveItem(carts Carts, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine, err := engineFor(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		id := chi.URLParam(r, "eventId")
		if id == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "event id required"))
			return
		}
		ctx, delivery := notifications.WithDelivery(r.Context())
		writeResult(ctx, logg, w, http.StatusOK, engine, engine.Remove(ctx, id), delivery)
	}
}

func CartClear(carts Carts, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine, err := engineFor(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ctx, delivery := notifications.WithDelivery(r.Context())
		writeResult(ctx, logg, w, http.StatusOK, engine, engine.Clear(ctx), delivery)
	}
}

// CartToggle flips drawer visibility.
func CartToggle(carts Carts, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		engine, err := engineFor(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartdto.VisibilityResponse{Visible: engine.Toggle()})
	}
}

// CartCheckout starts the simulated checkout and answers 202 while it processes.
// Completion is bound to lifetime rather than the request, so the checkout
// settles after the response is sent and aborts only when the server stops.
func CartCheckout(lifetime context.Context, carts Carts, logg *logger.Logger) http.HandlerFunc {
	if lifetime == nil {
		lifetime = context.Background()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		engine, err := engineFor(r, carts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		reqCtx, delivery := notifications.WithDelivery(r.Context())
		ctx, cancel := context.WithCancel(context.WithoutCancel(reqCtx))
		stop := context.AfterFunc(lifetime, cancel)

		started, done := engine.StartCheckout(ctx)
		if !started.OK() {
			stop()
			cancel()
			writeResult(reqCtx, logg, w, http.StatusAccepted, engine, started, delivery)
			return
		}

		go func() {
			defer cancel()
			defer stop()
			res := <-done
			if logg != nil && res.Outcome == cartsvc.OutcomeCheckoutCanceled {
				logg.Warn(ctx, "cart.checkout.canceled")
			}
		}()

		writeResult(reqCtx, logg, w, http.StatusAccepted, engine, started, delivery)
	}
}

// CartNotifications drains the session's live toasts.
func CartNotifications(toasts Toasts, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if toasts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification feed unavailable"))
			return
		}
		session := middleware.CartSessionFromContext(r.Context())
		if session == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart session missing"))
			return
		}
		responses.WriteSuccess(w, cartdto.NotificationsResponse{Items: toasts.Drain(session)})
	}
}

// CartDismissNotification drops a single toast before it expires.
func CartDismissNotification(toasts Toasts, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if toasts == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notification feed unavailable"))
			return
		}
		session := middleware.CartSessionFromContext(r.Context())
		if session == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart session missing"))
			return
		}
		id, err := uuid.Parse(chi.URLParam(r, "toastId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid toast id"))
			return
		}
		if !toasts.Dismiss(session, id) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "toast not found"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func engineFor(r *http.Request, carts Carts) (*cartsvc.Engine, error) {
	if carts == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart registry unavailable")
	}
	session := middleware.CartSessionFromContext(r.Context())
	if session == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart session missing")
	}
	return carts.Get(r.Context(), session), nil
}

// writeResult renders a successful Result with status, or a rejection as 422
// carrying the outcome and its toast. Closing delivery claims the toast for this
// response, so the notification feed does not repeat it.
func writeResult(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, status int, engine *cartsvc.Engine, res cartsvc.Result, delivery *notifications.Delivery) {
	toast := cartdto.NewToast(res)
	if delivery != nil {
		if stamped, ok := delivery.Close(res.Outcome); ok {
			toast = cartdto.FromToast(stamped)
		}
	}
	if err := res.Err(); err != nil {
		typed := pkgerrors.As(err)
		details, _ := typed.Details().(map[string]any)
		if details == nil {
			details = map[string]any{}
		}
		details["toast"] = toast
		responses.WriteError(ctx, logg, w, typed.WithDetails(details))
		return
	}
	responses.WriteSuccessStatus(w, status, cartdto.OperationResponse{
		Result: res,
		Toast:  toast,
		Cart:   cartdto.NewCartView(engine.Snapshot()),
	})
}
