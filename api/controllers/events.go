package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/fest-cart/api/responses"
	"github.com/angelmondragon/fest-cart/internal/cart"
	pkgerrors "github.com/angelmondragon/fest-cart/pkg/errors"
	"github.com/angelmondragon/fest-cart/pkg/logger"
)

// EventCatalog is the read side of the festival feed.
type EventCatalog interface {
	List() []cart.Event
	Lookup(id string) (cart.Event, bool)
}

// EventList returns the catalog, optionally filtered by ?category= and ?featured=true.
func EventList(events EventCatalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if events == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "event catalog unavailable"))
			return
		}

		category := strings.TrimSpace(r.URL.Query().Get("category"))
		featuredOnly := strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("featured")), "true")

		items := make([]cart.Event, 0)
		for _, event := range events.List() {
			if category != "" && !strings.EqualFold(event.Category, category) {
				continue
			}
			if featuredOnly && !event.Featured {
				continue
			}
			items = append(items, event)
		}
		responses.WriteSuccess(w, map[string]any{"items": items, "count": len(items)})
	}
}

func EventDetail(events EventCatalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if events == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "event catalog unavailable"))
			return
		}

		id := chi.URLParam(r, "eventId")
		event, ok := events.Lookup(id)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "event not found"))
			return
		}
		responses.WriteSuccess(w, event)
	}
}
