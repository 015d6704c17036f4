package controllers

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/angelmondragon/fest-cart/api/responses"
	"github.com/angelmondragon/fest-cart/pkg/config"
	pkgerrors "github.com/angelmondragon/fest-cart/pkg/errors"
	"github.com/angelmondragon/fest-cart/pkg/logger"
)

const envHeader = "X-FestCart-Env"

// Pinger is anything readiness can check.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every dependency; any failure answers 503 with per-check results.
func HealthReady(cfg *config.Config, logg *logger.Logger, checks map[string]Pinger) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		results := make(map[string]string, len(names))
		var failed error
		for _, name := range names {
			if err := checks[name].Ping(ctx); err != nil {
				results[name] = err.Error()
				if failed == nil {
					failed = err
				}
				continue
			}
			results[name] = "ok"
		}

		if failed != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeDependency, failed, "dependency check failed").
					WithDetails(map[string]any{"checks": results}))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": results})
	}
}
