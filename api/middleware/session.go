package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/fest-cart/api/validators"
	"github.com/angelmondragon/fest-cart/pkg/logger"
)

const DefaultSessionHeader = "X-Cart-Session"

// CartSession resolves the visitor's cart session from header. Missing or
// malformed values are replaced with a fresh uuid, echoed back on the response.
func CartSession(header string, logg *logger.Logger) func(http.Handler) http.Handler {
	if header == "" {
		header = DefaultSessionHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session := strings.ToLower(strings.TrimSpace(r.Header.Get(header)))
			if !validators.ValidSessionID(session) {
				session = uuid.NewString()
			}
			w.Header().Set(header, session)

			ctx := WithCartSession(r.Context(), session)
			if logg != nil {
				ctx = logg.WithCartSession(ctx, session)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
