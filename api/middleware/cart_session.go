package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jtrevino/storefront-backend/pkg/logger"
)

const guestSessionHeader = "X-Session-Id"

// CartSession resolves the cart session for anonymous visitors. Authenticated
// requests already carry a session id from Auth (the JWT jti); for guests the
// X-Session-Id header is used, minted on first contact and echoed back so the
// client can persist it.
func CartSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if SessionIDFromContext(ctx) != "" {
				next.ServeHTTP(w, r)
				return
			}

			sessionID := strings.TrimSpace(r.Header.Get(guestSessionHeader))
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			w.Header().Set(guestSessionHeader, sessionID)

			ctx = WithSessionID(ctx, sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
