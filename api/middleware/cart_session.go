package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/xfinds/xfinds-backend/pkg/logger"
)

// CartSessionHeader carries the anonymous cart id between the storefront and the API.
const CartSessionHeader = "X-Cart-Session"

const maxOpaqueIDLength = 64

// CartSession binds the caller's cart session to the request, minting a new one when the
// header is missing or unusable. The effective id is echoed back in the response header.
func CartSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := strings.TrimSpace(r.Header.Get(CartSessionHeader))
			if !opaqueID(sessionID) {
				sessionID = uuid.NewString()
			}
			w.Header().Set(CartSessionHeader, sessionID)

			ctx := WithCartSession(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithCartSession(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// opaqueID accepts client supplied ids made of letters, digits, '-' and '_'.
func opaqueID(id string) bool {
	if id == "" || len(id) > maxOpaqueIDLength {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
