package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/xfinds/xfinds-backend/api/responses"
	"github.com/xfinds/xfinds-backend/pkg/logger"
)

const requestIDHeader = responses.RequestIDHeader

// RequestID tags the request with the caller's id when it is a safe opaque token, or a
// fresh uuid otherwise, so storefront and API logs can be joined.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if !opaqueID(reqID) {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
