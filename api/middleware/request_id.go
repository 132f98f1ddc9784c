package middleware

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/angelmondragon/discountsync/pkg/logger"
)

const (
	requestIDHeader = "X-Request-Id"
	scopeQueryParam = "scope"
)

// RequestID tags the request context with a correlation id and, when the
// query names one, the restaurant scope. Incoming ids that are not UUIDs are
// replaced so they cannot smuggle text into log lines.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := uuid.NewString()
			if parsed, err := uuid.Parse(r.Header.Get(requestIDHeader)); err == nil {
				reqID = parsed.String()
			}
			w.Header().Set(requestIDHeader, reqID)

			ctx := logg.WithRequestID(r.Context(), reqID)
			if scope, err := strconv.ParseInt(r.URL.Query().Get(scopeQueryParam), 10, 64); err == nil && scope > 0 {
				ctx = logg.WithScopeID(ctx, scope)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
