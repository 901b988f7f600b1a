package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/tjfontaine/story-gateway/internal/domain"
	"github.com/tjfontaine/story-gateway/internal/telemetry"
)

// RecoverMiddleware turns a handler panic into a logged 500 carrying the
// JSON error body. http.ErrAbortHandler is re-raised so net/http can abort
// the connection.
func RecoverMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}

				telemetry.AddError(r.Context(), fmt.Errorf("panic: %v", rvr))
				logger.ErrorContext(r.Context(), "handler panic",
					slog.String("request_id", GetRequestID(r.Context())),
					slog.Any("panic", rvr),
					slog.String("stack", string(debug.Stack())))

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(domain.ErrorBody{
					Error:          "Internal server error",
					Classification: domain.ErrorTypeUpstreamFailure,
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
