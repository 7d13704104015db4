package middleware

import (
	"context"
	"net/http"
	"time"
)

// timeoutBody mirrors the rest package's error envelope so timed-out
// clients parse the same shape as every other failure.
const timeoutBody = `{"success":false,"error":{"code":"TIMEOUT","message":"request timed out"}}`

func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		guarded := http.TimeoutHandler(next, timeout, timeoutBody)

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			guarded.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
