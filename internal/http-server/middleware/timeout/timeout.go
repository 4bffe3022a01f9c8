package timeout

import (
	"context"
	"net/http"
	"time"
)

// Timeout bounds every request with a context deadline of the given
// number of seconds. Handlers pass the request context down to the
// store, so a slow backend cancels instead of holding the connection.
func Timeout(seconds time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), seconds*time.Second)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}
