package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"realty-places/internal/api"

	"github.com/rs/zerolog/log"
)

// Recovery converts panics into the 500 JSON envelope. The panic value is
// only written to the client when development is true; it is always logged.
func Recovery(development bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error().
					Interface("panic", rec).
					Str("stack", string(debug.Stack())).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Str("remote_addr", r.RemoteAddr).
					Msg("Panic recovered")

				api.WriteInternalError(w, fmt.Sprint(rec), development)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
