package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/breatheroute/roadtrip/internal/api/models"
)

// PanicRecorder counts recovered panics per route pattern.
type PanicRecorder interface {
	ObservePanic(route string)
}

// Recovery turns a handler panic into a 500 problem, logs the stack and
// counts it on recorder (which may be nil). http.ErrAbortHandler is
// re-raised so the server aborts the response as intended.
func Recovery(log zerolog.Logger, recorder PanicRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				route := routePattern(r, "unmatched")
				requestID := GetRequestID(r.Context())

				log.Error().
					Str("request_id", requestID).
					Str("route", route).
					Interface("error", rec).
					Str("stack", string(debug.Stack())).
					Msg("panic recovered")

				if recorder != nil {
					recorder.ObservePanic(route)
				}

				problem := models.NewInternalError(requestID, "an unexpected error occurred")
				problem.Instance = r.URL.Path
				problem.Write(w)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
