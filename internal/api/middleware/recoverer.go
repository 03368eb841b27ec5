package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/zatekoja/medibot/internal/domain/entities"
	"github.com/zatekoja/medibot/internal/infrastructure/observability"
)

// Recoverer turns a handler panic into a 500 error record.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			observability.LoggerFromContext(r.Context()).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("path", r.URL.Path).
				Msg("recovered from panic")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(entities.ErrorRecord{
				StatusCode: http.StatusInternalServerError,
				Error:      "internal server error",
			})
		}()

		next.ServeHTTP(w, r)
	})
}
