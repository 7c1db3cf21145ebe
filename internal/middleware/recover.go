package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	"cic-consultas/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// Recover captura panics, los loguea con stack y responde 500.
func Recover(log logger.Logger) func(http.Handler) http.Handler {
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

				var stack [4096]byte
				n := runtime.Stack(stack[:], false)

				log.Error("panic recovered", map[string]any{
					"request_id": chimw.GetReqID(r.Context()),
					"panic":      fmt.Sprintf("%v", rec),
					"stack":      string(stack[:n]),
				})

				http.Error(w, "internal error", http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
