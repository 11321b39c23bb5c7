package middleware

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"vet-notes-ai/internal/platform/logger"
)

// Recover reemplaza a chi/middleware.Recoverer: loguea con nuestro logger
// y responde JSON (los headers CORS ya quedaron seteados por el middleware anterior).
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

				log.Error("panic recovered", map[string]any{
					"panic":      rec,
					"method":     r.Method,
					"path":       r.URL.Path,
					"request_id": chimw.GetReqID(r.Context()),
				})

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"error":   "internal error",
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
