package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"vet-notes-ai/internal/platform/logger"
	"vet-notes-ai/internal/platform/metrics"
)

// RequestLogger loguea cada request (método, path, status, duración) y cuenta en métricas.
// m puede ser nil.
func RequestLogger(log logger.Logger, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			log.Info("http request", map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"remote":      r.RemoteAddr,
				"request_id":  chimw.GetReqID(r.Context()),
			})
			m.ObserveHTTP(r.Method, status)
		})
	}
}
