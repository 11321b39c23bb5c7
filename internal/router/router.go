package router

import (
	"net/http"

	"vet-notes-ai/internal/domain/analysis"
	"vet-notes-ai/internal/middleware"
	"vet-notes-ai/internal/platform/logger"
	"vet-notes-ai/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	Service *analysis.Service

	// Versión que reporta el GET de liveness.
	Version string

	Logger  logger.Logger    // puede ser nil
	Metrics *metrics.Metrics // puede ser nil
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.CORS)
	r.Use(middleware.RequestLogger(log, opts.Metrics))
	r.Use(middleware.Recover(log))

	analysis.RegisterRoutes(r, opts.Service, opts.Version)

	return r
}
