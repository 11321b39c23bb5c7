package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vet-notes-ai/internal/adapters/llm/gemini"
	"vet-notes-ai/internal/adapters/llm/openai"
	"vet-notes-ai/internal/config"
	"vet-notes-ai/internal/domain/analysis"
	"vet-notes-ai/internal/platform/logger"
	"vet-notes-ai/internal/platform/metrics"
	"vet-notes-ai/internal/ports/llm"
	"vet-notes-ai/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	level := logger.ParseLevel(cfg.Log.Level)
	log := logger.New(logger.Options{
		Level:  level,
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    cfg.Log.App,
	})
	defer func() { _ = log.Sync() }()

	log.Debug("logger ready", map[string]any{"level": level.String(), "format": cfg.Log.Format})

	if err := run(cfg, log); err != nil {
		log.Error("server error", map[string]any{"error": err})
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, log logger.Logger) error {
	profile, err := analysis.ProfileByName(cfg.Profile)
	if err != nil {
		return err
	}

	gen, err := newGenerator(cfg)
	if err != nil {
		return err
	}

	m := metrics.New()

	svc := analysis.NewService(analysis.ServiceOptions{
		Generator: gen,
		Profile:   profile,
		Logger:    log,
		Metrics:   m,
	})

	handler := router.NewRouter(router.Options{
		Service: svc,
		Version: cfg.APIVersion,
		Logger:  log,
		Metrics: m,
	})

	// WriteTimeout tiene que cubrir la llamada al modelo.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.UpstreamTimeout + 10*time.Second,
	}

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadTimeout: 5 * time.Second}

		go func() {
			log.Info("starting metrics server", map[string]any{"addr": cfg.MetricsAddr})
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server error", map[string]any{"error": err})
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{
			"addr":     srv.Addr,
			"provider": gen.Provider(),
			"profile":  profile.Name,
			"version":  cfg.APIVersion,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Info("shutting down", map[string]any{"signal": sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.UpstreamTimeout+5*time.Second)
	defer cancel()

	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(ctx)
	}
	return srv.Shutdown(ctx)
}

func newGenerator(cfg config.Config) (llm.Generator, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openai.NewClient(openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
			Timeout: cfg.UpstreamTimeout,
		}), nil
	case config.ProviderGemini:
		return gemini.NewClient(gemini.Config{
			BaseURL: cfg.Gemini.BaseURL,
			APIKey:  cfg.Gemini.APIKey,
			Model:   cfg.Gemini.Model,
			Timeout: cfg.UpstreamTimeout,
		})
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownProvider, cfg.Provider)
	}
}
