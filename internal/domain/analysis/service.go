package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"vet-notes-ai/internal/platform/logger"
	"vet-notes-ai/internal/platform/metrics"
	"vet-notes-ai/internal/ports/llm"
)

// TimestampLayout: ISO-8601 UTC con milisegundos (mismo formato que Date.toISOString).
const TimestampLayout = "2006-01-02T15:04:05.000Z"

type ServiceOptions struct {
	Generator llm.Generator
	Profile   Profile
	Logger    logger.Logger    // nil => Nop
	Metrics   *metrics.Metrics // opcional
}

type Service struct {
	gen     llm.Generator
	profile Profile
	log     logger.Logger
	metrics *metrics.Metrics

	now   func() time.Time
	newID func() string
}

func NewService(opts ServiceOptions) *Service {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		gen:     opts.Generator,
		profile: opts.Profile,
		log:     log.With(map[string]any{"profile": opts.Profile.Name}),
		metrics: opts.Metrics,
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (s *Service) Profile() Profile { return s.profile }

func (s *Service) Timestamp() string {
	return s.now().UTC().Format(TimestampLayout)
}

// Analyze valida, arma el prompt, hace UNA llamada al proveedor y devuelve el resultado.
// Sin reintentos: cualquier error del proveedor se devuelve tal cual para que el handler lo clasifique.
func (s *Service) Analyze(ctx context.Context, req AnalysisRequest) (Result, error) {
	if req.Notes == "" || req.PetInfo == nil {
		s.metrics.ObserveAnalysis(s.profile.Name, metrics.OutcomeValidation)
		return Result{}, ErrMissingFields
	}
	pet := *req.PetInfo

	id := s.newID()
	log := s.log.With(map[string]any{"analysis_id": id})

	action := req.Action
	if action == "" {
		action = s.profile.DefaultAction
	}

	start := time.Now()
	text, err := s.gen.Generate(ctx, llm.Request{
		Prompt: s.profile.Prompt(pet, req.Notes),
		Config: s.profile.Sampling,
		Safety: s.profile.Safety,
	})
	s.metrics.ObserveUpstream(s.gen.Provider(), time.Since(start))

	if err != nil {
		s.logFailure(log, err)
		return Result{}, err
	}

	if text == "" {
		text = fallbackAnalysis
	}

	log.Info("AI analysis completed", map[string]any{
		"pet":     pet.Name,
		"species": pet.Species,
		"action":  action,
	})
	s.metrics.ObserveAnalysis(s.profile.Name, metrics.OutcomeSuccess)

	return Result{
		Success:   true,
		Analysis:  text,
		Timestamp: s.Timestamp(),
		PetName:   pet.Name,
		Action:    action,
		ID:        id,
	}, nil
}

func (s *Service) logFailure(log logger.Logger, err error) {
	var (
		ue *llm.UpstreamError
		ie *llm.InvalidResponseError
	)
	switch {
	case errors.As(err, &ue):
		log.Error("upstream API error", map[string]any{
			"provider":      ue.Provider,
			"status":        ue.StatusCode,
			"upstream_body": ue.Body,
		})
		s.metrics.ObserveAnalysis(s.profile.Name, metrics.OutcomeUpstreamError)
	case errors.As(err, &ie):
		log.Error("unexpected upstream response", map[string]any{
			"provider":      ie.Provider,
			"upstream_body": ie.Body,
		})
		s.metrics.ObserveAnalysis(s.profile.Name, metrics.OutcomeInvalidResponse)
	default:
		log.Error("AI analysis error", map[string]any{
			"provider": s.gen.Provider(),
			"error":    err,
		})
		s.metrics.ObserveAnalysis(s.profile.Name, metrics.OutcomeTransportError)
	}
}
