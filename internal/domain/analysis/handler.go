package analysis

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vet-notes-ai/internal/platform/metrics"
)

const (
	healthMessage = "VetKlinik AI API çalışıyor! 🐾"
	statusOK      = "OK"

	AnalysisIDHeader = "X-Analysis-ID"

	maxBodyBytes = 1 << 20 // 1MB
)

var errTrailingData = errors.New("unexpected data after JSON body")

// RegisterRoutes monta el handler en cualquier path; el método decide la operación.
// Los headers CORS los pone el middleware del router.
func RegisterRoutes(r chi.Router, svc *Service, version string) {
	for _, pattern := range []string{"/", "/*"} {
		r.Options(pattern, preflightHandler())
		r.Get(pattern, healthHandler(svc, version))
		r.Post(pattern, analyzeHandler(svc))
	}
	r.MethodNotAllowed(methodNotAllowedHandler())
}

type healthResponse struct {
	Message   string `json:"message"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

type missingFieldsResponse struct {
	Error string `json:"error"`
}

type failureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details"`
}

func preflightHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}

func healthHandler(svc *Service, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{
			Message:   healthMessage,
			Status:    statusOK,
			Timestamp: svc.Timestamp(),
			Version:   version,
		})
	}
}

func analyzeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := decodeRequest(w, r)
		if err != nil {
			merr := &MalformedRequestError{Err: err}
			svc.log.Warn("malformed request body", map[string]any{"error": err})
			svc.metrics.ObserveAnalysis(svc.profile.Name, metrics.OutcomeMalformed)
			writeJSON(w, http.StatusBadRequest, failureResponse{
				Success: false,
				Error:   UserMessage(merr),
				Details: merr.Error(),
			})
			return
		}

		res, err := svc.Analyze(r.Context(), req)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				writeJSON(w, http.StatusBadRequest, missingFieldsResponse{Error: verr.Message})
				return
			}

			writeJSON(w, http.StatusInternalServerError, failureResponse{
				Success: false,
				Error:   UserMessage(err),
				Details: err.Error(),
			})
			return
		}

		w.Header().Set(AnalysisIDHeader, res.ID)
		writeJSON(w, http.StatusOK, res)
	}
}

// decodeRequest lee un único objeto JSON de hasta maxBodyBytes.
func decodeRequest(w http.ResponseWriter, r *http.Request) (AnalysisRequest, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	var req AnalysisRequest
	if err := dec.Decode(&req); err != nil {
		return AnalysisRequest{}, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return AnalysisRequest{}, errTrailingData
	}
	return req, nil
}

func methodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte("Method not allowed"))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
