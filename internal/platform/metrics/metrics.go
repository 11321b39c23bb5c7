// Package metrics agrupa los collectors Prometheus del servicio en un registry propio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vetai"

// Outcomes de un análisis.
const (
	OutcomeSuccess         = "success"
	OutcomeValidation      = "validation_error"
	OutcomeMalformed       = "malformed_request"
	OutcomeUpstreamError   = "upstream_error"
	OutcomeInvalidResponse = "invalid_response"
	OutcomeTransportError  = "transport_error"
)

type Metrics struct {
	Registry *prometheus.Registry

	AnalysisTotal    *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	HTTPRequests     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		AnalysisTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analysis_total",
				Help:      "Analysis requests by profile and outcome.",
			},
			[]string{"profile", "outcome"},
		),
		UpstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_duration_seconds",
				Help:      "Latency of the generative-language call.",
				Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
			},
			[]string{"provider"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by method and status.",
			},
			[]string{"method", "status"},
		),
	}

	m.Registry.MustRegister(
		m.AnalysisTotal,
		m.UpstreamDuration,
		m.HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Los métodos toleran receiver nil para que las métricas sean opcionales.

func (m *Metrics) ObserveAnalysis(profile, outcome string) {
	if m == nil {
		return
	}
	m.AnalysisTotal.WithLabelValues(profile, outcome).Inc()
}

func (m *Metrics) ObserveUpstream(provider string, d time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamDuration.WithLabelValues(provider).Observe(d.Seconds())
}

func (m *Metrics) ObserveHTTP(method string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// Handler expone el registry en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
