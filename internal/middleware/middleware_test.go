package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"vet-notes-ai/internal/platform/logger"
	"vet-notes-ai/internal/platform/metrics"
)

func assertCORS(t *testing.T, h http.Header) {
	t.Helper()
	assert.Equal(t, "*", h.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "GET, POST, OPTIONS", h.Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", h.Get("Access-Control-Allow-Headers"))
	assert.Equal(t, "86400", h.Get("Access-Control-Max-Age"))
}

func TestCORS_SetsHeadersWithoutOrigin(t *testing.T) {
	h := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assertCORS(t, rec.Header())
}

func TestRecover_WritesJSONAndKeepsCORS(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromZap(zap.New(core))

	h := CORS(Recover(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("kaboom")
	})))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"internal error"}`, rec.Body.String())
	assertCORS(t, rec.Header())
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestRecover_RepanicsOnAbort(t *testing.T) {
	h := Recover(logger.Nop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	assert.PanicsWithValue(t, http.ErrAbortHandler, func() {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	})
}

func TestRequestID_EchoesHeader(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = chimw.GetReqID(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(chimw.RequestIDHeader, "abc-123")
	h.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(chimw.RequestIDHeader))
}

func TestRequestLogger_LogsAndCounts(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	m := metrics.New()

	h := RequestLogger(logger.FromZap(zap.New(core)), m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
		_, _ = w.Write([]byte("Method not allowed"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/x", nil))

	entries := logs.FilterMessage("http request").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "DELETE", ctx["method"])
	assert.Equal(t, "/x", ctx["path"])
	assert.EqualValues(t, 405, ctx["status"])
	assert.EqualValues(t, len("Method not allowed"), ctx["bytes"])

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("DELETE", "405")))
}

func TestRequestLogger_DefaultsTo200(t *testing.T) {
	m := metrics.New()
	h := RequestLogger(logger.Nop(), m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodOptions, "/", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("OPTIONS", "200")))
}
