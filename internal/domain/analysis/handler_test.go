package analysis

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vet-notes-ai/internal/ports/llm"
)

func newTestMux(t *testing.T, gen *fakeGenerator) http.Handler {
	t.Helper()
	svc, _, _ := newTestService(t, gen, ProfileBrief)
	r := chi.NewRouter()
	RegisterRoutes(r, svc, "1.0.2")
	return r
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body=%s", rec.Body.String())
	return out
}

const validBody = `{"notes":"kusma","petInfo":{"name":"Milo","species":"köpek"}}`

func TestHandler_Preflight(t *testing.T) {
	h := newTestMux(t, &fakeGenerator{})

	for _, path := range []string{"/", "/api/analyze"} {
		rec := serve(h, http.MethodOptions, path, `{"ignored":true}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	}
}

func TestHandler_Health(t *testing.T) {
	h := newTestMux(t, &fakeGenerator{})

	rec := serve(h, http.MethodGet, "/anything", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	body := decode(t, rec)
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "1.0.2", body["version"])
	assert.Equal(t, "VetKlinik AI API çalışıyor! 🐾", body["message"])

	_, err := time.Parse(time.RFC3339Nano, body["timestamp"].(string))
	require.NoError(t, err)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := newTestMux(t, &fakeGenerator{})

	for _, m := range []string{http.MethodPut, http.MethodDelete, http.MethodPatch} {
		rec := serve(h, m, "/", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, m)
		assert.Equal(t, "Method not allowed", rec.Body.String())
	}
}

func TestHandler_MissingFields(t *testing.T) {
	bodies := []string{
		`{"petInfo":{"name":"Milo"}}`,
		`{"notes":"","petInfo":{"name":"Milo"}}`,
		`{"notes":"kusma"}`,
		`{"notes":"kusma","petInfo":null}`,
		`{}`,
		`{"notes":"kusma","petInfo":false}`,
		`{"notes":"kusma","petInfo":""}`,
		`{"notes":"kusma","petInfo":0}`,
		`{"notes":false,"petInfo":{"name":"Milo"}}`,
		`{"notes":0,"petInfo":{"name":"Milo"}}`,
		`{"notes":0.0,"petInfo":{"name":"Milo"}}`,
		`{"notes":null,"petInfo":{"name":"Milo"}}`,
	}

	for _, b := range bodies {
		gen := &fakeGenerator{text: "X"}
		h := newTestMux(t, gen)

		rec := serve(h, http.MethodPost, "/", b)
		assert.Equal(t, http.StatusBadRequest, rec.Code, b)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"error":"Missing required fields: notes, petInfo"}`, rec.Body.String())
		assert.Zero(t, gen.calls, b)
	}
}

func TestHandler_MalformedJSON(t *testing.T) {
	bodies := []string{
		``,
		`{"notes":`,
		`not json`,
		`{"notes":{"a":1},"petInfo":{}}`,
		`{"notes":"kusma","petInfo":{"name":"Milo"}} {"notes":"x"}`,
		`{"notes":"kusma","petInfo":{"name":"Milo"}}}`,
		`{"notes":"` + strings.Repeat("a", maxBodyBytes) + `","petInfo":{}}`,
	}
	for _, b := range bodies {
		gen := &fakeGenerator{text: "X"}
		h := newTestMux(t, gen)

		rec := serve(h, http.MethodPost, "/", b)
		require.Equal(t, http.StatusBadRequest, rec.Code, b)

		body := decode(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, MsgBadRequest, body["error"])
		assert.Contains(t, body["details"], "malformed request body")
		assert.Zero(t, gen.calls)
	}
}

func TestHandler_TruthyNonStringValuesArePresent(t *testing.T) {
	gen := &fakeGenerator{text: "X"}
	h := newTestMux(t, gen)

	rec := serve(h, http.MethodPost, "/", `{"notes":42,"petInfo":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, gen.calls)
	assert.Contains(t, gen.last.Prompt, "42")
}

func TestHandler_Success(t *testing.T) {
	h := newTestMux(t, &fakeGenerator{text: "X"})

	rec := serve(h, http.MethodPost, "/", validBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "analysis-1", rec.Header().Get(AnalysisIDHeader))

	assert.JSONEq(t, `{
		"success": true,
		"analysis": "X",
		"timestamp": "2025-12-22T10:00:00.123Z",
		"petName": "Milo",
		"action": "analyze"
	}`, rec.Body.String())
}

func TestHandler_Idempotent(t *testing.T) {
	h := newTestMux(t, &fakeGenerator{text: "X"})

	first := serve(h, http.MethodPost, "/", validBody)
	second := serve(h, http.MethodPost, "/", validBody)

	require.Equal(t, http.StatusOK, first.Code)
	assert.True(t, bytes.Equal(first.Body.Bytes(), second.Body.Bytes()))
}

func TestHandler_UpstreamFailures(t *testing.T) {
	cases := []struct {
		name        string
		err         error
		wantMessage string
		wantDetails string
	}{
		{"rate limited", &llm.UpstreamError{Provider: "Gemini", StatusCode: 429}, MsgRateLimited, "Gemini API error: 429"},
		{"forbidden", &llm.UpstreamError{Provider: "Gemini", StatusCode: 403}, MsgAccessDenied, "Gemini API error: 403"},
		{"bad request", &llm.UpstreamError{Provider: "Gemini", StatusCode: 400}, MsgBadRequest, "Gemini API error: 400"},
		{"server error", &llm.UpstreamError{Provider: "Gemini", StatusCode: 503}, MsgAnalysisFailed, "Gemini API error: 503"},
		{"invalid body", &llm.InvalidResponseError{Provider: "Gemini"}, MsgAnalysisFailed, "Invalid response from Gemini API"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestMux(t, &fakeGenerator{err: tc.err})

			rec := serve(h, http.MethodPost, "/", validBody)
			require.Equal(t, http.StatusInternalServerError, rec.Code)

			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tc.wantMessage, body["error"])
			assert.Equal(t, tc.wantDetails, body["details"])
		})
	}
}
