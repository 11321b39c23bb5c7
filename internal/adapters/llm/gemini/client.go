package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"vet-notes-ai/internal/platform/httpclient"
	"vet-notes-ai/internal/ports/llm"
)

const (
	ProviderName = "Gemini"

	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-1.5-flash-latest"

	apiKeyHeader = "x-goog-api-key"
)

var (
	ErrGeminiNotConfigured = errors.New("gemini client not configured")
)

// Config del cliente Gemini (REST generateContent).
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client implementa llm.Generator contra la API REST de Gemini.
type Client struct {
	http  *httpclient.Client
	model string
	ok    bool
}

var _ llm.Generator = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	hc, err := httpclient.NewWithBaseURL(base, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}

	key := strings.TrimSpace(cfg.APIKey)
	// La key va en header y no en query para que no quede en URLs/logs.
	hc.DefaultHeaders[apiKeyHeader] = key

	return &Client{
		http:  hc,
		model: model,
		ok:    key != "",
	}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.ok
}

func (c *Client) Provider() string { return ProviderName }

// --- wire types ---

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
	SafetySettings   []safetySetting  `json:"safetySettings,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

// Punteros/slices para distinguir "ausente" de "vacío" en cada nivel.
type generateResponse struct {
	Candidates []struct {
		Content *struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate llama a models/{model}:generateContent y devuelve candidates[0].content.parts[0].text.
// Cualquier nivel ausente (incluido text) => InvalidResponseError; text "" es válido (el caller decide el fallback).
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	if !c.IsConfigured() {
		return "", ErrGeminiNotConfigured
	}

	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: req.Prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     req.Config.Temperature,
			MaxOutputTokens: req.Config.MaxOutputTokens,
			TopP:            req.Config.TopP,
			TopK:            req.Config.TopK,
		},
	}
	for _, s := range req.Safety {
		body.SafetySettings = append(body.SafetySettings, safetySetting{
			Category:  string(s.Category),
			Threshold: string(s.Threshold),
		})
	}

	path := "/v1beta/models/" + c.model + ":generateContent"

	var raw json.RawMessage
	err := c.http.DoJSON(ctx, "POST", path, nil, body, &raw)
	if err != nil {
		var he *httpclient.HTTPError
		switch {
		case errors.As(err, &he):
			return "", &llm.UpstreamError{Provider: ProviderName, StatusCode: he.StatusCode, Body: he.Body}
		case errors.Is(err, httpclient.ErrDecode):
			return "", &llm.InvalidResponseError{Provider: ProviderName, Body: err.Error()}
		default:
			return "", fmt.Errorf("%s request failed: %w", ProviderName, err)
		}
	}

	return extractText(raw)
}

func extractText(raw json.RawMessage) (string, error) {
	invalid := &llm.InvalidResponseError{Provider: ProviderName, Body: string(raw)}
	if len(raw) == 0 {
		return "", invalid
	}

	var resp generateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", invalid
	}
	if len(resp.Candidates) == 0 {
		return "", invalid
	}
	first := resp.Candidates[0]
	if first.Content == nil || len(first.Content.Parts) == 0 {
		return "", invalid
	}
	if first.Content.Parts[0].Text == nil {
		return "", invalid
	}
	return *first.Content.Parts[0].Text, nil
}
