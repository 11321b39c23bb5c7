package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"vet-notes-ai/internal/ports/llm"
)

const (
	ProviderName = "OpenAI"
	DefaultModel = "gpt-4o-mini"

	defaultTimeout = 30 * time.Second
)

var (
	ErrOpenAINotConfigured = errors.New("openai client not configured")
)

type Config struct {
	APIKey string
	Model  string

	// BaseURL opcional para endpoints compatibles (on-prem, proxies). Debe incluir /v1.
	BaseURL string

	Timeout time.Duration
}

// Client implementa llm.Generator sobre chat completions.
// Los safety settings no tienen equivalente y se ignoran; TopK tampoco.
type Client struct {
	client *goopenai.Client
	model  string
	ok     bool
}

var _ llm.Generator = (*Client)(nil)

func NewClient(cfg Config) *Client {
	key := strings.TrimSpace(cfg.APIKey)

	oc := goopenai.DefaultConfig(key)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		oc.BaseURL = strings.TrimRight(base, "/")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	oc.HTTPClient = &http.Client{Timeout: timeout}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		client: goopenai.NewClientWithConfig(oc),
		model:  model,
		ok:     key != "",
	}
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.ok
}

func (c *Client) Provider() string { return ProviderName }

func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	if !c.IsConfigured() {
		return "", ErrOpenAINotConfigured
	}

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: float32(req.Config.Temperature),
		TopP:        float32(req.Config.TopP),
		MaxTokens:   req.Config.MaxOutputTokens,
	})
	if err != nil {
		return "", mapError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &llm.InvalidResponseError{
			Provider: ProviderName,
			Body:     fmt.Sprintf("id=%s model=%s object=%s choices=0", resp.ID, resp.Model, resp.Object),
		}
	}
	return resp.Choices[0].Message.Content, nil
}

// mapError traduce errores de go-openai a los tipos del port.
func mapError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &llm.UpstreamError{Provider: ProviderName, StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		body := ""
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		if reqErr.HTTPStatusCode >= 200 && reqErr.HTTPStatusCode < 300 {
			return &llm.InvalidResponseError{Provider: ProviderName, Body: body}
		}
		return &llm.UpstreamError{Provider: ProviderName, StatusCode: reqErr.HTTPStatusCode, Body: body}
	}

	return fmt.Errorf("%s request failed: %w", ProviderName, err)
}
