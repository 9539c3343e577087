package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const systemPrompt = "You are a helpful assistant that translates natural language questions into SQL queries for a PostgreSQL database."

// ProviderError reports a failed model-API call. It has no safe fallback and
// propagates to the HTTP boundary as a translation failure.
type ProviderError struct {
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("model provider failed (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("model provider failed: %v", e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

type ClientConfig struct {
	BaseURL      string
	APIKey       string
	DefaultModel string
	Temperature  float64
	MaxTokens    int
	Timeout      time.Duration
}

// Client calls an OpenAI-compatible chat completions endpoint. It does not
// retry and hands truncated responses to the parser as-is.
type Client struct {
	baseURL      string
	apiKey       string
	defaultModel string
	temperature  float64
	maxTokens    int
	client       *http.Client
}

func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	model := strings.TrimSpace(cfg.DefaultModel)
	if model == "" {
		model = "gpt-4"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 500
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:       strings.TrimSpace(cfg.APIKey),
		defaultModel: model,
		temperature:  cfg.Temperature,
		maxTokens:    maxTokens,
		client:       &http.Client{Timeout: timeout},
	}, nil
}

// Complete sends the prompt as the sole user message and returns the raw
// assistant content. An empty model falls back to the configured default.
func (c *Client) Complete(ctx context.Context, prompt, model string) (string, error) {
	if strings.TrimSpace(model) == "" {
		model = c.defaultModel
	}

	payload := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", &ProviderError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	rawRespBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &ProviderError{Err: fmt.Errorf("read chat response body: %w", err)}
	}
	if resp.StatusCode >= 400 {
		return "", &ProviderError{StatusCode: resp.StatusCode, Err: fmt.Errorf("chat completion rejected: %s", strings.TrimSpace(string(rawRespBody)))}
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(rawRespBody, &parsed); err != nil {
		return "", &ProviderError{Err: fmt.Errorf("decode chat completion response: %w", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", &ProviderError{Err: fmt.Errorf("empty chat completion choices")}
	}
	return parsed.Choices[0].Message.Content, nil
}
