// Package pipeline chains the translation and execution services for the
// router's translate-and-execute operation.
package pipeline

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

type Stage string

const (
	StageTranslate Stage = "translate"
	StageExecute   Stage = "execute"
)

// UpstreamError reports a failed call to the engine or runner service.
type UpstreamError struct {
	Stage      Stage
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s stage failed (status %d): %v", e.Stage, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Translation is the engine's answer for one question.
type Translation struct {
	SQLQuery    string  `json:"sql_query"`
	Explanation string  `json:"explanation"`
	Confidence  float64 `json:"confidence"`
}

// ExecuteResult is the runner's answer for one statement.
type ExecuteResult struct {
	Results  []map[string]any `json:"results"`
	Metadata map[string]any   `json:"metadata"`
}

type Config struct {
	EngineURL string
	RunnerURL string
	Timeout   time.Duration
}

// Client talks to the engine and runner over HTTP.
type Client struct {
	engineURL string
	runnerURL string
	client    *http.Client
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.EngineURL) == "" {
		return nil, fmt.Errorf("engine URL is required")
	}
	if strings.TrimSpace(cfg.RunnerURL) == "" {
		return nil, fmt.Errorf("runner URL is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		engineURL: strings.TrimRight(strings.TrimSpace(cfg.EngineURL), "/"),
		runnerURL: strings.TrimRight(strings.TrimSpace(cfg.RunnerURL), "/"),
		client:    &http.Client{Timeout: timeout},
	}, nil
}

func (c *Client) Translate(ctx context.Context, question, model string) (Translation, error) {
	payload := map[string]any{"query": question}
	if model != "" {
		payload["model"] = model
	}

	var translation Translation
	if err := c.postJSON(ctx, StageTranslate, c.engineURL+"/process-query", payload, &translation); err != nil {
		return Translation{}, err
	}
	return translation, nil
}

func (c *Client) Execute(ctx context.Context, sqlQuery string) (ExecuteResult, error) {
	payload := map[string]any{"query": sqlQuery}

	var result ExecuteResult
	if err := c.postJSON(ctx, StageExecute, c.runnerURL+"/execute-query", payload, &result); err != nil {
		return ExecuteResult{}, err
	}
	return result, nil
}

func (c *Client) postJSON(ctx context.Context, stage Stage, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &UpstreamError{Stage: stage, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &UpstreamError{Stage: stage, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &UpstreamError{Stage: stage, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &UpstreamError{Stage: stage, Err: fmt.Errorf("read response body: %w", err)}
	}
	if resp.StatusCode >= 400 {
		return &UpstreamError{
			Stage:      stage,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("upstream rejected request: %s", strings.TrimSpace(string(respBody))),
		}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &UpstreamError{Stage: stage, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
