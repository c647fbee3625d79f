// Package model provides an OpenAI-compatible chat completions client.
package model

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	apperrors "github.com/moola-ai/coach/internal/errors"
)

// OpenAIConfig configures the chat completions client. Any endpoint that
// speaks the OpenAI chat completions API works (OpenAI, Azure-style proxies,
// local gateways).
type OpenAIConfig struct {
	APIKey     string
	BaseURL    string // Default: https://api.openai.com/v1
	Model      string // e.g., "gpt-4o-mini"
	Timeout    time.Duration
	MaxRetries int
}

// DefaultOpenAIConfig returns default configuration.
func DefaultOpenAIConfig(apiKey string) *OpenAIConfig {
	return &OpenAIConfig{
		APIKey:     apiKey,
		BaseURL:    "https://api.openai.com/v1",
		Model:      "gpt-4o-mini",
		Timeout:    120 * time.Second,
		MaxRetries: 3,
	}
}

// OpenAIClient implements Model using an OpenAI-compatible HTTP API.
type OpenAIClient struct {
	cfg    *OpenAIConfig
	client *http.Client
	policy *apperrors.Policy
}

// NewOpenAIClient creates a new chat completions client.
func NewOpenAIClient(cfg *OpenAIConfig) *OpenAIClient {
	if cfg == nil {
		return nil
	}

	policy := apperrors.SlowPolicy()
	if cfg.MaxRetries > 0 {
		policy.MaxAttempts = cfg.MaxRetries
	}

	return &OpenAIClient{
		cfg:    cfg,
		policy: policy,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Generate sends the conversation to the completions endpoint and returns
// the assistant's reply.
func (c *OpenAIClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	if c == nil {
		return nil, apperrors.Permanent(apperrors.CodeModelUnavailable, "model client not initialized")
	}

	body := map[string]any{
		"model":       c.cfg.Model,
		"messages":    req.Messages,
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidInput,
			"failed to marshal model request", apperrors.CategoryPermanent)
	}

	return apperrors.DoWithResult(ctx, c.policy, func() (*Response, error) {
		return c.complete(ctx, jsonBody)
	})
}

func (c *OpenAIClient) complete(ctx context.Context, jsonBody []byte) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeModelUnavailable,
			"failed to create model request", apperrors.CategoryPermanent)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeModelTimeout,
			"model request failed", apperrors.CategoryTemporary)
	}

	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeModelInvalidResponse,
			"failed to read model response", apperrors.CategoryTemporary)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperrors.RateLimit(apperrors.CodeModelRateLimit,
			"model API rate limited", 5*time.Second)
	case resp.StatusCode >= 500:
		return nil, apperrors.Temporary(apperrors.CodeModelUnavailable,
			fmt.Sprintf("model API error (status %d)", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return nil, apperrors.Permanent(apperrors.CodeModelInvalidResponse,
			fmt.Sprintf("model API error (status %d): %s", resp.StatusCode, string(respBody)))
	}

	var completion completionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeModelInvalidResponse,
			"failed to parse model response", apperrors.CategoryTemporary)
	}

	if len(completion.Choices) == 0 {
		return nil, apperrors.Temporary(apperrors.CodeModelInvalidResponse,
			"no choices in model response")
	}

	return &Response{
		Text:       completion.Choices[0].Message.Content,
		TokensUsed: completion.Usage.TotalTokens,
		Model:      completion.Model,
	}, nil
}

// IsAvailable checks if the client is configured.
func (c *OpenAIClient) IsAvailable() bool {
	return c != nil && c.cfg != nil && c.cfg.APIKey != ""
}

// Name returns the model name.
func (c *OpenAIClient) Name() string {
	if c == nil || c.cfg == nil {
		return "unconfigured"
	}
	return c.cfg.Model
}

// completionResponse is the wire shape of a chat completions reply.
type completionResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}
