// Package grok is a client for an OpenAI-compatible chat-completions API.
// Calls pass through a retry loop with exponential backoff and a shared
// two-state circuit breaker; JSON-mode responses that fail to parse go
// through a recovery ladder before a typed error is surfaced.
package grok

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"leadflow/internal/resilience"
)

// Message is one role-tagged entry in a chat conversation.
type Message struct {
	Role    string `json:"role"` // system|user|assistant
	Content string `json:"content"`
}

// Options tune a single completion call. Zero values are omitted from the
// request so the upstream defaults apply.
type Options struct {
	Temperature *float64
	MaxTokens   int
	JSONMode    bool
	Seed        *int
}

// Usage mirrors the upstream token accounting block.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the assistant turn returned by the API.
type Completion struct {
	Content string
	Model   string
	Usage   Usage
	Latency time.Duration
}

// chatRequest is the minimal request shape for the chat-completions endpoint.
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Seed           *int            `json:"seed,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// chatResponse is the minimal response shape returned by the endpoint.
type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int     `json:"index"`
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

// Config holds client settings. Timeout defaults to 20s, MaxRetries to 0,
// breaker settings to the resilience package defaults.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Breaker    resilience.BreakerConfig
}

type Client struct {
	apiKey     string
	model      string
	baseURL    string
	timeout    time.Duration
	maxRetries int
	httpClient *http.Client
	breaker    *resilience.Breaker
	log        *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a Client. One Client owns one circuit breaker; share the
// instance rather than constructing per call.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("grok: api key must not be empty")
	}
	if cfg.Model == "" {
		return nil, errors.New("grok: model must not be empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker.Name = "grok"
	}

	c := &Client{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    strings.TrimSpace(cfg.BaseURL),
		timeout:    cfg.Timeout,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    resilience.NewBreaker(cfg.Breaker),
		log:        slog.Default().With("component", "grok"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

func chatURL(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if base == "" {
		base = "https://api.x.ai/v1"
	}
	if strings.HasSuffix(base, "/v1") {
		return base + "/chat/completions"
	}
	return base + "/v1/chat/completions"
}

// Complete sends the conversation and returns the assistant turn. Failed
// attempts are retried up to MaxRetries times with a 2^attempt second delay;
// while the breaker is open calls are rejected without any HTTP request.
func (c *Client) Complete(ctx context.Context, messages []Message, opts Options) (*Completion, error) {
	if len(messages) == 0 {
		return nil, errors.New("grok: messages must not be empty")
	}

	payload := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Seed:        opts.Seed,
	}
	if opts.JSONMode {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("grok: marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.breaker.Allow(); err != nil {
			return nil, err
		}

		comp, err := c.do(ctx, body)
		if err == nil {
			c.breaker.Success()
			return comp, nil
		}
		c.breaker.Failure()
		lastErr = err

		if !retryable(err) || attempt == c.maxRetries {
			break
		}

		delay := resilience.Backoff(attempt)
		c.log.Warn("grok call failed, retrying",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"delay", delay,
			"error", err)
		if err := resilience.Sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("grok: retry wait: %w", err)
		}
	}
	return nil, lastErr
}

// CompleteJSON calls Complete in JSON mode and parses the content. On parse
// failure it retries exactly once with a strict-JSON instruction appended,
// then falls back to substring extraction and finally to recovering a bare
// numeric "score" field.
func (c *Client) CompleteJSON(ctx context.Context, messages []Message, opts Options) (*Completion, json.RawMessage, error) {
	opts.JSONMode = true

	comp, err := c.Complete(ctx, messages, opts)
	if err != nil {
		return nil, nil, err
	}
	if raw, ok := decodeJSONObject(comp.Content); ok {
		return comp, raw, nil
	}

	c.log.Warn("non-JSON content in JSON mode, retrying with strict instruction",
		"preview", preview(comp.Content))

	strict := make([]Message, 0, len(messages)+1)
	strict = append(strict, messages...)
	strict = append(strict, Message{Role: "user", Content: strictJSONInstruction})

	retryComp, retryErr := c.Complete(ctx, strict, opts)
	if retryErr == nil {
		if raw, ok := decodeJSONObject(retryComp.Content); ok {
			return retryComp, raw, nil
		}
		comp = retryComp
	}

	if raw, ok := extractJSONObject(comp.Content); ok {
		c.log.Warn("recovered JSON object by substring extraction",
			"preview", preview(comp.Content))
		return comp, raw, nil
	}
	if score, ok := extractScore(comp.Content); ok {
		c.log.Warn("recovered bare score field from non-JSON content", "score", score)
		raw, _ := json.Marshal(map[string]int{"score": score})
		return comp, raw, nil
	}
	return comp, nil, fmt.Errorf("%w: content is not valid JSON", ErrMalformedResponse)
}

// do issues a single HTTP attempt.
func (c *Client) do(ctx context.Context, body []byte) (*Completion, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := chatURL(c.baseURL)
	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("grok: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		err = classifyTransport(err)
		c.log.Warn("grok request failed",
			"latency_ms", time.Since(start).Milliseconds(),
			"error", err)
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		err := classifyStatus(res.StatusCode, string(buf))
		c.log.Warn("grok request failed",
			"status", res.StatusCode,
			"latency_ms", time.Since(start).Milliseconds(),
			"error", err)
		return nil, err
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, classifyTransport(err)
	}
	latency := time.Since(start)

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode body: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}

	content := parsed.Choices[0].Message.Content
	c.log.Debug("grok completion",
		"model", parsed.Model,
		"latency_ms", latency.Milliseconds(),
		"prompt_tokens", parsed.Usage.PromptTokens,
		"completion_tokens", parsed.Usage.CompletionTokens,
		"preview", preview(content))

	return &Completion{
		Content: content,
		Model:   parsed.Model,
		Usage:   parsed.Usage,
		Latency: latency,
	}, nil
}

func classifyStatus(status int, body string) error {
	if status == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %s", ErrRateLimited, strings.TrimSpace(body))
	}
	return &APIError{StatusCode: status, Body: strings.TrimSpace(body)}
}

func classifyTransport(err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("grok: transport: %w", err)
}

// retryable reports whether another attempt is worth making. Client-side
// 4xx responses are final; everything transient gets the backoff.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, resilience.ErrOpen) {
		return false
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, ErrRateLimited) || errors.Is(err, ErrMalformedResponse) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}
	return true
}

func preview(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
