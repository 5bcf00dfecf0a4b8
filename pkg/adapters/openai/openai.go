// Package openai implements ports.Generator for any OpenAI-compatible chat
// completion endpoint (OpenAI, DeepSeek, Ollama, vLLM...).
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/aretw0/gmboard/internal/logging"
	"github.com/aretw0/gmboard/internal/prompt"
	"github.com/aretw0/gmboard/pkg/domain"
	openaigo "github.com/sashabaranov/go-openai"
)

const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.4
	DefaultTimeout     = 90 * time.Second
	DefaultMaxRetries  = 2
)

// Config holds the endpoint settings.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Temperature defaults to DefaultTemperature when nil; zero is honoured.
	Temperature *float32
	Timeout     time.Duration
	MaxRetries  int
	// RetryBackoff is the wait before the first retry; it doubles on each attempt.
	RetryBackoff time.Duration
}

// Generator sends the rendered request as a chat completion with a JSON
// object response format.
type Generator struct {
	client      *openaigo.Client
	cfg         Config
	temperature float32
	logger      *slog.Logger
	sleeper     func(context.Context, time.Duration) error
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the adapter logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// New creates an OpenAI-compatible generator.
func New(cfg Config, opts ...Option) *Generator {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	temperature := float32(DefaultTemperature)
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	if temperature == 0 {
		// go-openai omits a zero temperature from the request body.
		temperature = math.SmallestNonzeroFloat32
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}

	clientCfg := openaigo.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	g := &Generator{
		client:      openaigo.NewClientWithConfig(clientCfg),
		cfg:         cfg,
		temperature: temperature,
		logger:      logging.NewNop(),
		sleeper:     sleep,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate implements ports.Generator.
func (g *Generator) Generate(ctx context.Context, req domain.Request) (domain.Response, error) {
	text, err := prompt.Render(req)
	if err != nil {
		return nil, err
	}

	request := openaigo.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleSystem, Content: prompt.SystemInstruction},
			{Role: openaigo.ChatMessageRoleUser, Content: text},
		},
		Temperature: g.temperature,
		ResponseFormat: &openaigo.ChatCompletionResponseFormat{
			Type: openaigo.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	var resp openaigo.ChatCompletionResponse
	backoff := g.cfg.RetryBackoff
	for attempt := 0; ; attempt++ {
		started := time.Now()
		resp, err = g.client.CreateChatCompletion(ctx, request)
		if err == nil {
			g.logger.Debug("Chat completion received", "model", g.cfg.Model, "intent", req.Intent,
				"duration", time.Since(started), "total_tokens", resp.Usage.TotalTokens)
			break
		}
		if attempt >= g.cfg.MaxRetries || !retryable(err) {
			return nil, fmt.Errorf("%w: openai: %w", domain.ErrGeneration, err)
		}
		g.logger.Warn("Chat completion failed, retrying", "attempt", attempt+1, "backoff", backoff, "err", err)
		if err := g.sleeper(ctx, backoff); err != nil {
			return nil, fmt.Errorf("%w: openai: %w", domain.ErrGeneration, err)
		}
		backoff *= 2
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%w: openai: %w", domain.ErrGeneration, prompt.ErrEmptyResponse)
	}
	return prompt.ParseResponse(resp.Choices[0].Message.Content)
}

// retryable reports whether err is worth another attempt: rate limits,
// server errors and transport failures.
func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *openaigo.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openaigo.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return true
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
