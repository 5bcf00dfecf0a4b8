// Package gemini implements ports.Generator on top of the Google Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/gmboard/internal/logging"
	"github.com/aretw0/gmboard/internal/prompt"
	"github.com/aretw0/gmboard/pkg/domain"
	"google.golang.org/genai"
)

const (
	DefaultModel       = "gemini-2.5-flash"
	DefaultTemperature = 0.4
	DefaultTimeout     = 90 * time.Second
)

// ErrMissingAPIKey is returned by New without an API key.
var ErrMissingAPIKey = errors.New("gemini: API key is required")

// Config holds the Gemini connection settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	// Temperature defaults to DefaultTemperature when nil; zero is sent as is.
	Temperature *float32
	Timeout     time.Duration
}

// Generator calls Gemini with the shared system instruction and a JSON
// response MIME type.
type Generator struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
	logger *slog.Logger
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

// New creates a Gemini generator.
func New(ctx context.Context, cfg Config, opts ...Option) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	temperature := float32(DefaultTemperature)
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientCfg := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.BaseURL != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}
	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	g := &Generator{
		client: client,
		model:  cfg.Model,
		config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(prompt.SystemInstruction, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			Temperature:       genai.Ptr(temperature),
		},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate implements ports.Generator.
func (g *Generator) Generate(ctx context.Context, req domain.Request) (domain.Response, error) {
	text, err := prompt.Render(req)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(text), g.config)
	if err != nil {
		g.logger.Warn("Gemini request failed", "model", g.model, "duration", time.Since(started), "err", err)
		return nil, fmt.Errorf("%w: gemini: %w", domain.ErrGeneration, err)
	}

	answer := result.Text()
	if answer == "" {
		return nil, fmt.Errorf("%w: gemini: %w", domain.ErrGeneration, prompt.ErrEmptyResponse)
	}
	g.logger.Debug("Gemini answered", "model", g.model, "intent", req.Intent,
		"duration", time.Since(started), "bytes", len(answer))

	return prompt.ParseResponse(answer)
}
