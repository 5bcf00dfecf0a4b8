package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/gmboard/internal/config"
	"github.com/aretw0/gmboard/pkg/adapters/gemini"
	"github.com/aretw0/gmboard/pkg/adapters/memory"
	"github.com/aretw0/gmboard/pkg/adapters/openai"
	"github.com/aretw0/gmboard/pkg/adapters/redis"
	"github.com/aretw0/gmboard/pkg/adapters/scripted"
	"github.com/aretw0/gmboard/pkg/domain"
	"github.com/aretw0/gmboard/pkg/observability"
	"github.com/aretw0/gmboard/pkg/ports"
	"github.com/aretw0/gmboard/pkg/segment"
	"github.com/aretw0/gmboard/pkg/session"
	"github.com/aretw0/gmboard/pkg/turn"
)

// NewGenerator builds the generation backend selected by cfg.Provider.
func NewGenerator(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ports.Generator, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		gen, err := gemini.New(ctx, gemini.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			Temperature: &cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, gemini.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("error initializing gemini generator: %w", err)
		}
		return gen, nil

	case config.ProviderOpenAI:
		return openai.New(openai.Config{
			APIKey:       cfg.APIKey,
			BaseURL:      cfg.BaseURL,
			Model:        cfg.Model,
			Temperature:  &cfg.Temperature,
			Timeout:      cfg.Timeout,
			MaxRetries:   cfg.MaxRetries,
			RetryBackoff: config.RetryBackoff,
		}, openai.WithLogger(logger)), nil

	case config.ProviderScripted:
		if cfg.Script == "" {
			return scripted.New(nil, scripted.WithEcho()), nil
		}
		gen, err := scripted.LoadFile(cfg.Script, scripted.WithEcho())
		if err != nil {
			return nil, fmt.Errorf("error loading script: %w", err)
		}
		return gen, nil
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}

// NewLatch returns a Redis latch when an address is configured, else an
// in-process one.
func NewLatch(cfg *config.Config) ports.Latch {
	if cfg.RedisAddr == "" {
		return memory.NewLatch()
	}
	return redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, redis.WithPrefix(cfg.RedisPrefix))
}

// SessionOptions maps cfg onto session options. Extra hooks are combined with
// the debug logging hooks.
func SessionOptions(cfg *config.Config, logger *slog.Logger, latch ports.Latch, hooks ...domain.LifecycleHooks) []session.Option {
	if cfg.Debug {
		hooks = append(hooks, observability.LoggingHooks(logger))
	}

	seg := segment.New(segment.WithKeyword(cfg.StepKeyword), segment.WithMarkers(cfg.StepMarkers...))

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithSegmenter(seg),
		session.WithResolverOptions(turn.WithMaxDocumentChars(cfg.MaxDocumentChars)),
		session.WithMaxInputSize(cfg.MaxInputSize),
		session.WithClocks(cfg.Clocks...),
		session.WithLatchTTL(cfg.LatchTTL),
		session.WithLifecycleHooks(observability.Combine(hooks...)),
	}
	if latch != nil {
		opts = append(opts, session.WithLatch(latch))
	}
	return opts
}
