package turn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/gmboard/internal/logging"
	"github.com/aretw0/gmboard/pkg/docstore"
	"github.com/aretw0/gmboard/pkg/domain"
	"github.com/aretw0/gmboard/pkg/ports"
)

// DefaultMaxDocumentChars caps each document sent to the collaborator.
const DefaultMaxDocumentChars = 20000

// Resolver builds requests and calls the generator.
type Resolver struct {
	gen      ports.Generator
	maxChars int
	logger   *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxDocumentChars sets the per-document rune cap. Non-positive disables it.
func WithMaxDocumentChars(n int) Option {
	return func(r *Resolver) { r.maxChars = n }
}

// WithLogger sets the resolver logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a Resolver around gen.
func NewResolver(gen ports.Generator, opts ...Option) *Resolver {
	r := &Resolver{
		gen:      gen,
		maxChars: DefaultMaxDocumentChars,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// BuildRequest assembles the collaborator request from a state snapshot.
func (r *Resolver) BuildRequest(docs *docstore.Set, state domain.GameState, query string, intent domain.Intent) domain.Request {
	return domain.Request{
		Corpus: docs.Capped(r.maxChars),
		State:  state,
		Query:  query,
		Intent: intent,
	}
}

// Generate calls the generator. Every failure, including a nil response,
// comes back wrapped in domain.ErrGeneration.
func (r *Resolver) Generate(ctx context.Context, req domain.Request) (domain.Response, error) {
	if r.gen == nil {
		return nil, fmt.Errorf("%w: no generator configured", domain.ErrGeneration)
	}
	resp, err := r.gen.Generate(ctx, req)
	if err != nil {
		if !errors.Is(err, domain.ErrGeneration) {
			err = fmt.Errorf("%w: %w", domain.ErrGeneration, err)
		}
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: empty response", domain.ErrGeneration)
	}
	if resp.Category() != req.Intent.Expects() {
		r.logger.Debug("Response category differs from intent",
			"intent", req.Intent, "category", resp.Category())
	}
	return resp, nil
}
