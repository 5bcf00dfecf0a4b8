package ports

import (
	"context"

	"github.com/aretw0/gmboard/pkg/domain"
)

// Generator defines how the session reaches the generation collaborator.
// Implementations return domain.ErrGeneration (wrapped) for transport failures
// and domain.ErrUnknownCategory (wrapped) for answers outside the closed set.
type Generator interface {
	Generate(ctx context.Context, req domain.Request) (domain.Response, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req domain.Request) (domain.Response, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req domain.Request) (domain.Response, error) {
	return f(ctx, req)
}
