package gmboard

import (
	"context"
	"fmt"

	"github.com/aretw0/gmboard/pkg/docstore"
	"github.com/aretw0/gmboard/pkg/domain"
	"github.com/aretw0/gmboard/pkg/ports"
	"github.com/aretw0/gmboard/pkg/session"
)

// Open loads the Markdown documents in dir and starts a session over gen.
func Open(ctx context.Context, dir string, gen ports.Generator, opts ...session.Option) (*session.Session, error) {
	docs, err := docstore.LoadDir(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario: %w", err)
	}
	return session.New(docs, gen, opts...)
}

// OpenDocuments starts a session over in-memory documents.
func OpenDocuments(docs []domain.Document, gen ports.Generator, opts ...session.Option) (*session.Session, error) {
	set, err := docstore.New(docs...)
	if err != nil {
		return nil, err
	}
	return session.New(set, gen, opts...)
}
