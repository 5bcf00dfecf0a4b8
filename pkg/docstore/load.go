package docstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/aretw0/gmboard/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// Upload is an in-memory file handed over by a host (HTTP body, MCP call).
type Upload struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// LoadDir reads every markdown file directly under dir, sorted by name.
// Subdirectories and non-markdown files are ignored.
func LoadDir(ctx context.Context, dir string) (*Set, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario dir %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !isMarkdown(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return LoadFiles(ctx, paths...)
}

// LoadFiles reads the given paths concurrently. Non-markdown paths are dropped
// silently; any read failure aborts the whole load and no partial set is returned.
func LoadFiles(ctx context.Context, paths ...string) (*Set, error) {
	var kept []string
	for _, p := range paths {
		if isMarkdown(p) {
			kept = append(kept, p)
		}
	}

	docs := make([]domain.Document, len(kept))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, p := range kept {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(p)
			if err != nil {
				return fmt.Errorf("failed to read document %s: %w", p, err)
			}
			docs[i] = domain.Document{Name: filepath.Base(p), Content: string(data)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return New(docs...)
}

// FromUploads builds a Set from in-memory files, keeping upload order.
func FromUploads(uploads ...Upload) (*Set, error) {
	docs := make([]domain.Document, 0, len(uploads))
	for _, u := range uploads {
		if !isMarkdown(u.Name) {
			continue
		}
		docs = append(docs, domain.Document{Name: u.Name, Content: u.Content})
	}
	return New(docs...)
}
