// Package docstore holds the immutable set of scenario documents a session is
// built from, and the ingestion helpers that produce it.
package docstore

import (
	"fmt"
	"strings"

	"github.com/aretw0/gmboard/pkg/domain"
)

// Extension is the only file extension retained during ingestion.
const Extension = ".md"

// Set is an ordered, immutable collection of documents keyed by name.
// It is safe to share between sessions.
type Set struct {
	docs  []domain.Document
	index map[string]int
}

// New builds a Set preserving the given order.
// Duplicate names are rejected with domain.ErrDuplicateDocument.
func New(docs ...domain.Document) (*Set, error) {
	s := &Set{
		docs:  make([]domain.Document, 0, len(docs)),
		index: make(map[string]int, len(docs)),
	}
	for _, d := range docs {
		if _, exists := s.index[d.Name]; exists {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateDocument, d.Name)
		}
		s.index[d.Name] = len(s.docs)
		s.docs = append(s.docs, d)
	}
	return s, nil
}

// All returns a copy of the documents in load order.
func (s *Set) All() []domain.Document {
	if s == nil {
		return nil
	}
	out := make([]domain.Document, len(s.docs))
	copy(out, s.docs)
	return out
}

// Get looks a document up by exact name.
func (s *Set) Get(name string) (domain.Document, bool) {
	if s == nil {
		return domain.Document{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return domain.Document{}, false
	}
	return s.docs[i], true
}

// Names lists document names in load order.
func (s *Set) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, len(s.docs))
	for i, d := range s.docs {
		names[i] = d.Name
	}
	return names
}

// Len returns the number of documents.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.docs)
}

// Capped returns the documents with each body truncated to max runes.
// A non-positive max returns the documents untouched.
func (s *Set) Capped(max int) []domain.Document {
	docs := s.All()
	if max <= 0 {
		return docs
	}
	for i := range docs {
		docs[i].Content = truncateRunes(docs[i].Content, max)
	}
	return docs
}

func truncateRunes(s string, max int) string {
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

func isMarkdown(name string) bool {
	return strings.EqualFold(extOf(name), Extension)
}

func extOf(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i < 0 || strings.ContainsAny(name[i:], `/\`) {
		return ""
	}
	return name[i:]
}
