// Package segment splits a scenario document into named steps.
//
// A step starts at a second-level header whose text begins with the step
// keyword ("## STEP Intro") and runs until the next such header or the end of
// the document. Deeper headers ("###") end the description region but not the
// step. Segmentation never fails: malformed content degrades to the fallback
// catalog.
package segment

import (
	"strings"

	"github.com/aretw0/gmboard/pkg/domain"
)

const (
	// DefaultKeyword is the word that must follow "##" for a line to open a step.
	DefaultKeyword = "STEP"

	headerMarker = "##"
	deeperMarker = "###"
	tableMarker  = "|"
)

// DefaultMarkers are the name fragments used to pick the steps document,
// in priority order.
var DefaultMarkers = []string{"05_", "steps", "etapes"}

// FallbackCatalog is returned when a document carries no step header.
var FallbackCatalog = []string{"INTRO", "DEVELOPMENT", "CLIMAX", "CONCLUSION"}

// Segmenter holds the header keyword and document markers.
// The zero value is not usable; call New.
type Segmenter struct {
	keyword string
	markers []string
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithKeyword replaces the header keyword (e.g. "ÉTAPE").
func WithKeyword(keyword string) Option {
	return func(s *Segmenter) {
		if k := strings.TrimSpace(keyword); k != "" {
			s.keyword = k
		}
	}
}

// WithMarkers replaces the document-selection markers.
func WithMarkers(markers ...string) Option {
	return func(s *Segmenter) {
		if len(markers) > 0 {
			s.markers = append([]string(nil), markers...)
		}
	}
}

// New creates a Segmenter with the default keyword and markers.
func New(opts ...Option) *Segmenter {
	s := &Segmenter{
		keyword: DefaultKeyword,
		markers: DefaultMarkers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Keyword returns the configured header keyword.
func (s *Segmenter) Keyword() string { return s.keyword }

// SelectDocument picks the steps document: the first whose lower-cased name
// contains a marker, trying markers in priority order, else the first document.
func (s *Segmenter) SelectDocument(docs []domain.Document) (domain.Document, bool) {
	if len(docs) == 0 {
		return domain.Document{}, false
	}
	for _, marker := range s.markers {
		m := strings.ToLower(marker)
		for _, d := range docs {
			if strings.Contains(strings.ToLower(d.Name), m) {
				return d, true
			}
		}
	}
	return docs[0], true
}

// Catalog returns the step names of the selected document.
// An empty document set yields an empty catalog.
func (s *Segmenter) Catalog(docs []domain.Document) []string {
	doc, ok := s.SelectDocument(docs)
	if !ok {
		return []string{}
	}
	return s.Steps(doc.Content)
}

// Steps lists step names in document order, or the fallback catalog when no
// header matches.
func (s *Segmenter) Steps(content string) []string {
	var names []string
	for _, line := range splitLines(content) {
		if s.IsHeader(line) {
			names = append(names, cleanHeader(line))
		}
	}
	if len(names) == 0 {
		return append([]string(nil), FallbackCatalog...)
	}
	return names
}

// IsHeader reports whether line opens a step.
func (s *Segmenter) IsHeader(line string) bool {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, headerMarker) || strings.HasPrefix(trimmed, deeperMarker) {
		return false
	}
	rest := strings.TrimLeft(trimmed[len(headerMarker):], " \t")
	return hasPrefixFold(rest, s.keyword)
}

// Bounds returns the half-open line range [start, end) of the named step.
// Duplicate names resolve to the earliest header; end is always the next
// header, whatever its name.
func (s *Segmenter) Bounds(content, name string) (start, end int, ok bool) {
	lines := splitLines(content)
	return s.bounds(lines, name)
}

func (s *Segmenter) bounds(lines []string, name string) (int, int, bool) {
	start := -1
	for i, line := range lines {
		if s.IsHeader(line) && cleanHeader(line) == name {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, 0, false
	}
	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if s.IsHeader(lines[i]) {
			end = i
			break
		}
	}
	return start, end, true
}

// Resolve builds the full Step for name, including its description and table.
// Fallback catalog names have no region and resolve to false.
func (s *Segmenter) Resolve(content, name string) (domain.Step, bool) {
	lines := splitLines(content)
	start, end, ok := s.bounds(lines, name)
	if !ok {
		return domain.Step{}, false
	}
	region := lines[start+1 : end]
	return domain.Step{
		Name:             name,
		StartLine:        start,
		EndLine:          end,
		DescriptionLines: description(region),
		Table:            lastTable(region),
	}, true
}

func description(region []string) []string {
	out := []string{}
	for _, line := range region {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, deeperMarker) {
			break
		}
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func lastTable(region []string) *domain.Table {
	var last, run []string
	flush := func() {
		if len(run) > 0 {
			last = run
			run = nil
		}
	}
	for _, line := range region {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, tableMarker) {
			run = append(run, trimmed)
			continue
		}
		flush()
	}
	flush()
	if last == nil {
		return nil
	}
	return &domain.Table{Lines: last}
}

func cleanHeader(line string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "#"))
}

func hasPrefixFold(s, prefix string) bool {
	if prefix == "" {
		return true
	}
	return strings.HasPrefix(strings.ToUpper(s), strings.ToUpper(prefix))
}

func splitLines(content string) []string {
	return strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
}
