// Package scripted provides a Generator that replays canned responses.
// It backs offline play and tests.
package scripted

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/aretw0/gmboard/internal/prompt"
	"github.com/aretw0/gmboard/pkg/domain"
	"gopkg.in/yaml.v3"
)

// ErrExhausted is returned when the script is empty and no fallback is set.
var ErrExhausted = errors.New("script exhausted")

type step struct {
	resp domain.Response
	err  error
}

// Generator pops one scripted step per call.
type Generator struct {
	mu       sync.Mutex
	steps    []step
	requests []domain.Request
	fallback func(domain.Request) domain.Response
}

// Option configures a Generator.
type Option func(*Generator)

// WithFallback answers with fn once the script is exhausted.
func WithFallback(fn func(domain.Request) domain.Response) Option {
	return func(g *Generator) { g.fallback = fn }
}

// WithEcho answers every unscripted request with a minimal response of the
// intent's category, echoing the query.
func WithEcho() Option {
	return WithFallback(Echo)
}

// New creates a Generator replaying responses in order.
func New(responses []domain.Response, opts ...Option) *Generator {
	g := &Generator{}
	for _, r := range responses {
		g.steps = append(g.steps, step{resp: r})
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Push appends a response to the script.
func (g *Generator) Push(resp domain.Response) *Generator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.steps = append(g.steps, step{resp: resp})
	return g
}

// PushError appends a failure to the script.
func (g *Generator) PushError(err error) *Generator {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.steps = append(g.steps, step{err: err})
	return g
}

// Generate implements ports.Generator.
func (g *Generator) Generate(ctx context.Context, req domain.Request) (domain.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)

	if len(g.steps) == 0 {
		if g.fallback != nil {
			return g.fallback(req), nil
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneration, ErrExhausted)
	}
	next := g.steps[0]
	g.steps = g.steps[1:]
	if next.err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneration, next.err)
	}
	return next.resp, nil
}

// Calls returns the number of Generate calls so far.
func (g *Generator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

// Requests returns a copy of every request received.
func (g *Generator) Requests() []domain.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]domain.Request(nil), g.requests...)
}

// Remaining returns the number of unplayed steps.
func (g *Generator) Remaining() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.steps)
}

// LoadFile reads a YAML (or JSON) list of response objects, each carrying a
// "type" field like the collaborator's answers.
func LoadFile(path string, opts ...Option) (*Generator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", path, err)
	}
	var raw []map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse script %s: %w", path, err)
	}

	responses := make([]domain.Response, 0, len(raw))
	for i, obj := range raw {
		resp, err := prompt.Decode(obj)
		if err != nil {
			return nil, fmt.Errorf("script %s entry %d: %w", path, i, err)
		}
		responses = append(responses, resp)
	}
	return New(responses, opts...), nil
}

// Echo builds a minimal response of the category the intent expects.
func Echo(req domain.Request) domain.Response {
	sources := []string{"[Improv#offline]"}
	switch req.Intent {
	case domain.IntentSceneBrief:
		return &domain.SceneBrief{Scene: req.State.ActiveStep, Bullets: []string{req.Query}, Sources: sources}
	case domain.IntentNarrative:
		return &domain.Narrative{Title: req.State.ActiveStep, Bullets: []string{req.Query}, Sources: sources}
	case domain.IntentTurn:
		return &domain.TurnResolution{
			Trigger:      req.Query,
			Consequences: []string{"Nothing happens. Yet."},
			NewOptions:   []string{"Wait", "Look around", "Accuse a teammate"},
			Sources:      sources,
		}
	case domain.IntentOptions:
		return &domain.OptionSet{Prompt: "What do the players do?", Choices: []string{"Wait", "Look around", "Accuse a teammate"}, Sources: sources}
	case domain.IntentBridges:
		return &domain.BridgeSuggestions{From: req.State.ActiveStep, To: "next step", Bridges: []string{"An alarm goes off"}, Sources: sources}
	case domain.IntentClues:
		return &domain.ClueSet{Bullets: []string{"[SCENARIO] " + req.Query}, Sources: sources}
	case domain.IntentNPCs:
		return &domain.NPCRoster{Sources: sources}
	case domain.IntentPlayers:
		return &domain.PlayerRoster{Sources: sources}
	}
	return &domain.SystemMessage{Bullets: []string{req.Query}, Sources: sources}
}
