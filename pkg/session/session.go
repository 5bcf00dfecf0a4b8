package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/gmboard/internal/logging"
	"github.com/aretw0/gmboard/pkg/adapters/memory"
	"github.com/aretw0/gmboard/pkg/docstore"
	"github.com/aretw0/gmboard/pkg/domain"
	"github.com/aretw0/gmboard/pkg/history"
	"github.com/aretw0/gmboard/pkg/ports"
	"github.com/aretw0/gmboard/pkg/segment"
	"github.com/aretw0/gmboard/pkg/turn"
	"github.com/google/uuid"
)

// DieFaces is the size of the die rolled by RollDie.
const DieFaces = 6

// Session is the controller for one run.
type Session struct {
	mu      sync.Mutex
	state   *domain.GameState
	view    View
	filling map[domain.CacheKind]bool

	log      *history.Log
	docs     *docstore.Set
	seg      *segment.Segmenter
	resolver *turn.Resolver

	latch    ports.Latch
	latchTTL time.Duration
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time
	roll     func(n int) int

	runID        string
	clocks       []domain.Clock
	maxInput     int
	resolverOpts []turn.Option
}

// New starts a run over docs. The active step is the first catalog entry and
// no request is issued. An empty document set yields domain.ErrNoDocuments.
func New(docs *docstore.Set, gen ports.Generator, opts ...Option) (*Session, error) {
	if docs.Len() == 0 {
		return nil, domain.ErrNoDocuments
	}

	s := &Session{
		filling:  make(map[domain.CacheKind]bool),
		view:     ViewTerminal,
		log:      history.NewLog(),
		docs:     docs,
		seg:      segment.New(),
		latch:    memory.NewLatch(),
		latchTTL: DefaultLatchTTL,
		logger:   logging.NewNop(),
		now:      time.Now,
		roll:     rand.IntN,
		clocks:   domain.DefaultClocks(),
		maxInput: turn.DefaultMaxInputSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, c := range s.clocks {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	if s.runID == "" {
		s.runID = uuid.NewString()
	}
	s.logger = s.logger.With("run_id", s.runID)
	s.resolver = turn.NewResolver(gen, append([]turn.Option{turn.WithLogger(s.logger)}, s.resolverOpts...)...)

	s.state = domain.NewGameState(s.runID, s.clocks)
	if steps := s.Steps(); len(steps) > 0 {
		s.state.ActiveStep = steps[0]
	}
	return s, nil
}

// RunID returns the unique identifier of the run.
func (s *Session) RunID() string { return s.runID }

// Documents returns the shared document set.
func (s *Session) Documents() *docstore.Set { return s.docs }

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() domain.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// View returns the open overlay.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// History returns the log entries, oldest first.
func (s *Session) History() []domain.HistoryEntry {
	return s.log.Entries()
}

// Steps returns the step catalog of the selected scenario document.
func (s *Session) Steps() []string {
	return s.seg.Catalog(s.docs.All())
}

// Step resolves one step of the selected scenario document.
func (s *Session) Step(name string) (domain.Step, bool) {
	doc, ok := s.seg.SelectDocument(s.docs.All())
	if !ok {
		return domain.Step{}, false
	}
	return s.seg.Resolve(doc.Content, name)
}

// SelectStep makes name the active step, drops the clue cache (rosters are
// campaign-wide and survive), records a step-initialized entry and requests
// the read-aloud introduction.
func (s *Session) SelectStep(ctx context.Context, name string) (domain.Response, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidStep
	}

	resp, err := s.do(ctx, request{
		intent: domain.IntentNarrative,
		prepare: func(st *domain.GameState) string {
			st.ActiveStep = name
			st.Caches.Clues = nil
			s.log.Append(&domain.SystemMessage{
				Bullets: []string{"STEP INITIALIZED: " + name, "LOADING BRIEF..."},
				Sources: []string{domain.ActorSystem},
			}, s.now())
			return turn.StepIntroQuery(name)
		},
		onPrepared: func(ctx context.Context) {
			if s.hooks.OnStepEnter != nil {
				s.hooks.OnStepEnter(ctx, &domain.StepEvent{
					EventBase: s.event(domain.EventStepEnter),
					Step:      name,
				})
			}
		},
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Step selected", "step", name)
	return resp, nil
}

// SelectDocument shows a document as a read-only narrative entry and makes its
// name the active pseudo-step. No request is issued.
func (s *Session) SelectDocument(name string) (domain.Response, error) {
	doc, ok := s.docs.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, name)
	}

	bullets := []string{}
	for _, line := range strings.Split(doc.Content, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			bullets = append(bullets, trimmed)
		}
	}
	entry := &domain.Narrative{Title: doc.Name, Bullets: bullets, Sources: []string{doc.Name}}

	s.mu.Lock()
	s.state.ActiveStep = doc.Name
	s.log.Append(entry, s.now())
	s.mu.Unlock()

	s.logger.Debug("Document selected", "document", doc.Name)
	return entry, nil
}

// SetView switches the overlay without any side effect.
func (s *Session) SetView(v View) {
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
}

// EnsureCache fills the cache slot for kind with a hidden request when it is
// empty. A filled slot returns its content without a request; a fill already
// pending for kind yields domain.ErrRequestInFlight.
func (s *Session) EnsureCache(ctx context.Context, kind domain.CacheKind) (domain.Response, error) {
	if kind.Intent() == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCacheKind, kind)
	}
	s.mu.Lock()
	if cached := s.state.Caches.Get(kind); cached != nil {
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	return s.fill(ctx, kind, turn.CacheQuery(kind), false)
}

// ToggleCacheView closes the overlay for kind if it is open; otherwise it
// opens it and, only when the slot is empty, issues one hidden fill.
// It returns the content shown, or nil when the overlay was closed.
func (s *Session) ToggleCacheView(ctx context.Context, kind domain.CacheKind) (domain.Response, error) {
	target := ViewFor(kind)
	if target == ViewTerminal {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCacheKind, kind)
	}

	s.mu.Lock()
	if s.view == target {
		s.view = ViewTerminal
		s.mu.Unlock()
		return nil, nil
	}
	s.view = target
	s.mu.Unlock()

	return s.EnsureCache(ctx, kind)
}

// ForceRefresh always issues a hidden request for kind and overwrites the slot.
func (s *Session) ForceRefresh(ctx context.Context, kind domain.CacheKind) (domain.Response, error) {
	if kind.Intent() == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCacheKind, kind)
	}
	return s.fill(ctx, kind, turn.RefreshQuery(kind), true)
}

// SubmitInput resolves a line of player input as a numbered choice or a free
// action. Blank input is a no-op returning nil. Input is never rejected: it is
// sanitized and cut to the configured size. Any open overlay closes once the
// request is admitted.
func (s *Session) SubmitInput(ctx context.Context, text string) (domain.Response, error) {
	text = turn.SanitizeInput(text, s.maxInput)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	return s.do(ctx, request{
		intent: domain.IntentTurn,
		prepare: func(st *domain.GameState) string {
			s.view = ViewTerminal
			sub, _ := turn.ParseSubmission(text, st.OptionsList)
			s.logger.Debug("Input parsed", "kind", sub.Kind, "choice", sub.Choice)
			return sub.Query()
		},
	})
}

// RequestBrief asks for a quick GM brief of the situation.
func (s *Session) RequestBrief(ctx context.Context) (domain.Response, error) {
	return s.tool(ctx, domain.IntentSceneBrief, turn.BriefQuery)
}

// RequestBridges asks for ways to steer the players back onto the scenario.
func (s *Session) RequestBridges(ctx context.Context) (domain.Response, error) {
	return s.tool(ctx, domain.IntentBridges, turn.BridgesQuery)
}

// RequestOptions asks for a fresh list of numbered options.
func (s *Session) RequestOptions(ctx context.Context) (domain.Response, error) {
	return s.tool(ctx, domain.IntentOptions, turn.OptionsQuery)
}

func (s *Session) tool(ctx context.Context, intent domain.Intent, query string) (domain.Response, error) {
	return s.do(ctx, request{
		intent:  intent,
		prepare: func(*domain.GameState) string { return query },
	})
}

// ApplyClockDelta moves a clock by delta, clamped to [0, max].
// Unknown ids are a no-op reporting false.
func (s *Session) ApplyClockDelta(id string, delta int) (domain.Clock, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.ApplyClockDelta(id, delta) {
		return domain.Clock{}, false
	}
	c, _ := s.state.Clock(id)
	return c, true
}

// RollDie returns a value in [1, DieFaces]. Rolls are not recorded.
func (s *Session) RollDie() int {
	return s.roll(DieFaces) + 1
}

// Export writes the history report. An empty history yields history.ErrEmpty.
func (s *Session) Export(w io.Writer) error {
	return s.log.Export(w, s.runID, s.now())
}

// ExportName returns the dated report file name for today.
func (s *Session) ExportName() string {
	return history.FileName(s.now())
}

// ExportFile writes the dated report into dir and returns its path.
// An empty history writes nothing and returns "".
func (s *Session) ExportFile(dir string) (string, error) {
	if s.log.Len() == 0 {
		return "", nil
	}
	now := s.now()
	path := filepath.Join(dir, history.FileName(now))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	if err := s.log.Export(f, s.runID, now); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	s.logger.Info("History exported", "path", path, "entries", s.log.Len())
	return path, nil
}

func (s *Session) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: s.now(), Type: t, RunID: s.runID}
}
