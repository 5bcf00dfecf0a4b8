package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/gmboard/internal/logging"
	"github.com/aretw0/gmboard/pkg/docstore"
	"github.com/aretw0/gmboard/pkg/domain"
	"github.com/aretw0/gmboard/pkg/ports"
)

// lockEntry holds the per-run lock and the reference count.
// Transitions hold it shared; Delete holds it exclusively.
type lockEntry struct {
	mu   sync.RWMutex
	refs int
}

// Manager hosts many sessions in memory, keyed by run ID.
// It uses reference counting to garbage collect unused per-run locks.
type Manager struct {
	gen ports.Generator

	mu       sync.Mutex            // Global lock for the maps
	locks    map[string]*lockEntry // Map of active locks
	sessions map[string]*Session

	sessionOpts []Option
	logger      *slog.Logger
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithSessionOptions applies opts to every session the manager creates.
func WithSessionOptions(opts ...Option) ManagerOption {
	return func(m *Manager) {
		m.sessionOpts = append(m.sessionOpts, opts...)
	}
}

// WithManagerLogger configures a logger for the Manager.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager whose sessions all use gen.
func NewManager(gen ports.Generator, opts ...ManagerOption) *Manager {
	m := &Manager{
		gen:      gen,
		locks:    make(map[string]*lockEntry),
		sessions: make(map[string]*Session),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(runID) after unlocking.
func (m *Manager) acquire(runID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[runID]
	if !exists {
		entry = &lockEntry{}
		m.locks[runID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(runID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[runID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, runID)
	}
}

// WithLock executes fn while holding the exclusive lock for the run. It waits
// for every running Use call on the same run.
func (m *Manager) WithLock(ctx context.Context, runID string, fn func(context.Context) error) error {
	entry := m.acquire(runID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(runID)
	}()

	return fn(ctx)
}

// Use runs fn against the session for runID under the shared run lock.
// Concurrent Use calls do not wait for each other; the session latch decides
// which request is admitted. A session deleted before the lock is taken yields
// domain.ErrSessionNotFound.
func (m *Manager) Use(ctx context.Context, runID string, fn func(context.Context, *Session) error) error {
	entry := m.acquire(runID)
	entry.mu.RLock()
	defer func() {
		entry.mu.RUnlock()
		m.release(runID)
	}()

	s, err := m.Get(runID)
	if err != nil {
		return err
	}
	return fn(ctx, s)
}

// Create starts a new session over docs and registers it.
func (m *Manager) Create(ctx context.Context, docs *docstore.Set, opts ...Option) (*Session, error) {
	all := append(append([]Option{WithLogger(m.logger)}, m.sessionOpts...), opts...)
	s, err := New(docs, m.gen, all...)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if _, exists := m.sessions[s.RunID()]; exists {
		m.mu.Unlock()
		return nil, fmt.Errorf("session %s already exists", s.RunID())
	}
	m.sessions[s.RunID()] = s
	m.mu.Unlock()

	m.logger.Info("Session created", "run_id", s.RunID(), "documents", docs.Len())
	return s, nil
}

// Get returns the session for runID or domain.ErrSessionNotFound.
func (m *Manager) Get(runID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, runID)
	}
	return s, nil
}

// Delete drops the session for runID once every running Use call returns.
func (m *Manager) Delete(ctx context.Context, runID string) error {
	return m.WithLock(ctx, runID, func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.sessions[runID]; !ok {
			return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, runID)
		}
		delete(m.sessions, runID)
		m.logger.Info("Session deleted", "run_id", runID)
		return nil
	})
}

// List returns the run IDs of all hosted sessions, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
