package session

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/gmboard/pkg/domain"
	"github.com/aretw0/gmboard/pkg/turn"
)

// request describes one generation round trip.
type request struct {
	intent domain.Intent
	hidden bool
	// prepare runs under the session mutex once the latch is held and
	// returns the collaborator query.
	prepare    func(st *domain.GameState) string
	onPrepared func(ctx context.Context)
}

// do runs a request end to end: latch, snapshot, generate outside the mutex,
// then fold the outcome back under the mutex. Generation failures never
// escape; only a busy or broken latch does.
func (s *Session) do(ctx context.Context, r request) (domain.Response, error) {
	release, ok, err := s.latch.TryAcquire(ctx, s.runID, s.latchTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire request latch: %w", err)
	}
	if !ok {
		s.logger.Debug("Request dropped, another one is in flight", "intent", r.intent, "hidden", r.hidden)
		return nil, domain.ErrRequestInFlight
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.Warn("Failed to release request latch (will expire via TTL)", "err", err)
		}
	}()

	s.mu.Lock()
	query := r.prepare(s.state)
	req := s.resolver.BuildRequest(s.docs, s.state.Clone(), query, r.intent)
	s.mu.Unlock()

	if r.onPrepared != nil {
		r.onPrepared(ctx)
	}
	if s.hooks.OnRequestStart != nil {
		s.hooks.OnRequestStart(ctx, &domain.RequestEvent{
			EventBase: s.event(domain.EventRequestStart),
			Intent:    r.intent,
			Hidden:    r.hidden,
		})
	}

	// A generation that outlived the latch could race a second holder.
	genCtx, cancel := context.WithTimeout(ctx, s.latchTTL)
	defer cancel()

	started := time.Now()
	resp, genErr := s.resolver.Generate(genCtx, req)
	elapsed := time.Since(started)

	s.mu.Lock()
	recorded := turn.Apply(s.state, s.log, turn.Outcome{
		Intent:   r.intent,
		Query:    query,
		Hidden:   r.hidden,
		Response: resp,
		Err:      genErr,
	}, s.now())
	s.mu.Unlock()

	done := &domain.RequestEvent{
		EventBase: s.event(domain.EventRequestComplete),
		Intent:    r.intent,
		Hidden:    r.hidden,
		Duration:  elapsed,
		Failed:    genErr != nil,
	}
	if genErr != nil {
		if r.hidden {
			s.logger.Warn("Hidden cache fill failed", "intent", r.intent, "err", genErr)
		} else {
			s.logger.Error("Generation failed", "intent", r.intent, "err", genErr)
		}
	} else {
		done.Category = resp.Category()
		s.logger.Debug("Request resolved", "intent", r.intent, "category", done.Category, "duration", elapsed)
	}
	if s.hooks.OnRequestComplete != nil {
		s.hooks.OnRequestComplete(ctx, done)
	}

	if r.hidden {
		if genErr != nil {
			return nil, nil
		}
		return resp, nil
	}
	return recorded, nil
}

// fill runs a hidden cache request for kind, gated so that at most one fill
// per kind is pending.
func (s *Session) fill(ctx context.Context, kind domain.CacheKind, query string, force bool) (domain.Response, error) {
	s.mu.Lock()
	if s.filling[kind] {
		s.mu.Unlock()
		return nil, domain.ErrRequestInFlight
	}
	if !force {
		if cached := s.state.Caches.Get(kind); cached != nil {
			s.mu.Unlock()
			return cached, nil
		}
	}
	s.filling[kind] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.filling, kind)
		s.mu.Unlock()
	}()

	return s.do(ctx, request{
		intent:  kind.Intent(),
		hidden:  true,
		prepare: func(*domain.GameState) string { return query },
	})
}
