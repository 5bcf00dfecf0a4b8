package turn

import (
	"time"
	"unicode/utf8"

	"github.com/aretw0/gmboard/pkg/domain"
	"github.com/aretw0/gmboard/pkg/history"
)

// SummaryLength is the number of runes of a query kept in the action log.
const SummaryLength = 20

// Outcome is the settled result of one generation request.
type Outcome struct {
	Intent   domain.Intent
	Query    string
	Hidden   bool
	Response domain.Response
	Err      error
}

// Apply folds an outcome into state and log and returns the response that
// was recorded in history, if any.
//
// Hidden outcomes only ever touch cache slots. A visible failure records the
// fixed generation-failure message and the usual action entry; nothing else
// changes.
func Apply(state *domain.GameState, log *history.Log, o Outcome, at time.Time) domain.Response {
	if o.Err != nil || o.Response == nil {
		if o.Hidden {
			return nil
		}
		failure := domain.GenerationFailure()
		log.Append(failure, at)
		state.PushAction(ActionEntry(o.Intent, o.Query))
		return failure
	}

	o.Response.Accept(&effects{state: state, hidden: o.Hidden})
	if o.Hidden {
		return nil
	}
	log.Append(o.Response, at)
	state.PushAction(ActionEntry(o.Intent, o.Query))
	return o.Response
}

// ActionEntry builds the action-log line for a visible request.
func ActionEntry(intent domain.Intent, query string) domain.ActionLogEntry {
	return domain.ActionLogEntry{
		Actor:   domain.ActorSystem,
		Intent:  intent,
		Summary: Summarize(query),
	}
}

// Summarize keeps the first SummaryLength runes of query, marking a cut with "..".
func Summarize(query string) string {
	if utf8.RuneCountInString(query) <= SummaryLength {
		return query
	}
	n := 0
	for i := range query {
		if n == SummaryLength {
			return query[:i] + ".."
		}
		n++
	}
	return query
}

// effects applies the per-category state change. History-only categories
// have no effect here.
type effects struct {
	state  *domain.GameState
	hidden bool
}

func (e *effects) VisitSceneBrief(*domain.SceneBrief)               {}
func (e *effects) VisitNarrative(*domain.Narrative)                 {}
func (e *effects) VisitSystemMessage(*domain.SystemMessage)         {}
func (e *effects) VisitBridgeSuggestions(*domain.BridgeSuggestions) {}
func (e *effects) VisitConsequences(*domain.Consequences)           {}

func (e *effects) VisitOptionSet(r *domain.OptionSet) {
	if e.hidden {
		return
	}
	e.state.OptionsList = append([]string{}, r.Choices...)
}

func (e *effects) VisitTurnResolution(r *domain.TurnResolution) {
	if e.hidden {
		return
	}
	e.state.OptionsList = append([]string{}, r.NewOptions...)
}

func (e *effects) VisitClueSet(r *domain.ClueSet) {
	e.state.Caches.Clues = r
}

func (e *effects) VisitNPCRoster(r *domain.NPCRoster) {
	e.state.Caches.NPCs = r
}

func (e *effects) VisitPlayerRoster(r *domain.PlayerRoster) {
	e.state.Caches.Players = r
}
