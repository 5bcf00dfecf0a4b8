package domain

const (
	// ActionLogCapacity bounds GameState.ActionLog.
	ActionLogCapacity = 16

	// MaxChoice is the highest option number a numeric submission can select.
	MaxChoice = 10

	// ActorSystem is the actor recorded for generated actions.
	ActorSystem = "SYSTEM"
)

// ActionLogEntry is a compact record of a visible request.
type ActionLogEntry struct {
	Actor   string `json:"actor"`
	Intent  Intent `json:"intent"`
	Summary string `json:"summary"`
}

// Caches holds the cached reference responses.
// Clues are step-scoped; rosters are campaign-scoped.
type Caches struct {
	Clues   *ClueSet      `json:"clues"`
	NPCs    *NPCRoster    `json:"npc_roster"`
	Players *PlayerRoster `json:"player_roster"`
}

// Filled reports whether the slot for kind holds a response.
func (c Caches) Filled(kind CacheKind) bool {
	switch kind {
	case CacheClues:
		return c.Clues != nil
	case CacheNPCs:
		return c.NPCs != nil
	case CachePlayers:
		return c.Players != nil
	}
	return false
}

// Get returns the cached response for kind, or nil.
func (c Caches) Get(kind CacheKind) Response {
	switch kind {
	case CacheClues:
		if c.Clues != nil {
			return c.Clues
		}
	case CacheNPCs:
		if c.NPCs != nil {
			return c.NPCs
		}
	case CachePlayers:
		if c.Players != nil {
			return c.Players
		}
	}
	return nil
}

// GameState is the single mutable record of a run.
// Only the session controller mutates it; everyone else sees Clone()s.
type GameState struct {
	RunID       string           `json:"run_id"`
	ActiveStep  string           `json:"active_step"`
	Clocks      []Clock          `json:"clocks"`
	OptionsList []string         `json:"options_list"`
	Caches      Caches           `json:"caches"`
	ActionLog   []ActionLogEntry `json:"action_log"`
}

// NewGameState creates a clean state for a run.
func NewGameState(runID string, clocks []Clock) *GameState {
	cs := make([]Clock, len(clocks))
	copy(cs, clocks)
	return &GameState{
		RunID:       runID,
		Clocks:      cs,
		OptionsList: []string{},
		ActionLog:   []ActionLogEntry{},
	}
}

// Clone returns a deep copy. Cached responses are treated as immutable values
// and shared.
func (s *GameState) Clone() GameState {
	out := *s
	out.Clocks = append([]Clock(nil), s.Clocks...)
	out.OptionsList = append([]string{}, s.OptionsList...)
	out.ActionLog = append([]ActionLogEntry{}, s.ActionLog...)
	return out
}

// Clock returns the clock with id.
func (s *GameState) Clock(id string) (Clock, bool) {
	for _, c := range s.Clocks {
		if c.ID == id {
			return c, true
		}
	}
	return Clock{}, false
}

// ApplyClockDelta moves the clock with id by delta, clamped to its bounds.
// It returns false if no clock has that id.
func (s *GameState) ApplyClockDelta(id string, delta int) bool {
	for i, c := range s.Clocks {
		if c.ID == id {
			s.Clocks[i] = c.Apply(delta)
			return true
		}
	}
	return false
}

// PushAction prepends an entry and truncates the log to its capacity.
func (s *GameState) PushAction(entry ActionLogEntry) {
	log := make([]ActionLogEntry, 0, ActionLogCapacity)
	log = append(log, entry)
	log = append(log, s.ActionLog...)
	if len(log) > ActionLogCapacity {
		log = log[:ActionLogCapacity]
	}
	s.ActionLog = log
}
