package domain

// Intent tags a generation request with the response category it expects.
type Intent string

const (
	IntentSceneBrief Intent = "GM_BRIEF"
	IntentNarrative  Intent = "PLAYER_FACING"
	IntentTurn       Intent = "TURN_RESULT"
	IntentOptions    Intent = "OPTIONS"
	IntentBridges    Intent = "RAIL_BRIDGES"
	IntentClues      Intent = "CLUE_DROPS"
	IntentNPCs       Intent = "CHARACTERS_LIST"
	IntentPlayers    Intent = "PLAYERS_LIST"
)

// Expects returns the category a well-behaved collaborator answers with.
func (i Intent) Expects() Category {
	return Category(i)
}

// CacheKind names one of the three cached reference views.
type CacheKind string

const (
	CacheClues   CacheKind = "clues"
	CacheNPCs    CacheKind = "npc"
	CachePlayers CacheKind = "player"
)

// CacheKinds lists the cache kinds in display order.
func CacheKinds() []CacheKind {
	return []CacheKind{CacheClues, CacheNPCs, CachePlayers}
}

// ParseCacheKind accepts the canonical names plus a few aliases used by hosts.
func ParseCacheKind(s string) (CacheKind, bool) {
	switch s {
	case "clues", "clue", "indices":
		return CacheClues, true
	case "npc", "npcs", "pnj":
		return CacheNPCs, true
	case "player", "players", "pc", "pj":
		return CachePlayers, true
	}
	return "", false
}

// Intent returns the request intent that fills this cache.
func (k CacheKind) Intent() Intent {
	switch k {
	case CacheClues:
		return IntentClues
	case CacheNPCs:
		return IntentNPCs
	case CachePlayers:
		return IntentPlayers
	}
	return ""
}
