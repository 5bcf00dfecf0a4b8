package session

import "github.com/aretw0/gmboard/pkg/domain"

// View is the overlay currently shown to the game master.
type View string

const (
	ViewTerminal View = "terminal"
	ViewClues    View = "clues"
	ViewNPCs     View = "npc"
	ViewPlayers  View = "player"
)

// ViewFor returns the overlay matching a cache kind.
func ViewFor(kind domain.CacheKind) View {
	switch kind {
	case domain.CacheClues:
		return ViewClues
	case domain.CacheNPCs:
		return ViewNPCs
	case domain.CachePlayers:
		return ViewPlayers
	}
	return ViewTerminal
}
