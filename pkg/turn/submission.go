// Package turn interprets game-master input, builds generation requests and
// folds typed responses back into session state.
package turn

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/gmboard/pkg/domain"
)

// Kind distinguishes numbered choices from free actions.
type Kind string

const (
	KindChoice Kind = "choice"
	KindFree   Kind = "free"
)

// Submission is a parsed line of player input.
type Submission struct {
	Kind   Kind
	Choice int
	Option string
	Text   string
}

// ParseSubmission classifies text against the pending options. Empty input
// reports false. A strict integer n with 1 <= n <= MaxChoice and
// n <= len(options) is a choice; anything else is a free action carrying the
// trimmed text verbatim.
func ParseSubmission(text string, options []string) (Submission, bool) {
	val := strings.TrimSpace(text)
	if val == "" {
		return Submission{}, false
	}
	if n, err := strconv.Atoi(val); err == nil && n >= 1 && n <= domain.MaxChoice && n <= len(options) {
		return Submission{Kind: KindChoice, Choice: n, Option: options[n-1], Text: val}, true
	}
	return Submission{Kind: KindFree, Text: val}, true
}

// Intent is always a turn resolution.
func (s Submission) Intent() domain.Intent {
	return domain.IntentTurn
}

// Query renders the collaborator query for the submission.
func (s Submission) Query() string {
	if s.Kind == KindChoice {
		return ChoiceQuery(s.Choice, s.Option)
	}
	return FreeQuery(s.Text)
}

// ChoiceQuery asks for the outcome of numbered option n.
func ChoiceQuery(n int, option string) string {
	return fmt.Sprintf("Action: the player picks option %d: %q. Analyse the consequences and propose 10 new options.", n, option)
}

// FreeQuery asks for the outcome of a free action.
func FreeQuery(text string) string {
	return fmt.Sprintf("Free player action: %q. Analyse the consequences and propose 10 new options.", text)
}

// StepIntroQuery asks for the read-aloud introduction of a step.
func StepIntroQuery(step string) string {
	return fmt.Sprintf("We are starting step %q. Generate an immersive introductory description (PLAYER_FACING) to read to the players, setting the scene and the initial situation of this step.", step)
}

const (
	BriefQuery   = "Quick brief of the situation."
	BridgesQuery = "3 ways to bring the players back onto the scenario."
	OptionsQuery = "List 10 options for what the players can do now."
)

// CacheQuery is the first-fill query for a cache kind.
func CacheQuery(kind domain.CacheKind) string {
	switch kind {
	case domain.CacheClues:
		return "List the clues for this step. IMPORTANT: include vital clues for the scenario, BUT ALSO clues that raise suspicion about the PCs (tied to their secret societies or missions) and red herrings."
	case domain.CacheNPCs:
		return "List the important non-player characters of the story, excluding the players."
	case domain.CachePlayers:
		return "Analyse the player character files and list every PC with their mutations, societies and goals."
	}
	return ""
}

// RefreshQuery is the forced-refresh query for a cache kind.
func RefreshQuery(kind domain.CacheKind) string {
	switch kind {
	case domain.CacheClues:
		return "Force refresh clues"
	case domain.CacheNPCs:
		return "Force refresh NPCs"
	case domain.CachePlayers:
		return "Force refresh PCs"
	}
	return ""
}
