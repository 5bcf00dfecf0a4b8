package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/gmboard/pkg/domain"
)

// Formatter turns session data into Markdown.
// In player view, provenance lines are hidden.
type Formatter struct {
	PlayerView bool
}

// Entry formats one response.
func (f Formatter) Entry(resp domain.Response) string {
	if resp == nil {
		return ""
	}
	w := &markdownWriter{player: f.PlayerView}
	resp.Accept(w)
	if !w.player {
		if sources := resp.Provenance(); len(sources) > 0 {
			fmt.Fprintf(&w.b, "\n_Sources: %s_\n", strings.Join(sources, ", "))
		}
	}
	return w.b.String()
}

// Clocks formats the clock gauges as a list, e.g. "ALERT [##..] 2/4".
func (f Formatter) Clocks(clocks []domain.Clock) string {
	var b strings.Builder
	for _, c := range clocks {
		fmt.Fprintf(&b, "- **%s** `[%s%s]` %d/%d\n",
			c.Name, strings.Repeat("#", c.Current), strings.Repeat(".", c.Max-c.Current), c.Current, c.Max)
	}
	return b.String()
}

// Status formats the header shown above the prompt.
func (f Formatter) Status(state domain.GameState, view string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", orDash(state.ActiveStep))
	b.WriteString(f.Clocks(state.Clocks))
	if view != "" && view != "terminal" {
		fmt.Fprintf(&b, "\n_Overlay: %s_\n", view)
	}
	if len(state.OptionsList) > 0 {
		b.WriteString("\n")
		writeNumbered(&b, state.OptionsList)
	}
	return b.String()
}

// Steps formats the step catalog, marking the active one.
func (f Formatter) Steps(steps []string, active string) string {
	var b strings.Builder
	b.WriteString("### Steps\n\n")
	for i, name := range steps {
		marker := ""
		if name == active {
			marker = " **<**"
		}
		fmt.Fprintf(&b, "%d. %s%s\n", i+1, name, marker)
	}
	return b.String()
}

// Step formats a resolved step with its table.
func (f Formatter) Step(step domain.Step) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", step.Name)
	for _, line := range step.DescriptionLines {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(strings.TrimSpace(line), "|") {
			continue
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if step.Table != nil {
		b.WriteString("\n")
		b.WriteString(strings.Join(step.Table.Lines, "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func writeBullets(b *strings.Builder, items []string) {
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func writeNumbered(b *strings.Builder, items []string) {
	for i, item := range items {
		fmt.Fprintf(b, "%d. %s\n", i+1, item)
	}
}

type markdownWriter struct {
	b      strings.Builder
	player bool
}

func (w *markdownWriter) VisitSceneBrief(r *domain.SceneBrief) {
	fmt.Fprintf(&w.b, "### GM BRIEF: %s\n\n", orDash(r.Scene))
	writeBullets(&w.b, r.Bullets)
}

func (w *markdownWriter) VisitNarrative(r *domain.Narrative) {
	if r.Title != "" {
		fmt.Fprintf(&w.b, "### %s\n\n", r.Title)
	}
	for _, line := range r.Bullets {
		fmt.Fprintf(&w.b, "> %s\n>\n", line)
	}
}

func (w *markdownWriter) VisitSystemMessage(r *domain.SystemMessage) {
	for _, line := range r.Bullets {
		fmt.Fprintf(&w.b, "`COMPUTER: %s`\n\n", line)
	}
}

func (w *markdownWriter) VisitBridgeSuggestions(r *domain.BridgeSuggestions) {
	fmt.Fprintf(&w.b, "### BRIDGES: %s -> %s\n\n", orDash(r.From), orDash(r.To))
	writeBullets(&w.b, r.Bridges)
}

func (w *markdownWriter) VisitConsequences(r *domain.Consequences) {
	fmt.Fprintf(&w.b, "### %s\n\n", orDash(r.Trigger))
	writeBullets(&w.b, r.Bullets)
}

func (w *markdownWriter) VisitOptionSet(r *domain.OptionSet) {
	if r.Prompt != "" {
		fmt.Fprintf(&w.b, "**%s**\n\n", r.Prompt)
	}
	writeNumbered(&w.b, r.Choices)
}

func (w *markdownWriter) VisitTurnResolution(r *domain.TurnResolution) {
	fmt.Fprintf(&w.b, "### %s\n\n", orDash(r.Trigger))
	writeBullets(&w.b, r.Consequences)
	if len(r.NewOptions) > 0 {
		w.b.WriteString("\n**Options**\n\n")
		writeNumbered(&w.b, r.NewOptions)
	}
}

func (w *markdownWriter) VisitClueSet(r *domain.ClueSet) {
	w.b.WriteString("### CLUES\n\n")
	writeBullets(&w.b, r.Bullets)
}

func (w *markdownWriter) VisitNPCRoster(r *domain.NPCRoster) {
	w.b.WriteString("### NPCS\n\n")
	if len(r.Characters) == 0 {
		w.b.WriteString("_None known._\n")
		return
	}
	w.b.WriteString("| Name | Role | Trait |\n|---|---|---|\n")
	for _, c := range r.Characters {
		fmt.Fprintf(&w.b, "| %s | %s | %s |\n", cell(c.Name), cell(c.Role), cell(c.Trait))
	}
}

func (w *markdownWriter) VisitPlayerRoster(r *domain.PlayerRoster) {
	w.b.WriteString("### PLAYERS\n\n")
	if len(r.Players) == 0 {
		w.b.WriteString("_None known._\n")
		return
	}
	for _, p := range r.Players {
		fmt.Fprintf(&w.b, "**%s** [%s]\n\n", p.Name, orDash(p.Society))
		if p.Mutation != "" {
			fmt.Fprintf(&w.b, "- Mutation: %s\n", p.Mutation)
		}
		if p.SocietyGoal != "" {
			fmt.Fprintf(&w.b, "- Society goal: %s\n", p.SocietyGoal)
		}
		if p.PersonalGoal != "" {
			fmt.Fprintf(&w.b, "- Personal goal: %s\n", p.PersonalGoal)
		}
		if p.DescriptionShort != "" {
			fmt.Fprintf(&w.b, "- %s\n", p.DescriptionShort)
		}
		w.b.WriteString("\n")
	}
}

func cell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}
