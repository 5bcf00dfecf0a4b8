package history

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/gmboard/pkg/domain"
)

const (
	reportTitle = "GMBOARD - SESSION LOG"
	rule        = "----------------------------------------"

	runIDPrefix = "RUN ID: "
	datePrefix  = "DATE: "
	typeMarker  = "] TYPE: "
)

var (
	// ErrEmpty is returned when exporting a log with no entries.
	ErrEmpty = errors.New("history is empty")
	// ErrMalformed is returned by Parse when a report cannot be read back.
	ErrMalformed = errors.New("malformed session report")
)

// FileName returns the dated export file name for day.
func FileName(day time.Time) string {
	return "gmboard_session_" + day.Format("2006-01-02") + ".txt"
}

// Export writes the report for entries. An empty slice yields ErrEmpty and
// writes nothing.
func Export(w io.Writer, runID string, at time.Time, entries []domain.HistoryEntry) error {
	if len(entries) == 0 {
		return ErrEmpty
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s%s\n%s%s\n%s\n\n", reportTitle, runIDPrefix, flatten(runID), datePrefix, at.UTC().Format(time.RFC3339), rule)

	for _, e := range entries {
		if e.Response == nil {
			continue
		}
		fmt.Fprintf(&b, "[%s%s%s\n", e.At.UTC().Format(time.RFC3339Nano), typeMarker, e.Category())
		e.Response.Accept(&entryWriter{b: &b})
		fmt.Fprintf(&b, "\n%s\n\n", rule)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Export writes the report for the whole log.
func (l *Log) Export(w io.Writer, runID string, at time.Time) error {
	return Export(w, runID, at, l.Entries())
}

// entryWriter dumps every field of a response; absent fields are skipped.
type entryWriter struct {
	b       *strings.Builder
	content []string
}

func (w *entryWriter) field(label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w.b, "%s: %s\n", label, flatten(value))
}

func (w *entryWriter) bullets(items []string) {
	for _, item := range items {
		w.content = append(w.content, " - "+flatten(item))
	}
}

func (w *entryWriter) numbered(indent string, items []string) {
	for i, item := range items {
		w.content = append(w.content, indent+strconv.Itoa(i+1)+". "+flatten(item))
	}
}

func (w *entryWriter) finish(sources []string) {
	if len(w.content) > 0 {
		w.b.WriteString("CONTENT:\n")
		for _, line := range w.content {
			w.b.WriteString(line)
			w.b.WriteByte('\n')
		}
	}
	if len(sources) > 0 {
		flat := make([]string, len(sources))
		for i, s := range sources {
			flat[i] = flatten(s)
		}
		fmt.Fprintf(w.b, "SOURCES: %s\n", strings.Join(flat, ", "))
	}
}

func (w *entryWriter) VisitSceneBrief(r *domain.SceneBrief) {
	w.field("SCENE", r.Scene)
	w.bullets(r.Bullets)
	w.finish(r.Sources)
}

func (w *entryWriter) VisitNarrative(r *domain.Narrative) {
	w.field("TITLE", r.Title)
	w.bullets(r.Bullets)
	w.finish(r.Sources)
}

func (w *entryWriter) VisitSystemMessage(r *domain.SystemMessage) {
	w.bullets(r.Bullets)
	w.finish(r.Sources)
}

func (w *entryWriter) VisitBridgeSuggestions(r *domain.BridgeSuggestions) {
	w.field("FROM", r.From)
	w.field("TO", r.To)
	w.bullets(r.Bridges)
	w.finish(r.Sources)
}

func (w *entryWriter) VisitConsequences(r *domain.Consequences) {
	w.field("TRIGGER", r.Trigger)
	w.bullets(r.Bullets)
	w.finish(r.Sources)
}

func (w *entryWriter) VisitOptionSet(r *domain.OptionSet) {
	w.field("PROMPT", r.Prompt)
	w.numbered(" ", r.Choices)
	w.finish(r.Sources)
}

func (w *entryWriter) VisitTurnResolution(r *domain.TurnResolution) {
	w.field("TRIGGER", r.Trigger)
	if len(r.Consequences) > 0 {
		w.content = append(w.content, " > CONSEQUENCES:")
		for _, c := range r.Consequences {
			w.content = append(w.content, "   * "+flatten(c))
		}
	}
	if len(r.NewOptions) > 0 {
		w.content = append(w.content, " > NEW OPTIONS:")
		w.numbered("   ", r.NewOptions)
	}
	w.finish(r.Sources)
}

func (w *entryWriter) VisitClueSet(r *domain.ClueSet) {
	w.bullets(r.Bullets)
	w.finish(r.Sources)
}

func (w *entryWriter) VisitNPCRoster(r *domain.NPCRoster) {
	for _, c := range r.Characters {
		line := " - " + flatten(c.Name)
		if c.Role != "" {
			line += " (" + flatten(c.Role) + ")"
		}
		if c.Trait != "" {
			line += ": " + flatten(c.Trait)
		}
		w.content = append(w.content, line)
	}
	w.finish(r.Sources)
}

func (w *entryWriter) VisitPlayerRoster(r *domain.PlayerRoster) {
	for _, p := range r.Players {
		line := " - " + flatten(p.Name)
		if p.Society != "" {
			line += " [" + flatten(p.Society) + "]"
		}
		w.content = append(w.content, line)
		for _, kv := range [][2]string{
			{"mutation", p.Mutation},
			{"society goal", p.SocietyGoal},
			{"personal goal", p.PersonalGoal},
			{"description", p.DescriptionShort},
		} {
			if kv[1] != "" {
				w.content = append(w.content, "     "+kv[0]+": "+flatten(kv[1]))
			}
		}
	}
	w.finish(r.Sources)
}

// flatten folds line breaks so every value stays on its own line.
func flatten(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.Join(strings.Fields(strings.NewReplacer("\r", " ", "\n", " ").Replace(s)), " ")
}

// Record is one entry header recovered from a report.
type Record struct {
	Category domain.Category
	At       time.Time
}

// Report is what Parse recovers from an exported log.
type Report struct {
	RunID   string
	Date    time.Time
	Records []Record
}

// Parse reads an exported report back.
func Parse(r io.Reader) (*Report, error) {
	rep := &Report{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		switch {
		case rep.RunID == "" && strings.HasPrefix(line, runIDPrefix):
			rep.RunID = strings.TrimPrefix(line, runIDPrefix)
		case rep.Date.IsZero() && strings.HasPrefix(line, datePrefix):
			d, err := time.Parse(time.RFC3339, strings.TrimPrefix(line, datePrefix))
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNo, err)
			}
			rep.Date = d
		case strings.HasPrefix(line, "["):
			i := strings.Index(line, typeMarker)
			if i < 0 {
				return nil, fmt.Errorf("%w: line %d: missing type", ErrMalformed, lineNo)
			}
			at, err := time.Parse(time.RFC3339Nano, line[1:i])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, lineNo, err)
			}
			rep.Records = append(rep.Records, Record{
				Category: domain.Category(line[i+len(typeMarker):]),
				At:       at,
			})
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if rep.RunID == "" {
		return nil, fmt.Errorf("%w: no run id", ErrMalformed)
	}
	return rep, nil
}
