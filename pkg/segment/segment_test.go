package segment_test

import (
	"strings"
	"testing"

	"github.com/aretw0/gmboard/pkg/domain"
	"github.com/aretw0/gmboard/pkg/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const introFinale = `# Scenario

## STEP Intro
The briefing room hums.
Computer is watching.

| Clue | Where |
|------|-------|
| Badge | Desk |

## STEP Finale
Everything explodes.
`

func TestSteps_IntroFinale(t *testing.T) {
	seg := segment.New()

	steps := seg.Steps(introFinale)
	assert.Equal(t, []string{"STEP Intro", "STEP Finale"}, steps)

	start, end, ok := seg.Bounds(introFinale, "STEP Intro")
	require.True(t, ok)
	lines := strings.Split(introFinale, "\n")
	assert.Equal(t, "## STEP Intro", lines[start])
	assert.Equal(t, "## STEP Finale", lines[end], "Intro must end exactly at the Finale header")

	step, ok := seg.Resolve(introFinale, "STEP Intro")
	require.True(t, ok)
	require.NotNil(t, step.Table)
	assert.Equal(t, []string{"| Clue | Where |", "|------|-------|", "| Badge | Desk |"}, step.Table.Lines)
	assert.Equal(t, [][]string{{"Clue", "Where"}, {"Badge", "Desk"}}, step.Table.Rows())

	finale, ok := seg.Resolve(introFinale, "STEP Finale")
	require.True(t, ok)
	assert.Equal(t, len(lines), finale.EndLine)
	assert.Nil(t, finale.Table)
	assert.Equal(t, []string{"Everything explodes."}, finale.DescriptionLines)
}

func TestBounds_Property(t *testing.T) {
	docs := []string{
		introFinale,
		"## STEP A\n## STEP B\n## STEP C",
		"## step lower\ntext\n### detail\n## Step Mixed\n",
		"## STEP Dup\none\n## STEP Other\n## STEP Dup\ntwo\n",
		"\r\n## STEP Windows\r\nline\r\n",
	}
	seg := segment.New()

	for _, content := range docs {
		lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
		for _, name := range seg.Steps(content) {
			start, end, ok := seg.Bounds(content, name)
			require.True(t, ok, name)
			assert.Less(t, start, end)
			assert.LessOrEqual(t, end, len(lines))
			assert.Equal(t, name, strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(lines[start]), "#")))
			if end < len(lines) {
				assert.True(t, seg.IsHeader(lines[end]), "end must be a header line: %q", lines[end])
			}
			for i := start + 1; i < end; i++ {
				assert.False(t, seg.IsHeader(lines[i]), "no header strictly inside the region")
			}
		}
	}
}

func TestIsHeader(t *testing.T) {
	seg := segment.New()
	tests := []struct {
		line string
		want bool
	}{
		{"## STEP Intro", true},
		{"  ## step intro  ", true},
		{"##STEP Tight", true},
		{"### STEP Deeper", false},
		{"# STEP Shallow", false},
		{"## Credits", false},
		{"| ## STEP in table |", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, seg.IsHeader(tt.line))
		})
	}
}

func TestDescription_StopsAtDeeperHeader(t *testing.T) {
	content := "## STEP One\n\n  first  \n\nsecond\n### GM notes\nhidden\n\nmore hidden\n## STEP Two\n"
	step, ok := segment.New().Resolve(content, "STEP One")
	require.True(t, ok)
	assert.Equal(t, []string{"first", "second"}, step.DescriptionLines)
}

func TestTable_LastRunWins(t *testing.T) {
	content := strings.Join([]string{
		"## STEP One",
		"| a | b |",
		"| 1 | 2 |",
		"",
		"interlude",
		"| recap |",
		"|-------|",
		"| done |",
		"## STEP Two",
	}, "\n")
	step, ok := segment.New().Resolve(content, "STEP One")
	require.True(t, ok)
	require.NotNil(t, step.Table)
	assert.Equal(t, []string{"| recap |", "|-------|", "| done |"}, step.Table.Lines)
}

func TestDuplicateNames(t *testing.T) {
	content := "## STEP Dup\none\n## STEP Other\nx\n## STEP Dup\ntwo\n"
	seg := segment.New()

	assert.Equal(t, []string{"STEP Dup", "STEP Other", "STEP Dup"}, seg.Steps(content))

	start, end, ok := seg.Bounds(content, "STEP Dup")
	require.True(t, ok)
	assert.Equal(t, 0, start)
	assert.Equal(t, 2, end, "end is the next header regardless of its name")
}

func TestFallbackCatalog(t *testing.T) {
	seg := segment.New()
	assert.Equal(t, segment.FallbackCatalog, seg.Steps("# Title\nno steps here\n### STEP nested\n"))
	assert.Equal(t, segment.FallbackCatalog, seg.Steps(""))

	_, ok := seg.Resolve("no steps", "INTRO")
	assert.False(t, ok)
}

func TestCustomKeyword(t *testing.T) {
	seg := segment.New(segment.WithKeyword("ÉTAPE"))
	content := "## ÉTAPE 1 : Briefing\ntexte\n## étape 2 : Mission\n## STEP ignored\n"
	assert.Equal(t, []string{"ÉTAPE 1 : Briefing", "étape 2 : Mission"}, seg.Steps(content))
	assert.Equal(t, "ÉTAPE", seg.Keyword())
}

func TestSelectDocument(t *testing.T) {
	seg := segment.New()

	_, ok := seg.SelectDocument(nil)
	assert.False(t, ok)
	assert.Empty(t, seg.Catalog(nil))

	docs := []domain.Document{
		{Name: "01_context.md"},
		{Name: "my_etapes.md"},
		{Name: "Steps_overview.md"},
		{Name: "05_timeline.md"},
	}
	doc, ok := seg.SelectDocument(docs)
	require.True(t, ok)
	assert.Equal(t, "05_timeline.md", doc.Name, "markers are tried in priority order")

	doc, _ = seg.SelectDocument(docs[:3])
	assert.Equal(t, "Steps_overview.md", doc.Name, "marker match is case-insensitive")

	doc, _ = seg.SelectDocument([]domain.Document{{Name: "a.md"}, {Name: "b.md"}})
	assert.Equal(t, "a.md", doc.Name)

	doc, _ = segment.New(segment.WithMarkers("b")).SelectDocument([]domain.Document{{Name: "a.md"}, {Name: "b.md"}})
	assert.Equal(t, "b.md", doc.Name)
}

func TestCatalog(t *testing.T) {
	docs := []domain.Document{
		{Name: "01_intro.md", Content: "## STEP Wrong\n"},
		{Name: "05_steps.md", Content: introFinale},
	}
	assert.Equal(t, []string{"STEP Intro", "STEP Finale"}, segment.New().Catalog(docs))
}
