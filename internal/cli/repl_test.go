package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/gmboard/internal/config"
	"github.com/aretw0/gmboard/pkg/adapters/memory"
	"github.com/aretw0/gmboard/pkg/adapters/scripted"
	"github.com/aretw0/gmboard/pkg/docstore"
	"github.com/aretw0/gmboard/pkg/domain"
	"github.com/aretw0/gmboard/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenario = `## STEP Intro
The briefing room hums.

| Clue | Where |
|------|-------|
| Badge | Desk |

## STEP Finale
Everything explodes.
`

func newTestREPL(t *testing.T, input string, opts ...session.Option) (*REPL, *bytes.Buffer, *scripted.Generator) {
	t.Helper()
	docs, err := docstore.New(
		domain.Document{Name: "01_context.md", Content: "Alpha Complex."},
		domain.Document{Name: "05_steps.md", Content: scenario},
	)
	require.NoError(t, err)

	gen := scripted.New(nil, scripted.WithEcho())
	opts = append([]session.Option{session.WithDie(func(int) int { return 3 })}, opts...)
	sess, err := session.New(docs, gen, opts...)
	require.NoError(t, err)

	var out bytes.Buffer
	r := NewREPL(sess, strings.NewReader(input), &out)
	r.ExportDir = t.TempDir()
	return r, &out, gen
}

func TestREPL_Run(t *testing.T) {
	r, out, gen := newTestREPL(t, strings.Join([]string{
		"/steps",
		"/step 2",
		"we run",
		"1",
		"/roll",
		"/quit",
		"never reached",
	}, "\n"))

	require.NoError(t, r.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "2. STEP Finale")
	assert.Contains(t, text, "### STEP Finale")
	assert.Contains(t, text, "d6: 4")
	assert.Equal(t, 3, gen.Calls(), "step intro plus two turns")

	reqs := gen.Requests()
	assert.Contains(t, reqs[1].Query, "we run")
	assert.Contains(t, reqs[2].Query, "Wait", "numeric input picks the option text")
}

func TestREPL_EOFEndsLoop(t *testing.T) {
	r, _, _ := newTestREPL(t, "/state\n")
	assert.NoError(t, r.Run(context.Background()))
}

func TestREPL_Overlays(t *testing.T) {
	r, out, gen := newTestREPL(t, "")
	ctx := context.Background()

	require.NoError(t, r.Handle(ctx, "/clues"))
	assert.Contains(t, out.String(), "### CLUES")
	assert.Equal(t, session.ViewClues, r.Session.View())

	require.NoError(t, r.Handle(ctx, "/clues"))
	assert.Contains(t, out.String(), "Overlay closed.")
	assert.Equal(t, 1, gen.Calls())

	require.NoError(t, r.Handle(ctx, "/refresh clues"))
	assert.Equal(t, 2, gen.Calls())

	out.Reset()
	require.NoError(t, r.Handle(ctx, "/refresh weather"))
	assert.Contains(t, out.String(), "Error:")
}

func TestREPL_Clock(t *testing.T) {
	r, out, _ := newTestREPL(t, "")
	ctx := context.Background()

	require.NoError(t, r.Handle(ctx, "/clock alert 2"))
	assert.Contains(t, out.String(), "2/4")

	out.Reset()
	require.NoError(t, r.Handle(ctx, "/clock doom 1"))
	assert.Contains(t, out.String(), "unknown clock")

	out.Reset()
	require.NoError(t, r.Handle(ctx, "/clock alert lots"))
	assert.Contains(t, out.String(), "invalid delta")
}

func TestREPL_Busy(t *testing.T) {
	latch := memory.NewLatch()
	r, out, gen := newTestREPL(t, "", session.WithLatch(latch), session.WithRunID("run-1"))

	release, ok, err := latch.TryAcquire(context.Background(), "run-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	defer release(context.Background())

	require.NoError(t, r.Handle(context.Background(), "/brief"))
	assert.Contains(t, out.String(), "COMPUTER BUSY")
	assert.Zero(t, gen.Calls())
}

func TestREPL_Export(t *testing.T) {
	r, out, _ := newTestREPL(t, "")
	ctx := context.Background()

	require.NoError(t, r.Handle(ctx, "/export"))
	assert.Contains(t, out.String(), "Nothing to export")

	require.NoError(t, r.Handle(ctx, "/options"))
	out.Reset()
	require.NoError(t, r.Handle(ctx, "/export"))
	assert.Contains(t, out.String(), "Session log written to")

	entries, err := os.ReadDir(r.ExportDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "gmboard_session_"))
}

func TestREPL_DocsAndShow(t *testing.T) {
	r, out, gen := newTestREPL(t, "")
	ctx := context.Background()

	require.NoError(t, r.Handle(ctx, "/doc 1"))
	assert.Contains(t, out.String(), "Alpha Complex.")
	assert.Zero(t, gen.Calls())

	out.Reset()
	require.NoError(t, r.Handle(ctx, "/show STEP Intro"))
	assert.Contains(t, out.String(), "| Badge | Desk |")

	out.Reset()
	require.NoError(t, r.Handle(ctx, "/show Nowhere"))
	assert.Contains(t, out.String(), `No step named "Nowhere"`)

	out.Reset()
	require.NoError(t, r.Handle(ctx, "/frobnicate"))
	assert.Contains(t, out.String(), "Unknown command /frobnicate")
}

func TestNewGenerator(t *testing.T) {
	ctx := context.Background()
	logger := config.Default().Logger()

	cfg := config.Default()
	cfg.Provider = config.ProviderScripted
	gen, err := NewGenerator(ctx, cfg, logger)
	require.NoError(t, err)
	assert.IsType(t, &scripted.Generator{}, gen)

	cfg.Script = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = NewGenerator(ctx, cfg, logger)
	assert.Error(t, err)

	cfg = config.Default()
	cfg.APIKey = ""
	_, err = NewGenerator(ctx, cfg, logger)
	assert.Error(t, err, "gemini requires a key")

	cfg.Provider = "oracle"
	_, err = NewGenerator(ctx, cfg, logger)
	assert.Error(t, err)
}

func TestNewLatch(t *testing.T) {
	cfg := config.Default()
	assert.IsType(t, &memory.Latch{}, NewLatch(cfg))
}

func TestPlay(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "05_steps.md"), []byte(scenario), 0o644))

	cfg := config.Default()
	cfg.Dir = dir
	cfg.Provider = config.ProviderScripted
	cfg.ExportDir = t.TempDir()

	var out bytes.Buffer
	err := Play(cfg, PlayOptions{In: strings.NewReader("/step Finale\n/export\n"), Out: &out})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "documents loaded")
	assert.Contains(t, out.String(), "Session log written to")
}
