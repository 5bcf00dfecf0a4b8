package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/gmboard/pkg/adapters/memory"
	"github.com/aretw0/gmboard/pkg/adapters/scripted"
	"github.com/aretw0/gmboard/pkg/docstore"
	"github.com/aretw0/gmboard/pkg/domain"
	"github.com/aretw0/gmboard/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
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

func newTestServer(t *testing.T, opts ...session.Option) (*Server, *scripted.Generator) {
	t.Helper()
	docs, err := docstore.New(
		domain.Document{Name: "01_context.md", Content: "Alpha Complex."},
		domain.Document{Name: "05_steps.md", Content: scenario},
	)
	require.NoError(t, err)

	gen := scripted.New(nil, scripted.WithEcho())
	sess, err := session.New(docs, gen, opts...)
	require.NoError(t, err)
	return NewServer(sess), gen
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func turnResult(t *testing.T, result *mcp.CallToolResult, err error) TurnResult {
	t.Helper()
	require.NoError(t, err)
	require.NotNil(t, result)
	require.False(t, result.IsError)
	out, ok := result.StructuredContent.(TurnResult)
	require.True(t, ok, "structured content is a TurnResult")
	return out
}

func TestToolsList(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	s.MCPServer().HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2025-03-26","capabilities":{},"clientInfo":{"name":"test","version":"0"}}}`))
	msg := s.MCPServer().HandleMessage(ctx, json.RawMessage(`{"jsonrpc":"2.0","id":2,"method":"tools/list"}`))

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	for _, tool := range []string{
		"list_steps", "get_step", "select_step", "select_document", "submit_input",
		"toggle_view", "refresh_cache", "adjust_clock", "gm_tool", "roll_die",
		"get_state", "export_history",
	} {
		assert.Contains(t, string(data), `"`+tool+`"`)
	}
}

func TestListAndGetStep(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleListSteps(ctx, call("list_steps", nil))
	require.NoError(t, err)
	steps, ok := result.StructuredContent.(StepsResult)
	require.True(t, ok)
	assert.Equal(t, []string{"STEP Intro", "STEP Finale"}, steps.Steps)

	result, err = s.handleGetStep(ctx, call("get_step", map[string]any{"name": "STEP Intro"}))
	require.NoError(t, err)
	step, ok := result.StructuredContent.(StepResult)
	require.True(t, ok)
	assert.Contains(t, step.Step.DescriptionLines, "The briefing room hums.")
	assert.Len(t, step.Rows, 2)

	result, err = s.handleGetStep(ctx, call("get_step", map[string]any{"name": "Nope"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestSelectStepAndInput(t *testing.T) {
	s, gen := newTestServer(t)
	ctx := context.Background()

	out := turnResult(t, s.handleSelectStep(ctx, call("select_step", map[string]any{"name": "STEP Finale"})))
	require.NotNil(t, out.Entry)
	assert.Equal(t, domain.CategoryNarrative, out.Entry.Type)
	assert.Equal(t, "STEP Finale", out.State.ActiveStep)

	out = turnResult(t, s.handleSubmitInput(ctx, call("submit_input", map[string]any{"text": "Run"})))
	assert.Equal(t, domain.CategoryTurnResolution, out.Entry.Type)
	assert.NotEmpty(t, out.State.OptionsList)
	assert.Equal(t, 2, gen.Calls())

	result, err := s.handleSelectStep(ctx, call("select_step", map[string]any{"name": ""}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestSelectDocument(t *testing.T) {
	s, gen := newTestServer(t)
	ctx := context.Background()

	out := turnResult(t, s.handleSelectDocument(ctx, call("select_document", map[string]any{"name": "01_context.md"})))
	assert.Equal(t, "01_context.md", out.State.ActiveStep)
	assert.Zero(t, gen.Calls())

	result, err := s.handleSelectDocument(ctx, call("select_document", map[string]any{"name": "missing.md"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestToggleAndRefresh(t *testing.T) {
	s, gen := newTestServer(t)
	ctx := context.Background()

	out := turnResult(t, s.handleToggleView(ctx, call("toggle_view", map[string]any{"kind": "npc"})))
	assert.Equal(t, session.ViewNPCs, out.View)
	assert.Equal(t, domain.CategoryNPCRoster, out.Entry.Type)

	out = turnResult(t, s.handleToggleView(ctx, call("toggle_view", map[string]any{"kind": "npc"})))
	assert.Equal(t, session.ViewTerminal, out.View)
	assert.Nil(t, out.Entry)

	turnResult(t, s.handleRefreshCache(ctx, call("refresh_cache", map[string]any{"kind": "npc"})))
	assert.Equal(t, 2, gen.Calls())

	result, err := s.handleToggleView(ctx, call("toggle_view", map[string]any{"kind": "weather"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestInFlightIsToolError(t *testing.T) {
	latch := memory.NewLatch()
	s, gen := newTestServer(t, session.WithLatch(latch), session.WithRunID("run-1"))

	release, ok, err := latch.TryAcquire(context.Background(), "run-1", session.DefaultLatchTTL)
	require.NoError(t, err)
	require.True(t, ok)
	defer release(context.Background())

	result, err := s.handleGMTool(context.Background(), call("gm_tool", map[string]any{"tool": "brief"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Zero(t, gen.Calls())
}

func TestAdjustClockAndRoll(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleAdjustClock(ctx, call("adjust_clock", map[string]any{"clock": "resources", "delta": -2}))
	require.NoError(t, err)
	clock, ok := result.StructuredContent.(domain.Clock)
	require.True(t, ok)
	assert.Equal(t, 3, clock.Current)

	result, err = s.handleAdjustClock(ctx, call("adjust_clock", map[string]any{"clock": "doom", "delta": 1}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = s.handleRoll(ctx, call("roll_die", nil))
	require.NoError(t, err)
	roll, ok := result.StructuredContent.(RollResult)
	require.True(t, ok)
	assert.GreaterOrEqual(t, roll.Value, 1)
	assert.LessOrEqual(t, roll.Value, session.DieFaces)
}

func TestGMToolUnknown(t *testing.T) {
	s, _ := newTestServer(t)
	result, err := s.handleGMTool(context.Background(), call("gm_tool", map[string]any{"tool": "summon"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestExportHistory(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	result, err := s.handleExport(ctx, call("export_history", nil))
	require.NoError(t, err)
	assert.False(t, result.IsError, "empty history is not an error")

	turnResult(t, s.handleGMTool(ctx, call("gm_tool", map[string]any{"tool": "options"})))

	result, err = s.handleExport(ctx, call("export_history", nil))
	require.NoError(t, err)
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "GMBOARD - SESSION LOG")
	assert.Contains(t, text.Text, "OPTIONS")
}
