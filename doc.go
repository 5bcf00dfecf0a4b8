/*
Package gmboard is a game master's board for running tabletop scenarios with a
language model as co-narrator.

A scenario is a directory of Markdown documents. The steps document (chosen by
name markers such as "05_" or "steps") is split into named steps at "## STEP"
headers. A session keeps one mutable game state (active step, clocks, numbered
options, reference caches and a short action log) and an append-only history,
and changes it only through named transitions:

  - SelectStep and SelectDocument move the scene.
  - SubmitInput resolves a numbered choice or a free player action.
  - ToggleCacheView, EnsureCache and ForceRefresh manage the clue, NPC and
    player-character references.
  - RequestBrief, RequestBridges and RequestOptions are GM tools.
  - ApplyClockDelta, RollDie and Export need no generation.

Generation goes through the ports.Generator interface; adapters exist for
Gemini (pkg/adapters/gemini), OpenAI-compatible endpoints (pkg/adapters/openai)
and a scripted backend for tests and offline play (pkg/adapters/scripted).
At most one request per run is in flight; a concurrent request fails fast with
domain.ErrRequestInFlight. The latch is in-process by default and can be shared
across replicas with pkg/adapters/redis.

# Usage

	gen := scripted.New(nil, scripted.WithEcho())
	sess, err := gmboard.Open(ctx, "./scenario", gen)
	if err != nil {
		log.Fatal(err)
	}

	resp, err := sess.SelectStep(ctx, "STEP Intro")
	...
	resp, err = sess.SubmitInput(ctx, "2")

The same session can be served over HTTP (pkg/adapters/http), exposed as MCP
tools (pkg/adapters/mcp) or played in the terminal with cmd/gmboard.
*/
package gmboard
