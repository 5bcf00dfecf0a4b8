package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/gmboard/internal/logging"
	"github.com/aretw0/gmboard/internal/presentation/tui"
	"github.com/aretw0/gmboard/pkg/domain"
	"github.com/aretw0/gmboard/pkg/session"
)

const helpText = `### Commands

| Command | Effect |
|---|---|
| _text_ or _number_ | player action or option choice |
| /steps | list steps |
| /step NAME or N | select a step |
| /show NAME or N | show a step's notes and table |
| /docs | list documents |
| /doc NAME or N | show a document |
| /clues, /npc, /pc | toggle a reference overlay |
| /refresh KIND | regenerate clues, npc or pc |
| /clock [ID DELTA] | show or move a clock |
| /brief, /bridges, /options | GM tools |
| /roll | roll a d6 |
| /state | show the board |
| /export | write the session log |
| /quit | leave |
`

// REPL drives one session from line-based input.
type REPL struct {
	Session   *session.Session
	In        io.Reader
	Out       io.Writer
	Format    tui.Formatter
	Render    tui.RenderFunc
	ExportDir string
	Logger    *slog.Logger

	commands map[string]command
}

type command func(ctx context.Context, args string) error

// errQuit ends the loop.
var errQuit = errors.New("quit")

// NewREPL creates a REPL with plain rendering; callers may replace Render.
func NewREPL(sess *session.Session, in io.Reader, out io.Writer) *REPL {
	r := &REPL{
		Session:   sess,
		In:        in,
		Out:       out,
		Render:    tui.NewRenderer(true, 0),
		ExportDir: ".",
		Logger:    logging.NewNop(),
	}
	r.commands = map[string]command{
		"help":    r.help,
		"steps":   r.steps,
		"step":    r.step,
		"show":    r.show,
		"docs":    r.docs,
		"doc":     r.doc,
		"clues":   r.toggle(domain.CacheClues),
		"npc":     r.toggle(domain.CacheNPCs),
		"pc":      r.toggle(domain.CachePlayers),
		"refresh": r.refresh,
		"clock":   r.clock,
		"brief":   r.tool(sess.RequestBrief),
		"bridges": r.tool(sess.RequestBridges),
		"options": r.tool(sess.RequestOptions),
		"roll":    r.roll,
		"state":   r.state,
		"export":  r.export,
		"quit":    func(context.Context, string) error { return errQuit },
		"exit":    func(context.Context, string) error { return errQuit },
		"q":       func(context.Context, string) error { return errQuit },
	}
	return r
}

// Run reads lines until EOF, /quit or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r.In)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	r.print(r.Format.Status(r.Session.Snapshot(), string(r.Session.View())))
	for {
		fmt.Fprint(r.Out, "> ")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					return err
				default:
					return nil
				}
			}
			if err := r.Handle(ctx, line); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				return err
			}
		}
	}
}

// Handle executes one line. Session errors are reported to Out; only
// errQuit and context cancellation are returned.
func (r *REPL) Handle(ctx context.Context, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	var err error
	if strings.HasPrefix(line, "/") {
		name, args, _ := strings.Cut(strings.TrimPrefix(line, "/"), " ")
		cmd, ok := r.commands[strings.ToLower(name)]
		if !ok {
			printSystemMessage(r.Out, "Unknown command /%s. Type /help.", name)
			return nil
		}
		err = cmd(ctx, strings.TrimSpace(args))
	} else {
		err = r.emit(r.Session.SubmitInput(ctx, line))
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, errQuit), errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, domain.ErrRequestInFlight):
		printSystemMessage(r.Out, "COMPUTER BUSY. A request is already in progress.")
	default:
		r.Logger.Debug("Command failed", "line", line, "err", err)
		printSystemMessage(r.Out, "Error: %v", err)
	}
	return nil
}

func (r *REPL) print(markdown string) {
	out, err := r.Render(markdown)
	if err != nil {
		out = markdown
	}
	fmt.Fprintln(r.Out, strings.TrimRight(out, "\n"))
}

func (r *REPL) emit(resp domain.Response, err error) error {
	if err != nil {
		return err
	}
	if resp != nil {
		r.print(r.Format.Entry(resp))
	}
	return nil
}

func (r *REPL) help(context.Context, string) error {
	r.print(helpText)
	return nil
}

func (r *REPL) steps(context.Context, string) error {
	r.print(r.Format.Steps(r.Session.Steps(), r.Session.Snapshot().ActiveStep))
	return nil
}

// pick resolves a 1-based index into list, or returns arg unchanged.
func pick(arg string, list []string) string {
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(list) {
		return list[n-1]
	}
	return arg
}

func (r *REPL) step(ctx context.Context, args string) error {
	if args == "" {
		return r.steps(ctx, args)
	}
	return r.emit(r.Session.SelectStep(ctx, pick(args, r.Session.Steps())))
}

func (r *REPL) show(ctx context.Context, args string) error {
	name := pick(args, r.Session.Steps())
	if name == "" {
		name = r.Session.Snapshot().ActiveStep
	}
	step, ok := r.Session.Step(name)
	if !ok {
		printSystemMessage(r.Out, "No step named %q.", name)
		return nil
	}
	r.print(r.Format.Step(step))
	return nil
}

func (r *REPL) docs(context.Context, string) error {
	var b strings.Builder
	b.WriteString("### Documents\n\n")
	for i, name := range r.Session.Documents().Names() {
		fmt.Fprintf(&b, "%d. %s\n", i+1, name)
	}
	r.print(b.String())
	return nil
}

func (r *REPL) doc(ctx context.Context, args string) error {
	if args == "" {
		return r.docs(ctx, args)
	}
	return r.emit(r.Session.SelectDocument(pick(args, r.Session.Documents().Names())))
}

func (r *REPL) toggle(kind domain.CacheKind) command {
	return func(ctx context.Context, _ string) error {
		resp, err := r.Session.ToggleCacheView(ctx, kind)
		if err != nil {
			return err
		}
		if resp == nil && r.Session.View() == session.ViewTerminal {
			printSystemMessage(r.Out, "Overlay closed.")
			return nil
		}
		return r.emit(resp, nil)
	}
}

func (r *REPL) refresh(ctx context.Context, args string) error {
	kind, ok := domain.ParseCacheKind(strings.ToLower(args))
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownCacheKind, args)
	}
	return r.emit(r.Session.ForceRefresh(ctx, kind))
}

func (r *REPL) clock(_ context.Context, args string) error {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		r.print(r.Format.Clocks(r.Session.Snapshot().Clocks))
		return nil
	}
	if len(fields) != 2 {
		return errors.New("usage: /clock ID DELTA")
	}
	delta, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("invalid delta %q", fields[1])
	}
	c, ok := r.Session.ApplyClockDelta(strings.ToLower(fields[0]), delta)
	if !ok {
		ids := make([]string, 0)
		for _, c := range r.Session.Snapshot().Clocks {
			ids = append(ids, c.ID)
		}
		sort.Strings(ids)
		return fmt.Errorf("unknown clock %q (have %s)", fields[0], strings.Join(ids, ", "))
	}
	r.print(r.Format.Clocks([]domain.Clock{c}))
	return nil
}

func (r *REPL) tool(fn func(context.Context) (domain.Response, error)) command {
	return func(ctx context.Context, _ string) error {
		return r.emit(fn(ctx))
	}
}

func (r *REPL) roll(context.Context, string) error {
	printSystemMessage(r.Out, "d%d: %d", session.DieFaces, r.Session.RollDie())
	return nil
}

func (r *REPL) state(context.Context, string) error {
	r.print(r.Format.Status(r.Session.Snapshot(), string(r.Session.View())))
	return nil
}

func (r *REPL) export(context.Context, string) error {
	path, err := r.Session.ExportFile(r.ExportDir)
	if err != nil {
		return err
	}
	if path == "" {
		printSystemMessage(r.Out, "Nothing to export yet.")
		return nil
	}
	printSystemMessage(r.Out, "Session log written to %s", path)
	return nil
}
