package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/gmboard"
	"github.com/aretw0/gmboard/internal/config"
	"github.com/aretw0/gmboard/internal/presentation/tui"
	"github.com/aretw0/gmboard/pkg/docstore"
	"github.com/aretw0/gmboard/pkg/session"
)

// PlayOptions carries the terminal streams of the play command.
type PlayOptions struct {
	In  io.Reader
	Out io.Writer
	// Interactive enables the banner and glamour rendering.
	Interactive bool
}

// Play loads the scenario in cfg.Dir and runs the REPL until EOF, /quit or
// an interrupt.
func Play(cfg *config.Config, opts PlayOptions) error {
	logger := cfg.Logger()

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	docs, err := docstore.LoadDir(sigCtx, cfg.Dir)
	if err != nil {
		return fmt.Errorf("error loading scenario: %w", err)
	}

	gen, err := NewGenerator(sigCtx, cfg, logger)
	if err != nil {
		return err
	}

	sess, err := session.New(docs, gen, SessionOptions(cfg, logger, nil)...)
	if err != nil {
		return fmt.Errorf("error starting session: %w", err)
	}

	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	repl := NewREPL(sess, opts.In, opts.Out)
	repl.Format = tui.Formatter{PlayerView: cfg.PlayerView}
	repl.ExportDir = cfg.ExportDir
	repl.Logger = logger
	if opts.Interactive {
		tui.PrintBanner(opts.Out, gmboard.Version)
		repl.Render = tui.NewRenderer(false, 0)
	}

	logger.Info("Session started", "run_id", sess.RunID(), "documents", docs.Len(), "steps", len(sess.Steps()))
	printSystemMessage(opts.Out, "Run %s. %d documents loaded. Type /help.", sess.RunID(), docs.Len())

	runErr := repl.Run(sigCtx)
	if sigCtx.Signal() != nil {
		fmt.Fprintln(opts.Out)
		printSystemMessage(opts.Out, "Interrupted.")
	}
	return handleExecutionError(runErr)
}
