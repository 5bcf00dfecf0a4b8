package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/aretw0/gmboard/internal/cli"
	"github.com/aretw0/gmboard/pkg/adapters/mcp"
	"github.com/aretw0/gmboard/pkg/docstore"
	"github.com/aretw0/gmboard/pkg/session"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts one gmboard session as an MCP Server, so that an agent can drive the
board through tools (select_step, submit_input, toggle_view, gm_tool, ...).

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")

		// Logs go to stderr so they never corrupt JSON-RPC on stdout.
		logger := cfg.Logger()

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		docs, err := docstore.LoadDir(sigCtx, cfg.Dir)
		if err != nil {
			return fmt.Errorf("error loading scenario: %w", err)
		}
		gen, err := cli.NewGenerator(sigCtx, cfg, logger)
		if err != nil {
			return err
		}
		sess, err := session.New(docs, gen, cli.SessionOptions(cfg, logger, nil)...)
		if err != nil {
			return fmt.Errorf("error starting session: %w", err)
		}

		srv := mcp.NewServer(sess, mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			logger.Info("Starting gmboard MCP Server (Stdio)", "run_id", sess.RunID())
			return srv.ServeStdio()
		case "sse":
			logger.Info("Starting gmboard MCP Server (SSE)", "port", cfg.Port, "run_id", sess.RunID())
			if err := srv.ServeSSE(sigCtx, cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("MCP Server execution failed: %w", err)
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		}
		return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
