package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/gmboard"
	"github.com/aretw0/gmboard/internal/logging"
	"github.com/aretw0/gmboard/pkg/domain"
	"github.com/aretw0/gmboard/pkg/history"
	"github.com/aretw0/gmboard/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	stateURI   = "gmboard://state"
	historyURI = "gmboard://history"
)

// Entry is one response with its category.
type Entry struct {
	Type domain.Category `json:"type" jsonschema_description:"Response category"`
	Data domain.Response `json:"data" jsonschema_description:"Response fields"`
}

// TurnResult is the structured output of every tool that moves the session.
type TurnResult struct {
	Entry *Entry           `json:"entry,omitempty" jsonschema_description:"The entry produced, if any"`
	View  session.View     `json:"view" jsonschema_description:"The overlay currently open"`
	State domain.GameState `json:"state" jsonschema_description:"Snapshot of the game state"`
}

// StepsResult lists the step catalog.
type StepsResult struct {
	Steps     []string `json:"steps"`
	Documents []string `json:"documents"`
}

// StepResult is one resolved step.
type StepResult struct {
	Step domain.Step `json:"step"`
	Rows [][]string  `json:"rows"`
}

// RollResult is a die roll.
type RollResult struct {
	Value int `json:"value"`
}

type nameInput struct {
	Name string `json:"name"`
}

type inputInput struct {
	Text string `json:"text"`
}

type kindInput struct {
	Kind string `json:"kind"`
}

type clockInput struct {
	Clock string `json:"clock"`
	Delta int    `json:"delta"`
}

type toolInput struct {
	Tool string `json:"tool"`
}

// Server exposes one session as MCP tools and resources.
type Server struct {
	session   *session.Session
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance bound to sess.
func NewServer(sess *session.Session, opts ...Option) *Server {
	s := &Server{
		session: sess,
		mcpServer: server.NewMCPServer("gmboard-mcp", strings.TrimSpace(gmboard.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcpServer }

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("Shutdown signal received, shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_steps",
		mcp.WithDescription("List the steps of the scenario and the loaded documents."),
		mcp.WithOutputSchema[StepsResult](),
	), s.handleListSteps)

	s.mcpServer.AddTool(mcp.NewTool("get_step",
		mcp.WithDescription("Show the description and table of one step."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Step name as listed by list_steps")),
	), s.handleGetStep)

	s.mcpServer.AddTool(mcp.NewTool("select_step",
		mcp.WithDescription("Make a step active and generate its read-aloud introduction."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Step name")),
		mcp.WithOutputSchema[TurnResult](),
	), s.handleSelectStep)

	s.mcpServer.AddTool(mcp.NewTool("select_document",
		mcp.WithDescription("Show a scenario document as a narrative entry."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Document file name")),
		mcp.WithOutputSchema[TurnResult](),
	), s.handleSelectDocument)

	s.mcpServer.AddTool(mcp.NewTool("submit_input",
		mcp.WithDescription("Submit player input: an option number or a free action."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Player input")),
		mcp.WithOutputSchema[TurnResult](),
	), s.handleSubmitInput)

	s.mcpServer.AddTool(mcp.NewTool("toggle_view",
		mcp.WithDescription("Open or close a reference overlay, filling its cache when empty."),
		mcp.WithString("kind", mcp.Required(), mcp.Enum(kindNames()...), mcp.Description("Reference kind")),
		mcp.WithOutputSchema[TurnResult](),
	), s.handleToggleView)

	s.mcpServer.AddTool(mcp.NewTool("refresh_cache",
		mcp.WithDescription("Regenerate a reference cache."),
		mcp.WithString("kind", mcp.Required(), mcp.Enum(kindNames()...), mcp.Description("Reference kind")),
		mcp.WithOutputSchema[TurnResult](),
	), s.handleRefreshCache)

	s.mcpServer.AddTool(mcp.NewTool("adjust_clock",
		mcp.WithDescription("Move a clock by delta, clamped to its bounds."),
		mcp.WithString("clock", mcp.Required(), mcp.Description("Clock id")),
		mcp.WithNumber("delta", mcp.Required(), mcp.Description("Signed amount")),
	), s.handleAdjustClock)

	s.mcpServer.AddTool(mcp.NewTool("gm_tool",
		mcp.WithDescription("Ask for a GM brief, bridges back to the scenario or a fresh option list."),
		mcp.WithString("tool", mcp.Required(), mcp.Enum("brief", "bridges", "options")),
		mcp.WithOutputSchema[TurnResult](),
	), s.handleGMTool)

	s.mcpServer.AddTool(mcp.NewTool("roll_die",
		mcp.WithDescription("Roll a six-sided die."),
		mcp.WithOutputSchema[RollResult](),
	), s.handleRoll)

	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Get the current game state."),
		mcp.WithOutputSchema[TurnResult](),
	), s.handleGetState)

	s.mcpServer.AddTool(mcp.NewTool("export_history",
		mcp.WithDescription("Export the session log as plain text."),
	), s.handleExport)
}

func (s *Server) handleListSteps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultStructuredOnly(StepsResult{
		Steps:     s.session.Steps(),
		Documents: s.session.Documents().Names(),
	}), nil
}

func (s *Server) handleGetStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input nameInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	step, ok := s.session.Step(input.Name)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("step %q not found", input.Name)), nil
	}
	result := StepResult{Step: step}
	if step.Table != nil {
		result.Rows = step.Table.Rows()
	}
	return mcp.NewToolResultStructuredOnly(result), nil
}

func (s *Server) handleSelectStep(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input nameInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	return s.transition("select_step", func() (domain.Response, error) {
		return s.session.SelectStep(ctx, input.Name)
	})
}

func (s *Server) handleSelectDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input nameInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	return s.transition("select_document", func() (domain.Response, error) {
		return s.session.SelectDocument(input.Name)
	})
}

func (s *Server) handleSubmitInput(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input inputInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	return s.transition("submit_input", func() (domain.Response, error) {
		return s.session.SubmitInput(ctx, input.Text)
	})
}

func (s *Server) handleToggleView(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, errResult := bindKind(request)
	if errResult != nil {
		return errResult, nil
	}
	return s.transition("toggle_view", func() (domain.Response, error) {
		return s.session.ToggleCacheView(ctx, kind)
	})
}

func (s *Server) handleRefreshCache(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kind, errResult := bindKind(request)
	if errResult != nil {
		return errResult, nil
	}
	return s.transition("refresh_cache", func() (domain.Response, error) {
		return s.session.ForceRefresh(ctx, kind)
	})
}

func (s *Server) handleAdjustClock(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input clockInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	clock, ok := s.session.ApplyClockDelta(input.Clock, input.Delta)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("clock %q not found", input.Clock)), nil
	}
	return mcp.NewToolResultStructuredOnly(clock), nil
}

func (s *Server) handleGMTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input toolInput
	if err := request.BindArguments(&input); err != nil {
		return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
	}
	var run func(context.Context) (domain.Response, error)
	switch input.Tool {
	case "brief":
		run = s.session.RequestBrief
	case "bridges":
		run = s.session.RequestBridges
	case "options":
		run = s.session.RequestOptions
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown tool %q", input.Tool)), nil
	}
	return s.transition("gm_tool", func() (domain.Response, error) { return run(ctx) })
}

func (s *Server) handleRoll(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultStructuredOnly(RollResult{Value: s.session.RollDie()}), nil
}

func (s *Server) handleGetState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultStructuredOnly(s.result(nil)), nil
}

func (s *Server) handleExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	if err := s.session.Export(&buf); err != nil {
		if errors.Is(err, history.ErrEmpty) {
			return mcp.NewToolResultText(""), nil
		}
		return mcp.NewToolResultErrorFromErr("export failed", err), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) transition(tool string, fn func() (domain.Response, error)) (*mcp.CallToolResult, error) {
	resp, err := fn()
	if err != nil {
		s.logger.Warn("MCP tool rejected", "tool", tool, "err", err)
		return mcp.NewToolResultErrorFromErr(tool+" failed", err), nil
	}
	return mcp.NewToolResultStructuredOnly(s.result(resp)), nil
}

func (s *Server) result(resp domain.Response) TurnResult {
	out := TurnResult{View: s.session.View(), State: s.session.Snapshot()}
	if resp != nil {
		out.Entry = &Entry{Type: resp.Category(), Data: resp}
	}
	return out
}

func bindKind(request mcp.CallToolRequest) (domain.CacheKind, *mcp.CallToolResult) {
	var input kindInput
	if err := request.BindArguments(&input); err != nil {
		return "", mcp.NewToolResultErrorFromErr("invalid arguments", err)
	}
	kind, ok := domain.ParseCacheKind(input.Kind)
	if !ok {
		return "", mcp.NewToolResultError(fmt.Sprintf("unknown kind %q", input.Kind))
	}
	return kind, nil
}

func kindNames() []string {
	var names []string
	for _, k := range domain.CacheKinds() {
		names = append(names, string(k))
	}
	return names
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(stateURI, "Current Game State",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.session.Snapshot())
		if err != nil {
			return nil, fmt.Errorf("failed to encode state: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: stateURI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(historyURI, "Session Log",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.session.History())
		if err != nil {
			return nil, fmt.Errorf("failed to encode history: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: historyURI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})
}
