package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"slices"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/marketing-connect/mcp-services/internal/config"
	"github.com/marketing-connect/mcp-services/internal/schemas"
	"github.com/marketing-connect/mcp-services/internal/telemetry"
)

// Instructions is sent to clients during initialization.
const Instructions = "Marketing Connect MCP Server for AI integrations - example tools, resources, and prompts to build on."

// catalogEntry describes one registered component for the capabilities resource.
type catalogEntry struct {
	Name        string
	Description string
}

// MCPServer wraps the mcp-go server with the marketing connect tools, resources, and prompts.
type MCPServer struct {
	settings   *config.Settings
	logger     zerolog.Logger
	telemetry  *telemetry.Provider
	schemas    *schemas.Catalog
	now        func() time.Time
	tools      []server.ServerTool
	resources  []catalogEntry
	prompts    []catalogEntry
	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
}

// NewMCPServer creates a new MCP server with all tools, resources, and prompts registered.
// Every tool call passes through panic recovery, logging, tracing and metrics, and
// rate limiting when settings.RateLimit is positive.
func NewMCPServer(settings *config.Settings, logger zerolog.Logger, tp *telemetry.Provider) (*MCPServer, error) {
	catalog, err := schemas.Builtin()
	if err != nil {
		return nil, fmt.Errorf("failed to load schemas: %w", err)
	}

	s := &MCPServer{
		settings:  settings,
		logger:    logger.With().Str("component", "mcp").Logger(),
		telemetry: tp,
		schemas:   catalog,
		now:       time.Now,
	}

	instrumented, err := telemetryMiddleware(tp)
	if err != nil {
		return nil, err
	}

	opts := []server.ServerOption{
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithInstructions(Instructions),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(loggingMiddleware(s.logger)),
		server.WithToolHandlerMiddleware(instrumented),
	}
	if settings.RateLimit > 0 {
		opts = append(opts, server.WithToolHandlerMiddleware(rateLimitMiddleware(settings.RateLimit, settings.RateBurst, s.logger)))
	}

	s.mcpServer = server.NewMCPServer(settings.ServerName, settings.ServerVersion, opts...)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	s.httpServer = server.NewStreamableHTTPServer(s.mcpServer)

	return s, nil
}

// Tools returns the registered tool names, sorted.
func (s *MCPServer) Tools() []string {
	names := make([]string, 0, len(s.tools))
	for _, t := range s.tools {
		names = append(names, t.Tool.Name)
	}
	slices.Sort(names)
	return names
}

// LogRegisteredTools writes one debug line per registered tool.
func (s *MCPServer) LogRegisteredTools() {
	for _, t := range s.tools {
		s.logger.Debug().Str("tool", t.Tool.Name).Str("description", truncate(t.Tool.Description, 50)).Msg("registered tool")
	}
}

// HTTPHandler returns the Streamable HTTP transport handler.
func (s *MCPServer) HTTPHandler() http.Handler {
	return s.httpServer
}

// ServeStdio serves MCP over newline-delimited JSON-RPC on in and out until
// ctx is cancelled or in is exhausted.
func (s *MCPServer) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(log.New(s.logger.With().Str("transport", "stdio").Logger(), "", 0))

	s.logger.Info().Msg("serving MCP over stdio")
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio transport: %w", err)
	}
	return nil
}

// addTool registers a tool and records it for Tools and the capabilities resource.
func (s *MCPServer) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	st := server.ServerTool{Tool: tool, Handler: handler}
	s.tools = append(s.tools, st)
	s.mcpServer.AddTools(st)
}

func truncate(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n]) + "..."
}
