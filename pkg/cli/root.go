package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marketing-connect/mcp-services/internal/config"
	"github.com/marketing-connect/mcp-services/internal/httpapi"
	"github.com/marketing-connect/mcp-services/internal/logging"
	"github.com/marketing-connect/mcp-services/internal/mcp"
	"github.com/marketing-connect/mcp-services/internal/telemetry"
	"github.com/marketing-connect/mcp-services/internal/version"
)

// Supported transports.
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

type serveOptions struct {
	host      string
	port      int
	transport string
}

var rootCmd = NewRootCmd()

// NewRootCmd builds the marketing-connect-mcp command tree.
func NewRootCmd() *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "marketing-connect-mcp",
		Short: "Marketing Connect MCP server",
		Long: `marketing-connect-mcp serves MCP tools, resources, and prompts.

Over HTTP the MCP endpoint is /mcp, next to /, /health, /info, and /metrics.
Settings come from MCP_* environment variables and an optional .env file;
--host and --port override them.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.transport != TransportHTTP && opts.transport != TransportStdio {
				return fmt.Errorf("invalid transport %q (expected %s or %s)", opts.transport, TransportHTTP, TransportStdio)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.host, "host", config.DefaultHost, "Address to bind the HTTP server to (overrides MCP_HOST)")
	cmd.Flags().IntVar(&opts.port, "port", config.DefaultPort, "Port to bind the HTTP server to (overrides MCP_PORT)")
	cmd.Flags().StringVar(&opts.transport, "transport", TransportHTTP, "MCP transport: http or stdio")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "marketing-connect-mcp %s (commit %s, built %s)\n",
				version.Version, version.GitCommit, version.BuildDate)
		},
	}
}

// Execute runs the root command until SIGINT or SIGTERM and exits non-zero on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// Root returns the root command.
func Root() *cobra.Command {
	return rootCmd
}

func runServe(cmd *cobra.Command, opts *serveOptions) error {
	settings, err := loadSettings(cmd, opts)
	if err != nil {
		return err
	}

	logger := logging.New(cmd.ErrOrStderr(), settings)
	logger.Info().
		Str("name", settings.ServerName).
		Str("version", settings.ServerVersion).
		Str("build-version", version.Version).
		Str("commit", version.GitCommit).
		Str("transport", opts.transport).
		Bool("debug", settings.Debug).
		Msg("starting marketing connect MCP server")
	for _, warning := range settings.Warnings() {
		logger.Warn().Err(warning).Msg("unusual setting")
	}

	tp, err := telemetry.New(settings.ServerName)
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn().Err(err).Msg("failed to shut down telemetry")
		}
	}()

	mcpServer, err := mcp.NewMCPServer(settings, logger, tp)
	if err != nil {
		return err
	}
	if settings.Debug {
		mcpServer.LogRegisteredTools()
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch opts.transport {
	case TransportStdio:
		err = mcpServer.ServeStdio(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
	default:
		err = httpapi.NewServer(settings, logger, mcpServer.HTTPHandler(), tp.Handler()).Start(ctx)
	}
	if err != nil {
		return err
	}

	logger.Info().Str("name", settings.ServerName).Msg("server shut down")
	return nil
}

// loadSettings loads environment settings and applies flag overrides.
func loadSettings(cmd *cobra.Command, opts *serveOptions) (*config.Settings, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	if cmd.Flags().Changed("host") {
		settings.Host = opts.host
	}
	if cmd.Flags().Changed("port") {
		settings.Port = opts.port
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return settings, nil
}
