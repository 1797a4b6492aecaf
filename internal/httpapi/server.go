package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/marketing-connect/mcp-services/internal/config"
)

// Paths served next to the JSON API.
const (
	PathMCP     = "/mcp"
	PathHealth  = "/health"
	PathInfo    = "/info"
	PathMetrics = "/metrics"
)

// Description is reported by GET /info.
const Description = "Marketing Connect MCP Server"

// ShutdownTimeout bounds graceful shutdown once the serving context ends.
const ShutdownTimeout = 10 * time.Second

// Server is the HTTP surface: overview, health and info endpoints, Prometheus
// metrics, and the MCP Streamable HTTP endpoint, all on one listener.
type Server struct {
	settings  *config.Settings
	logger    zerolog.Logger
	mux       *http.ServeMux
	api       huma.API
	handler   http.Handler
	now       func() time.Time
	startedAt time.Time
}

// NewServer creates the HTTP server. mcpHandler is mounted at /mcp and
// metrics at /metrics; either may be nil.
func NewServer(settings *config.Settings, logger zerolog.Logger, mcpHandler, metrics http.Handler) *Server {
	mux := http.NewServeMux()

	cfg := huma.DefaultConfig(settings.ServerName, settings.ServerVersion)
	cfg.Info.Description = Description
	// responses keep their documented shape without a $schema link
	cfg.CreateHooks = nil

	s := &Server{
		settings: settings,
		logger:   logger.With().Str("component", "httpapi").Logger(),
		mux:      mux,
		api:      humago.New(mux, cfg),
		now:      time.Now,
	}
	s.startedAt = s.now()

	s.registerRoutes(mcpHandler, metrics)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Mcp-Session-Id", RequestIDHeader},
	})
	s.handler = c.Handler(s.requestIDMiddleware(mux))

	return s
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) registerRoutes(mcpHandler, metrics http.Handler) {
	// exact root only, so unknown paths still 404
	s.mux.HandleFunc("GET /{$}", s.handleRoot)

	huma.Register(s.api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        PathHealth,
		Summary:     "Health check",
		Tags:        []string{"service"},
	}, func(ctx context.Context, input *struct{}) (*HealthResponse, error) {
		return &HealthResponse{Body: s.health()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "info",
		Method:      http.MethodGet,
		Path:        PathInfo,
		Summary:     "Server metadata for deployment verification",
		Tags:        []string{"service"},
	}, func(ctx context.Context, input *struct{}) (*InfoResponse, error) {
		return &InfoResponse{Body: s.info()}, nil
	})

	if metrics != nil {
		s.mux.Handle("GET "+PathMetrics, metrics)
	}
	if mcpHandler != nil {
		for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
			s.mux.Handle(method+" "+PathMCP, mcpHandler)
		}
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.overview()); err != nil {
		s.logger.Error().Err(err).Msg("failed to write overview")
	}
}

func (s *Server) overview() Overview {
	return Overview{
		Service: s.settings.ServerName,
		Version: s.settings.ServerVersion,
		Endpoints: Endpoints{
			MCP:    PathMCP,
			Health: PathHealth,
			Info:   PathInfo,
		},
		Status: "running",
	}
}

func (s *Server) health() HealthStatus {
	return HealthStatus{
		Status:    "UP",
		Timestamp: s.now().UTC().Format(time.RFC3339),
	}
}

func (s *Server) info() ServerInfo {
	return ServerInfo{
		App: AppInfo{
			Name:        s.settings.ServerName,
			Version:     s.settings.ServerVersion,
			Description: Description,
		},
		Server: ServerDetails{
			Host:     s.settings.Host,
			Port:     s.settings.Port,
			Debug:    s.settings.Debug,
			LogLevel: s.settings.LogLevel,
		},
		Config: ConfigInfo{
			BaseURL: s.settings.BaseURL,
			Region:  s.settings.Region,
		},
		Runtime: RuntimeInfo{
			StartTime:     s.startedAt.UTC().Format(time.RFC3339),
			UptimeSeconds: s.now().Sub(s.startedAt).Seconds(),
		},
	}
}

// Start listens on the configured address and serves until ctx ends.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.settings.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.settings.Address(), err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx ends, then shuts down
// gracefully within ShutdownTimeout.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      0, // Disabled: MCP streaming responses need long-lived connections
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info().Str("addr", listener.Addr().String()).Msg("starting HTTP server")

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
