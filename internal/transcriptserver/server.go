// Package transcriptserver exposes the transcript service over HTTP: a JSON
// REST surface for browser callers, a plain-text metrics endpoint and an MCP
// endpoint for agent clients.
package transcriptserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/cors"

	"github.com/anatolykoptev/go_transcript/internal/engine"
	"github.com/anatolykoptev/go_transcript/internal/transcript"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "youtube-transcript-service"

const maxRequestBytes = 1 << 20

// Server wires the transcript Service to HTTP routes.
type Server struct {
	cfg     *engine.Config
	svc     *transcript.Service
	logger  *slog.Logger
	version string
	mcp     *mcp.Server
}

// New registers the MCP tool. version is reported to MCP clients.
func New(cfg *engine.Config, svc *transcript.Service, logger *slog.Logger, version string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{cfg: cfg, svc: svc, logger: logger, version: version}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "go_transcript",
		Version: version,
	}, nil)
	s.registerTools()
	return s
}

// Handler returns the root HTTP handler with the same routes and middleware
// as Run.
func (s *Server) Handler() (http.Handler, error) {
	return mcpserver.Build(s.mcp, s.config(context.Background()))
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	return mcpserver.Run(s.mcp, s.config(ctx))
}

func (s *Server) config(ctx context.Context) mcpserver.Config {
	return mcpserver.Config{
		Name:          "go_transcript",
		Version:       s.version,
		Port:          s.cfg.Port,
		WriteTimeout:  s.writeTimeout(),
		Metrics:       engine.FormatMetrics,
		Routes:        s.routes,
		DisableHealth: true,
		Middleware:    []mcpserver.Middleware{cors.AllowAll().Handler},
		Context:       ctx,
		Logger:        s.logger,
	}
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /transcript", s.handleTranscript)
}

// writeTimeout leaves room for both language attempts to run to their limit.
func (s *Server) writeTimeout() time.Duration {
	if s.cfg.FetchTimeout <= 0 {
		return 60 * time.Second
	}
	return 2*s.cfg.FetchTimeout + 10*time.Second
}
