// Package api exposes the lighting HAL over a small REST surface.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/smazurov/lightnode/internal/events"
	"github.com/smazurov/lightnode/internal/hal"
	"github.com/smazurov/lightnode/internal/logging"
	"github.com/smazurov/lightnode/internal/updater"
	"github.com/smazurov/lightnode/internal/version"
)

// Options configures the API server.
type Options struct {
	AuthUsername      string
	AuthPassword      string
	HAL               *hal.HAL
	EventBus          *events.Bus
	PrometheusHandler http.Handler     // optional, mounted at /metrics
	Updater           *updater.Service // optional
}

// Server is the Huma v2 API server.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	options    *Options
	logger     *slog.Logger
}

// NewServer creates the API server on Go 1.22+ native routing.
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	corsConfig := DefaultCORSConfig()
	AddCORSHandler(mux, corsConfig)

	config := huma.DefaultConfig("Lightnode API", version.String())
	config.Info.Description = "LED lighting HAL for MSM8610 handheld boards"
	// An empty servers list makes OpenAPI use relative paths.
	config.Servers = []*huma.Server{}
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"basicAuth": {
			Type:   "http",
			Scheme: "basic",
		},
	}

	api := humago.New(mux, config)

	server := &Server{
		api:     api,
		mux:     mux,
		options: opts,
		logger:  logging.GetLogger("api"),
	}

	api.UseMiddleware(NewCORSMiddleware(corsConfig))
	api.UseMiddleware(HTTPLoggingMiddleware)
	if opts.AuthUsername != "" && opts.AuthPassword != "" {
		api.UseMiddleware(server.basicAuthMiddleware(opts.AuthUsername, opts.AuthPassword))
	}

	// Prometheus scrapes don't go through Huma and carry no auth.
	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}

	server.registerSystemRoutes()
	server.registerLightRoutes()
	server.registerSSERoutes()
	server.registerLogRoutes()
	server.registerUpdateRoutes()

	return server
}

// GetAPI returns the Huma API instance, for tests.
func (s *Server) GetAPI() huma.API {
	return s.api
}

// Start starts the HTTP server on the given address and blocks.
func (s *Server) Start(addr string) error {
	s.logger.Info("starting API server", "addr", addr)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}
	return s.httpServer.ListenAndServe()
}

// Stop shuts the server down.
func (s *Server) Stop() error {
	s.logger.Info("stopping API server")
	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

// withAuth marks an operation as requiring basic auth.
func withAuth() []map[string][]string {
	return []map[string][]string{{"basicAuth": {}}}
}
