package api

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"

	"github.com/smazurov/stripd/internal/api/models"
	"github.com/smazurov/stripd/internal/events"
	"github.com/smazurov/stripd/internal/led"
	"github.com/smazurov/stripd/internal/light"
	"github.com/smazurov/stripd/internal/logging"
	"github.com/smazurov/stripd/internal/version"
)

// DefaultRecvTimeout bounds how long a control request may take to deliver
// its body.
const DefaultRecvTimeout = 5 * time.Second

// LightController is the part of light.Controller the API drives.
type LightController interface {
	State() light.State
	SetColor(light.Color) error
	SetLevel(level uint8) error
	FrequencyHz() int
}

// Options configures the API server.
type Options struct {
	Light    LightController
	EventBus *events.Bus

	// RecvTimeout is the per-request deadline for reading a control body.
	RecvTimeout time.Duration

	PrometheusHandler http.Handler   // optional, served at /metrics
	LEDController     led.Controller // optional
	// Degraded reports whether persistence is failing; optional.
	Degraded func() bool
}

// Server serves the legacy text protocol and the typed huma API on one mux.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	handler    http.Handler
	httpServer *http.Server
	light      LightController
	eventBus   *events.Bus
	options    *Options
	logger     *slog.Logger
}

// NewServer builds the routes. The light controller must already have
// programmed the hardware.
func NewServer(opts *Options) *Server {
	if opts.RecvTimeout <= 0 {
		opts.RecvTimeout = DefaultRecvTimeout
	}
	if opts.EventBus == nil {
		opts.EventBus = events.New()
	}

	mux := http.NewServeMux()
	corsConfig := DefaultCORSConfig()
	AddCORSHandler(mux, corsConfig)

	config := huma.DefaultConfig("stripd API", version.String())
	config.Info.Description = "Colour and brightness control for an RGBW LED strip"
	config.Servers = []*huma.Server{}

	api := humago.New(mux, config)

	server := &Server{
		api:      api,
		mux:      mux,
		handler:  RequestIDMiddleware(mux),
		light:    opts.Light,
		eventBus: opts.EventBus,
		options:  opts,
		logger:   logging.GetLogger("api"),
	}

	api.UseMiddleware(NewCORSMiddleware(corsConfig))
	api.UseMiddleware(HTTPLoggingMiddleware)

	if opts.PrometheusHandler != nil {
		mux.Handle("GET /metrics", opts.PrometheusHandler)
	}

	server.registerLegacyRoutes(corsConfig)
	server.registerRoutes()

	return server
}

// Handler returns the root handler including the request id middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start listens on addr and serves until Shutdown.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on an existing listener. It returns nil after Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	s.logger.Info("Starting stripd API server", "addr", ln.Addr().String())
	s.logger.Info("OpenAPI documentation available", "url", "http://"+ln.Addr().String()+"/docs")

	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.options.RecvTimeout,
	}

	if err := s.httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
// SSE streams are cut when ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Stopping API server")
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return s.httpServer.Close()
	}
	return nil
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check API health and snapshot persistence status",
		Tags:        []string{"system"},
	}, func(_ context.Context, _ *struct{}) (*models.HealthResponse, error) {
		persistence := "ok"
		if s.options.Degraded != nil && s.options.Degraded() {
			persistence = "degraded"
		}
		return &models.HealthResponse{
			Body: models.HealthData{
				Status:      "ok",
				Message:     "API is healthy",
				Persistence: persistence,
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
	}, func(_ context.Context, _ *struct{}) (*models.VersionResponse, error) {
		info := version.Get()
		return &models.VersionResponse{
			Body: models.VersionData{
				Version:   info.Version,
				GitCommit: info.GitCommit,
				BuildDate: info.BuildDate,
				GoVersion: info.GoVersion,
				Platform:  info.Platform,
			},
		}, nil
	})

	s.registerLightRoutes()
	s.registerSSERoutes()
	s.registerLogRoutes()
	s.registerLEDRoutes()
}
