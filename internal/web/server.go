package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/RevCBH/planrate/internal/client"
	"github.com/RevCBH/planrate/internal/dataset"
	"github.com/RevCBH/planrate/internal/events"
)

// Server is the reference submission service.
type Server struct {
	addr   string
	logger *slog.Logger

	store Store
	hub   *Hub
	bus   *events.Bus

	httpServer   *http.Server
	httpListener net.Listener
	serveErr     chan error
}

// New creates a new server with the given configuration.
// Does not start listening - call Start() for that. Stop must be called
// to release the event goroutines even if Start never was.
func New(cfg Config) (*Server, error) {
	if cfg.Store == nil {
		return nil, errors.New("web: a dataset store is required")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	var gen Generator
	if cfg.UpstreamGenerateURL != "" {
		if cfg.UpstreamClient != nil {
			gen = client.NewWithClient(cfg.UpstreamGenerateURL, cfg.UpstreamGenerateURL, cfg.UpstreamClient)
		} else {
			gen = client.New(cfg.UpstreamGenerateURL, cfg.UpstreamGenerateURL)
		}
	}

	hub := NewHub()
	bus := events.NewBus(256)
	bus.Subscribe(events.LogHandler(events.LogConfig{Logger: cfg.Logger, IncludePayload: true}))
	bus.Subscribe(hub.Handler())

	opts := dataset.Options{Model: cfg.Model, Now: cfg.Now}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", HealthHandler(cfg.Version))
	mux.HandleFunc("POST /api/generate-plan", GeneratePlanHandler(gen, cfg.Logger))
	mux.HandleFunc("POST /api/submit-feedback", SubmitFeedbackHandler(cfg.Store, opts, bus))
	mux.HandleFunc("GET /api/export-dataset/{session_id}", ExportDatasetHandler(cfg.Store, bus, cfg.Logger))
	mux.HandleFunc("GET /api/events", EventsHandler(hub, cfg.Logger))

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           WithLogging(cfg.Logger, WithCORS(cfg.AllowedOrigins, mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Server{
		addr:       cfg.Addr,
		logger:     cfg.Logger,
		store:      cfg.Store,
		hub:        hub,
		bus:        bus,
		httpServer: httpServer,
		serveErr:   make(chan error, 1),
	}, nil
}

// Handler returns the root handler, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening. Non-blocking - the server runs in a goroutine.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.hub.Stop()
		return fmt.Errorf("HTTP listen: %w", err)
	}
	s.httpListener = listener

	// Update addr with actual address (important for ephemeral ports)
	s.addr = listener.Addr().String()
	s.logger.Info("submission service listening", "addr", s.addr)

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", "error", err)
			s.serveErr <- err
		}
		close(s.serveErr)
	}()

	return nil
}

// Wait blocks until the server stops and returns a serve failure, if any
func (s *Server) Wait() error {
	return <-s.serveErr
}

// Stop performs graceful shutdown: SSE subscribers are released, in-flight
// requests finish, then pending events are flushed.
func (s *Server) Stop(ctx context.Context) error {
	s.hub.Stop()

	err := s.httpServer.Shutdown(ctx)
	_ = s.bus.Close()
	if err != nil {
		return fmt.Errorf("HTTP shutdown: %w", err)
	}
	return nil
}

// Addr returns the HTTP listen address.
func (s *Server) Addr() string {
	return s.addr
}
