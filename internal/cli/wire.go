package cli

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/RevCBH/planrate/internal/client"
	"github.com/RevCBH/planrate/internal/config"
	"github.com/RevCBH/planrate/internal/events"
	"github.com/RevCBH/planrate/internal/session"
)

// Reviewer holds all wired components of a review
type Reviewer struct {
	Config  *config.Config
	Events  *events.Bus
	Client  *client.Client
	Session *session.Session
	Logger  *slog.Logger
}

// WireReviewer assembles the client, event bus and session for a review
func WireReviewer(cfg *config.Config, logger *slog.Logger) (*Reviewer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	// Create event bus first (the session publishes to it)
	eventBus := events.NewBus(1000)
	eventBus.Subscribe(events.LogHandler(events.LogConfig{Logger: logger}))

	c := client.NewWithClient(cfg.Service.GenerateURL, cfg.Service.SubmitURL, &http.Client{
		Timeout: timeout,
	})

	sess := session.New(session.Config{
		Service:     c,
		Events:      eventBus,
		Logger:      logger,
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
	})

	return &Reviewer{
		Config:  cfg,
		Events:  eventBus,
		Client:  c,
		Session: sess,
		Logger:  logger,
	}, nil
}

// Close drains the event bus
func (r *Reviewer) Close() error {
	if r.Events != nil {
		if err := r.Events.Close(); err != nil {
			return fmt.Errorf("failed to close event bus: %w", err)
		}
	}
	return nil
}
