package events

import (
	"log/slog"
	"sync"
)

// LogConfig configures the logging handler
type LogConfig struct {
	// Logger receives the events (default: slog.Default())
	Logger *slog.Logger

	// IncludePayload includes event payload in log output
	IncludePayload bool
}

// LogHandler returns a handler that logs events through slog.
// Failure events are logged at warn level, everything else at debug.
func LogHandler(cfg LogConfig) Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(e Event) {
		attrs := []any{slog.String("event", string(e.Type))}
		if e.Session != "" {
			attrs = append(attrs, slog.String("session", e.Session))
		}
		if e.Step != "" {
			attrs = append(attrs, slog.String("step", e.Step))
		}
		if e.Generation != 0 {
			attrs = append(attrs, slog.Uint64("generation", e.Generation))
		}
		if cfg.IncludePayload && e.Payload != nil {
			attrs = append(attrs, slog.Any("payload", e.Payload))
		}
		if e.Error != "" {
			attrs = append(attrs, slog.String("error", e.Error))
		}

		if e.IsFailure() {
			logger.Warn(e.String(), attrs...)
			return
		}
		logger.Debug(e.String(), attrs...)
	}
}

// Recorder collects events in memory; used by tests and the TUI log pane
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Handle appends an event
func (r *Recorder) Handle(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Emit lets a Recorder stand in for a Bus
func (r *Recorder) Emit(e Event) {
	r.Handle(e)
}

// Events returns a copy of the recorded events
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the recorded event types in order
func (r *Recorder) Types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
