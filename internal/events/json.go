package events

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

// JSONEvent is the wire form of an Event, shared by --json output and the
// submission service's event stream.
type JSONEvent struct {
	Type       string         `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	Session    string         `json:"session,omitempty"`
	Step       string         `json:"step,omitempty"`
	Generation uint64         `json:"generation,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// ToJSONEvent converts e to its wire form. A payload that is not a map is
// wrapped as {"value": payload}.
func ToJSONEvent(e Event) JSONEvent {
	je := JSONEvent{
		Type:       string(e.Type),
		Timestamp:  e.Time,
		Session:    e.Session,
		Step:       e.Step,
		Generation: e.Generation,
		Error:      e.Error,
	}
	switch p := e.Payload.(type) {
	case nil:
	case map[string]any:
		je.Payload = p
	default:
		je.Payload = map[string]any{"value": p}
	}
	return je
}

// IsJSONMode reports whether a command should write JSON lines: when forced
// by --json, or when stdout is not a terminal.
func IsJSONMode(force bool) bool {
	if force || os.Stdout == nil {
		return true
	}
	return !term.IsTerminal(int(os.Stdout.Fd()))
}

// JSONEmitter writes one JSON line per event. Safe for concurrent use.
type JSONEmitter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONEmitter creates an emitter writing to w
func NewJSONEmitter(w io.Writer) *JSONEmitter {
	return &JSONEmitter{enc: json.NewEncoder(w)}
}

// Emit writes e as a single line
func (je *JSONEmitter) Emit(e Event) error {
	je.mu.Lock()
	defer je.mu.Unlock()
	return je.enc.Encode(ToJSONEvent(e))
}

// JSONEmitterHandler subscribes an emitter to a bus. Write failures are
// logged at warn.
func JSONEmitterHandler(emitter *JSONEmitter, logger *slog.Logger) Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(e Event) {
		if err := emitter.Emit(e); err != nil {
			logger.Warn("write JSON event", "event", string(e.Type), "error", err)
		}
	}
}
