package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/RevCBH/planrate/internal/events"
)

// Sender is the part of *tea.Program the bridge and log writer use
type Sender interface {
	Send(msg tea.Msg)
}

// paneEvents are the session events shown in the log pane. Request results
// reach the model through their commands; these only narrate.
var paneEvents = map[events.EventType]bool{
	events.PlanRequested:      true,
	events.PlanGenerated:      true,
	events.PlanGenerateFailed: true,
	events.PlanRejected:       true,
	events.StepRated:          true,
	events.StepReasonEdited:   true,
	events.FeedbackUndone:     true,
	events.FeedbackRejected:   true,
	events.SubmitStarted:      true,
	events.FeedbackSubmitted:  true,
	events.SubmitFailed:       true,
	events.ResponseStale:      true,
}

// Bridge subscribes the program to the session's event bus
type Bridge struct {
	out Sender
}

// NewBridge creates a bridge feeding out
func NewBridge(out Sender) *Bridge {
	return &Bridge{out: out}
}

// Handler is the bus handler; events outside paneEvents are dropped.
func (b *Bridge) Handler() events.Handler {
	return func(evt events.Event) {
		if b.out == nil || !paneEvents[evt.Type] {
			return
		}
		b.out.Send(EventMsg{Event: evt})
	}
}
