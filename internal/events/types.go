package events

import (
	"fmt"
	"strings"
	"time"
)

// Event represents a single occurrence in a review session's lifecycle
type Event struct {
	// Time is when the event occurred (set by bus on emit)
	Time time.Time `json:"time"`

	// Type identifies what happened
	Type EventType `json:"type"`

	// Session is the generation service's session id (empty before a plan exists)
	Session string `json:"session,omitempty"`

	// Step is the step id this event relates to (empty for session events)
	Step string `json:"step,omitempty"`

	// Generation is the plan generation counter the event belongs to
	Generation uint64 `json:"generation,omitempty"`

	// Payload contains event-specific data (type varies by event)
	Payload any `json:"payload,omitempty"`

	// Error contains error message if this is a failure event
	Error string `json:"error,omitempty"`
}

// EventType is a string constant identifying the event category
type EventType string

// Plan lifecycle events
const (
	PlanRequested      EventType = "plan.requested"
	PlanGenerated      EventType = "plan.generated"
	PlanGenerateFailed EventType = "plan.generate.failed"
	PlanRejected       EventType = "plan.rejected" // prompt failed local checks
)

// Feedback events
const (
	StepRated         EventType = "step.rated"
	StepReasonEdited  EventType = "step.reason"
	FeedbackUndone    EventType = "feedback.undone"
	FeedbackRejected  EventType = "feedback.rejected" // local validation blocked submit
	FeedbackSubmitted EventType = "feedback.submitted"
	SubmitStarted     EventType = "feedback.submit.started"
	SubmitFailed      EventType = "feedback.submit.failed"
)

// ResponseStale is emitted when a response from a superseded request is dropped
const ResponseStale EventType = "response.stale"

// Server events
const (
	DatasetArchived EventType = "dataset.archived"
	DatasetExported EventType = "dataset.exported"
)

// NewEvent creates an event with the given type and session
func NewEvent(eventType EventType, session string) Event {
	return Event{
		Type:    eventType,
		Session: session,
	}
}

// WithStep returns a copy of the event with the step id set
func (e Event) WithStep(step string) Event {
	e.Step = step
	return e
}

// WithGeneration returns a copy of the event tagged with a plan generation
func (e Event) WithGeneration(gen uint64) Event {
	e.Generation = gen
	return e
}

// WithPayload returns a copy of the event with the payload set
func (e Event) WithPayload(payload any) Event {
	e.Payload = payload
	return e
}

// WithError returns a copy of the event with the error message set
func (e Event) WithError(err error) Event {
	if err != nil {
		e.Error = err.Error()
	}
	return e
}

// IsFailure returns true if this is a failure event type
func (e Event) IsFailure() bool {
	return strings.HasSuffix(string(e.Type), ".failed")
}

// String returns a human-readable representation of the event
func (e Event) String() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", e.Type))

	if e.Session != "" {
		parts = append(parts, e.Session)
	}

	if e.Step != "" {
		parts = append(parts, "step="+e.Step)
	}

	if e.Generation != 0 {
		parts = append(parts, fmt.Sprintf("gen=%d", e.Generation))
	}

	return strings.Join(parts, " ")
}
