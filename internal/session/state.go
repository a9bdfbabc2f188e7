// Package session owns one review: the current plan, the reviewer's
// feedback store and the dataset returned for it.
package session

import "errors"

// State is the review lifecycle state
type State string

const (
	StateIdle      State = "idle"
	StatePlanReady State = "plan_ready"
	StateAllRated  State = "all_rated"
	StateSubmitted State = "submitted"
)

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

var (
	// ErrNoPlan is returned for feedback operations before a plan exists
	ErrNoPlan = errors.New("no plan has been generated")

	// ErrUnknownStep is returned when a step id is not part of the current plan
	ErrUnknownStep = errors.New("step is not part of the current plan")

	// ErrNotNegative is returned when editing the reason of a step that is
	// not rated negative
	ErrNotNegative = errors.New("only negative ratings carry a reason")

	// ErrNothingToUndo is returned when the feedback history is empty
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrStaleResponse is returned when a response belongs to a request
	// that a newer one has superseded. The response is dropped.
	ErrStaleResponse = errors.New("response superseded by a newer request")
)

// Kind tells generate tickets from submit tickets
type Kind string

const (
	KindGenerate Kind = "generate"
	KindSubmit   Kind = "submit"
)

// Ticket identifies one in-flight request. Seq increases with every request
// the session issues; Generation is the plan generation the request was
// issued against.
type Ticket struct {
	Kind       Kind
	Seq        uint64
	Generation uint64
}
