package feedback

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidRating indicates a rating other than positive or negative
	ErrInvalidRating = errors.New("rating must be 'positive' or 'negative'")

	// ErrIncompleteCoverage indicates a step without a judgment at assembly time
	ErrIncompleteCoverage = errors.New("every step must be rated before assembly")
)

// ValidationError aggregates the actionable messages produced by Validate.
type ValidationError struct {
	Messages []string
}

// Error joins all messages with a single space, the way they are shown to
// the reviewer.
func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, " ")
}

// AsError wraps messages in a *ValidationError, or returns nil when there
// are none.
func AsError(messages []string) error {
	if len(messages) == 0 {
		return nil
	}
	return &ValidationError{Messages: messages}
}
