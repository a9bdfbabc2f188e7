package client

import (
	"errors"
	"fmt"
)

// Operation names a remote call
type Operation string

const (
	OpGenerate Operation = "generate"
	OpSubmit   Operation = "submit"
	OpExport   Operation = "export"
)

// ErrEmptySessionID is returned when an export is requested without a session
var ErrEmptySessionID = errors.New("session id is required")

// RemoteError describes a failed call to the generation or submission
// service. Status is 0 when no HTTP response was received.
type RemoteError struct {
	Op     Operation
	Status int
	Detail string
	Err    error
}

func (e *RemoteError) Error() string {
	switch {
	case e.Detail != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s: service returned %d", e.Op, e.Status)
	default:
		return fmt.Sprintf("%s failed", e.Op)
	}
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// UserMessage is the text shown to the reviewer: the service's detail when
// it sent one, otherwise a generic retry message.
func (e *RemoteError) UserMessage() string {
	if e.Detail != "" {
		return e.Detail
	}
	switch e.Op {
	case OpGenerate:
		return "Failed to generate plan. Please try again."
	case OpSubmit:
		return "Failed to submit feedback. Please try again."
	case OpExport:
		return "Failed to export dataset. Please try again."
	default:
		return "Request failed. Please try again."
	}
}

// UserMessage extracts a displayable message from any error returned by
// the client or by local validation.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		return remote.UserMessage()
	}
	return err.Error()
}
