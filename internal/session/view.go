package session

import (
	"github.com/RevCBH/planrate/internal/dataset"
	"github.com/RevCBH/planrate/internal/feedback"
	"github.com/RevCBH/planrate/internal/plan"
)

// Snapshot is a consistent read of the session taken under one lock.
type Snapshot struct {
	State      State
	Generation uint64
	Plan       *plan.Plan
	Feedback   feedback.Store
	Progress   feedback.Progress
	CanSubmit  bool
	CanUndo    bool
	Generating bool
	Submitting bool
	Dataset    *dataset.Dataset
	FilePath   string
	Err        error
}

// Busy reports whether a request is in flight
func (s Snapshot) Busy() bool {
	return s.Generating || s.Submitting
}

// Snapshot returns the current session view
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:      s.state,
		Generation: s.generation,
		Plan:       s.plan.Clone(),
		Feedback:   s.store,
		CanUndo:    len(s.history) > 0,
		Generating: s.pending[KindGenerate],
		Submitting: s.pending[KindSubmit],
		Dataset:    s.dataset,
		FilePath:   s.filePath,
		Err:        s.lastErr,
	}
	if s.plan != nil {
		snap.Progress = feedback.ComputeProgress(s.plan.Steps, s.store)
		snap.CanSubmit = snap.Progress.IsComplete()
	}
	return snap
}

// State returns the lifecycle state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Plan returns a copy of the current plan, or nil
func (s *Session) Plan() *plan.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan.Clone()
}

// Feedback returns the current feedback store. Stores are immutable so the
// caller may keep it.
func (s *Session) Feedback() feedback.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store
}

// Progress returns rating coverage for the current plan
func (s *Session) Progress() feedback.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.plan == nil {
		return feedback.Progress{}
	}
	return feedback.ComputeProgress(s.plan.Steps, s.store)
}

// CanSubmit reports whether every step has a rating. Reasons are checked
// again by Submit.
func (s *Session) CanSubmit() bool {
	return s.Progress().IsComplete()
}

// Dataset returns the dataset of the last successful submission, or nil
func (s *Session) Dataset() *dataset.Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dataset
}

// LastError returns the error to display, cleared by the next success
func (s *Session) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearError dismisses the displayed error
func (s *Session) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = nil
}
