// Package plan holds the immutable description of a generated plan and the
// request used to obtain one from the generation service.
package plan

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateStepID indicates two steps in one plan share an id
	ErrDuplicateStepID = errors.New("duplicate step id")

	// ErrStepOrder indicates step numbers are not strictly increasing
	ErrStepOrder = errors.New("step numbers must be strictly increasing")

	// ErrEmptyStepID indicates a step without an id
	ErrEmptyStepID = errors.New("step id cannot be empty")
)

// Step is one atomic unit of a generated plan. Steps never change after
// the plan has been generated.
type Step struct {
	StepID      string `json:"step_id" yaml:"step_id"`
	StepNumber  int    `json:"step_number" yaml:"step_number"`
	StepContent string `json:"step_content" yaml:"step_content"`
	Section     string `json:"section,omitempty" yaml:"section,omitempty"`
}

// Plan is the generation service's response for one session.
type Plan struct {
	SessionID string         `json:"session_id" yaml:"session_id"`
	Prompt    string         `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	PlanText  string         `json:"plan_text" yaml:"plan_text"`
	Steps     []Step         `json:"steps" yaml:"steps"`
	Metadata  map[string]any `json:"metadata" yaml:"metadata"`
}

// Validate checks the step sequence invariants: non-empty unique ids and
// strictly increasing step numbers.
func (p *Plan) Validate() error {
	seen := make(map[string]struct{}, len(p.Steps))
	prev := 0
	for i, s := range p.Steps {
		if s.StepID == "" {
			return fmt.Errorf("step %d: %w", i+1, ErrEmptyStepID)
		}
		if _, dup := seen[s.StepID]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateStepID, s.StepID)
		}
		seen[s.StepID] = struct{}{}
		if i > 0 && s.StepNumber <= prev {
			return fmt.Errorf("%w: step %d follows step %d", ErrStepOrder, s.StepNumber, prev)
		}
		prev = s.StepNumber
	}
	return nil
}

// Step returns the step with the given id.
func (p *Plan) Step(stepID string) (Step, bool) {
	for _, s := range p.Steps {
		if s.StepID == stepID {
			return s, true
		}
	}
	return Step{}, false
}

// Clone returns a deep copy of the plan so callers cannot mutate the
// session-owned step list.
func (p *Plan) Clone() *Plan {
	if p == nil {
		return nil
	}
	out := *p
	out.Steps = append([]Step(nil), p.Steps...)
	if p.Metadata != nil {
		out.Metadata = make(map[string]any, len(p.Metadata))
		for k, v := range p.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}
