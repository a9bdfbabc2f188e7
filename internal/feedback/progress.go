package feedback

import (
	"math"

	"github.com/RevCBH/planrate/internal/plan"
)

// Progress is rating coverage, not validity: a negative rating with a short
// reason still counts as completed.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// ComputeProgress counts the plan's steps that have any judgment.
func ComputeProgress(steps []plan.Step, store Store) Progress {
	p := Progress{Total: len(steps)}
	for _, step := range steps {
		if _, ok := store.Get(step.StepID); ok {
			p.Completed++
		}
	}
	return p
}

// Percentage is the rounded completion percentage; 0 for an empty plan.
func (p Progress) Percentage() int {
	if p.Total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(p.Completed) / float64(p.Total)))
}

// IsComplete gates the enabled state of submit.
func (p Progress) IsComplete() bool {
	return p.Total > 0 && p.Completed == p.Total
}
