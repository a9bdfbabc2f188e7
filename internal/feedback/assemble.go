package feedback

import (
	"fmt"

	"github.com/RevCBH/planrate/internal/plan"
)

// Record pairs a step with its judgment in the submission payload.
type Record struct {
	StepID      string  `json:"step_id" yaml:"step_id"`
	StepNumber  int     `json:"step_number" yaml:"step_number"`
	StepContent string  `json:"step_content" yaml:"step_content"`
	Rating      Rating  `json:"rating" yaml:"rating"`
	Reason      *string `json:"reason" yaml:"reason"`
}

// Assemble builds the submission record in step order. Callers run
// Validate first; Assemble only refuses steps with no judgment at all.
func Assemble(steps []plan.Step, store Store) ([]Record, error) {
	records := make([]Record, 0, len(steps))
	for _, step := range steps {
		j, ok := store.Get(step.StepID)
		if !ok {
			return nil, fmt.Errorf("%w: step %d", ErrIncompleteCoverage, step.StepNumber)
		}
		rec := Record{
			StepID:      step.StepID,
			StepNumber:  step.StepNumber,
			StepContent: step.StepContent,
			Rating:      j.Rating,
		}
		if j.Rating == RatingNegative && j.Reason != nil {
			r := *j.Reason
			rec.Reason = &r
		}
		records = append(records, rec)
	}
	return records, nil
}
