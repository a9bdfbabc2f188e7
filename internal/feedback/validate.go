package feedback

import (
	"fmt"
	"unicode/utf8"

	"github.com/RevCBH/planrate/internal/plan"
)

// MinReasonLength is the minimum number of characters a negative rating's
// reason must contain.
const MinReasonLength = 10

// ReasonSatisfied reports whether a negative judgment carries a usable
// reason. Positive judgments always satisfy it.
func ReasonSatisfied(j Judgment) bool {
	if j.Rating != RatingNegative {
		return true
	}
	return j.Reason != nil && utf8.RuneCountInString(*j.Reason) >= MinReasonLength
}

// Validate checks the store against the full step list and returns one
// message per problem, in step order. An empty result means the store can
// be submitted.
func Validate(steps []plan.Step, store Store) []string {
	var errs []string
	for _, step := range steps {
		j, ok := store.Get(step.StepID)
		if !ok {
			errs = append(errs, fmt.Sprintf("Step %d has no rating.", step.StepNumber))
			continue
		}
		if !ReasonSatisfied(j) {
			errs = append(errs, fmt.Sprintf("Step %d needs a reason (at least %d characters).", step.StepNumber, MinReasonLength))
		}
	}
	return errs
}
