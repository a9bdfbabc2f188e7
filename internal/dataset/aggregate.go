package dataset

import (
	"errors"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/RevCBH/planrate/internal/feedback"
	"github.com/RevCBH/planrate/internal/plan"
)

// ErrEmptySessionID indicates a submission without a session id
var ErrEmptySessionID = errors.New("session_id is required")

// Options controls the parts of a dataset not derived from the submission.
type Options struct {
	// Model is the generation model name recorded in model_metadata
	Model string

	// Now returns the dataset timestamp (default: time.Now)
	Now func() time.Time
}

// ComputeMetrics counts ratings. OverallScore is positive/total and 0 when
// there are no steps.
func ComputeMetrics(records []feedback.Record) Metrics {
	m := Metrics{TotalSteps: len(records)}
	for _, r := range records {
		switch r.Rating {
		case feedback.RatingPositive:
			m.PositiveRatings++
		case feedback.RatingNegative:
			m.NegativeRatings++
		}
	}
	if m.TotalSteps > 0 {
		m.OverallScore = float64(m.PositiveRatings) / float64(m.TotalSteps)
	}
	return m
}

// FeedbackQuality labels a reason as detailed or basic.
func FeedbackQuality(reason *string) string {
	if reason != nil && utf8.RuneCountInString(*reason) > DetailedReasonLength {
		return QualityDetailed
	}
	return QualityBasic
}

// ValidateSubmission applies the service-side checks: a session id, known
// ratings and a sufficient reason on every negative rating.
func ValidateSubmission(s Submission) error {
	if s.SessionID == "" {
		return ErrEmptySessionID
	}
	var msgs []string
	for i, r := range s.Feedback {
		if _, err := feedback.ParseRating(string(r.Rating)); err != nil {
			msgs = append(msgs, fmt.Sprintf("feedback[%d]: %v", i, err))
			continue
		}
		j := feedback.Judgment{Rating: r.Rating, Reason: r.Reason}
		if !feedback.ReasonSatisfied(j) {
			msgs = append(msgs, fmt.Sprintf("feedback[%d]: Reason is required and must be at least %d characters for negative ratings", i, feedback.MinReasonLength))
		}
	}
	return feedback.AsError(msgs)
}

// Aggregate builds the full dataset record for a submission.
func Aggregate(s Submission, opts Options) *Dataset {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	metrics := ComputeMetrics(s.Feedback)
	overall := metrics.OverallScore
	metrics.OverallScore = round3(overall)

	components := ExtractPDDL(s.PlanText)
	validation := ValidatePDDL(s.PlanText)
	metrics.PDDLValidityScore = validation.Score()

	items := make([]Item, 0, len(s.Feedback))
	for _, r := range s.Feedback {
		items = append(items, Item{
			StepID:          r.StepID,
			StepNumber:      r.StepNumber,
			StepContent:     r.StepContent,
			Rating:          r.Rating,
			Reason:          r.Reason,
			FeedbackQuality: FeedbackQuality(r.Reason),
		})
	}

	return &Dataset{
		SessionID:      s.SessionID,
		Timestamp:      now().UTC().Format("2006-01-02T15:04:05.999999") + "Z",
		DatasetFormat:  FormatName,
		Reference:      Reference,
		OriginalPrompt: s.Prompt,
		ModelOutput:    s.PlanText,
		PDDLStructure: &PDDLStructure{
			DomainDefinition:  components.Domain,
			ProblemDefinition: components.Problem,
			PlanSequence:      components.Plan,
			Validation:        validation,
		},
		ModelMetadata:     modelMetadata(opts.Model, s.Metadata),
		HumanFeedback:     items,
		AggregatedMetrics: metrics,
		TrainingMetadata: &TrainingMetadata{
			PipelineType:      "llm-as-formalizer",
			EvaluationMethod:  "human_feedback",
			DomainType:        "general_planning",
			CanUseForTraining: overall >= TrainingScoreThreshold && validation.IsValidStructure,
		},
	}
}

// modelMetadata prefers the model named by the generation metadata over the
// configured one.
func modelMetadata(model string, meta map[string]any) *ModelMetadata {
	if name, ok := meta["model"].(string); ok && name != "" {
		model = name
	}
	return &ModelMetadata{
		Model:            model,
		Temperature:      floatOr(meta["temperature"], plan.DefaultTemperature),
		MaxTokens:        int(floatOr(meta["max_tokens"], plan.DefaultMaxTokens)),
		PromptTokens:     optionalInt(meta["prompt_tokens"]),
		CompletionTokens: optionalInt(meta["completion_tokens"]),
		TotalTokens:      optionalInt(meta["total_tokens"]),
	}
}

// floatOr reads a numeric metadata value. JSON decoding yields float64,
// YAML decoding yields int.
func floatOr(v any, def float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return def
}

func optionalInt(v any) *int {
	if v == nil {
		return nil
	}
	f := floatOr(v, math.NaN())
	if math.IsNaN(f) {
		return nil
	}
	n := int(f)
	return &n
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
