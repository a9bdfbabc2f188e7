// Package dataset reduces a submitted feedback record into summary metrics
// and the normalized RLHF dataset returned to the reviewer.
package dataset

import (
	"math"

	"github.com/RevCBH/planrate/internal/feedback"
)

const (
	// FormatName identifies the dataset layout
	FormatName = "MIT_PDDL_BlocksWorld_RLHF"

	// Reference points at the formalizer pipeline the layout follows
	Reference = "https://github.com/CassieHuang22/llm-as-pddl-formalizer"

	// DetailedReasonLength is the reason length above which feedback
	// counts as detailed
	DetailedReasonLength = 50

	// TrainingScoreThreshold is the minimum overall score for a dataset
	// to be marked usable for training
	TrainingScoreThreshold = 0.7
)

// Feedback quality labels
const (
	QualityDetailed = "detailed"
	QualityBasic    = "basic"
)

// Submission is the payload the reviewer sends to the submission service.
type Submission struct {
	SessionID string            `json:"session_id"`
	Prompt    string            `json:"prompt"`
	PlanText  string            `json:"plan_text"`
	Feedback  []feedback.Record `json:"feedback"`
	Metadata  map[string]any    `json:"metadata"`
}

// SubmitResult is the submission service's response.
type SubmitResult struct {
	Success  bool     `json:"success"`
	Dataset  *Dataset `json:"dataset"`
	FilePath string   `json:"file_path"`
}

// Item is one step's feedback inside a dataset.
type Item struct {
	StepID          string          `json:"step_id"`
	StepNumber      int             `json:"step_number"`
	StepContent     string          `json:"step_content"`
	Rating          feedback.Rating `json:"rating"`
	Reason          *string         `json:"reason"`
	FeedbackQuality string          `json:"feedback_quality,omitempty"`
}

// Metrics summarises the ratings of one submission.
type Metrics struct {
	TotalSteps        int     `json:"total_steps"`
	PositiveRatings   int     `json:"positive_ratings"`
	NegativeRatings   int     `json:"negative_ratings"`
	OverallScore      float64 `json:"overall_score"`
	PDDLValidityScore float64 `json:"pddl_validity_score"`
}

// ScorePercent is the overall score as a rounded percentage.
func (m Metrics) ScorePercent() int {
	return int(math.Round(m.OverallScore * 100))
}

// ModelMetadata records the sampling settings and token usage of the
// generation that produced the plan.
type ModelMetadata struct {
	Model            string  `json:"model"`
	Temperature      float64 `json:"temperature"`
	MaxTokens        int     `json:"max_tokens"`
	PromptTokens     *int    `json:"prompt_tokens"`
	CompletionTokens *int    `json:"completion_tokens"`
	TotalTokens      *int    `json:"total_tokens"`
}

// TrainingMetadata tells downstream pipelines how the dataset was produced.
type TrainingMetadata struct {
	PipelineType      string `json:"pipeline_type"`
	EvaluationMethod  string `json:"evaluation_method"`
	DomainType        string `json:"domain_type"`
	CanUseForTraining bool   `json:"can_use_for_training"`
}

// Dataset is the aggregated record produced for one submission. It is
// immutable once received by the reviewer.
type Dataset struct {
	SessionID         string            `json:"session_id"`
	Timestamp         string            `json:"timestamp,omitempty"`
	DatasetFormat     string            `json:"dataset_format,omitempty"`
	Reference         string            `json:"reference,omitempty"`
	OriginalPrompt    string            `json:"original_prompt,omitempty"`
	ModelOutput       string            `json:"model_output,omitempty"`
	PDDLStructure     *PDDLStructure    `json:"pddl_structure,omitempty"`
	ModelMetadata     *ModelMetadata    `json:"model_metadata,omitempty"`
	HumanFeedback     []Item            `json:"human_feedback,omitempty"`
	Feedback          []Item            `json:"feedback,omitempty"`
	AggregatedMetrics Metrics           `json:"aggregated_metrics"`
	TrainingMetadata  *TrainingMetadata `json:"training_metadata,omitempty"`
}

// Items returns the per-step feedback, preferring human_feedback over the
// legacy feedback key.
func (d *Dataset) Items() []Item {
	if len(d.HumanFeedback) > 0 {
		return d.HumanFeedback
	}
	return d.Feedback
}

// ShortSessionID is the first eight characters of the session id.
func (d *Dataset) ShortSessionID() string {
	if len(d.SessionID) <= 8 {
		return d.SessionID
	}
	return d.SessionID[:8]
}
