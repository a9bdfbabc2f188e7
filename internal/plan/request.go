package plan

import (
	"fmt"
	"unicode/utf8"
)

const (
	MinPromptLength = 10
	MaxPromptLength = 5000

	MinTemperature = 0.0
	MaxTemperature = 1.0

	MinMaxTokens = 1000
	MaxMaxTokens = 20000

	DefaultTemperature = 0.5
	DefaultMaxTokens   = 10000
)

// GenerateRequest is the body sent to the generation service.
type GenerateRequest struct {
	Prompt      string  `json:"prompt"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// NewGenerateRequest builds a request with default sampling settings.
func NewGenerateRequest(prompt string) GenerateRequest {
	return GenerateRequest{
		Prompt:      prompt,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

// RequestError describes an invalid generate request field.
type RequestError struct {
	Field   string
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// CheckPrompt is the local precondition applied before any network call.
func CheckPrompt(prompt string) error {
	if utf8.RuneCountInString(prompt) < MinPromptLength {
		return &RequestError{
			Field:   "prompt",
			Message: fmt.Sprintf("Prompt must be at least %d characters long.", MinPromptLength),
		}
	}
	return nil
}

// Validate applies the full range checks the generation service enforces.
func (r GenerateRequest) Validate() error {
	if err := CheckPrompt(r.Prompt); err != nil {
		return err
	}
	if utf8.RuneCountInString(r.Prompt) > MaxPromptLength {
		return &RequestError{
			Field:   "prompt",
			Message: fmt.Sprintf("Prompt must be at most %d characters long.", MaxPromptLength),
		}
	}
	if r.Temperature < MinTemperature || r.Temperature > MaxTemperature {
		return &RequestError{
			Field:   "temperature",
			Message: fmt.Sprintf("Temperature must be between %.1f and %.1f.", MinTemperature, MaxTemperature),
		}
	}
	if r.MaxTokens < MinMaxTokens || r.MaxTokens > MaxMaxTokens {
		return &RequestError{
			Field:   "max_tokens",
			Message: fmt.Sprintf("Max tokens must be between %d and %d.", MinMaxTokens, MaxMaxTokens),
		}
	}
	return nil
}
