package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RevCBH/planrate/internal/feedback"
	"github.com/RevCBH/planrate/internal/plan"
	"github.com/RevCBH/planrate/internal/session"
)

const reviewFileHeader = `# planrate review file
# Set each rating to "positive" or "negative". Negative ratings need a
# reason of at least 10 characters. Submit with: planrate submit <file>
`

// ReviewFile is an offline review: the generated plan plus one rating
// entry per step, in plan order.
type ReviewFile struct {
	Plan    *plan.Plan   `yaml:"plan"`
	Ratings []StepRating `yaml:"ratings"`
}

// StepRating is the reviewer's entry for one step. Step repeats the step
// content for convenience and is ignored on submit.
type StepRating struct {
	StepID string `yaml:"step_id"`
	Step   string `yaml:"step,omitempty"`
	Rating string `yaml:"rating"`
	Reason string `yaml:"reason"`
}

// NewReviewFile creates an unrated review file for p
func NewReviewFile(p *plan.Plan) *ReviewFile {
	rf := &ReviewFile{Plan: p}
	for _, s := range p.Steps {
		rf.Ratings = append(rf.Ratings, StepRating{StepID: s.StepID, Step: s.StepContent})
	}
	return rf
}

// WriteTo writes the review file as commented YAML
func (rf *ReviewFile) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString(reviewFileHeader)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(rf); err != nil {
		return 0, fmt.Errorf("encode review file: %w", err)
	}
	if err := enc.Close(); err != nil {
		return 0, err
	}
	return buf.WriteTo(w)
}

// ReadReviewFile parses a review file
func ReadReviewFile(r io.Reader) (*ReviewFile, error) {
	var rf ReviewFile
	if err := yaml.NewDecoder(r).Decode(&rf); err != nil {
		return nil, fmt.Errorf("parse review file: %w", err)
	}
	if rf.Plan == nil {
		return nil, errors.New("review file has no plan")
	}
	return &rf, nil
}

// LoadReviewFile reads a review file from disk; "-" reads stdin.
func LoadReviewFile(path string, stdin io.Reader) (*ReviewFile, error) {
	if path == "-" {
		return ReadReviewFile(stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadReviewFile(f)
}

// Apply restores the plan into sess and replays every filled-in rating
// through it. Entries with an empty rating are left unrated so the submit
// gate reports them.
func (rf *ReviewFile) Apply(sess *session.Session) error {
	if err := sess.Restore(rf.Plan); err != nil {
		return err
	}

	for i, entry := range rf.Ratings {
		raw := strings.TrimSpace(entry.Rating)
		if raw == "" {
			continue
		}
		rating, err := feedback.ParseRating(strings.ToLower(raw))
		if err != nil {
			return fmt.Errorf("ratings[%d] (%s): %w", i, entry.StepID, err)
		}
		var reason *string
		if rating == feedback.RatingNegative && entry.Reason != "" {
			r := entry.Reason
			reason = &r
		}
		if err := sess.Rate(entry.StepID, rating, reason); err != nil {
			return fmt.Errorf("ratings[%d]: %w", i, err)
		}
	}
	return nil
}
