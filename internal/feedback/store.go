// Package feedback tracks a reviewer's per-step judgments and derives
// validity, coverage and the submission record from them.
package feedback

import "fmt"

// Rating is the reviewer's verdict on a single step.
type Rating string

const (
	RatingPositive Rating = "positive"
	RatingNegative Rating = "negative"
)

// ParseRating converts a wire value to a Rating.
func ParseRating(s string) (Rating, error) {
	switch Rating(s) {
	case RatingPositive, RatingNegative:
		return Rating(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRating, s)
}

// Judgment is the rating and optional reason recorded for one step.
// Reason is nil whenever Rating is positive.
type Judgment struct {
	Rating Rating  `json:"rating" yaml:"rating"`
	Reason *string `json:"reason" yaml:"reason,omitempty"`
}

// ReasonText returns the reason or "" when absent.
func (j Judgment) ReasonText() string {
	if j.Reason == nil {
		return ""
	}
	return *j.Reason
}

// Store maps step ids to judgments. A Store is a value: every mutation
// returns a new Store and leaves the receiver untouched.
type Store struct {
	judgments map[string]Judgment
}

// NewStore returns an empty store.
func NewStore() Store {
	return Store{}
}

// Rate sets or overwrites the judgment for stepID. A positive rating always
// drops the reason; a negative rating keeps it verbatim, however short.
func (s Store) Rate(stepID string, rating Rating, reason *string) Store {
	j := Judgment{Rating: rating}
	if rating == RatingNegative && reason != nil {
		r := *reason
		j.Reason = &r
	}
	next := s.clone(1)
	next.judgments[stepID] = j
	return next
}

// WithReason replaces the reason of a negatively rated step. The second
// return value is false when the step is unrated or rated positive, in
// which case the store is returned unchanged.
func (s Store) WithReason(stepID, reason string) (Store, bool) {
	j, ok := s.judgments[stepID]
	if !ok || j.Rating != RatingNegative {
		return s, false
	}
	r := reason
	j.Reason = &r
	next := s.clone(0)
	next.judgments[stepID] = j
	return next, true
}

// Reset returns an empty store.
func (s Store) Reset() Store {
	return NewStore()
}

// Get returns the judgment recorded for stepID.
func (s Store) Get(stepID string) (Judgment, bool) {
	j, ok := s.judgments[stepID]
	return j, ok
}

// Len is the number of rated steps.
func (s Store) Len() int {
	return len(s.judgments)
}

// Judgments returns a copy of the underlying mapping.
func (s Store) Judgments() map[string]Judgment {
	out := make(map[string]Judgment, len(s.judgments))
	for k, v := range s.judgments {
		out[k] = v
	}
	return out
}

// Equal reports whether both stores hold the same judgments.
func (s Store) Equal(other Store) bool {
	if len(s.judgments) != len(other.judgments) {
		return false
	}
	for k, a := range s.judgments {
		b, ok := other.judgments[k]
		if !ok || a.Rating != b.Rating {
			return false
		}
		if (a.Reason == nil) != (b.Reason == nil) {
			return false
		}
		if a.Reason != nil && *a.Reason != *b.Reason {
			return false
		}
	}
	return true
}

func (s Store) clone(extra int) Store {
	m := make(map[string]Judgment, len(s.judgments)+extra)
	for k, v := range s.judgments {
		m[k] = v
	}
	return Store{judgments: m}
}
