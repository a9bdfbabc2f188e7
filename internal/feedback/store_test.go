package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestStore_RatePositiveDropsReason(t *testing.T) {
	s := NewStore().
		Rate("step-1", RatingNegative, strPtr("the block is already clear")).
		Rate("step-1", RatingPositive, strPtr("ignored"))

	j, ok := s.Get("step-1")
	require.True(t, ok)
	assert.Equal(t, RatingPositive, j.Rating)
	assert.Nil(t, j.Reason)
}

func TestStore_RateNegativeKeepsShortReason(t *testing.T) {
	s := NewStore().Rate("step-1", RatingNegative, strPtr("bad"))

	j, _ := s.Get("step-1")
	assert.Equal(t, "bad", j.ReasonText())
}

func TestStore_RateIsCopyOnWrite(t *testing.T) {
	empty := NewStore()
	one := empty.Rate("step-1", RatingPositive, nil)
	two := one.Rate("step-2", RatingNegative, strPtr(""))

	assert.Equal(t, 0, empty.Len())
	assert.Equal(t, 1, one.Len())
	assert.Equal(t, 2, two.Len())
}

func TestStore_RatePositiveIsIdempotent(t *testing.T) {
	once := NewStore().Rate("step-1", RatingPositive, nil)
	twice := once.Rate("step-1", RatingPositive, nil)

	assert.True(t, once.Equal(twice))
}

func TestStore_RateCopiesReason(t *testing.T) {
	reason := "original reason text"
	s := NewStore().Rate("step-1", RatingNegative, &reason)
	reason = "mutated"

	j, _ := s.Get("step-1")
	assert.Equal(t, "original reason text", j.ReasonText())
}

func TestStore_WithReason(t *testing.T) {
	s := NewStore().
		Rate("step-1", RatingNegative, strPtr("")).
		Rate("step-2", RatingNegative, strPtr("untouched reason"))

	next, ok := s.WithReason("step-1", "precondition is never satisfied")
	require.True(t, ok)

	j1, _ := next.Get("step-1")
	j2, _ := next.Get("step-2")
	assert.Equal(t, "precondition is never satisfied", j1.ReasonText())
	assert.Equal(t, "untouched reason", j2.ReasonText())

	old, _ := s.Get("step-1")
	assert.Equal(t, "", old.ReasonText())
}

func TestStore_WithReasonRequiresNegative(t *testing.T) {
	s := NewStore().Rate("step-1", RatingPositive, nil)

	next, ok := s.WithReason("step-1", "not applied here")
	assert.False(t, ok)
	assert.True(t, s.Equal(next))

	_, ok = s.WithReason("unrated", "not applied here")
	assert.False(t, ok)
}

func TestStore_Reset(t *testing.T) {
	s := NewStore().Rate("step-1", RatingPositive, nil)
	assert.Equal(t, 0, s.Reset().Len())
}

func TestStore_JudgmentsReturnsCopy(t *testing.T) {
	s := NewStore().Rate("step-1", RatingPositive, nil)
	m := s.Judgments()
	delete(m, "step-1")

	assert.Equal(t, 1, s.Len())
}

func TestParseRating(t *testing.T) {
	r, err := ParseRating("negative")
	require.NoError(t, err)
	assert.Equal(t, RatingNegative, r)

	_, err = ParseRating("meh")
	assert.ErrorIs(t, err, ErrInvalidRating)
}
