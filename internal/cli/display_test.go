package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/RevCBH/planrate/internal/archive"
	"github.com/RevCBH/planrate/internal/dataset"
	"github.com/RevCBH/planrate/internal/events"
	"github.com/RevCBH/planrate/internal/feedback"
)

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		name     string
		progress float64
		width    int
		want     string
	}{
		{"empty", 0, 10, "[░░░░░░░░░░]   0%"},
		{"half", 0.5, 10, "[█████░░░░░]  50%"},
		{"full", 1, 10, "[██████████] 100%"},
		{"clamped below", -0.5, 4, "[░░░░]   0%"},
		{"clamped above", 1.5, 4, "[████] 100%"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderProgressBar(tt.progress, tt.width))
		})
	}
}

func TestGetRatingSymbol(t *testing.T) {
	assert.Equal(t, SymbolPositive, GetRatingSymbol(feedback.RatingPositive))
	assert.Equal(t, SymbolNegative, GetRatingSymbol(feedback.RatingNegative))
	assert.Equal(t, SymbolUnrated, GetRatingSymbol(""))
}

func TestFormatPlan(t *testing.T) {
	p := reviewPlan()
	store := feedback.NewStore().Rate("step-1", feedback.RatingPositive, nil)

	out := FormatPlan(p, store)
	assert.Contains(t, out, "Session: sess-file")
	assert.Contains(t, out, " 50% 1/2")
	assert.Contains(t, out, "○   0. (pick-up a)")
	assert.Contains(t, out, "✓   1. (stack a b)")
}

func TestDisplayEntries(t *testing.T) {
	var buf bytes.Buffer
	displayEntries(&buf, []archive.Entry{{
		ID:                "01HZYXWVUTSRQPONMLKJIHGFED",
		SessionID:         "sess-1234567890",
		CreatedAt:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		TotalSteps:        4,
		OverallScore:      0.75,
		CanUseForTraining: true,
		Exports:           2,
	}})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, []string{"ID", "SESSION", "STEPS", "SCORE", "TRAINING", "EXPORTS", "CREATED"}, strings.Fields(lines[0]))
	fields := strings.Fields(lines[1])
	assert.Equal(t, []string{"01HZYXWVUTSRQPONMLKJIHGFED", "sess-123", "4", "75%", "yes", "2"}, fields[:6])
}

func TestFormatEvent(t *testing.T) {
	e := events.NewEvent(events.PlanGenerated, "sess-1234567890").
		WithPayload(map[string]any{"steps": 3})
	e.Time = time.Date(2026, 1, 1, 9, 30, 15, 0, time.Local)
	assert.Equal(t, "[09:30:15] Plan received: sess-123 (3 steps)", formatEvent(e))

	failed := events.NewEvent(events.SubmitFailed, "sess").WithError(assert.AnError)
	assert.True(t, strings.HasSuffix(formatEvent(failed), "Submission failed - "+assert.AnError.Error()))
}

func TestProgressHandler_SkipsStepEvents(t *testing.T) {
	var buf bytes.Buffer
	h := progressHandler(&buf)
	h(events.NewEvent(events.StepRated, "sess"))
	h(events.NewEvent(events.FeedbackUndone, "sess"))
	assert.Empty(t, buf.String())

	h(events.NewEvent(events.SubmitStarted, "sess"))
	assert.Contains(t, buf.String(), "Submitting feedback")
}

func TestFormatDatasetSummary_WithoutLocation(t *testing.T) {
	d := &dataset.Dataset{
		SessionID: "sess-x",
		AggregatedMetrics: dataset.Metrics{
			TotalSteps:      1,
			PositiveRatings: 1,
			OverallScore:    1,
		},
	}
	out := FormatDatasetSummary(d, "")
	assert.Contains(t, out, "1 (1 positive, 0 negative)")
	assert.NotContains(t, out, "Saved to:")
	assert.NotContains(t, out, "Training:")
}
