package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/RevCBH/planrate/internal/archive"
	"github.com/RevCBH/planrate/internal/dataset"
	"github.com/RevCBH/planrate/internal/events"
	"github.com/RevCBH/planrate/internal/feedback"
	"github.com/RevCBH/planrate/internal/plan"
)

// StatusSymbol marks a step's rating in plain output
type StatusSymbol string

const (
	SymbolPositive StatusSymbol = "✓"
	SymbolNegative StatusSymbol = "✗"
	SymbolUnrated  StatusSymbol = "○"
)

// RenderProgressBar renders a progress bar of specified width
func RenderProgressBar(progress float64, width int) string {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}

	filled := int(progress * float64(width))
	empty := width - filled

	bar := strings.Repeat("█", filled) + strings.Repeat("░", empty)

	percent := int(progress * 100)
	return fmt.Sprintf("[%s] %3d%%", bar, percent)
}

// GetRatingSymbol returns the symbol for a rating; unrated steps get
// SymbolUnrated.
func GetRatingSymbol(r feedback.Rating) StatusSymbol {
	switch r {
	case feedback.RatingPositive:
		return SymbolPositive
	case feedback.RatingNegative:
		return SymbolNegative
	default:
		return SymbolUnrated
	}
}

// FormatDatasetSummary formats a received dataset for the terminal:
// counts, score, location and every rated step with its reason.
func FormatDatasetSummary(d *dataset.Dataset, filePath string) string {
	var b strings.Builder
	m := d.AggregatedMetrics

	fmt.Fprintf(&b, "Session:  %s\n", d.SessionID)
	fmt.Fprintf(&b, "Steps:    %d (%d positive, %d negative)\n", m.TotalSteps, m.PositiveRatings, m.NegativeRatings)
	fmt.Fprintf(&b, "Score:    %s\n", RenderProgressBar(m.OverallScore, 20))
	if d.TrainingMetadata != nil {
		fmt.Fprintf(&b, "Training: %s\n", yesNo(d.TrainingMetadata.CanUseForTraining))
	}
	if filePath != "" {
		fmt.Fprintf(&b, "Saved to: %s\n", filePath)
	}

	items := d.Items()
	if len(items) > 0 {
		b.WriteString("\n")
	}
	for _, item := range items {
		fmt.Fprintf(&b, "  %s %3d. %s\n", GetRatingSymbol(item.Rating), item.StepNumber, item.StepContent)
		if item.Reason != nil && *item.Reason != "" {
			fmt.Fprintf(&b, "         %s\n", *item.Reason)
		}
	}
	return b.String()
}

// FormatPlan formats a plan's steps with the current ratings
func FormatPlan(p *plan.Plan, store feedback.Store) string {
	var b strings.Builder
	progress := feedback.ComputeProgress(p.Steps, store)
	ratio := 0.0
	if progress.Total > 0 {
		ratio = float64(progress.Completed) / float64(progress.Total)
	}

	fmt.Fprintf(&b, "Session: %s\n", p.SessionID)
	fmt.Fprintf(&b, "Rated:   %s %d/%d\n\n", RenderProgressBar(ratio, 20), progress.Completed, progress.Total)
	for _, s := range p.Steps {
		j, _ := store.Get(s.StepID)
		fmt.Fprintf(&b, "  %s %3d. %s\n", GetRatingSymbol(j.Rating), s.StepNumber, s.StepContent)
	}
	return b.String()
}

// displayEntries renders archived datasets in tabular format using tabwriter.
// Columns: ID, Session, Steps, Score, Training, Exports, Created
func displayEntries(w io.Writer, entries []archive.Entry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tSESSION\tSTEPS\tSCORE\tTRAINING\tEXPORTS\tCREATED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d%%\t%s\t%d\t%s\n",
			e.ID,
			shortSession(e.SessionID),
			e.TotalSteps,
			dataset.Metrics{OverallScore: e.OverallScore}.ScorePercent(),
			yesNo(e.CanUseForTraining),
			e.Exports,
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
		)
	}
}

// formatEvent renders an event as one progress line for plain output
func formatEvent(e events.Event) string {
	timestamp := formatTime(e.Time)

	var msg string
	switch e.Type {
	case events.PlanRequested:
		msg = "Requesting plan"
	case events.PlanGenerated:
		msg = fmt.Sprintf("Plan received: %s", shortSession(e.Session))
		if payload, ok := e.Payload.(map[string]any); ok {
			if n, ok := payload["steps"].(int); ok {
				msg += fmt.Sprintf(" (%d steps)", n)
			}
		}
	case events.PlanRejected:
		msg = "Prompt rejected"
	case events.PlanGenerateFailed:
		msg = "Plan generation failed"
	case events.FeedbackRejected:
		msg = "Feedback incomplete"
	case events.SubmitFailed:
		msg = "Submission failed"
	case events.SubmitStarted:
		msg = "Submitting feedback"
	case events.FeedbackSubmitted:
		msg = "Feedback submitted"
	default:
		msg = e.String()
	}
	if e.Error != "" {
		msg += " - " + e.Error
	}
	return fmt.Sprintf("[%s] %s", timestamp, msg)
}

// progressHandler writes the lifecycle events of a command to w. Per-step
// rating events are skipped.
func progressHandler(w io.Writer) events.Handler {
	return func(e events.Event) {
		switch e.Type {
		case events.StepRated, events.StepReasonEdited, events.FeedbackUndone:
			return
		}
		fmt.Fprintln(w, formatEvent(e))
	}
}

// formatTime formats a timestamp for display
func formatTime(t time.Time) string {
	return t.Format("15:04:05")
}

func shortSession(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
