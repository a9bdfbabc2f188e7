package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RevCBH/planrate/internal/client"
	"github.com/RevCBH/planrate/internal/dataset"
	"github.com/RevCBH/planrate/internal/feedback"
	"github.com/RevCBH/planrate/internal/plan"
)

const logPaneLines = 8

// View implements tea.Model
func (m *Model) View() string {
	if m.Quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch m.Mode {
	case ModePrompt:
		b.WriteString(m.renderPrompt())
	case ModeSteps, ModeReason:
		b.WriteString(m.renderSteps())
	case ModeDataset:
		b.WriteString(m.renderDataset())
	}

	b.WriteString(m.renderStatus())

	if m.ShowLogs {
		b.WriteString(m.renderLogs())
	}

	b.WriteString(m.renderFooter())

	return b.String()
}

// renderHeader renders the title line with session id, state and timer
func (m *Model) renderHeader() string {
	elapsed := time.Since(m.StartTime).Round(time.Second)
	parts := []string{m.Styles.Title.Render("Plan Review")}
	if p := m.Snapshot.Plan; p != nil {
		parts = append(parts, m.Styles.Session.Render(shortID(p.SessionID)))
	}
	parts = append(parts,
		m.Styles.State.Render(string(m.Snapshot.State)),
		m.Styles.Session.Render(fmt.Sprintf("[%s]", formatDuration(elapsed))),
	)
	return strings.Join(parts, "  ")
}

func (m *Model) renderPrompt() string {
	var b strings.Builder
	b.WriteString("  Planning problem:\n\n")
	b.WriteString("  " + m.prompt.View() + "\n")
	fmt.Fprintf(&b, "  %s\n", m.Styles.FieldName.Render(
		fmt.Sprintf("%d/%d characters, at least %d", len([]rune(m.prompt.Value())), plan.MaxPromptLength, plan.MinPromptLength)))
	return b.String()
}

// renderSteps renders the step list with ratings and reasons
func (m *Model) renderSteps() string {
	p := m.Snapshot.Plan
	if p == nil {
		return "  No plan yet\n"
	}

	var b strings.Builder
	progress := m.Snapshot.Progress
	fmt.Fprintf(&b, "  %s %d/%d rated\n\n",
		m.renderProgressBar(progress.Completed, progress.Total, 24), progress.Completed, progress.Total)

	section := ""
	for i, step := range p.Steps {
		if step.Section != "" && step.Section != section {
			section = step.Section
			fmt.Fprintf(&b, "  %s\n", m.Styles.Section.Render(section))
		}
		b.WriteString(m.renderStep(i, step))
	}
	return b.String()
}

// renderStep renders a single step line and its reason
func (m *Model) renderStep(i int, step plan.Step) string {
	var b strings.Builder

	cursor := " "
	if i == m.Cursor {
		cursor = m.Styles.Cursor.Render(IconCursor)
	}

	icon := m.Styles.Unrated.Render(IconUnrated)
	j, rated := m.Snapshot.Feedback.Get(step.StepID)
	if rated {
		switch j.Rating {
		case feedback.RatingPositive:
			icon = m.Styles.Positive.Render(IconPositive)
		case feedback.RatingNegative:
			icon = m.Styles.Negative.Render(IconNegative)
		}
	}

	number := m.Styles.StepNumber.Render(fmt.Sprintf("%3d.", step.StepNumber))
	fmt.Fprintf(&b, " %s %s %s %s\n", cursor, icon, number, m.Styles.StepContent.Render(step.StepContent))

	if m.Mode == ModeReason && step.StepID == m.reasonStep {
		fmt.Fprintf(&b, "         %s\n", m.reason.View())
		return b.String()
	}
	if rated && j.Rating == feedback.RatingNegative {
		style := m.Styles.Reason
		text := j.ReasonText()
		if !feedback.ReasonSatisfied(j) {
			style = m.Styles.ReasonShort
			if text == "" {
				text = fmt.Sprintf("reason required (%d+ characters)", feedback.MinReasonLength)
			} else {
				text = fmt.Sprintf("%s (%d+ characters required)", text, feedback.MinReasonLength)
			}
		}
		fmt.Fprintf(&b, "         %s\n", style.Render(text))
	}
	return b.String()
}

// renderDataset renders the summary of the received dataset
func (m *Model) renderDataset() string {
	d := m.Snapshot.Dataset
	if d == nil {
		return "  No dataset yet\n"
	}

	var b strings.Builder
	metrics := d.AggregatedMetrics
	score := m.Styles.Score
	if metrics.OverallScore < dataset.TrainingScoreThreshold {
		score = m.Styles.ScoreLow
	}

	fmt.Fprintf(&b, "  %s %s\n", m.Styles.FieldName.Render("Session:"), d.SessionID)
	fmt.Fprintf(&b, "  %s %d   %s %s   %s %s\n",
		m.Styles.FieldName.Render("Steps:"), metrics.TotalSteps,
		m.Styles.FieldName.Render("Positive:"), m.Styles.Positive.Render(fmt.Sprint(metrics.PositiveRatings)),
		m.Styles.FieldName.Render("Negative:"), m.Styles.Negative.Render(fmt.Sprint(metrics.NegativeRatings)))
	fmt.Fprintf(&b, "  %s %s\n", m.Styles.FieldName.Render("Score:"), score.Render(fmt.Sprintf("%d%%", metrics.ScorePercent())))
	if m.Snapshot.FilePath != "" {
		fmt.Fprintf(&b, "  %s %s\n", m.Styles.FieldName.Render("Saved to:"), m.Snapshot.FilePath)
	}
	b.WriteString("\n")

	for _, item := range d.Items() {
		icon := m.Styles.Positive.Render(IconPositive)
		if item.Rating == feedback.RatingNegative {
			icon = m.Styles.Negative.Render(IconNegative)
		}
		fmt.Fprintf(&b, "  %s %s %s\n", icon, m.Styles.StepNumber.Render(fmt.Sprintf("%3d.", item.StepNumber)), item.StepContent)
		if item.Reason != nil && *item.Reason != "" {
			fmt.Fprintf(&b, "         %s\n", m.Styles.Reason.Render(*item.Reason))
		}
	}
	return b.String()
}

// renderStatus renders the pending, error and info lines
func (m *Model) renderStatus() string {
	var b strings.Builder
	b.WriteString("\n")
	switch {
	case m.Snapshot.Generating:
		fmt.Fprintf(&b, "  %s\n", m.Styles.Pending.Render(IconWaiting+" Generating plan..."))
	case m.Snapshot.Submitting:
		fmt.Fprintf(&b, "  %s\n", m.Styles.Pending.Render(IconWaiting+" Submitting feedback..."))
	}
	if err := m.Snapshot.Err; err != nil {
		for _, line := range strings.Split(userMessage(err), "\n") {
			fmt.Fprintf(&b, "  %s\n", m.Styles.Error.Render(line))
		}
	}
	if m.Status != "" && !m.Snapshot.Busy() {
		fmt.Fprintf(&b, "  %s\n", m.Styles.Info.Render(m.Status))
	}
	return b.String()
}

// renderLogs renders the tail of the event log
func (m *Model) renderLogs() string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n", m.Styles.LogTitle.Render("Events"))
	start := max(len(m.LogLines)-logPaneLines, 0)
	for _, line := range m.LogLines[start:] {
		fmt.Fprintf(&b, "  %s\n", m.Styles.LogLine.Render(line))
	}
	return b.String()
}

// renderFooter renders the key help for the current mode
func (m *Model) renderFooter() string {
	var keys []string
	switch m.Mode {
	case ModePrompt:
		keys = []string{m.key("enter", "generate", true)}
		if m.Snapshot.Plan != nil {
			keys = append(keys, m.key("esc", "back", true))
		}
		keys = append(keys, m.key("ctrl+c", "quit", true))
	case ModeSteps:
		keys = []string{
			m.key("+/-", "rate", true),
			m.key("r", "reason", true),
			m.key("u", "undo", m.Snapshot.CanUndo),
			m.key("s", "submit", m.Snapshot.CanSubmit),
			m.key("g", "regenerate", true),
			m.key("n", "new prompt", true),
		}
		if m.Snapshot.Dataset != nil {
			keys = append(keys, m.key("d", "dataset", true))
		}
		keys = append(keys, m.key("l", "log", true), m.key("q", "quit", true))
	case ModeReason:
		keys = []string{m.key("enter", "save", true), m.key("esc", "cancel", true)}
	case ModeDataset:
		keys = []string{m.key("b", "back", true), m.key("n", "new prompt", true), m.key("q", "quit", true)}
	}
	return m.Styles.Footer.Render("  "+strings.Join(keys, "  ")) + "\n"
}

func (m *Model) key(k, label string, enabled bool) string {
	if !enabled || m.Snapshot.Busy() {
		return m.Styles.FooterDisabled.Render(k + " " + label)
	}
	return m.Styles.FooterKey.Render(k) + " " + label
}

// renderProgressBar creates a progress bar of the given width
func (m *Model) renderProgressBar(completed, total, width int) string {
	if total == 0 {
		total = 1
	}

	filled := min((completed*width)/total, width)

	return "[" +
		m.Styles.ProgressFilled.Render(strings.Repeat("█", filled)) +
		m.Styles.ProgressEmpty.Render(strings.Repeat("░", width-filled)) +
		"]"
}

// formatDuration formats a duration as HH:MM:SS
func formatDuration(d time.Duration) string {
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// userMessage puts each validation message on its own line
func userMessage(err error) string {
	var v *feedback.ValidationError
	if errors.As(err, &v) {
		return strings.Join(v.Messages, "\n")
	}
	return client.UserMessage(err)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
