package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains all lipgloss styles for the review TUI
type Styles struct {
	// Header styling
	Title   lipgloss.Style
	Session lipgloss.Style
	State   lipgloss.Style

	// Step list
	Cursor      lipgloss.Style
	StepNumber  lipgloss.Style
	StepContent lipgloss.Style
	Section     lipgloss.Style
	Positive    lipgloss.Style
	Negative    lipgloss.Style
	Unrated     lipgloss.Style
	Reason      lipgloss.Style
	ReasonShort lipgloss.Style

	// Progress bar colors
	ProgressFilled lipgloss.Style
	ProgressEmpty  lipgloss.Style

	// Messages
	Error   lipgloss.Style
	Info    lipgloss.Style
	Pending lipgloss.Style

	// Dataset summary
	Score     lipgloss.Style
	ScoreLow  lipgloss.Style
	FieldName lipgloss.Style

	// Footer styling
	Footer         lipgloss.Style
	FooterKey      lipgloss.Style
	FooterDisabled lipgloss.Style

	// Log area styling
	LogTitle lipgloss.Style
	LogLine  lipgloss.Style
}

// DefaultStyles returns the default TUI styles
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Session: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		State:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),

		Cursor:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		StepNumber:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		StepContent: lipgloss.NewStyle(),
		Section:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Underline(true),
		Positive:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Negative:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Unrated:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Reason:      lipgloss.NewStyle().Foreground(lipgloss.Color("250")).Italic(true),
		ReasonShort: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true),

		ProgressFilled: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		ProgressEmpty:  lipgloss.NewStyle().Foreground(lipgloss.Color("240")),

		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Pending: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true),

		Score:     lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		ScoreLow:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		FieldName: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		Footer:         lipgloss.NewStyle().Foreground(lipgloss.Color("245")).MarginTop(1),
		FooterKey:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
		FooterDisabled: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true),

		LogTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Bold(true),
		LogLine:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Icons used in the TUI
const (
	IconCursor   = "▸"
	IconPositive = "✓"
	IconNegative = "✗"
	IconUnrated  = "○"
	IconWaiting  = "⏳"
)
