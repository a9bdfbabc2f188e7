package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/RevCBH/planrate/internal/dataset"
	"github.com/RevCBH/planrate/internal/events"
	"github.com/RevCBH/planrate/internal/plan"
	"github.com/RevCBH/planrate/internal/session"
)

// Mode is the screen the review TUI is showing
type Mode int

const (
	ModePrompt Mode = iota
	ModeSteps
	ModeReason
	ModeDataset
)

// Model is the bubbletea model for the review TUI. The session owns all
// review state; the model only keeps a snapshot and the editor widgets.
type Model struct {
	// Configuration
	Styles  Styles
	session *session.Session
	service session.Service
	ctx     context.Context

	// State
	Mode      Mode
	Snapshot  session.Snapshot
	Cursor    int
	Status    string
	StartTime time.Time
	LogLines  []string
	LogLimit  int
	ShowLogs  bool
	Width     int
	Height    int

	prompt textinput.Model
	reason textinput.Model
	// reasonStep is the step whose reason is being edited
	reasonStep string

	// Control
	Quitting bool
}

// Options configures a review Model
type Options struct {
	Session *session.Session
	Service session.Service

	// Context bounds the network calls; defaults to context.Background()
	Context context.Context

	// Prompt prefills the prompt editor
	Prompt string
}

// NewModel creates a new review TUI model
func NewModel(opts Options) *Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	prompt := textinput.New()
	prompt.Placeholder = "Describe the planning problem"
	prompt.CharLimit = plan.MaxPromptLength
	prompt.Width = 72
	prompt.SetValue(opts.Prompt)
	prompt.Focus()

	reason := textinput.New()
	reason.Placeholder = "Why is this step wrong?"
	reason.CharLimit = 1000
	reason.Width = 72

	m := &Model{
		Styles:    DefaultStyles(),
		session:   opts.Session,
		service:   opts.Service,
		ctx:       ctx,
		Mode:      ModePrompt,
		StartTime: time.Now(),
		LogLimit:  200,
		prompt:    prompt,
		reason:    reason,
	}
	m.refresh()
	if m.Snapshot.Plan != nil {
		m.Mode = ModeSteps
		m.prompt.Blur()
	}
	return m
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	if m.Mode == ModePrompt {
		return textinput.Blink
	}
	return nil
}

// refresh re-reads the session snapshot and keeps the cursor in range
func (m *Model) refresh() {
	m.Snapshot = m.session.Snapshot()
	n := 0
	if m.Snapshot.Plan != nil {
		n = len(m.Snapshot.Plan.Steps)
	}
	if m.Cursor >= n {
		m.Cursor = n - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

// currentStep returns the step under the cursor
func (m *Model) currentStep() (plan.Step, bool) {
	p := m.Snapshot.Plan
	if p == nil || m.Cursor < 0 || m.Cursor >= len(p.Steps) {
		return plan.Step{}, false
	}
	return p.Steps[m.Cursor], true
}

// PlanResultMsg carries the outcome of a generate request
type PlanResultMsg struct {
	Ticket session.Ticket
	Plan   *plan.Plan
	Err    error
}

// SubmitResultMsg carries the outcome of a submit request
type SubmitResultMsg struct {
	Ticket session.Ticket
	Result *dataset.SubmitResult
	Err    error
}

// EventMsg forwards a session event for the log pane
type EventMsg struct {
	Event events.Event
}

// generateCmd performs the generate call off the update loop
func generateCmd(ctx context.Context, svc session.Service, t session.Ticket, req plan.GenerateRequest) tea.Cmd {
	return func() tea.Msg {
		p, err := svc.Generate(ctx, req)
		return PlanResultMsg{Ticket: t, Plan: p, Err: err}
	}
}

// submitCmd performs the submit call off the update loop
func submitCmd(ctx context.Context, svc session.Service, t session.Ticket, sub dataset.Submission) tea.Cmd {
	return func() tea.Msg {
		result, err := svc.Submit(ctx, sub)
		return SubmitResultMsg{Ticket: t, Result: result, Err: err}
	}
}
