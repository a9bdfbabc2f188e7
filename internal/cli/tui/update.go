package tui

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/RevCBH/planrate/internal/feedback"
	"github.com/RevCBH/planrate/internal/session"
)

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.Quitting = true
			return m, tea.Quit
		}
		// no input while a request is in flight
		if m.Snapshot.Busy() {
			return m, nil
		}
		switch m.Mode {
		case ModePrompt:
			return m.updatePrompt(msg)
		case ModeSteps:
			return m.updateSteps(msg)
		case ModeReason:
			return m.updateReason(msg)
		case ModeDataset:
			return m.updateDataset(msg)
		}

	case PlanResultMsg:
		err := m.session.CompleteGenerate(msg.Ticket, msg.Plan, msg.Err)
		m.refresh()
		if errors.Is(err, session.ErrStaleResponse) {
			return m, nil
		}
		m.Status = ""
		if err == nil {
			m.Mode = ModeSteps
			m.Cursor = 0
			m.prompt.Blur()
			m.Status = fmt.Sprintf("Plan ready: %d steps", len(m.Snapshot.Plan.Steps))
		}

	case SubmitResultMsg:
		err := m.session.CompleteSubmit(msg.Ticket, msg.Result, msg.Err)
		m.refresh()
		if errors.Is(err, session.ErrStaleResponse) {
			return m, nil
		}
		m.Status = ""
		if err == nil {
			m.Mode = ModeDataset
		}

	case EventMsg:
		m.appendLog(msg.Event.String())
		if msg.Event.Error != "" {
			m.appendLog("  " + msg.Event.Error)
		}

	case LogMsg:
		m.appendLog(msg.Line)
	}

	return m, nil
}

func (m *Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m, m.startGenerate(m.prompt.Value())
	case "esc":
		if m.Snapshot.Plan != nil {
			m.Mode = ModeSteps
			m.prompt.Blur()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) updateSteps(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.Status = ""
	step, ok := m.currentStep()

	switch msg.String() {
	case "q":
		m.Quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}

	case "down", "j":
		if m.Snapshot.Plan != nil && m.Cursor < len(m.Snapshot.Plan.Steps)-1 {
			m.Cursor++
		}

	case "+", "=":
		if ok {
			m.report(m.session.Rate(step.StepID, feedback.RatingPositive, nil))
		}

	case "-":
		if !ok {
			break
		}
		// keep an existing reason when re-rating a negative step
		var reason *string
		if j, rated := m.Snapshot.Feedback.Get(step.StepID); rated && j.Rating == feedback.RatingNegative {
			reason = j.Reason
		}
		if err := m.session.Rate(step.StepID, feedback.RatingNegative, reason); err != nil {
			m.report(err)
			break
		}
		m.refresh()
		return m, m.editReason(step.StepID)

	case "r":
		if !ok {
			break
		}
		j, rated := m.Snapshot.Feedback.Get(step.StepID)
		if !rated || j.Rating != feedback.RatingNegative {
			m.Status = "Only negative ratings take a reason"
			break
		}
		return m, m.editReason(step.StepID)

	case "u":
		if err := m.session.Undo(); errors.Is(err, session.ErrNothingToUndo) {
			m.Status = "Nothing to undo"
		} else {
			m.report(err)
		}

	case "s":
		if !m.Snapshot.CanSubmit {
			m.Status = "Rate every step before submitting"
			break
		}
		t, sub, err := m.session.BeginSubmit()
		m.refresh()
		if err != nil {
			return m, nil
		}
		m.Status = "Submitting feedback..."
		return m, submitCmd(m.ctx, m.service, t, sub)

	case "g":
		if m.Snapshot.Plan != nil {
			return m, m.startGenerate(m.Snapshot.Plan.Prompt)
		}

	case "n":
		m.Mode = ModePrompt
		if m.Snapshot.Plan != nil {
			m.prompt.SetValue(m.Snapshot.Plan.Prompt)
		}
		m.prompt.Focus()
		return m, nil

	case "d":
		if m.Snapshot.Dataset != nil {
			m.Mode = ModeDataset
		}

	case "l":
		m.ShowLogs = !m.ShowLogs

	case "esc":
		m.session.ClearError()
	}

	m.refresh()
	return m, nil
}

func (m *Model) updateReason(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		err := m.session.SetReason(m.reasonStep, m.reason.Value())
		m.report(err)
		m.closeReason()
		m.refresh()
		return m, nil
	case "esc":
		m.closeReason()
		return m, nil
	}

	var cmd tea.Cmd
	m.reason, cmd = m.reason.Update(msg)
	return m, cmd
}

func (m *Model) updateDataset(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.Quitting = true
		return m, tea.Quit
	case "b", "esc":
		m.Mode = ModeSteps
	case "n":
		m.Mode = ModePrompt
		m.prompt.SetValue("")
		m.prompt.Focus()
	case "l":
		m.ShowLogs = !m.ShowLogs
	}
	return m, nil
}

// startGenerate issues a generate ticket and returns the request command.
// A prompt that fails the local check leaves the error on the session.
func (m *Model) startGenerate(prompt string) tea.Cmd {
	t, req, err := m.session.BeginGenerate(prompt)
	m.refresh()
	if err != nil {
		return nil
	}
	m.Status = "Generating plan..."
	return generateCmd(m.ctx, m.service, t, req)
}

func (m *Model) editReason(stepID string) tea.Cmd {
	m.Mode = ModeReason
	m.reasonStep = stepID
	j, _ := m.Snapshot.Feedback.Get(stepID)
	m.reason.SetValue(j.ReasonText())
	m.reason.CursorEnd()
	return m.reason.Focus()
}

func (m *Model) closeReason() {
	m.Mode = ModeSteps
	m.reasonStep = ""
	m.reason.Blur()
}

// report shows a local error in the status line
func (m *Model) report(err error) {
	if err != nil {
		m.Status = err.Error()
	}
}

func (m *Model) appendLog(line string) {
	m.LogLines = append(m.LogLines, line)
	if m.LogLimit > 0 && len(m.LogLines) > m.LogLimit {
		m.LogLines = m.LogLines[len(m.LogLines)-m.LogLimit:]
	}
}
