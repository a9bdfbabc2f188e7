package cli

import (
	"errors"
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/RevCBH/planrate/internal/cli/tui"
	"github.com/RevCBH/planrate/internal/session"
)

// ErrNotInteractive is returned by review when stdin or stdout is not a
// terminal.
var ErrNotInteractive = errors.New("review needs an interactive terminal; use 'planrate generate' and 'planrate submit' instead")

// NewReviewCmd creates the review command.
// Usage: planrate review [PROMPT]
func NewReviewCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review [PROMPT]",
		Short: "Generate a plan and rate it interactively",
		Long: `Review opens a terminal UI: enter a planning problem, rate every step of
the generated plan with + or -, give negative ratings a reason, then submit
with s. The aggregated dataset is shown once the submission succeeds.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isInteractive() {
				return ErrNotInteractive
			}
			prompt := ""
			if len(args) > 0 {
				prompt, _ = readPrompt(args, "", nil)
			}
			return app.runReview(cmd, prompt)
		},
	}

	return cmd
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func (a *App) runReview(cmd *cobra.Command, prompt string) error {
	cfg, err := a.Config()
	if err != nil {
		return err
	}

	// Logs go to the TUI log pane; the program is attached before Run.
	ref := &programRef{}
	logs := tui.NewLogWriter(ref)
	defer logs.Close()
	logger := a.Logger(logs, cfg)

	r, err := WireReviewer(cfg, logger)
	if err != nil {
		return err
	}
	defer r.Close()

	model := tui.NewModel(tui.Options{
		Session: r.Session,
		Service: r.Client,
		Context: cmd.Context(),
		Prompt:  prompt,
	})
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(cmd.Context()),
	)
	ref.attach(program)
	r.Events.Subscribe(tui.NewBridge(program).Handler())

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run review: %w", err)
	}

	snap := r.Session.Snapshot()
	if snap.State == session.StateSubmitted && snap.Dataset != nil {
		fmt.Fprint(cmd.OutOrStdout(), FormatDatasetSummary(snap.Dataset, snap.FilePath))
	}
	return nil
}

// programRef lets the log writer exist before the program it feeds
type programRef struct {
	mu sync.Mutex
	p  *tea.Program
}

func (r *programRef) attach(p *tea.Program) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.p = p
}

func (r *programRef) Send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}
