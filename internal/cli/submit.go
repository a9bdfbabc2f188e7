package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/RevCBH/planrate/internal/dataset"
	"github.com/RevCBH/planrate/internal/feedback"
)

// SubmitOptions holds flags for the submit command
type SubmitOptions struct {
	// Check validates the review file without submitting it
	Check bool

	// JSON prints the dataset as JSON and events as JSON lines
	JSON bool
}

// NewSubmitCmd creates the submit command.
// Usage: planrate submit FILE [--check] [--json]
func NewSubmitCmd(app *App) *cobra.Command {
	opts := SubmitOptions{}

	cmd := &cobra.Command{
		Use:   "submit FILE",
		Short: "Validate and submit a review file",
		Long: `Submit replays the ratings of a review file written by 'planrate generate'
and sends them to the submission service. Every step needs a rating and
every negative rating a reason of at least 10 characters; nothing is sent
otherwise.

Use - to read the review file from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runSubmit(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Check, "check", false, "Validate only, do not submit")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print the dataset as JSON")

	return cmd
}

func (a *App) runSubmit(cmd *cobra.Command, path string, opts SubmitOptions) error {
	rf, err := LoadReviewFile(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	cfg, err := a.Config()
	if err != nil {
		return err
	}
	logger := a.Logger(cmd.ErrOrStderr(), cfg)
	jsonOut := a.jsonMode(opts.JSON)

	r, err := WireReviewer(cfg, logger)
	if err != nil {
		return err
	}
	defer r.Close()
	a.subscribeOutput(r.Events, cmd.ErrOrStderr(), opts.JSON, logger)

	if err := rf.Apply(r.Session); err != nil {
		return err
	}

	if opts.Check {
		p := r.Session.Plan()
		store := r.Session.Feedback()
		fmt.Fprint(cmd.OutOrStdout(), FormatPlan(p, store))
		if err := feedback.AsError(feedback.Validate(p.Steps, store)); err != nil {
			return userFacing(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "\nReady to submit")
		return nil
	}

	if err := r.Session.Submit(cmd.Context()); err != nil {
		return userFacing(err)
	}

	snap := r.Session.Snapshot()
	if jsonOut {
		return writeDatasetJSON(cmd.OutOrStdout(), snap.Dataset)
	}
	fmt.Fprint(cmd.OutOrStdout(), FormatDatasetSummary(snap.Dataset, snap.FilePath))
	return nil
}

func writeDatasetJSON(w io.Writer, d *dataset.Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}
