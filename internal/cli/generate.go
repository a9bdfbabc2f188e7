package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// GenerateOptions holds flags for the generate command
type GenerateOptions struct {
	// PromptFile reads the prompt from a file ("-" for stdin)
	PromptFile string

	// Output is the review file to write ("-" for stdout)
	Output string

	// JSON writes events as JSON lines on stderr
	JSON bool
}

// NewGenerateCmd creates the generate command.
// Usage: planrate generate [PROMPT] [-o review.yaml]
func NewGenerateCmd(app *App) *cobra.Command {
	opts := GenerateOptions{}

	cmd := &cobra.Command{
		Use:   "generate [PROMPT]",
		Short: "Generate a plan and write an offline review file",
		Long: `Generate requests a plan for PROMPT from the generation service and writes
a review file with one rating entry per step. Fill in the ratings and send
them with 'planrate submit'.

The prompt is taken from the arguments, or from --prompt-file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt, err := readPrompt(args, opts.PromptFile, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return app.runGenerate(cmd, prompt, opts)
		},
	}

	cmd.Flags().StringVar(&opts.PromptFile, "prompt-file", "", "Read the prompt from a file (- for stdin)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "-", "Review file to write (- for stdout)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Write events as JSON lines")

	return cmd
}

func (a *App) runGenerate(cmd *cobra.Command, prompt string, opts GenerateOptions) error {
	cfg, err := a.Config()
	if err != nil {
		return err
	}
	logger := a.Logger(cmd.ErrOrStderr(), cfg)

	r, err := WireReviewer(cfg, logger)
	if err != nil {
		return err
	}
	defer r.Close()
	a.subscribeOutput(r.Events, cmd.ErrOrStderr(), opts.JSON, logger)

	if err := r.Session.Generate(cmd.Context(), prompt); err != nil {
		return userFacing(err)
	}

	rf := NewReviewFile(r.Session.Plan())
	if err := writeOutput(opts.Output, cmd.OutOrStdout(), rf); err != nil {
		return err
	}
	if opts.Output != "-" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d steps to %s\n", len(rf.Ratings), opts.Output)
	}
	return nil
}

// readPrompt joins the arguments, or reads the prompt file
func readPrompt(args []string, promptFile string, stdin io.Reader) (string, error) {
	switch {
	case promptFile != "" && len(args) > 0:
		return "", fmt.Errorf("give the prompt as arguments or with --prompt-file, not both")
	case promptFile == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read prompt: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	case promptFile != "":
		data, err := os.ReadFile(promptFile)
		if err != nil {
			return "", fmt.Errorf("read prompt: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	case len(args) == 0:
		return "", fmt.Errorf("a prompt is required")
	}
	return strings.Join(args, " "), nil
}

// writeOutput writes v to path, or to stdout when path is "-"
func writeOutput(path string, stdout io.Writer, v io.WriterTo) error {
	if path == "-" {
		_, err := v.WriteTo(stdout)
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := v.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
