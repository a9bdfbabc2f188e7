package cli

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/RevCBH/planrate/internal/client"
	"github.com/RevCBH/planrate/internal/dataset"
)

// NewExportCmd creates the export command.
// Usage: planrate export SESSION_ID [--format json|jsonl|csv] [-o FILE]
func NewExportCmd(app *App) *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export SESSION_ID",
		Short: "Download a submitted dataset",
		Long: `Export fetches the dataset stored for SESSION_ID from the submission
service as json, jsonl or csv.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := dataset.ParseFormat(format)
			if err != nil {
				return err
			}

			cfg, err := app.Config()
			if err != nil {
				return err
			}
			timeout, err := cfg.TimeoutDuration()
			if err != nil {
				return err
			}

			c := client.NewWithClient(cfg.Service.GenerateURL, cfg.Service.SubmitURL, &http.Client{Timeout: timeout})
			data, err := c.Export(cmd.Context(), args[0], f)
			if err != nil {
				return userFacing(err)
			}

			if err := writeOutput(output, cmd.OutOrStdout(), bytes.NewReader(data)); err != nil {
				return err
			}
			if output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s export to %s\n", f, output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(dataset.FormatJSON), "Export format: json, jsonl or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "File to write (- for stdout)")

	return cmd
}
