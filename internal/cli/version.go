package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCmd creates the version command.
// Usage: planrate version [--json]
func NewVersionCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := app.versionInfo.withDefaults()
			w := cmd.OutOrStdout()

			if asJSON {
				return json.NewEncoder(w).Encode(info)
			}
			fmt.Fprintf(w, "planrate version %s\ncommit: %s\nbuilt: %s\n", info.Version, info.Commit, info.Date)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print build information as JSON")

	return cmd
}

// withDefaults fills unset fields for development builds
func (v VersionInfo) withDefaults() VersionInfo {
	if v.Version == "" {
		v.Version = "dev"
	}
	if v.Commit == "" {
		v.Commit = "unknown"
	}
	if v.Date == "" {
		v.Date = "unknown"
	}
	return v
}
