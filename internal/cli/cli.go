package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RevCBH/planrate/internal/client"
	"github.com/RevCBH/planrate/internal/config"
	"github.com/RevCBH/planrate/internal/events"
	"github.com/RevCBH/planrate/internal/feedback"
	"github.com/RevCBH/planrate/internal/logging"
)

// App represents the CLI application with all wired dependencies
type App struct {
	// Root command
	rootCmd *cobra.Command

	// Configuration (loaded lazily by the first command that needs it)
	config     *config.Config
	configPath string

	// Runtime state
	verbose bool

	// jsonMode decides machine-readable output (events.IsJSONMode by default)
	jsonMode func(force bool) bool

	// Version information
	versionInfo VersionInfo
}

// VersionInfo holds the build-time version variables
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// New creates a new CLI application
func New() *App {
	app := &App{jsonMode: events.IsJSONMode}
	app.setupRootCmd()
	return app
}

// Execute runs the CLI application
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

// SetVersion sets the version string for the version command
func (a *App) SetVersion(version, commit, date string) {
	a.versionInfo = VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}
}

// SetArgs overrides os.Args for the root command
func (a *App) SetArgs(args []string) {
	a.rootCmd.SetArgs(args)
}

// SetOutput redirects command output
func (a *App) SetOutput(out, errOut io.Writer) {
	a.rootCmd.SetOut(out)
	a.rootCmd.SetErr(errOut)
}

// Config loads the configuration once: defaults, ~/.planrate/config.yaml,
// .planrate.yaml (or --config), then environment overrides.
func (a *App) Config() (*config.Config, error) {
	if a.config != nil {
		return a.config, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	cfg, err := config.LoadConfig(dir, a.configPath)
	if err != nil {
		return nil, err
	}
	a.config = cfg
	return cfg, nil
}

// Logger builds the logger for a command. --verbose forces debug level.
func (a *App) Logger(w io.Writer, cfg *config.Config) *slog.Logger {
	level := cfg.LogLevel
	if a.verbose {
		level = logging.LevelDebug
	}
	return logging.New(w, level, cfg.LogFormat)
}

// subscribeOutput attaches the command's event output to bus: JSON lines in
// JSON mode, otherwise one progress line per lifecycle event.
func (a *App) subscribeOutput(bus *events.Bus, w io.Writer, jsonOut bool, logger *slog.Logger) {
	if a.jsonMode(jsonOut) {
		bus.Subscribe(events.JSONEmitterHandler(events.NewJSONEmitter(w), logger))
		return
	}
	bus.Subscribe(progressHandler(w))
}

// UserError carries the message shown to the reviewer while keeping the
// underlying error for errors.Is/As.
type UserError struct {
	Message string
	Err     error
}

func (e *UserError) Error() string {
	return e.Message
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// userFacing replaces remote failures with their user message and puts
// each validation message on its own line.
func userFacing(err error) error {
	if err == nil {
		return nil
	}
	var verr *feedback.ValidationError
	if errors.As(err, &verr) {
		return &UserError{Message: "feedback is incomplete:\n  " + strings.Join(verr.Messages, "\n  "), Err: err}
	}
	return &UserError{Message: client.UserMessage(err), Err: err}
}

// setupRootCmd configures the root Cobra command
func (a *App) setupRootCmd() {
	a.rootCmd = &cobra.Command{
		Use:   "planrate",
		Short: "Human feedback collection for generated plans",
		Long: `planrate requests a step-by-step plan from a generation service, lets a
reviewer rate every step positive or negative (negative ratings need a
reason), and submits the feedback to be aggregated into an RLHF dataset.

Review interactively with 'planrate review', or offline with
'planrate generate' followed by 'planrate submit'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add persistent flags
	a.rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false,
		"Verbose output")
	a.rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "",
		"Config file (default .planrate.yaml)")

	a.rootCmd.AddCommand(
		NewReviewCmd(a),
		NewGenerateCmd(a),
		NewSubmitCmd(a),
		NewExportCmd(a),
		NewServeCmd(a),
		NewArchiveCmd(a),
		NewVersionCmd(a),
	)
}
