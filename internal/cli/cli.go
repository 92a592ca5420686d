package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/embedcheck/internal/app"
	"github.com/specialistvlad/embedcheck/internal/diagnostic"
)

// Exit codes of the embedcheck process.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitUsage     = 2
	ExitInterrupt = 130
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("embedcheck", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
embedcheck - lint shell scripts embedded in CI pipelines, composite actions and Dockerfiles.

Usage:
  embedcheck [options] [ROOT]

Arguments:
  ROOT
    A document or a directory to search for documents. Defaults to ".".

Options:
`)
		flagSet.PrintDefaults()
	}

	verboseFlag := flagSet.Bool("v", false, "Verbose: debug logging and skipped units in the report.")
	configFlag := flagSet.String("config", "", "Path to a .hcl or .toml settings file.")
	logFormatFlag := flagSet.String("log-format", "auto", "Log output format. Options: 'auto', 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	workersFlag := flagSet.Int("workers", 0, "Fragments analyzed in parallel. 0 uses the settings file value (default 1).")
	analyzerFlag := flagSet.String("analyzer", "", "Analyzer binary. Defaults to the settings value or 'shellcheck'.")
	severityFlag := flagSet.String("severity", "", "Minimum failing severity: style, info, warning or error.")
	watchFlag := flagSet.Bool("watch", false, "Re-lint whenever a document or settings file changes.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() > 1 {
		return nil, false, &ExitError{Code: ExitUsage, Message: fmt.Sprintf("expected at most one ROOT argument, got %d", flagSet.NArg())}
	}
	root := "."
	if flagSet.NArg() == 1 {
		root = flagSet.Arg(0)
	}
	slog.Debug("Root determined.", "root", root)

	logFormat := strings.ToLower(*logFormatFlag)
	switch logFormat {
	case "auto", "text", "json":
	default:
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-format: must be 'auto', 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: ExitUsage, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *severityFlag != "" {
		if _, err := diagnostic.ParseSeverity(*severityFlag); err != nil {
			return nil, false, &ExitError{Code: ExitUsage, Message: "invalid severity: " + err.Error()}
		}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Root:           root,
		ConfigPath:     *configFlag,
		LogFormat:      logFormat,
		LogLevel:       logLevel,
		Verbose:        *verboseFlag,
		Workers:        *workersFlag,
		AnalyzerBinary: *analyzerFlag,
		MinSeverity:    strings.ToLower(*severityFlag),
		Watch:          *watchFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
