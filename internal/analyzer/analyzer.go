// Package analyzer runs the external shell analyzer against normalized
// fragments written to scoped scratch files.
package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/specialistvlad/embedcheck/internal/ctxlog"
)

// DefaultBinary is the analyzer looked up on PATH when none is configured.
const DefaultBinary = "shellcheck"

// ErrUnavailable is returned when the analyzer binary cannot be found.
var ErrUnavailable = errors.New("analyzer binary not found")

// Output is what the analyzer printed for one scratch file.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Failure is an analyzer run that ended with an unexpected status.
type Failure struct {
	Binary   string
	ExitCode int
	Stderr   string
}

func (f *Failure) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", f.Binary, f.ExitCode)
	if s := strings.TrimSpace(f.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

// Analyzer checks one script file on disk.
type Analyzer interface {
	// Available reports ErrUnavailable when the tool cannot run at all.
	Available() error
	Analyze(ctx context.Context, path string, exclude []string) (Output, error)
}

// ShellCheck invokes the shellcheck binary in gcc output mode.
type ShellCheck struct {
	Binary string
}

// NewShellCheck returns an analyzer for binary, or shellcheck when empty.
func NewShellCheck(binary string) *ShellCheck {
	if binary == "" {
		binary = DefaultBinary
	}
	return &ShellCheck{Binary: binary}
}

func (s *ShellCheck) Available() error {
	if _, err := exec.LookPath(s.Binary); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, s.Binary, err)
	}
	return nil
}

// Args builds the command line for path.
func (s *ShellCheck) Args(path string, exclude []string) []string {
	args := []string{"--format=gcc"}
	if len(exclude) > 0 {
		args = append(args, "--exclude="+strings.Join(exclude, ","))
	}
	return append(args, "--", path)
}

// Analyze runs the analyzer. Exit status 0 and 1 are normal results; any
// other status is a *Failure.
func (s *ShellCheck) Analyze(ctx context.Context, path string, exclude []string) (Output, error) {
	logger := ctxlog.FromContext(ctx)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.Binary, s.Args(path, exclude)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("Running analyzer.", "binary", s.Binary, "path", path)
	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Output{}, ctxErr
	}

	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			if errors.Is(err, exec.ErrNotFound) {
				return Output{}, fmt.Errorf("%w: %s", ErrUnavailable, s.Binary)
			}
			return Output{}, fmt.Errorf("running %s: %w", s.Binary, err)
		}
		out.ExitCode = exitErr.ExitCode()
	}

	if out.ExitCode > 1 || out.ExitCode < 0 {
		return out, &Failure{Binary: s.Binary, ExitCode: out.ExitCode, Stderr: out.Stderr}
	}
	return out, nil
}
