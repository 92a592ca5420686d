package analyzer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/specialistvlad/embedcheck/internal/ctxlog"
	"github.com/specialistvlad/embedcheck/internal/fragment"
)

// ErrInterrupted is returned when a signal arrived while a fragment was
// being analyzed.
var ErrInterrupted = errors.New("analysis interrupted")

// Options configure a Runner.
type Options struct {
	// ScratchDir holds the scratch files; empty means os.TempDir().
	ScratchDir string
	// Slots is the number of fragments analyzed at once. Each slot owns one
	// scratch path.
	Slots int
	// RunID names this run's scratch files; empty generates one.
	RunID string
}

// Result is the analyzer output for one fragment.
type Result struct {
	Fragment    fragment.Fragment
	ScratchPath string
	Output      Output
}

// Runner hands fragments to an Analyzer through a fixed set of scratch
// slots. A slot is never used by two fragments at the same time.
type Runner struct {
	analyzer Analyzer
	dir      string
	runID    string
	slots    chan int
}

// NewRunner creates a Runner with opts.Slots slots (at least one).
func NewRunner(a Analyzer, opts Options) *Runner {
	n := max(opts.Slots, 1)
	dir := opts.ScratchDir
	if dir == "" {
		dir = os.TempDir()
	}
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()[:8]
	}

	slots := make(chan int, n)
	for i := 0; i < n; i++ {
		slots <- i
	}
	return &Runner{analyzer: a, dir: dir, runID: runID, slots: slots}
}

// Slots returns the number of concurrent analyses the runner allows.
func (r *Runner) Slots() int {
	return cap(r.slots)
}

// ScratchPath returns the reserved scratch file for a slot.
func (r *Runner) ScratchPath(slot int) string {
	return filepath.Join(r.dir, fmt.Sprintf("embedcheck-%s-%d.sh", r.runID, slot))
}

// Run analyzes one fragment. The scratch file exists only for the duration
// of the call.
func (r *Runner) Run(ctx context.Context, f fragment.Fragment) (res Result, err error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	var slot int
	select {
	case slot = <-r.slots:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	defer func() { r.slots <- slot }()

	path := r.ScratchPath(slot)
	logger := ctxlog.FromContext(ctx).With("locator", f.Locator.String(), "slot", slot)

	scratch, sigCtx, err := Acquire(ctx, path)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if relErr := scratch.Release(); relErr != nil && err == nil {
			err = relErr
		}
	}()

	if err := scratch.Write(f.NormalizedText); err != nil {
		return Result{}, err
	}

	out, err := r.analyzer.Analyze(sigCtx, path, f.Suppress)
	if err != nil {
		if sigCtx.Err() != nil && ctx.Err() == nil {
			logger.Warn("Analysis interrupted by signal.")
			return Result{}, fmt.Errorf("%s: %w", f.Locator, ErrInterrupted)
		}
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{Fragment: f, ScratchPath: path, Output: out}, fmt.Errorf("%s: %w", f.Locator, err)
	}

	logger.Debug("Fragment analyzed.", "exit_code", out.ExitCode)
	return Result{Fragment: f, ScratchPath: path, Output: out}, nil
}
