package testutil

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/specialistvlad/embedcheck/internal/analyzer"
)

// Rule makes FakeAnalyzer report a finding on every line that contains
// Contains.
type Rule struct {
	Contains string
	Level    string // error, warning or note
	Code     string
	Message  string
}

// FakeAnalyzer is an in-process analyzer.Analyzer that emits gcc-format
// findings according to its rules.
type FakeAnalyzer struct {
	Rules []Rule
	// Missing makes Available report the analyzer as not installed.
	Missing bool
	// Fail makes every analysis end with this exit status.
	Fail int

	mu       sync.Mutex
	scripts  []string
	excludes [][]string
}

var _ analyzer.Analyzer = (*FakeAnalyzer)(nil)

func (f *FakeAnalyzer) Available() error {
	if f.Missing {
		return fmt.Errorf("%w: fake-shellcheck", analyzer.ErrUnavailable)
	}
	return nil
}

func (f *FakeAnalyzer) Analyze(ctx context.Context, path string, exclude []string) (analyzer.Output, error) {
	if err := ctx.Err(); err != nil {
		return analyzer.Output{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return analyzer.Output{}, err
	}

	f.mu.Lock()
	f.scripts = append(f.scripts, string(data))
	f.excludes = append(f.excludes, exclude)
	f.mu.Unlock()

	if f.Fail > 1 {
		return analyzer.Output{ExitCode: f.Fail, Stderr: "fake failure"},
			&analyzer.Failure{Binary: "fake-shellcheck", ExitCode: f.Fail, Stderr: "fake failure"}
	}

	var b strings.Builder
	for i, line := range strings.Split(string(data), "\n") {
		for _, r := range f.Rules {
			if col := strings.Index(line, r.Contains); col >= 0 {
				fmt.Fprintf(&b, "%s:%d:%d: %s: %s [%s]\n", path, i+1, col+1, r.Level, r.Message, r.Code)
			}
		}
	}
	out := analyzer.Output{Stdout: b.String()}
	if b.Len() > 0 {
		out.ExitCode = 1
	}
	return out, nil
}

// Scripts returns every script body analyzed so far.
func (f *FakeAnalyzer) Scripts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.scripts...)
}

// Excludes returns the exclusion lists passed to each analysis.
func (f *FakeAnalyzer) Excludes() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]string(nil), f.excludes...)
}
