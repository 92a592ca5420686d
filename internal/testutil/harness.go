package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/embedcheck/internal/app"
	"github.com/specialistvlad/embedcheck/internal/report"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteWorkspace creates a temporary directory holding files, keyed by
// slash-separated relative path, and returns its root.
func WriteWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	Root      string
	Report    string
	LogOutput string
	Run       *report.Run
	Err       error
	Analyzer  *FakeAnalyzer
}

// RunLint writes files to a workspace and performs one lint pass over it
// with fake as the analyzer. mutate, when not nil, adjusts the app config.
func RunLint(t *testing.T, files map[string]string, fake *FakeAnalyzer, mutate func(*app.Config)) *HarnessResult {
	t.Helper()
	return RunLintWithContext(context.Background(), t, files, fake, mutate)
}

// RunLintWithContext is RunLint with a caller-provided context.
func RunLintWithContext(ctx context.Context, t *testing.T, files map[string]string, fake *FakeAnalyzer, mutate func(*app.Config)) *HarnessResult {
	t.Helper()

	root := WriteWorkspace(t, files)
	cfg := app.Config{Root: root, LogLevel: "debug", LogFormat: "text"}
	if mutate != nil {
		mutate(&cfg)
	}
	appConfig, err := app.NewConfig(cfg)
	require.NoError(t, err)

	if fake == nil {
		fake = &FakeAnalyzer{}
	}

	out := &SafeBuffer{}
	logs := &SafeBuffer{}
	res := &HarnessResult{Root: root, Analyzer: fake}

	a, err := app.NewApp(out, logs, appConfig, app.WithAnalyzer(fake))
	if err != nil {
		res.Err = err
		res.LogOutput = logs.String()
		return res
	}

	res.Run, res.Err = a.Run(ctx)
	res.Report = out.String()
	res.LogOutput = logs.String()

	if os.Getenv("EMBEDCHECK_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), res.LogOutput)
	}
	return res
}
