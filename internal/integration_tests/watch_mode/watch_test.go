package integration_tests

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/embedcheck/internal/app"
	"github.com/specialistvlad/embedcheck/internal/report"
	"github.com/specialistvlad/embedcheck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestWatch_RelintsOnChange checks that watch mode runs an initial pass and
// another one after a document is added, then stops on cancellation.
func TestWatch_RelintsOnChange(t *testing.T) {
	// --- Arrange ---
	root := testutil.WriteWorkspace(t, map[string]string{
		".github/workflows/ci.yml": "jobs:\n  a:\n    runs-on: ubuntu-latest\n    steps:\n      - run: echo one\n",
	})
	cfg, err := app.NewConfig(app.Config{Root: root, LogLevel: "debug", LogFormat: "text"})
	require.NoError(t, err)

	fake := &testutil.FakeAnalyzer{}
	embedcheck, err := app.NewApp(&testutil.SafeBuffer{}, &testutil.SafeBuffer{}, cfg, app.WithAnalyzer(fake))
	require.NoError(t, err)

	passes := make(chan *report.Run, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- embedcheck.Watch(ctx, 50*time.Millisecond, func(r *report.Run) { passes <- r })
	}()

	// --- Act & Assert ---
	first := waitPass(t, passes)
	require.Len(t, first.Documents, 1)

	require.NoError(t, os.WriteFile(filepath.Join(root, "Dockerfile"), []byte("FROM alpine\nRUN echo two\n"), 0o644))
	second := waitPass(t, passes)
	assert.Len(t, second.Documents, 2)

	// A create followed by a write may settle into one more pass.
	drain(passes, 300*time.Millisecond)

	// Unrelated files do not trigger a pass.
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("hi"), 0o644))
	select {
	case <-passes:
		t.Fatal("unexpected pass for an unrelated file")
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}

func waitPass(t *testing.T, passes <-chan *report.Run) *report.Run {
	t.Helper()
	select {
	case r := <-passes:
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a lint pass")
		return nil
	}
}

func drain(passes <-chan *report.Run, quiet time.Duration) {
	for {
		select {
		case <-passes:
		case <-time.After(quiet):
			return
		}
	}
}
