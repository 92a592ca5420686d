package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBinary writes a POSIX script that stands in for the analyzer. It
// reports one finding against its last argument and exits with status.
func stubBinary(t *testing.T, status int) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub analyzer is a shell script")
	}
	path := filepath.Join(t.TempDir(), "fake-shellcheck")
	script := "#!/bin/sh\n" +
		"for last; do :; done\n" +
		"echo \"$last:2:6: warning: Double quote to prevent globbing and word splitting. [SC2086]\"\n" +
		"echo \"args: $*\" >&2\n" +
		"exit " + strconv.Itoa(status) + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestShellCheck_Args(t *testing.T) {
	sc := NewShellCheck("")
	assert.Equal(t, DefaultBinary, sc.Binary)
	assert.Equal(t, []string{"--format=gcc", "--", "/tmp/x.sh"}, sc.Args("/tmp/x.sh", nil))
	assert.Equal(t,
		[]string{"--format=gcc", "--exclude=SC2154,SC2129", "--", "/tmp/x.sh"},
		sc.Args("/tmp/x.sh", []string{"SC2154", "SC2129"}))
}

func TestShellCheck_Analyze(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantFail   bool
		wantStatus int
	}{
		{name: "clean", status: 0},
		{name: "findings", status: 1, wantStatus: 1},
		{name: "analyzer failure", status: 2, wantStatus: 2, wantFail: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			sc := NewShellCheck(stubBinary(t, tc.status))
			require.NoError(t, sc.Available())

			// --- Act ---
			out, err := sc.Analyze(context.Background(), "/scratch/a.sh", []string{"SC2154"})

			// --- Assert ---
			if tc.wantFail {
				var failure *Failure
				require.ErrorAs(t, err, &failure)
				assert.Equal(t, 2, failure.ExitCode)
				assert.Contains(t, failure.Error(), "--exclude=SC2154")
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.wantStatus, out.ExitCode)
			assert.Contains(t, out.Stdout, "/scratch/a.sh:2:6: warning:")
		})
	}
}

func TestShellCheck_Unavailable(t *testing.T) {
	sc := NewShellCheck(filepath.Join(t.TempDir(), "no-such-analyzer"))

	require.ErrorIs(t, sc.Available(), ErrUnavailable)
	_, err := sc.Analyze(context.Background(), "/scratch/a.sh", nil)
	require.Error(t, err)
}

func TestScratch_ReleaseRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "embedcheck-test-0.sh")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o600))

	s, ctx, err := Acquire(context.Background(), path)
	require.NoError(t, err)
	assert.NoFileExists(t, path, "stale file is cleared on acquire")
	require.NoError(t, ctx.Err())

	require.NoError(t, s.Write("#!/bin/sh\necho hi"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho hi", string(data))

	require.NoError(t, s.Release())
	require.NoError(t, s.Release())
	assert.NoFileExists(t, path)
	assert.Error(t, ctx.Err(), "releasing stops the signal scope")
}
