package diagnostic

import (
	"strings"
	"testing"

	"github.com/specialistvlad/embedcheck/internal/locator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scratch = "/tmp/embedcheck-3f2a9c1e-0.sh"

func mustLocator(t *testing.T, raw string) locator.Locator {
	t.Helper()
	l, err := locator.ParseLocator(raw)
	require.NoError(t, err)
	return l
}

func TestRemap_WorkflowScenario(t *testing.T) {
	loc := mustLocator(t, "workflow.yml build.steps[2].run")
	raw := scratch + ":3:6: warning: Double quote to prevent globbing and word splitting. [SC2086]\n"

	got := Remap(raw, scratch, loc)

	require.Len(t, got.Diagnostics, 1)
	d := got.Diagnostics[0]
	assert.Equal(t, 3, d.Line)
	assert.Equal(t, 6, d.Column)
	assert.Equal(t, Warning, d.Severity)
	assert.Equal(t, "SC2086", d.Code)
	assert.Equal(t, "workflow.yml build.steps[2].run:3:6: warning: Double quote to prevent globbing and word splitting. [SC2086]", d.String())
	assert.Empty(t, got.Notes)
}

func TestRemap_NeverLeaksScratchPath(t *testing.T) {
	loc := mustLocator(t, "Dockerfile instructions[4].run")
	raw := strings.Join([]string{
		scratch + ":2:1: error: Couldn't parse this function. [SC1073]",
		scratch + ":5:3: note: Use $(...) notation instead of legacy backticks. [SC2006]",
		scratch + ":6:1: warning: Not following: " + scratch + " was not specified as input [SC1091]",
		"In " + scratch + " line 7:",
		"",
		"some unrelated tool banner",
		scratch + ": openBinaryFile: does not exist",
	}, "\n")

	got := Remap(raw, scratch, loc)

	require.Len(t, got.Diagnostics, 3)
	assert.Equal(t, Error, got.Diagnostics[0].Severity)
	assert.Equal(t, Info, got.Diagnostics[1].Severity)
	assert.Equal(t, "Not following: Dockerfile instructions[4].run was not specified as input", got.Diagnostics[2].Message)
	assert.Equal(t, "SC1091", got.Diagnostics[2].Code)
	assert.Equal(t, []string{
		"In Dockerfile instructions[4].run line 7:",
		"some unrelated tool banner",
		"Dockerfile instructions[4].run: openBinaryFile: does not exist",
	}, got.Notes)

	for _, d := range got.Diagnostics {
		assert.NotContains(t, d.String(), scratch)
	}
	for _, n := range got.Notes {
		assert.NotContains(t, n, scratch)
	}
}

func TestRemap_LocatorRoundTrip(t *testing.T) {
	locs := []string{
		"ci.yml build.steps[0].run",
		".github/workflows/release.yml publish.steps[12].run",
		"action.yml runs.steps[3].run",
		"images/Containerfile instructions[9].healthcheck.cmd",
	}
	for _, raw := range locs {
		t.Run(raw, func(t *testing.T) {
			loc := mustLocator(t, raw)
			got := Remap(scratch+":2:1: style: x [SC1000]", scratch, loc)
			require.Len(t, got.Diagnostics, 1)

			printed := got.Diagnostics[0].Locator.String()
			back, err := locator.ParseLocator(printed)
			require.NoError(t, err)
			assert.True(t, back.Equal(loc), "%s != %s", back, loc)
		})
	}
}

func TestRemap_MessageWithoutCode(t *testing.T) {
	loc := mustLocator(t, "ci.yml a.steps[0].run")
	got := Remap(scratch+":1:1: error: odd message", scratch, loc)
	require.Len(t, got.Diagnostics, 1)
	assert.Empty(t, got.Diagnostics[0].Code)
	assert.Equal(t, "odd message", got.Diagnostics[0].Message)
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{in: "style", want: Style},
		{in: "Info", want: Info},
		{in: " warning ", want: Warning},
		{in: "ERROR", want: Error},
		{in: "fatal", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseSeverity(tc.in)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	assert.True(t, Error.AtLeast(Warning))
	assert.False(t, Info.AtLeast(Warning))
	assert.Equal(t, 2, Count([]Diagnostic{{Severity: Style}, {Severity: Warning}, {Severity: Error}}, Warning))
}
