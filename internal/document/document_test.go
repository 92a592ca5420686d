package document

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/specialistvlad/embedcheck/internal/ctxlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() context.Context {
	return ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func TestDetectKind(t *testing.T) {
	testCases := []struct {
		path     string
		expected Kind
	}{
		{".github/workflows/ci.yml", Pipeline},
		{"repo/.github/workflows/release.yaml", Pipeline},
		{"action.yml", CompositeAction},
		{".github/actions/setup/action.yaml", CompositeAction},
		{"Dockerfile", ContainerBuild},
		{"docker/Dockerfile.alpine", ContainerBuild},
		{"tools/build.Dockerfile", ContainerBuild},
		{"Containerfile", ContainerBuild},
		{"config.yml", Unknown},
		{".github/dependabot.yml", Unknown},
		{"main.go", Unknown},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			assert.Equal(t, tc.expected, DetectKind(tc.path))
		})
	}
}

func TestParse_PipelinePreservesOrder(t *testing.T) {
	src := `
defaults:
  run:
    shell: bash --noprofile --norc -CeEuo pipefail {0}
jobs:
  zeta:
    runs-on: ubuntu-latest
    steps:
      - run: echo zeta
  alpha:
    runs-on: [self-hosted, windows]
    defaults:
      run:
        shell: pwsh
    steps:
      - uses: actions/checkout@v4
      - name: build
        shell: sh
        prepare: chsh -s /bin/zsh
        run: |
          make
          make test
`
	doc, err := Parse("ci.yml", Pipeline, []byte(src))
	require.NoError(t, err)

	require.NotNil(t, doc.DefaultShell)
	assert.Equal(t, "bash --noprofile --norc -CeEuo pipefail {0}", *doc.DefaultShell)

	require.Len(t, doc.Jobs, 2)
	assert.Equal(t, "zeta", doc.Jobs[0].Name)
	assert.Equal(t, "alpha", doc.Jobs[1].Name)
	assert.Nil(t, doc.Jobs[0].DefaultShell)
	assert.Equal(t, "self-hosted windows", doc.Jobs[1].RunsOn)
	require.NotNil(t, doc.Jobs[1].DefaultShell)
	assert.Equal(t, "pwsh", *doc.Jobs[1].DefaultShell)

	steps := doc.Jobs[1].Steps
	require.Len(t, steps, 2)
	assert.Nil(t, steps[0].Run)
	assert.Equal(t, "alpha.steps[1]", steps[1].Address.String())
	assert.Equal(t, "build", steps[1].Name)
	require.NotNil(t, steps[1].Run)
	assert.Equal(t, "make\nmake test\n", *steps[1].Run)
	require.NotNil(t, steps[1].Shell)
	assert.Equal(t, "sh", *steps[1].Shell)
	require.NotNil(t, steps[1].Prepare)
	assert.Equal(t, "chsh -s /bin/zsh", *steps[1].Prepare)
}

func TestParse_PipelineResolvesAnchors(t *testing.T) {
	src := `
x-step: &step
  shell: sh
  run: echo shared
jobs:
  a:
    steps:
      - <<: *step
        run: echo override
      - *step
`
	doc, err := Parse("ci.yml", Pipeline, []byte(src))
	require.NoError(t, err)
	steps := doc.Jobs[0].Steps
	require.Len(t, steps, 2)
	assert.Equal(t, "echo override", *steps[0].Run)
	assert.Equal(t, "sh", *steps[0].Shell)
	assert.Equal(t, "echo shared", *steps[1].Run)
}

func TestParse_AliasExpansionIsBounded(t *testing.T) {
	// --- Arrange ---
	var b strings.Builder
	b.WriteString("x-0: &a0 [\"lol\", \"lol\", \"lol\", \"lol\", \"lol\", \"lol\", \"lol\", \"lol\", \"lol\", \"lol\"]\n")
	for i := 1; i <= 8; i++ {
		refs := strings.TrimSuffix(strings.Repeat(fmt.Sprintf("*a%d, ", i-1), 10), ", ")
		fmt.Fprintf(&b, "x-%d: &a%d [%s]\n", i, i, refs)
	}
	b.WriteString("jobs:\n  a:\n    steps:\n      - run: echo hi\n")

	// --- Act ---
	start := time.Now()
	_, err := Parse("ci.yml", Pipeline, []byte(b.String()))

	// --- Assert ---
	require.Error(t, err)
	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, err.Error(), "expands to more than")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestParse_SharedAliasesStayWithinBudget(t *testing.T) {
	src := `
x-env: &env
  run: echo shared
jobs:
  a:
    steps:
      - *env
      - *env
      - *env
`
	doc, err := Parse("ci.yml", Pipeline, []byte(src))
	require.NoError(t, err)
	require.Len(t, doc.Jobs[0].Steps, 3)
	for i, step := range doc.Jobs[0].Steps {
		assert.Equal(t, "echo shared", *step.Run)
		assert.Equal(t, i, step.Index)
	}
}

func TestParse_StructuralErrors(t *testing.T) {
	testCases := []struct {
		name string
		kind Kind
		src  string
	}{
		{name: "invalid yaml", kind: Pipeline, src: "jobs: [unclosed"},
		{name: "top level list", kind: Pipeline, src: "- a\n- b\n"},
		{name: "jobs not a mapping", kind: Pipeline, src: "jobs: [a]\n"},
		{name: "steps not a sequence", kind: Pipeline, src: "jobs:\n  a:\n    steps: nope\n"},
		{name: "run not a string", kind: Pipeline, src: "jobs:\n  a:\n    steps:\n      - run: [x]\n"},
		{name: "composite runs not a mapping", kind: CompositeAction, src: "runs: composite\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse("doc.yml", tc.kind, []byte(tc.src))
			require.Error(t, err)
			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Equal(t, "doc.yml", perr.Path)
		})
	}
}

func TestParse_Composite(t *testing.T) {
	src := `
name: setup
runs:
  using: composite
  steps:
    - run: echo one
      shell: bash
    - uses: actions/cache@v4
    - run: echo two
`
	doc, err := Parse("action.yml", CompositeAction, []byte(src))
	require.NoError(t, err)
	assert.True(t, doc.Composite)
	require.Len(t, doc.Steps, 3)
	assert.Equal(t, "runs.steps[2]", doc.Steps[2].Address.String())
	assert.Nil(t, doc.Steps[2].Shell)

	nodeAction, err := Parse("action.yml", CompositeAction, []byte("runs:\n  using: node20\n  main: index.js\n"))
	require.NoError(t, err)
	assert.False(t, nodeAction.Composite)
	assert.Empty(t, nodeAction.Steps)
}

func TestParse_Dockerfile(t *testing.T) {
	src := `FROM alpine:3.20 AS build
SHELL ["/bin/ash", "-eo", "pipefail", "-c"]
RUN apk add --no-cache curl && \
    curl -fsSL https://example.com
RUN ["/bin/true"]
RUN <<EOF
echo from heredoc
EOF
HEALTHCHECK --interval=5s CMD curl -f http://localhost/ || exit 1
CMD ["./app"]
ENV A=b
`
	doc, err := Parse("Dockerfile", ContainerBuild, []byte(src))
	require.NoError(t, err)
	require.Len(t, doc.Instructions, 8)

	kinds := make([]InstructionKind, 0, len(doc.Instructions))
	for _, inst := range doc.Instructions {
		kinds = append(kinds, inst.Kind)
	}
	assert.Equal(t, []InstructionKind{From, Shell, Run, Run, Run, Healthcheck, Cmd, Other}, kinds)

	shellInst := doc.Instructions[1]
	assert.True(t, shellInst.JSONForm)
	assert.Equal(t, []string{"/bin/ash", "-eo", "pipefail", "-c"}, shellInst.Args)

	run := doc.Instructions[2]
	assert.False(t, run.JSONForm)
	assert.Contains(t, run.Text(), "apk add --no-cache curl")
	assert.Contains(t, run.Text(), "curl -fsSL https://example.com")

	assert.True(t, doc.Instructions[3].JSONForm)

	heredoc := doc.Instructions[4]
	require.Len(t, heredoc.Heredocs, 1)
	assert.Equal(t, "EOF", heredoc.Heredocs[0].Name)
	assert.Contains(t, heredoc.Heredocs[0].Content, "echo from heredoc")

	hc := doc.Instructions[5]
	require.NotNil(t, hc.Sub)
	assert.Equal(t, Cmd, hc.Sub.Kind)
	assert.False(t, hc.Sub.JSONForm)
	assert.Contains(t, hc.Sub.Text(), "curl -f http://localhost/")

	assert.True(t, doc.Instructions[6].JSONForm)
}

func TestLoad_FromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Dockerfile")
	require.NoError(t, os.WriteFile(path, []byte("FROM scratch\n"), 0o644))

	doc, err := Load(testContext(), path)
	require.NoError(t, err)
	assert.Equal(t, ContainerBuild, doc.Kind)
	assert.Len(t, doc.Instructions, 1)

	_, err = Load(testContext(), filepath.Join(dir, "notes.txt"))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)

	_, err = LoadKind(testContext(), filepath.Join(dir, "missing.yml"), Pipeline)
	require.ErrorAs(t, err, &perr)
}
