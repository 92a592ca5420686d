package shell

import (
	"path"
	"regexp"
	"strings"
)

// Kind separates interpreters the analyzer can check from everything else.
type Kind int

const (
	// Posix is any sh-family interpreter (sh, bash, dash, ksh, ...).
	Posix Kind = iota
	// NonPosix covers cmd, PowerShell and any other interpreter.
	NonPosix
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	if k == Posix {
		return "posix"
	}
	return "non-posix"
}

// Well-known invocations.
const (
	// ContainerDefault is the build system's documented default shell.
	ContainerDefault = "/bin/sh -c"
	// RunnerDefault is the CI runner's default for run steps on Linux/macOS.
	RunnerDefault = "bash -e {0}"
	// WindowsRunnerDefault is the CI runner's default for run steps on Windows.
	WindowsRunnerDefault = "pwsh"
	// CompositeDefault is used for composite steps without an explicit shell.
	CompositeDefault = "sh"
)

// posixPrograms lists the interpreters the analyzer supports.
var posixPrograms = map[string]struct{}{
	"sh":      {},
	"bash":    {},
	"dash":    {},
	"ash":     {},
	"ksh":     {},
	"mksh":    {},
	"busybox": {},
}

// Spec is a fully resolved shell: the verbatim invocation and its kind.
type Spec struct {
	Kind       Kind
	Invocation string
}

// New classifies an invocation string such as `bash --noprofile {0}` or
// `/bin/sh -c`.
func New(invocation string) Spec {
	invocation = strings.TrimSpace(invocation)
	return Spec{Kind: Classify(Program(invocation)), Invocation: invocation}
}

// IsPosix reports whether the analyzer can check scripts run by this shell.
func (s Spec) IsPosix() bool {
	return s.Kind == Posix
}

// Program returns the base name of the interpreter of s.
func (s Spec) Program() string {
	return Program(s.Invocation)
}

func (s Spec) String() string {
	return s.Invocation
}

// Program extracts the interpreter base name from an invocation, looking
// through `env` and its flags. It returns "" for an empty invocation.
func Program(invocation string) string {
	fields := strings.Fields(invocation)
	if len(fields) == 0 {
		return ""
	}
	name := base(fields[0])
	if name != "env" {
		return name
	}
	for _, f := range fields[1:] {
		if strings.HasPrefix(f, "-") || strings.Contains(f, "=") {
			continue
		}
		return base(f)
	}
	return name
}

// Classify maps an interpreter base name to a Kind.
func Classify(program string) Kind {
	if _, ok := posixPrograms[program]; ok {
		return Posix
	}
	return NonPosix
}

// Shebang renders the synthetic first line for a fragment run by s. Template
// placeholders like `{0}` and a trailing `-c` are dropped, and a bare program
// name is routed through /usr/bin/env.
func (s Spec) Shebang() string {
	var fields []string
	for _, f := range strings.Fields(s.Invocation) {
		if f == "{0}" {
			continue
		}
		fields = append(fields, f)
	}
	if n := len(fields); n > 1 && fields[n-1] == "-c" {
		fields = fields[:n-1]
	}
	if len(fields) == 0 {
		return "#!/bin/sh"
	}
	if strings.HasPrefix(fields[0], "/") {
		return "#!" + strings.Join(fields, " ")
	}
	return "#!/usr/bin/env " + strings.Join(fields, " ")
}

func base(p string) string {
	p = strings.Trim(p, `"'`)
	p = strings.ReplaceAll(p, `\`, "/")
	name := strings.ToLower(path.Base(p))
	return strings.TrimSuffix(name, ".exe")
}

// changeRegexes recognize commands that switch the interactive shell of the
// current user.
var changeRegexes = []*regexp.Regexp{
	regexp.MustCompile(`(?m)\bchsh\b[^\n;&|]*?\s(?:-s|--shell)[\s=]+("[^"]+"|'[^']+'|\S+)`),
	regexp.MustCompile(`(?m)\busermod\b[^\n;&|]*?\s(?:-s|--shell)[\s=]+("[^"]+"|'[^']+'|\S+)`),
	// exec zsh -l
	regexp.MustCompile(`(?m)^\s*exec\s+("[^"]+"|'[^']+'|\S+)\s+(?:-l|--login)\b`),
}

// ChangedShell scans preparation text for a shell-changing command and returns
// the shell it switches to. When several switches occur the last one wins.
func ChangedShell(prepare string) (string, bool) {
	best, bestPos := "", -1
	for _, re := range changeRegexes {
		for _, m := range re.FindAllStringSubmatchIndex(prepare, -1) {
			if m[0] > bestPos {
				bestPos = m[0]
				best = strings.Trim(prepare[m[2]:m[3]], `"'`)
			}
		}
	}
	return best, bestPos >= 0
}

// IsWindowsRunner reports whether a `runs-on` label selects a Windows runner.
func IsWindowsRunner(runsOn string) bool {
	return strings.Contains(strings.ToLower(runsOn), "windows")
}
