// Package diagnostic maps analyzer output from a scratch file back onto the
// document location the fragment came from.
package diagnostic

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/specialistvlad/embedcheck/internal/locator"
)

// Diagnostic is one analyzer finding. Line and Column are positions inside
// the normalized fragment, shebang included.
type Diagnostic struct {
	Locator  locator.Locator
	Line     int
	Column   int
	Severity Severity
	Code     string
	Message  string
}

func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s:%d:%d: %s: %s", d.Locator, d.Line, d.Column, d.Severity, d.Message)
	if d.Code != "" {
		s += " [" + d.Code + "]"
	}
	return s
}

// Remapped is the analyzer output rewritten against a locator.
type Remapped struct {
	Diagnostics []Diagnostic
	// Notes are output lines that are not findings, with the scratch path
	// already rewritten.
	Notes []string
}

var gccLine = regexp.MustCompile(`^:(\d+):(\d+): ([a-z]+): (.*?)(?: \[(SC\d+)\])?$`)

// Remap rewrites every occurrence of scratchPath in raw to the locator and
// parses gcc-format findings. Blank lines are dropped.
func Remap(raw, scratchPath string, loc locator.Locator) Remapped {
	var out Remapped
	display := loc.String()

	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if d, ok := parse(line, scratchPath, loc); ok {
			out.Diagnostics = append(out.Diagnostics, d)
			continue
		}
		if scratchPath != "" {
			line = strings.ReplaceAll(line, scratchPath, display)
		}
		out.Notes = append(out.Notes, line)
	}
	return out
}

func parse(line, scratchPath string, loc locator.Locator) (Diagnostic, bool) {
	rest, ok := strings.CutPrefix(line, scratchPath)
	if !ok || scratchPath == "" {
		return Diagnostic{}, false
	}
	m := gccLine.FindStringSubmatch(rest)
	if m == nil {
		return Diagnostic{}, false
	}
	lineNo, _ := strconv.Atoi(m[1])
	col, _ := strconv.Atoi(m[2])
	return Diagnostic{
		Locator:  loc,
		Line:     lineNo,
		Column:   col,
		Severity: fromGCC(m[3]),
		Code:     m[5],
		Message:  strings.ReplaceAll(m[4], scratchPath, loc.String()),
	}, true
}

// Count returns how many diagnostics are at least min.
func Count(ds []Diagnostic, min Severity) int {
	n := 0
	for _, d := range ds {
		if d.Severity.AtLeast(min) {
			n++
		}
	}
	return n
}
