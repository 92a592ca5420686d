package diagnostic

import (
	"fmt"
	"strings"
)

// Severity orders analyzer findings from least to most serious.
type Severity int

const (
	Style Severity = iota
	Info
	Warning
	Error
)

var severityNames = map[Severity]string{
	Style:   "style",
	Info:    "info",
	Warning: "warning",
	Error:   "error",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// ParseSeverity accepts the names used in settings files and on the command line.
func ParseSeverity(s string) (Severity, error) {
	for sev, name := range severityNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return sev, nil
		}
	}
	return Style, fmt.Errorf("unknown severity %q (want style, info, warning or error)", s)
}

// AtLeast reports whether s is as serious as min or more.
func (s Severity) AtLeast(min Severity) bool {
	return s >= min
}

// fromGCC maps the gcc output levels. The gcc format folds info and style
// into "note"; those are reported as info.
func fromGCC(level string) Severity {
	switch level {
	case "error":
		return Error
	case "warning":
		return Warning
	default:
		return Info
	}
}
