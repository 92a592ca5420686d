package resolve

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/embedcheck/internal/locator"
)

var (
	// ErrNonCanonicalDefault is a document-level error: the document's default
	// shell is not one of the recognized strict-mode invocations.
	ErrNonCanonicalDefault = errors.New("default shell is not a canonical strict-mode invocation")

	// ErrMissingShell marks a composite step whose prepare script switches the
	// shell while the step declares none.
	ErrMissingShell = errors.New("prepare script switches the shell but the step declares no explicit shell")

	// ErrEmptyRun marks a shell-form RUN with neither a command nor a here-document.
	ErrEmptyRun = errors.New("RUN instruction has no command")

	// ErrUnsupportedHeredoc marks here-document combinations that are not analyzed.
	ErrUnsupportedHeredoc = errors.New("unsupported here-document usage")

	// ErrDynamicShell marks a shell chosen by a template expression.
	ErrDynamicShell = errors.New("shell is selected by an expression and cannot be resolved statically")

	// ErrInvalidShellInstruction marks a SHELL instruction not in JSON form.
	ErrInvalidShellInstruction = errors.New("SHELL instruction must use the JSON array form")
)

// Error is a resolution failure bound to the place it happened.
type Error struct {
	Locator locator.Locator
	Line    int
	Detail  string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Err.Error()
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d): %s", e.Locator, e.Line, msg)
	}
	return fmt.Sprintf("%s: %s", e.Locator, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(loc locator.Locator, line int, err error, detail string) *Error {
	return &Error{Locator: loc, Line: line, Detail: detail, Err: err}
}

// detailed carries a sentinel plus the specifics of one occurrence until the
// failure is bound to a locator.
type detailed struct {
	err    error
	detail string
}

func withDetail(err error, detail string) error {
	return &detailed{err: err, detail: detail}
}

func (d *detailed) Error() string {
	return fmt.Sprintf("%s: %s", d.err, d.detail)
}

func (d *detailed) Unwrap() error {
	return d.err
}
