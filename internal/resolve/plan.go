package resolve

import (
	"errors"

	"github.com/specialistvlad/embedcheck/internal/document"
	"github.com/specialistvlad/embedcheck/internal/locator"
	"github.com/specialistvlad/embedcheck/internal/shell"
)

// Status is the outcome of resolving one unit.
type Status int

const (
	// Runnable units have a posix shell and script text to analyze.
	Runnable Status = iota
	// Skipped units are recorded but not analyzed (non-posix, exec form, ignored).
	Skipped
	// Failed units could not be resolved; see Unit.Err.
	Failed
)

func (s Status) String() string {
	switch s {
	case Runnable:
		return "runnable"
	case Skipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Unit is one step or instruction that carries (or would carry) a script.
type Unit struct {
	Locator locator.Locator
	Line    int
	Status  Status

	// Shell is set for Runnable units and for units skipped because their
	// shell is not posix.
	Shell *shell.Spec
	Text  string

	Reason string
	Err    *Error
}

// Advisory is a non-failing recommendation produced during resolution.
type Advisory struct {
	Locator locator.Locator
	Line    int
	Message string
}

// Plan is the resolution result for one document. When Err is set the
// document is not analyzed at all and Units is empty.
type Plan struct {
	Document   *document.Document
	Err        *Error
	Units      []Unit
	Advisories []Advisory
}

// Runnable returns the units that must be analyzed, in structural order.
func (p *Plan) Runnable() []Unit {
	var out []Unit
	for _, u := range p.Units {
		if u.Status == Runnable {
			out = append(out, u)
		}
	}
	return out
}

// Errors returns every resolution error of the plan, document-level first.
func (p *Plan) Errors() []*Error {
	var out []*Error
	if p.Err != nil {
		out = append(out, p.Err)
	}
	for _, u := range p.Units {
		if u.Err != nil {
			out = append(out, u.Err)
		}
	}
	return out
}

func (p *Plan) runnable(loc locator.Locator, line int, spec shell.Spec, text string) {
	p.Units = append(p.Units, Unit{Locator: loc, Line: line, Status: Runnable, Shell: &spec, Text: text})
}

func (p *Plan) skip(loc locator.Locator, line int, spec *shell.Spec, reason string) {
	p.Units = append(p.Units, Unit{Locator: loc, Line: line, Status: Skipped, Shell: spec, Reason: reason})
}

func (p *Plan) fail(loc locator.Locator, line int, err error, detail string) {
	p.Units = append(p.Units, Unit{Locator: loc, Line: line, Status: Failed, Err: newError(loc, line, err, detail)})
}

func (p *Plan) failWith(loc locator.Locator, line int, err error) {
	var d *detailed
	if errors.As(err, &d) {
		p.fail(loc, line, d.err, d.detail)
		return
	}
	p.fail(loc, line, err, "")
}

// add routes a resolved spec to runnable or skipped depending on its kind.
func (p *Plan) add(loc locator.Locator, line int, spec shell.Spec, text string) {
	if !spec.IsPosix() {
		p.skip(loc, line, &spec, "non-posix shell "+spec.Program())
		return
	}
	p.runnable(loc, line, spec, text)
}
