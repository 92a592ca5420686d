package report

import (
	"fmt"
	"io"
	"strings"
)

// TextOptions control WriteText.
type TextOptions struct {
	// Verbose also lists skipped units.
	Verbose bool
}

// WriteText renders the run as plain text, one line per finding, documents in
// run order and units in structural order, followed by a summary line.
func (r *Run) WriteText(w io.Writer, opts TextOptions) error {
	p := &printer{w: w}

	if r.AnalyzerErr != nil {
		p.printf("warning: %v; embedded scripts were not analyzed\n", r.AnalyzerErr)
	}

	for _, d := range r.Documents {
		if d.Err != nil {
			p.printf("%s: error: %v\n", d.Path, d.Err)
			continue
		}
		for _, a := range d.Advisories {
			p.printf("%s (line %d): advisory: %s\n", a.Locator, a.Line, a.Message)
		}
		for _, u := range d.Units {
			switch u.Outcome {
			case Analyzed:
				for _, diag := range u.Diagnostics {
					p.printf("%s\n", diag)
				}
				for _, n := range u.Notes {
					p.printf("%s\n", n)
				}
			case Unresolved:
				p.printf("error: %v\n", u.Err)
			case AnalyzerFailed:
				p.printf("%s: error: %v\n", u.Locator, u.Err)
			case Skipped, NotAnalyzed:
				if opts.Verbose {
					p.printf("%s: %s: %s\n", u.Locator, u.Outcome, u.Reason)
				}
			}
		}
	}

	s := r.Summarize()
	p.printf("%s\n", s)
	return p.err
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d fragments checked in %d documents: %d diagnostics (%d failing), %d errors, %d skipped",
		s.Fragments, s.Documents, s.Diagnostics, s.Failing, s.Errors, s.Skipped)
	if s.NotAnalyzed > 0 {
		fmt.Fprintf(&b, ", %d not analyzed", s.NotAnalyzed)
	}
	if s.Advisories > 0 {
		fmt.Fprintf(&b, ", %d advisories", s.Advisories)
	}
	return b.String()
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
