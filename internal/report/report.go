// Package report aggregates per-document results into a run verdict and
// renders them in structural order.
package report

import (
	"github.com/specialistvlad/embedcheck/internal/diagnostic"
	"github.com/specialistvlad/embedcheck/internal/document"
	"github.com/specialistvlad/embedcheck/internal/locator"
	"github.com/specialistvlad/embedcheck/internal/resolve"
)

// Outcome is what happened to one unit of a document.
type Outcome int

const (
	// Pending units are runnable and have not been analyzed yet.
	Pending Outcome = iota
	Analyzed
	Skipped
	Unresolved
	AnalyzerFailed
	// NotAnalyzed units were runnable but the analyzer was unavailable.
	NotAnalyzed
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Analyzed:
		return "analyzed"
	case Skipped:
		return "skipped"
	case Unresolved:
		return "unresolved"
	case AnalyzerFailed:
		return "analyzer failed"
	default:
		return "not analyzed"
	}
}

// UnitResult is the final state of one step or instruction.
type UnitResult struct {
	Locator locator.Locator
	Line    int
	Outcome Outcome

	Reason      string
	Err         error
	Diagnostics []diagnostic.Diagnostic
	Notes       []string
}

// DocumentResult collects everything reported for one document.
type DocumentResult struct {
	Path string
	Kind document.Kind

	// Err is a parse error or a document-level resolution error. When set,
	// Units is empty.
	Err        error
	Units      []UnitResult
	Advisories []resolve.Advisory
}

// FromPlan seeds a result with one entry per plan unit, in plan order.
// Runnable units start as Pending.
func FromPlan(plan *resolve.Plan) *DocumentResult {
	d := &DocumentResult{Path: plan.Document.Path, Kind: plan.Document.Kind, Advisories: plan.Advisories}
	if plan.Err != nil {
		d.Err = plan.Err
		return d
	}
	for _, u := range plan.Units {
		r := UnitResult{Locator: u.Locator, Line: u.Line, Reason: u.Reason}
		switch u.Status {
		case resolve.Runnable:
			r.Outcome = Pending
		case resolve.Skipped:
			r.Outcome = Skipped
		case resolve.Failed:
			r.Outcome = Unresolved
			r.Err = u.Err
		}
		d.Units = append(d.Units, r)
	}
	return d
}

// ParseFailure is the result of a document that could not be loaded.
func ParseFailure(path string, kind document.Kind, err error) *DocumentResult {
	return &DocumentResult{Path: path, Kind: kind, Err: err}
}

// Analyzed records analyzer output for unit i.
func (d *DocumentResult) Analyzed(i int, remapped diagnostic.Remapped) {
	d.Units[i].Outcome = Analyzed
	d.Units[i].Diagnostics = remapped.Diagnostics
	d.Units[i].Notes = remapped.Notes
}

// Failed records an analyzer failure for unit i.
func (d *DocumentResult) Failed(i int, err error) {
	d.Units[i].Outcome = AnalyzerFailed
	d.Units[i].Err = err
}

// Unavailable marks every pending unit as not analyzed.
func (d *DocumentResult) Unavailable(reason string) {
	for i := range d.Units {
		if d.Units[i].Outcome == Pending {
			d.Units[i].Outcome = NotAnalyzed
			d.Units[i].Reason = reason
		}
	}
}

// Diagnostics returns all diagnostics of the document in structural order.
func (d *DocumentResult) Diagnostics() []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	for _, u := range d.Units {
		out = append(out, u.Diagnostics...)
	}
	return out
}

// Run is the result of one invocation over a set of documents.
type Run struct {
	Documents []*DocumentResult

	// MinSeverity is the least serious diagnostic that fails the run.
	MinSeverity diagnostic.Severity
	// AnalyzerErr is set when the analyzer binary could not be used.
	AnalyzerErr error
	// RequireAnalyzer turns AnalyzerErr into a failure.
	RequireAnalyzer bool
}

// ShouldFail reports whether the run must exit non-zero.
func (r *Run) ShouldFail() bool {
	if r.AnalyzerErr != nil && r.RequireAnalyzer {
		return true
	}
	for _, d := range r.Documents {
		if d.Err != nil {
			return true
		}
		for _, u := range d.Units {
			switch u.Outcome {
			case Unresolved, AnalyzerFailed:
				return true
			}
			if diagnostic.Count(u.Diagnostics, r.MinSeverity) > 0 {
				return true
			}
		}
	}
	return false
}

// Summary counts the run's results.
type Summary struct {
	Documents   int
	Fragments   int
	Diagnostics int
	Failing     int
	Errors      int
	Skipped     int
	NotAnalyzed int
	Advisories  int
}

// Summarize computes the run's Summary.
func (r *Run) Summarize() Summary {
	s := Summary{Documents: len(r.Documents)}
	for _, d := range r.Documents {
		if d.Err != nil {
			s.Errors++
		}
		s.Advisories += len(d.Advisories)
		for _, u := range d.Units {
			switch u.Outcome {
			case Analyzed:
				s.Fragments++
			case AnalyzerFailed:
				s.Fragments++
				s.Errors++
			case Unresolved:
				s.Errors++
			case Skipped:
				s.Skipped++
			case NotAnalyzed:
				s.NotAnalyzed++
			}
			s.Diagnostics += len(u.Diagnostics)
			s.Failing += diagnostic.Count(u.Diagnostics, r.MinSeverity)
		}
	}
	return s
}
