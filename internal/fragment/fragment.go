// Package fragment turns an embedded script and its resolved shell into a
// standalone, analyzer-ready script body.
package fragment

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/specialistvlad/embedcheck/internal/document"
	"github.com/specialistvlad/embedcheck/internal/locator"
	"github.com/specialistvlad/embedcheck/internal/resolve"
	"github.com/specialistvlad/embedcheck/internal/shell"
)

// Placeholder replaces foreign template expressions. It is a valid shell
// parameter expansion so the analyzer parses around it.
const Placeholder = "${__TPL__}"

// QuotedPlaceholder replaces expressions inside single quotes, where an
// expansion would never happen and would draw a spurious SC2016.
const QuotedPlaceholder = "__TPL__"

// ErrNotApplicable is returned for shells the analyzer cannot check.
var ErrNotApplicable = errors.New("fragment shell is not posix")

// Fragment is one normalized embedded script.
type Fragment struct {
	Locator locator.Locator
	// Line is the source line of the step or instruction, for context only.
	Line  int
	Shell shell.Spec

	RawText        string
	NormalizedText string

	// Suppress lists analyzer checks disabled for this fragment.
	Suppress []string
}

// Options describe the foreign templating syntax of a document kind and the
// checks suppressed for its fragments. An empty Open disables substitution.
type Options struct {
	Open  string
	Close string

	Suppress []string
}

// OptionsFor returns the templating markers used by a document kind.
func OptionsFor(kind document.Kind) Options {
	switch kind {
	case document.Pipeline, document.CompositeAction:
		return Options{Open: "${{", Close: "}}"}
	default:
		return Options{}
	}
}

// Extract builds the fragment for raw text run by spec. The normalized text is
// exactly one line longer than the raw text: the synthetic shebang.
func Extract(loc locator.Locator, raw string, spec shell.Spec, opts Options) (Fragment, error) {
	if !spec.IsPosix() {
		return Fragment{}, fmt.Errorf("%s: %w: %s", loc, ErrNotApplicable, spec.Program())
	}

	body := strings.ReplaceAll(raw, "\r\n", "\n")
	body = opts.substitute(body)

	return Fragment{
		Locator:        loc,
		Shell:          spec,
		RawText:        raw,
		NormalizedText: spec.Shebang() + "\n" + body,
		Suppress:       opts.Suppress,
	}, nil
}

// FromUnit extracts the fragment of a runnable unit.
func FromUnit(u resolve.Unit, opts Options) (Fragment, error) {
	if u.Status != resolve.Runnable || u.Shell == nil {
		return Fragment{}, fmt.Errorf("%s: unit is %s, not runnable", u.Locator, u.Status)
	}
	f, err := Extract(u.Locator, u.Text, *u.Shell, opts)
	if err != nil {
		return Fragment{}, err
	}
	f.Line = u.Line
	return f, nil
}

// substitute replaces template expressions. Matches never cross a newline,
// which keeps every line of the script on its original line number.
func (o Options) substitute(body string) string {
	if o.Open == "" || o.Close == "" {
		return body
	}
	re := regexp.MustCompile(regexp.QuoteMeta(o.Open) + `.*?` + regexp.QuoteMeta(o.Close))
	matches := re.FindAllStringIndex(body, -1)
	if len(matches) == 0 {
		return body
	}

	var b strings.Builder
	var q quoteScanner
	last := 0
	for _, m := range matches {
		q.scan(body[last:m[0]])
		b.WriteString(body[last:m[0]])
		if q.state == singleQuoted {
			b.WriteString(QuotedPlaceholder)
		} else {
			b.WriteString(Placeholder)
		}
		last = m[1]
	}
	b.WriteString(body[last:])
	return b.String()
}

type quoteState int

const (
	unquoted quoteState = iota
	singleQuoted
	doubleQuoted
	comment
)

// quoteScanner tracks the quoting context of shell text fed to it in order.
// Template expressions themselves are never fed, so their contents cannot
// change the state.
type quoteScanner struct {
	state   quoteState
	escaped bool
	// wordStart is set when the next byte begins a new shell word.
	wordStart bool
	started   bool
}

func (q *quoteScanner) scan(text string) {
	if !q.started {
		q.started = true
		q.wordStart = true
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		if q.escaped {
			q.escaped = false
			q.wordStart = false
			continue
		}
		switch q.state {
		case comment:
			if c == '\n' {
				q.state = unquoted
				q.wordStart = true
			}
		case singleQuoted:
			if c == '\'' {
				q.state = unquoted
			}
		case doubleQuoted:
			switch c {
			case '\\':
				q.escaped = true
			case '"':
				q.state = unquoted
			}
		default:
			switch c {
			case '\\':
				q.escaped = true
			case '\'':
				q.state = singleQuoted
			case '"':
				q.state = doubleQuoted
			case '#':
				if q.wordStart {
					q.state = comment
				}
			}
			q.wordStart = strings.IndexByte(" \t\n;&|()", c) >= 0
		}
	}
}

// Lines counts lines the way the analyzer numbers them.
func Lines(s string) int {
	return strings.Count(s, "\n") + 1
}
