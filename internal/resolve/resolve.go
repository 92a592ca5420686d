package resolve

import (
	"context"
	"strings"

	"github.com/specialistvlad/embedcheck/internal/ctxlog"
	"github.com/specialistvlad/embedcheck/internal/document"
	"github.com/specialistvlad/embedcheck/internal/locator"
)

// DefaultCanonicalShells are the strict-mode invocations accepted as a
// pipeline's document-level default shell.
var DefaultCanonicalShells = []string{
	"bash --noprofile --norc -CeEuo pipefail {0}",
	"bash --noprofile --norc -CeEuxo pipefail {0}",
}

// templateOpen marks a value computed by the CI system at runtime.
const templateOpen = "${{"

// Options tune resolution.
type Options struct {
	// CanonicalShells replaces DefaultCanonicalShells when non-empty.
	CanonicalShells []string
	// Ignored reports locators excluded from analysis by configuration.
	Ignored func(locator.Locator) bool
}

func (o Options) isCanonical(invocation string) bool {
	accepted := o.CanonicalShells
	if len(accepted) == 0 {
		accepted = DefaultCanonicalShells
	}
	for _, s := range accepted {
		if invocation == s {
			return true
		}
	}
	return false
}

func (o Options) ignored(loc locator.Locator) bool {
	return o.Ignored != nil && o.Ignored(loc)
}

// resolver is implemented once per document kind.
type resolver interface {
	resolve(doc *document.Document, opts Options) *Plan
}

var resolvers = map[document.Kind]resolver{
	document.Pipeline:        pipelineResolver{},
	document.CompositeAction: compositeResolver{},
	document.ContainerBuild:  containerResolver{},
}

// Resolve computes the plan for doc. Resolution is pure: calling it twice on
// the same document yields the same plan.
func Resolve(ctx context.Context, doc *document.Document, opts Options) *Plan {
	ctx = ctxlog.With(ctx, "kind", doc.Kind.String())
	logger := ctxlog.FromContext(ctx)

	r, ok := resolvers[doc.Kind]
	if !ok {
		logger.Debug("No resolver for document kind.")
		return &Plan{Document: doc}
	}

	plan := r.resolve(doc, opts)
	if plan.Err == nil && opts.Ignored != nil {
		for i, u := range plan.Units {
			if u.Status == Runnable && opts.ignored(u.Locator) {
				plan.Units[i].Status = Skipped
				plan.Units[i].Reason = "ignored by configuration"
			}
		}
	}

	logger.Debug("Document resolved.",
		"units", len(plan.Units),
		"runnable", len(plan.Runnable()),
		"errors", len(plan.Errors()),
		"advisories", len(plan.Advisories),
	)
	return plan
}

func isDynamic(value string) bool {
	return strings.Contains(value, templateOpen)
}
