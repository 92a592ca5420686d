package resolve

import (
	"fmt"

	"github.com/specialistvlad/embedcheck/internal/document"
	"github.com/specialistvlad/embedcheck/internal/locator"
	"github.com/specialistvlad/embedcheck/internal/shell"
)

// Context is the "currently active shell" threaded across the steps of one
// job or the instructions of one build stage.
type Context struct {
	Current *shell.Spec
}

type pipelineResolver struct{}

func (pipelineResolver) resolve(doc *document.Document, opts Options) *Plan {
	plan := &Plan{Document: doc}

	if doc.DefaultShell != nil && !opts.isCanonical(*doc.DefaultShell) {
		loc := locator.New(doc.Path, (&locator.Address{}).Child("defaults").Child("run").Child("shell"))
		plan.Err = newError(loc, 0, ErrNonCanonicalDefault, fmt.Sprintf("%q", *doc.DefaultShell))
		return plan
	}

	for _, job := range doc.Jobs {
		var sc Context
		for _, step := range job.Steps {
			// A shell switched by prepare text stays in effect for this step
			// and the rest of the job, below any explicit step shell.
			if step.Prepare != nil {
				if changed, ok := shell.ChangedShell(*step.Prepare); ok {
					spec := shell.New(changed)
					sc.Current = &spec
				}
			}
			if step.Run == nil {
				continue
			}

			loc := locator.New(doc.Path, step.Address.Child("run"))
			spec, err := pipelineShell(doc, job, step, sc)
			if err != nil {
				plan.failWith(loc, step.Line, err)
				continue
			}
			plan.add(loc, step.Line, spec, *step.Run)
		}
	}
	return plan
}

// pipelineShell walks the cascade from most to least specific: the step's own
// shell, a shell switched to by a prepare script earlier in the job (or in this
// step), the job default, the document default, and finally the runner default.
func pipelineShell(doc *document.Document, job document.Job, step document.Step, sc Context) (shell.Spec, error) {
	if step.Shell != nil {
		return explicit(*step.Shell)
	}
	if sc.Current != nil {
		return *sc.Current, nil
	}
	if job.DefaultShell != nil {
		return explicit(*job.DefaultShell)
	}
	if doc.DefaultShell != nil {
		return explicit(*doc.DefaultShell)
	}
	if isDynamic(job.RunsOn) {
		return shell.Spec{}, withDetail(ErrDynamicShell, fmt.Sprintf("runner %q is chosen by an expression; declare defaults.run.shell", job.RunsOn))
	}
	if shell.IsWindowsRunner(job.RunsOn) {
		return shell.New(shell.WindowsRunnerDefault), nil
	}
	return shell.New(shell.RunnerDefault), nil
}

func explicit(invocation string) (shell.Spec, error) {
	if isDynamic(invocation) {
		return shell.Spec{}, withDetail(ErrDynamicShell, fmt.Sprintf("%q", invocation))
	}
	return shell.New(invocation), nil
}

type compositeResolver struct{}

func (compositeResolver) resolve(doc *document.Document, _ Options) *Plan {
	plan := &Plan{Document: doc}
	if !doc.Composite {
		return plan
	}

	for _, step := range doc.Steps {
		if step.Run == nil {
			continue
		}
		loc := locator.New(doc.Path, step.Address.Child("run"))

		if step.Shell != nil {
			spec, err := explicit(*step.Shell)
			if err != nil {
				plan.failWith(loc, step.Line, err)
				continue
			}
			plan.add(loc, step.Line, spec, *step.Run)
			continue
		}

		if step.Prepare != nil {
			if changed, ok := shell.ChangedShell(*step.Prepare); ok {
				plan.fail(loc, step.Line, ErrMissingShell, fmt.Sprintf("prepare switches to %q", changed))
				continue
			}
		}
		plan.add(loc, step.Line, shell.New(shell.CompositeDefault), *step.Run)
	}
	return plan
}
