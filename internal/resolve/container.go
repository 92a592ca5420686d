package resolve

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/specialistvlad/embedcheck/internal/document"
	"github.com/specialistvlad/embedcheck/internal/locator"
	"github.com/specialistvlad/embedcheck/internal/shell"
)

// heredocMarker matches a bare here-document redirection such as `<<EOF`,
// `<<-"EOT"` or `3<<EOF`.
var heredocMarker = regexp.MustCompile(`^\d*<<-?(?:"[^"]+"|'[^']+'|[A-Za-z0-9_]+)$`)

// stage is the shell context of one build stage.
type stage struct {
	Context
	// custom is set once a SHELL instruction appears in the stage.
	custom bool
	// nonPosix sticks until the next FROM once a non-posix SHELL is seen.
	nonPosix bool
}

func (s stage) effective() shell.Spec {
	if s.Current != nil {
		return *s.Current
	}
	return shell.New(shell.ContainerDefault)
}

type containerResolver struct{}

func (containerResolver) resolve(doc *document.Document, _ Options) *Plan {
	plan := &Plan{Document: doc}
	var st stage

	for _, inst := range doc.Instructions {
		base := (&locator.Address{}).Index("instructions", inst.Index)

		switch inst.Kind {
		case document.From:
			st = stage{}

		case document.Shell:
			loc := locator.New(doc.Path, base.Child("shell"))
			if !inst.JSONForm || len(inst.Args) == 0 {
				plan.fail(loc, inst.Line, ErrInvalidShellInstruction, "")
				continue
			}
			spec := shell.New(strings.Join(inst.Args, " "))
			st.Current = &spec
			st.custom = true
			if !spec.IsPosix() {
				st.nonPosix = true
			}

		case document.Run:
			resolveRun(plan, st, inst, locator.New(doc.Path, base.Child("run")))

		case document.Cmd, document.Entrypoint:
			loc := locator.New(doc.Path, base.Child(strings.ToLower(inst.Keyword)))
			resolveCommand(plan, st, inst, loc, true)

		case document.Healthcheck:
			if inst.Sub == nil || inst.Sub.Kind != document.Cmd {
				continue
			}
			loc := locator.New(doc.Path, base.Child("healthcheck").Child("cmd"))
			resolveCommand(plan, st, *inst.Sub, loc, false)
		}
	}
	return plan
}

func resolveRun(plan *Plan, st stage, inst document.Instruction, loc locator.Locator) {
	if inst.JSONForm {
		plan.skip(loc, inst.Line, nil, "exec form")
		return
	}

	text := inst.Text()
	if len(inst.Heredocs) == 0 {
		if isEmptyCommand(text) {
			plan.fail(loc, inst.Line, ErrEmptyRun, "")
			return
		}
		addStaged(plan, st, loc, inst.Line, text)
		return
	}

	if !onlyHeredocMarkers(text) {
		plan.fail(loc, inst.Line, ErrUnsupportedHeredoc, "here-document combined with a command")
		return
	}
	if len(inst.Heredocs) > 1 {
		plan.fail(loc, inst.Line, ErrUnsupportedHeredoc, fmt.Sprintf("%d here-documents without a command", len(inst.Heredocs)))
		return
	}

	body := inst.Heredocs[0].Content
	if interp, ok := shebangOf(body); ok {
		// The build system executes a here-document that starts with a
		// shebang through that interpreter, regardless of SHELL.
		plan.add(loc, inst.Line, shell.New(interp), body)
		return
	}
	addStaged(plan, st, loc, inst.Line, body)
}

func resolveCommand(plan *Plan, st stage, inst document.Instruction, loc locator.Locator, advise bool) {
	if inst.JSONForm {
		plan.skip(loc, inst.Line, nil, "exec form")
		return
	}
	text := inst.Text()
	if isEmptyCommand(text) {
		plan.skip(loc, inst.Line, nil, "empty command")
		return
	}
	if advise && !st.custom {
		plan.Advisories = append(plan.Advisories, Advisory{
			Locator: loc,
			Line:    inst.Line,
			Message: fmt.Sprintf("%s uses shell form without a custom SHELL; prefer the exec (JSON array) form", inst.Keyword),
		})
	}
	addStaged(plan, st, loc, inst.Line, text)
}

func addStaged(plan *Plan, st stage, loc locator.Locator, line int, text string) {
	spec := st.effective()
	if st.nonPosix && spec.IsPosix() {
		spec.Kind = shell.NonPosix
		plan.skip(loc, line, &spec, "stage switched to a non-posix shell")
		return
	}
	plan.add(loc, line, spec, text)
}

// isEmptyCommand treats whitespace and bare empty quotes as no command.
func isEmptyCommand(text string) bool {
	stripped := strings.NewReplacer(`""`, "", `''`, "").Replace(strings.TrimSpace(text))
	return strings.TrimSpace(stripped) == ""
}

func onlyHeredocMarkers(text string) bool {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if !heredocMarker.MatchString(f) {
			return false
		}
	}
	return true
}

func shebangOf(body string) (string, bool) {
	first, _, _ := strings.Cut(body, "\n")
	if !strings.HasPrefix(first, "#!") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(first, "#!")), true
}
