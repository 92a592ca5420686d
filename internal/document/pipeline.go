package document

import (
	"strings"

	"github.com/specialistvlad/embedcheck/internal/locator"
)

// Job is one pipeline job.
type Job struct {
	Name         string
	Address      *locator.Address
	DefaultShell *string
	RunsOn       string
	Steps        []Step
}

// Step is one pipeline or composite step. Optional fields are nil when the
// key is absent.
type Step struct {
	Index   int
	Name    string
	Address *locator.Address
	Line    int

	Run     *string
	Shell   *string
	Prepare *string
}

func (d *Document) extractPipeline() error {
	if err := d.optionalScalar(d.Tree, &d.DefaultShell, "defaults", "run", "shell"); err != nil {
		return err
	}

	jobs := d.Tree.Get("jobs")
	if jobs == nil || jobs.Kind == NullNode {
		return nil
	}
	if jobs.Kind != MappingNode {
		return d.errorf(jobs, "`jobs` must be a mapping")
	}

	for _, name := range jobs.Keys() {
		jobNode := jobs.Get(name)
		if jobNode.Kind != MappingNode {
			return d.errorf(jobNode, "job %q must be a mapping", name)
		}
		job := Job{
			Name:    name,
			Address: (&locator.Address{}).Child(name),
			RunsOn:  flattenScalars(jobNode.Get("runs-on")),
		}
		if err := d.optionalScalar(jobNode, &job.DefaultShell, "defaults", "run", "shell"); err != nil {
			return err
		}
		steps, err := d.extractSteps(jobNode.Get("steps"), job.Address)
		if err != nil {
			return err
		}
		job.Steps = steps
		d.Jobs = append(d.Jobs, job)
	}
	return nil
}

func (d *Document) extractComposite() error {
	runs := d.Tree.Get("runs")
	if runs == nil {
		return nil
	}
	if runs.Kind != MappingNode {
		return d.errorf(runs, "`runs` must be a mapping")
	}
	using, _ := runs.Scalar("using")
	if !strings.EqualFold(strings.TrimSpace(using), "composite") {
		return nil
	}
	d.Composite = true

	steps, err := d.extractSteps(runs.Get("steps"), (&locator.Address{}).Child("runs"))
	if err != nil {
		return err
	}
	d.Steps = steps
	return nil
}

func (d *Document) extractSteps(seq *Node, parent *locator.Address) ([]Step, error) {
	if seq == nil || seq.Kind == NullNode {
		return nil, nil
	}
	if seq.Kind != SequenceNode {
		return nil, d.errorf(seq, "`%s.steps` must be a sequence", parent)
	}

	var steps []Step
	for i, item := range seq.Items() {
		if item.Kind != MappingNode {
			return nil, d.errorf(item, "step %d of %s must be a mapping", i, parent)
		}
		step := Step{
			Index:   i,
			Address: parent.Index("steps", i),
			Line:    item.Line,
		}
		step.Name, _ = item.Scalar("name")
		fields := []struct {
			key string
			dst **string
		}{{"run", &step.Run}, {"shell", &step.Shell}, {"prepare", &step.Prepare}}
		for _, f := range fields {
			if err := d.optionalScalar(item, f.dst, f.key); err != nil {
				return nil, err
			}
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// optionalScalar stores the scalar at path into dst, leaving dst nil when the
// key is absent or null. A non-scalar value is a structural error.
func (d *Document) optionalScalar(n *Node, dst **string, path ...string) error {
	target := n.Lookup(path...)
	if target == nil || target.Kind == NullNode {
		return nil
	}
	if target.Kind != ScalarNode {
		return d.errorf(target, "`%s` must be a string", strings.Join(path, "."))
	}
	v := target.Value
	*dst = &v
	return nil
}

// flattenScalars joins every scalar below n, which is how `runs-on` labels
// are matched regardless of whether they are a string, a list or a group.
func flattenScalars(n *Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case ScalarNode:
		return n.Value
	case SequenceNode:
		var parts []string
		for _, item := range n.Items() {
			parts = append(parts, flattenScalars(item))
		}
		return strings.Join(parts, " ")
	case MappingNode:
		var parts []string
		for _, key := range n.Keys() {
			parts = append(parts, flattenScalars(n.Get(key)))
		}
		return strings.Join(parts, " ")
	}
	return ""
}
