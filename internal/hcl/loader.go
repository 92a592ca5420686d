package hcl

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/embedcheck/internal/config"
	"github.com/specialistvlad/embedcheck/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// Loader is the HCL-specific implementation of the config.Loader interface.
type Loader struct {
	// Environ supplies the `env` object; nil means os.Environ.
	Environ func() []string
}

// NewLoader creates a new HCL settings loader.
func NewLoader() *Loader {
	return &Loader{}
}

type fileRoot struct {
	Analyzer        *analyzerBlock   `hcl:"analyzer,block"`
	Suppress        []*suppressBlock `hcl:"suppress,block"`
	Exclude         []string         `hcl:"exclude,optional"`
	CanonicalShells []string         `hcl:"canonical_shells,optional"`
	Ignore          []string         `hcl:"ignore,optional"`
}

type analyzerBlock struct {
	Binary      *string `hcl:"binary,optional"`
	Required    *bool   `hcl:"required,optional"`
	MinSeverity *string `hcl:"min_severity,optional"`
	Workers     *int    `hcl:"workers,optional"`
	ScratchDir  *string `hcl:"scratch_dir,optional"`
}

type suppressBlock struct {
	Key    string   `hcl:"key,label"`
	Checks []string `hcl:"checks"`
}

// Load parses and decodes one HCL settings file.
func (l *Loader) Load(ctx context.Context, path string) (*config.File, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL settings loader started.", "path", path)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, l.evalContext(), &root)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	f := &config.File{
		Exclude:         root.Exclude,
		CanonicalShells: root.CanonicalShells,
		Ignore:          root.Ignore,
	}
	if a := root.Analyzer; a != nil {
		f.Analyzer = &config.AnalyzerFile{
			Binary:      a.Binary,
			Required:    a.Required,
			MinSeverity: a.MinSeverity,
			Workers:     a.Workers,
			ScratchDir:  a.ScratchDir,
		}
	}
	for _, s := range root.Suppress {
		if f.Suppress == nil {
			f.Suppress = make(map[string][]string)
		}
		if _, dup := f.Suppress[s.Key]; dup {
			return nil, fmt.Errorf("%s: duplicate suppress block %q", path, s.Key)
		}
		f.Suppress[s.Key] = s.Checks
	}

	logger.Debug("HCL settings loaded.", "path", path, "suppress_blocks", len(root.Suppress), "ignore", len(root.Ignore))
	return f, nil
}

// evalContext exposes the environment as `env.NAME`.
func (l *Loader) evalContext() *hcl.EvalContext {
	environ := l.Environ
	if environ == nil {
		environ = os.Environ
	}
	vars := make(map[string]cty.Value)
	for _, kv := range environ() {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" || !hclsyntax.ValidIdentifier(name) {
			continue
		}
		vars[name] = cty.StringVal(value)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": cty.ObjectVal(vars)},
	}
}
