package document

import (
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/embedcheck/internal/ctxlog"
)

// Document is the immutable, typed view of one configuration file.
type Document struct {
	Path string
	Kind Kind

	// Tree is the generic ordered tree for YAML documents; nil for container
	// build files.
	Tree *Node

	// DefaultShell is the document-level `defaults.run.shell` (Pipeline).
	DefaultShell *string
	// Jobs are the pipeline's jobs in declaration order (Pipeline).
	Jobs []Job
	// Composite is true when a CompositeAction declares `runs.using: composite`.
	Composite bool
	// Steps are `runs.steps` (CompositeAction).
	Steps []Step

	// Instructions are the build instructions in file order (ContainerBuild).
	Instructions []Instruction
}

// ParseError reports a document that could not be parsed or does not have
// the structure its kind requires. It is fatal for that document only.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load reads and parses the document at path, inferring its kind from the path.
func Load(ctx context.Context, path string) (*Document, error) {
	kind := DetectKind(path)
	if kind == Unknown {
		return nil, &ParseError{Path: path, Err: fmt.Errorf("unrecognized document kind")}
	}
	return LoadKind(ctx, path, kind)
}

// LoadKind reads and parses the document at path as the given kind.
func LoadKind(ctx context.Context, path string, kind Kind) (*Document, error) {
	logger := ctxlog.FromContext(ctx)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	doc, err := Parse(path, kind, data)
	if err != nil {
		return nil, err
	}

	logger.Debug("Document loaded.",
		"path", path,
		"kind", kind.String(),
		"jobs", len(doc.Jobs),
		"steps", len(doc.Steps),
		"instructions", len(doc.Instructions),
	)
	return doc, nil
}

// Parse builds a Document from in-memory content. path is only used for
// identification and error messages.
func Parse(path string, kind Kind, data []byte) (*Document, error) {
	doc := &Document{Path: path, Kind: kind}

	switch kind {
	case Pipeline, CompositeAction:
		tree, err := parseYAML(data)
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		if tree.Kind != MappingNode {
			return nil, &ParseError{Path: path, Line: tree.Line, Err: fmt.Errorf("top level must be a mapping")}
		}
		doc.Tree = tree
		if kind == Pipeline {
			err = doc.extractPipeline()
		} else {
			err = doc.extractComposite()
		}
		if err != nil {
			return nil, err
		}

	case ContainerBuild:
		instructions, err := parseDockerfile(data)
		if err != nil {
			return nil, &ParseError{Path: path, Err: err}
		}
		doc.Instructions = instructions

	default:
		return nil, &ParseError{Path: path, Err: fmt.Errorf("unsupported document kind %q", kind)}
	}

	return doc, nil
}

func (d *Document) errorf(n *Node, format string, args ...any) error {
	line := 0
	if n != nil {
		line = n.Line
	}
	return &ParseError{Path: d.Path, Line: line, Err: fmt.Errorf(format, args...)}
}
