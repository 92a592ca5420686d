package document

import (
	"path/filepath"
	"strings"
)

// Kind tags a document with the rules that decide which shell runs its
// embedded scripts.
type Kind int

const (
	// Unknown is returned for paths that are not lintable documents.
	Unknown Kind = iota
	// Pipeline is a CI workflow with jobs and steps.
	Pipeline
	// CompositeAction is a reusable action definition made of run steps.
	CompositeAction
	// ContainerBuild is a Dockerfile-style container build file.
	ContainerBuild
)

// String returns the name used in logs and configuration keys.
func (k Kind) String() string {
	switch k {
	case Pipeline:
		return "pipeline"
	case CompositeAction:
		return "composite"
	case ContainerBuild:
		return "container"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pipeline":
		return Pipeline, true
	case "composite":
		return CompositeAction, true
	case "container":
		return ContainerBuild, true
	}
	return Unknown, false
}

// Kinds lists every lintable kind in a stable order.
func Kinds() []Kind {
	return []Kind{Pipeline, CompositeAction, ContainerBuild}
}

// DetectKind infers the document kind from its path alone.
func DetectKind(path string) Kind {
	slashed := filepath.ToSlash(path)
	name := filepath.Base(path)
	lower := strings.ToLower(name)
	ext := strings.ToLower(filepath.Ext(name))

	switch {
	case lower == "dockerfile" || lower == "containerfile":
		return ContainerBuild
	case strings.HasPrefix(lower, "dockerfile.") || strings.HasSuffix(lower, ".dockerfile"):
		return ContainerBuild
	case strings.HasPrefix(lower, "containerfile.") || strings.HasSuffix(lower, ".containerfile"):
		return ContainerBuild
	}

	if ext != ".yml" && ext != ".yaml" {
		return Unknown
	}
	if lower == "action.yml" || lower == "action.yaml" {
		return CompositeAction
	}
	if strings.Contains("/"+filepath.ToSlash(filepath.Dir(slashed))+"/", "/.github/workflows/") {
		return Pipeline
	}
	return Unknown
}
