package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/specialistvlad/embedcheck/internal/diagnostic"
	"github.com/specialistvlad/embedcheck/internal/document"
	"github.com/specialistvlad/embedcheck/internal/locator"
	"github.com/specialistvlad/embedcheck/internal/resolve"
)

// BaseSuppressKey names the suppression set applied to every fragment.
const BaseSuppressKey = "base"

// FileNames are the settings files looked up in the root, in order.
var FileNames = []string{".embedcheck.hcl", ".embedcheck.toml"}

// Settings is the effective configuration of a run.
type Settings struct {
	AnalyzerBinary  string
	RequireAnalyzer bool
	MinSeverity     diagnostic.Severity
	Workers         int
	ScratchDir      string

	Exclude         []string
	CanonicalShells []string

	BaseSuppress []string
	Suppress     map[document.Kind][]string

	Ignore []locator.Locator
}

// Default returns the built-in settings.
func Default() *Settings {
	return &Settings{
		AnalyzerBinary:  "shellcheck",
		MinSeverity:     diagnostic.Style,
		Workers:         1,
		CanonicalShells: slices.Clone(resolve.DefaultCanonicalShells),
		BaseSuppress:    []string{"SC1091"},
		Suppress: map[document.Kind][]string{
			document.Pipeline:        {"SC2154", "SC2034"},
			document.CompositeAction: {"SC2154", "SC2034"},
			document.ContainerBuild:  {"SC2154"},
		},
	}
}

// Apply validates f and merges its values into s. Lists in f replace the
// corresponding lists in s.
func (s *Settings) Apply(f *File) error {
	if f == nil {
		return nil
	}
	var errs []error

	if a := f.Analyzer; a != nil {
		if a.Binary != nil {
			s.AnalyzerBinary = *a.Binary
		}
		if a.Required != nil {
			s.RequireAnalyzer = *a.Required
		}
		if a.MinSeverity != nil {
			sev, err := diagnostic.ParseSeverity(*a.MinSeverity)
			if err != nil {
				errs = append(errs, fmt.Errorf("analyzer.min_severity: %w", err))
			}
			s.MinSeverity = sev
		}
		if a.Workers != nil {
			if *a.Workers < 1 {
				errs = append(errs, fmt.Errorf("analyzer.workers: must be at least 1, got %d", *a.Workers))
			}
			s.Workers = *a.Workers
		}
		if a.ScratchDir != nil {
			s.ScratchDir = *a.ScratchDir
		}
	}

	if f.Exclude != nil {
		for _, pattern := range f.Exclude {
			if _, err := filepath.Match(pattern, ""); err != nil {
				errs = append(errs, fmt.Errorf("exclude: bad pattern %q: %w", pattern, err))
			}
		}
		s.Exclude = f.Exclude
	}
	if f.CanonicalShells != nil {
		s.CanonicalShells = f.CanonicalShells
	}

	for key, checks := range f.Suppress {
		if key == BaseSuppressKey {
			s.BaseSuppress = checks
			continue
		}
		kind, ok := document.ParseKind(key)
		if !ok {
			errs = append(errs, fmt.Errorf("suppress: unknown key %q (want base, pipeline, composite or container)", key))
			continue
		}
		if s.Suppress == nil {
			s.Suppress = map[document.Kind][]string{}
		}
		s.Suppress[kind] = checks
	}

	if f.Ignore != nil {
		s.Ignore = s.Ignore[:0:0]
		for _, raw := range f.Ignore {
			loc, err := locator.ParseLocator(raw)
			if err != nil {
				errs = append(errs, fmt.Errorf("ignore: %w", err))
				continue
			}
			s.Ignore = append(s.Ignore, loc)
		}
	}

	return errors.Join(errs...)
}

// SuppressionsFor returns the analyzer exclusions for fragments of kind: the
// base set followed by the kind's set, without duplicates.
func (s *Settings) SuppressionsFor(kind document.Kind) []string {
	var out []string
	for _, code := range append(slices.Clone(s.BaseSuppress), s.Suppress[kind]...) {
		if !slices.Contains(out, code) {
			out = append(out, code)
		}
	}
	return out
}

// Ignored reports whether loc is on the ignore list. Document paths are
// compared relative to root with forward slashes.
func (s *Settings) Ignored(root string) func(locator.Locator) bool {
	return func(loc locator.Locator) bool {
		doc := normalizePath(root, loc.Document)
		for _, ig := range s.Ignore {
			if normalizePath(root, ig.Document) == doc && ig.Address.Equal(loc.Address) {
				return true
			}
		}
		return false
	}
}

func normalizePath(root, p string) string {
	if root != "" && filepath.IsAbs(root) == filepath.IsAbs(p) {
		if rel, err := filepath.Rel(root, p); err == nil && !strings.HasPrefix(rel, "..") {
			p = rel
		}
	}
	return filepath.ToSlash(filepath.Clean(p))
}

// Find returns the first settings file present in root, or "" when none is.
func Find(root string) (string, error) {
	for _, name := range FileNames {
		p := filepath.Join(root, name)
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("checking %s: %w", p, err)
		}
	}
	return "", nil
}
