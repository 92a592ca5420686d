// Package toml provides the TOML implementation of config.Loader for
// `.embedcheck.toml` settings files.
package toml

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/specialistvlad/embedcheck/internal/config"
	"github.com/specialistvlad/embedcheck/internal/ctxlog"
)

// Loader is the TOML-specific implementation of the config.Loader interface.
type Loader struct{}

// NewLoader creates a new TOML settings loader.
func NewLoader() *Loader {
	return &Loader{}
}

type fileRoot struct {
	Analyzer        *analyzerTable      `toml:"analyzer"`
	Exclude         []string            `toml:"exclude"`
	CanonicalShells []string            `toml:"canonical_shells"`
	Suppress        map[string][]string `toml:"suppress"`
	Ignore          []string            `toml:"ignore"`
}

type analyzerTable struct {
	Binary      *string `toml:"binary"`
	Required    *bool   `toml:"required"`
	MinSeverity *string `toml:"min_severity"`
	Workers     *int    `toml:"workers"`
	ScratchDir  *string `toml:"scratch_dir"`
}

// Load decodes one TOML settings file. Unknown keys are an error.
func (l *Loader) Load(ctx context.Context, path string) (*config.File, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("TOML settings loader started.", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read TOML file %s: %w", path, err)
	}

	var root fileRoot
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&root); err != nil {
		var decErr *toml.DecodeError
		if errors.As(err, &decErr) {
			row, col := decErr.Position()
			return nil, fmt.Errorf("failed to parse TOML file %s:%d:%d: %w", path, row, col, err)
		}
		return nil, fmt.Errorf("failed to decode TOML file %s: %w", path, err)
	}

	f := &config.File{
		Exclude:         root.Exclude,
		CanonicalShells: root.CanonicalShells,
		Suppress:        root.Suppress,
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

	logger.Debug("TOML settings loaded.", "path", path, "suppress_keys", len(root.Suppress), "ignore", len(root.Ignore))
	return f, nil
}
