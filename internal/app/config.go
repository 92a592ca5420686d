package app

import (
	"errors"
	"fmt"
)

// Config holds the invocation-level options of an App. Values that are also
// present in the settings file override it when set.
type Config struct {
	Root       string // file or directory to lint
	ConfigPath string // explicit settings file; empty means look in Root

	LogFormat string // auto, text or json
	LogLevel  string
	Verbose   bool

	Workers        int    // 0 keeps the settings value
	AnalyzerBinary string // empty keeps the settings value
	MinSeverity    string // empty keeps the settings value
	Watch          bool
}

// NewConfig validates cfg and returns a copy.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Root == "" {
		return nil, errors.New("Root is a required configuration field and cannot be empty")
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers must not be negative, got %d", cfg.Workers)
	}
	switch cfg.LogFormat {
	case "", "auto", "text", "json":
	default:
		return nil, fmt.Errorf("invalid log format %q", cfg.LogFormat)
	}
	return &cfg, nil
}
