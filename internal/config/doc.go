// Package config defines the format-agnostic settings model and the Loader
// interface implemented by the format-specific packages (HCL, TOML).
//
// A loader only produces a File: the optional values found in one settings
// file. Settings.Apply validates a File and merges it over the defaults, and
// command-line flags are applied last by the caller.
package config
