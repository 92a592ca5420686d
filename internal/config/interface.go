package config

import "context"

// Loader is the interface for a format-specific settings loader.
type Loader interface {
	// Load reads one settings file. Values absent from the file stay nil or
	// empty in the returned File.
	Load(ctx context.Context, path string) (*File, error)
}
