package config

import "context"

// Loader is the interface for a format-specific profile loader.
type Loader interface {
	// Load reads every profile found under the given paths. A path may be a
	// single file or a directory that is searched recursively.
	Load(ctx context.Context, paths ...string) (map[string]*Profile, error)
}
