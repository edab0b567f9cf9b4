package endpoint

import "context"

// SeedRepository is the port for loading seed endpoint definitions.
// Seeds are read-only: authoring mutates the in-memory registry, never the
// seed files.
type SeedRepository interface {
	// LoadAll loads all definitions from the configured root directory,
	// in file order.
	LoadAll(ctx context.Context) ([]*Definition, error)
}
