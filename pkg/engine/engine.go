package engine

import "context"

// Engine builds an uber archive as described by a Config.
type Engine interface {
	Uber(ctx context.Context, cfg *Config) error
}
