package cache

import (
	"context"
)

// GraphCache keeps rendered graph exports. Keys identify a store revision
// together with the export options.
type GraphCache interface {
	// Get returns the cached export for key, false when there is none.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores an export under key.
	Set(ctx context.Context, key string, graph []byte) error
}

var _ GraphCache = Nop{}

// Nop caches nothing.
type Nop struct {
}

func (Nop) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (Nop) Set(context.Context, string, []byte) error {
	return nil
}
