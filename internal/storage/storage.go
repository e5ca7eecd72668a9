// Package storage persists uploaded images and returns the public URL they
// will be served from.
package storage

import (
	"context"
	"io"
)

// Store writes one named object and returns its public URL.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}
