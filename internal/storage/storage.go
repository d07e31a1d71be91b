package storage

import (
	"context"
	"io"
)

// Storage keeps uploaded product images.
type Storage interface {
	// Save stores the content of r under name.
	Save(ctx context.Context, name string, r io.Reader, contentType string) error

	// Delete removes name. Deleting a missing object is not an error.
	Delete(ctx context.Context, name string) error

	// URL returns where a stored object can be fetched from.
	URL(name string) string
}
