// Package storage is the file storage collaborator for product images.
// The rest of the application never touches the filesystem directly.
package storage

import (
	"context"
	"io"
)

// Store defines the behavior for any storage backend.
type Store interface {
	// Put writes the object bytes under key, creating parent paths as needed.
	Put(ctx context.Context, key string, body io.Reader) error
	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Exists reports whether an object is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
	// PublicURL returns the absolute URL clients fetch the object from.
	PublicURL(key string) string
}
