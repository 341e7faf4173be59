// Package storage provides object storage backends for catalog documents.
package storage

import (
	"context"
	"io"
)

// ObjectStorage defines the object operations the catalog loader and seeder need.
type ObjectStorage interface {
	// EnsureBucket creates the bucket if the backend allows it.
	EnsureBucket(ctx context.Context) error

	// Upload stores an object.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Download opens an object for reading. The caller closes it.
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// GetURL returns the URL an object is served from.
	GetURL(key string) string

	// Exists checks whether an object exists.
	Exists(ctx context.Context, key string) (bool, error)
}
