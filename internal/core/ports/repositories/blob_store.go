package repositories

import (
	"context"
	"io"
)

// BlobStore keeps receipt images and hands out public URLs for them.
type BlobStore interface {
	// Put stores r under key and returns the object's public URL.
	Put(ctx context.Context, key string, r io.Reader) (string, error)

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys []string) error

	// List returns every stored key.
	List(ctx context.Context) ([]string, error)

	// KeyFromURL maps a URL issued by Put back to its key.
	KeyFromURL(url string) (string, bool)
}
