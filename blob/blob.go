// Package blob abstracts where uploaded media bytes live: the local
// filesystem or a remote object store addressed by site id and API token.
// Media documents record which backend holds each file.
package blob

import "context"

// Storage is a filename-keyed byte store.
type Storage interface {
	// Put writes data under filename, overwriting any previous content.
	Put(ctx context.Context, filename string, data []byte) error
	// Get returns the bytes stored under filename.
	Get(ctx context.Context, filename string) ([]byte, error)
	// Delete removes filename. Deleting a missing file is not an error.
	Delete(ctx context.Context, filename string) error
	// URL returns the public URL the file is served from.
	URL(filename string) string
	// Name is the backend discriminator recorded on media documents.
	Name() string
}
