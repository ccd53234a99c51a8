// Package storage abstracts the byte store behind the file service. Paths
// are forward-slash relative keys like "2026/08/29/<name>"; the backend
// decides where the bytes physically live.
package storage

import (
	"context"
	"errors"
	"io"

	"filemanager/internal/domain"
)

// ErrNotFound is returned by Open when no blob exists at the given path.
var ErrNotFound = errors.New("storage: object not found")

type Backend interface {
	// Save writes the blob and returns its public URL.
	Save(ctx context.Context, path string, r io.Reader) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
	Copy(ctx context.Context, src, dst string) error
	Move(ctx context.Context, src, dst string) error
	Exists(ctx context.Context, path string) (bool, error)
	Size(ctx context.Context, path string) (int64, error)
	// URL returns the public URL for an already-stored blob.
	URL(path string) string
	Type() domain.StorageType
}
