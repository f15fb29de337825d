// Package storage is the object store behind the object device. An object is
// a flat run of bytes addressed by a slash-separated path; it is read and
// written whole, front to back.
//
// Two backends are provided: Local, rooted in a directory on disk, and S3,
// for Amazon S3 or any S3-compatible service.
package storage

import (
	"context"
	"io"
)

// Info describes a stored object.
type Info struct {
	Path string
	Size int64
}

// Store reads and writes objects.
//
// Paths are forward-slash separated and relative to the store root. A
// missing object is reported with an error wrapping os.ErrNotExist.
type Store interface {
	// Open returns a reader over the object's bytes.
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Create returns a writer that replaces the object. The new contents
	// become visible when the writer is closed.
	Create(ctx context.Context, path string) (io.WriteCloser, error)

	// Remove deletes the object. Removing a missing object is not an error.
	Remove(ctx context.Context, path string) error

	// Stat describes the object.
	Stat(ctx context.Context, path string) (Info, error)
}
