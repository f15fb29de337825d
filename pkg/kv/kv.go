// Package kv is the key-value store behind the record device. Each record is
// an opaque run of bytes saved under a name; names are flat strings, and a
// store may keep every name under a common namespace prefix.
//
// The package includes a BadgerDB-backed implementation for persistent use
// and an in-memory implementation for tests and scratch streams.
package kv

import (
	"context"
	"errors"
	"iter"
)

// ErrNotFound is returned when no record is saved under a name.
var ErrNotFound = errors.New("kv: not found")

// Store saves and loads records by name.
type Store interface {
	// Load returns a copy of the record. Returns ErrNotFound if absent.
	Load(ctx context.Context, name string) ([]byte, error)

	// Save replaces the record.
	Save(ctx context.Context, name string, data []byte) error

	// Remove deletes the record. Removing a missing record is not an error.
	Remove(ctx context.Context, name string) error

	// Names iterates over record names starting with prefix, in
	// lexicographic order.
	Names(ctx context.Context, prefix string) iter.Seq2[string, error]

	// Close releases the store.
	Close() error
}
