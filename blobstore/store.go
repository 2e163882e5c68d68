package blobstore

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrNotFound is returned when a blob does not exist.
var ErrNotFound = errors.New("blobstore: blob not found")

// ErrInvalidName is returned for names that are empty, absolute or escape the
// store root.
var ErrInvalidName = errors.New("blobstore: invalid blob name")

// Store is the storage backend of descriptor snapshots.
// Implementations must be safe for concurrent use.
type Store interface {
	// Put writes a blob. A reader never observes a partially written blob.
	Put(ctx context.Context, name string, data []byte) error
	// Open opens a blob for sequential reading.
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names starting with prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// ValidateName checks that name is a relative slash-separated path without
// "." or ".." elements.
func ValidateName(name string) error {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return ErrInvalidName
	}
	for _, part := range strings.Split(name, "/") {
		if part == "" || part == "." || part == ".." {
			return ErrInvalidName
		}
	}
	return nil
}
