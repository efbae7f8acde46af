// Package storage keeps supervisor photos and credential documents in an
// S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrObjectNotFound is returned by Get when the key does not exist.
var ErrObjectNotFound = errors.New("storage: object not found")

// PutOptions describes an upload. Size is -1 when unknown.
type PutOptions struct {
	Size        int64
	ContentType string
	// Filename is the name the client uploaded; stored as object metadata.
	Filename string
}

// ObjectInfo is what callers need to serve a stored object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
}

// Storage is the object store used by the supervisor and admin services.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (ObjectInfo, error)
	// Get opens the object for streaming. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a download URL valid for expiry.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}
