package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrImageNotFound  = errors.New("image not found")
	ErrObjectExists   = errors.New("object already exists")
	ErrObjectNotFound = errors.New("object not found")
)

var (
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrInvalidFileType = errors.New("invalid file type")
)

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStore keeps raw image bytes keyed by generated file name.
type ObjectStore interface {
	// Put writes body under key and fails with ErrObjectExists if the key is taken.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, key string) error
	// PublicURL derives the public location of key. It performs no I/O.
	PublicURL(key string) string
	ListKeys(ctx context.Context) ([]ObjectInfo, error)
}
