// Package storage is the filesystem abstraction behind the catalog file,
// the JSON order log and uploaded product images.
//
// The "local" driver (default) uses the local filesystem. The "s3" driver
// talks to any S3-compatible object store such as MinIO or R2.
//
//	m, err := storage.Connect(ctx)
//	disk := m.Default()
//	disk.Put(ctx, "uploads/20260101_120000_shoe.jpg", data)
//	url := disk.URL("uploads/20260101_120000_shoe.jpg")
package storage

import (
	"context"
	"errors"
)

// ErrNotExist is returned by Get when path does not exist on the disk.
var ErrNotExist = errors.New("storage: file does not exist")

// Disk is the driver interface. Every driver must implement this.
type Disk interface {
	// Put replaces the content at path, creating parent directories as
	// needed. Readers never observe a partially written file.
	Put(ctx context.Context, path string, content []byte) error

	// Get returns the full content of the file at path. Missing files
	// return an error wrapping ErrNotExist.
	Get(ctx context.Context, path string) ([]byte, error)

	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) (bool, error)

	// Delete removes a file. Returns nil if the file did not exist.
	Delete(ctx context.Context, path string) error

	// Files lists non-recursive file paths directly inside directory.
	Files(ctx context.Context, directory string) ([]string, error)

	// URL returns the public URL for path.
	URL(path string) string
}
