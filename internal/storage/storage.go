package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrNotFound возвращается, когда объекта по ключу нет.
var ErrNotFound = errors.New("object not found")

// Storage defines the interface for blob storage operations
type Storage interface {
	// Save stores an object under the given key, replacing any previous one
	Save(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Get retrieves an object by key
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Exists checks if an object exists under the key
	Exists(ctx context.Context, key string) (bool, error)
}

// Config holds storage configuration
type Config struct {
	Type      string // database, local, s3
	BasePath  string // For local storage
	Bucket    string // For S3
	Region    string // For S3
	AccessKey string
	SecretKey string
	Endpoint  string // custom S3-compatible endpoint
}

// NewStorage creates a storage instance based on configuration.
// Type "database" returns nil: blobs then live in the profile_images table.
func NewStorage(ctx context.Context, cfg Config) (Storage, error) {
	switch cfg.Type {
	case "database", "":
		return nil, nil
	case "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
