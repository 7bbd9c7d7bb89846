package blob

import (
	"context"
	"fmt"
)

// Driver selects a blob storage backend.
type Driver string

// Supported drivers.
const (
	DriverFS Driver = "fs"
	DriverS3 Driver = "s3"
)

// Config holds backend selection plus per-backend settings.
type Config struct {
	Driver Driver

	// Filesystem backend.
	Dir string

	// S3 backend.
	Bucket   string
	Region   string
	Endpoint string
	Prefix   string
}

// NewStore builds the configured Store. An empty driver defaults to the
// filesystem backend.
func NewStore(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case DriverFS, "":
		dir := cfg.Dir
		if dir == "" {
			dir = "data/blobs"
		}
		return NewFileStore(dir)
	case DriverS3:
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("blob: s3 driver requires a bucket")
		}
		return NewS3Store(ctx, S3Config{
			Bucket:   cfg.Bucket,
			Region:   cfg.Region,
			Endpoint: cfg.Endpoint,
			Prefix:   cfg.Prefix,
		})
	default:
		return nil, fmt.Errorf("blob: unsupported driver %q", cfg.Driver)
	}
}
