package storage

import (
	"context"
	"fmt"

	"github.com/testimonials/testimonials/internal/config"
)

// New builds the backend selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case config.StorageDisk, "":
		return NewDiskStorage(cfg.Dir)
	case config.StorageMinIO:
		return NewMinIOStorage(ctx, cfg.MinIO)
	case config.StorageS3:
		return NewS3Storage(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
