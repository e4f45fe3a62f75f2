package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/testimonials/testimonials/pkg/logger"
)

// DiskStorage keeps images as flat files under one directory.
type DiskStorage struct {
	dir string
}

// NewDiskStorage creates dir when missing.
func NewDiskStorage(dir string) (*DiskStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	logger.Infof("disk storage initialized at %s", dir)
	return &DiskStorage{dir: dir}, nil
}

func (d *DiskStorage) path(key string) string {
	return filepath.Join(d.dir, key)
}

// Save creates the file exclusively so two uploads can never share a name.
func (d *DiskStorage) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	f, err := os.OpenFile(d.path(key), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", key, err)
	}
	written, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(d.path(key))
		return fmt.Errorf("write %s: %w", key, err)
	}
	logger.Debugf("disk storage: stored %s (%d bytes)", key, written)
	return nil
}

func (d *DiskStorage) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	if !ValidKey(key) {
		return nil, "", ErrNotFound
	}
	f, err := os.Open(d.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("open %s: %w", key, err)
	}
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(key)))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return f, ct, nil
}

func (d *DiskStorage) Delete(ctx context.Context, key string) error {
	if !ValidKey(key) {
		return ErrNotFound
	}
	if err := os.Remove(d.path(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
