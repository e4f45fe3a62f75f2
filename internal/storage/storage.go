// Package storage persists uploaded testimonial images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotFound is returned when a key has no stored object.
var ErrNotFound = errors.New("object not found")

// Storage is implemented by every image backend.
type Storage interface {
	// Save writes a new object. Saving over an existing key is an error.
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Open returns the object body and its content type.
	Open(ctx context.Context, key string) (io.ReadCloser, string, error)
	// Delete removes the object, or returns ErrNotFound.
	Delete(ctx context.Context, key string) error
}

// ValidKey reports whether key is a flat object name: no separators, no
// dot segments, no control characters.
func ValidKey(key string) bool {
	if key == "" || key == "." || key == ".." || len(key) > 255 {
		return false
	}
	if strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return false
	}
	for _, r := range key {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

func checkKey(key string) error {
	if !ValidKey(key) {
		return fmt.Errorf("invalid object key %q", key)
	}
	return nil
}
