// Package repository persists testimonials.
package repository

import (
	"context"
	"errors"

	"github.com/testimonials/testimonials/internal/testimonial"
)

var (
	ErrNotFound = errors.New("testimonial not found")
)

// Repository is implemented by the Mongo and in-memory stores. List returns
// records newest first.
type Repository interface {
	Create(ctx context.Context, t *testimonial.Testimonial) error
	List(ctx context.Context) ([]*testimonial.Testimonial, error)
	Get(ctx context.Context, id string) (*testimonial.Testimonial, error)
	// Update replaces the text fields and, when image is non-nil, the image
	// reference. It returns the record as it was before the update.
	Update(ctx context.Context, id string, f testimonial.Fields, image *string) (*testimonial.Testimonial, error)
	// Delete removes and returns the record.
	Delete(ctx context.Context, id string) (*testimonial.Testimonial, error)
}
