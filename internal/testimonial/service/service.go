// Package service runs the testimonial ingestion pipeline: validate fields,
// validate and store the image, then write the record.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"github.com/testimonials/testimonials/internal/intake"
	"github.com/testimonials/testimonials/internal/stats"
	"github.com/testimonials/testimonials/internal/storage"
	"github.com/testimonials/testimonials/internal/testimonial"
	"github.com/testimonials/testimonials/internal/testimonial/repository"
	"github.com/testimonials/testimonials/pkg/logger"
	"github.com/testimonials/testimonials/pkg/metrics"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound = errors.New("not found")
)

// cleanupTimeout bounds best-effort image removal, which outlives the request.
const cleanupTimeout = 10 * time.Second

// Input is one submission. Image is nil when no file was attached.
type Input struct {
	Fields testimonial.Fields
	Image  *multipart.FileHeader
}

// Service defines the testimonial operations used by the handler layer.
type Service interface {
	Create(ctx context.Context, in Input) (*testimonial.Testimonial, error)
	List(ctx context.Context) ([]*testimonial.Testimonial, error)
	Update(ctx context.Context, id string, in Input) (*testimonial.Testimonial, error)
	Delete(ctx context.Context, id string) (*testimonial.Testimonial, error)
	Stats(ctx context.Context, g stats.Granularity) (stats.Report, error)
	OpenImage(ctx context.Context, name string) (io.ReadCloser, string, error)
}

// New returns a Service over repo and store.
func New(repo repository.Repository, store storage.Storage, constraints intake.Constraints) Service {
	return &service{repo: repo, store: store, constraints: constraints}
}

// NewMemoryService returns a Service backed by the in-memory repository.
func NewMemoryService(store storage.Storage, constraints intake.Constraints) Service {
	return New(repository.NewMemoryRepo(), store, constraints)
}

// NewMongoService returns a Service backed by a MongoDB collection.
// Caller is responsible for creating the collection (and client) and passing it in.
func NewMongoService(ctx context.Context, col *mongo.Collection, store storage.Storage, constraints intake.Constraints) Service {
	return New(repository.NewMongoRepo(ctx, col), store, constraints)
}

type service struct {
	repo        repository.Repository
	store       storage.Storage
	constraints intake.Constraints
}

func (s *service) Create(ctx context.Context, in Input) (*testimonial.Testimonial, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	rec := &testimonial.Testimonial{}
	in.Fields.Apply(rec)

	var stored string
	if in.Image != nil {
		ref, name, err := s.storeImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		rec.Image, stored = ref, name
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		s.discard(ctx, stored)
		return nil, fmt.Errorf("create testimonial: %w", err)
	}
	metrics.RecordCreated(rec.HasImage())
	logger.Infow("testimonial created", logger.Fields{"id": rec.ID, "image": rec.HasImage()})
	return rec, nil
}

func (s *service) List(ctx context.Context) ([]*testimonial.Testimonial, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list testimonials: %w", err)
	}
	return list, nil
}

// Update replaces the text fields. The image is only replaced when a new one
// is supplied; the previous file is then removed.
func (s *service) Update(ctx context.Context, id string, in Input) (*testimonial.Testimonial, error) {
	if err := s.validate(&in); err != nil {
		return nil, err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, mapErr(err, "get testimonial %s", id)
	}

	var (
		image  *string
		stored string
	)
	if in.Image != nil {
		ref, name, err := s.storeImage(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		image, stored = &ref, name
	}

	before, err := s.repo.Update(ctx, id, in.Fields, image)
	if err != nil {
		s.discard(ctx, stored)
		return nil, mapErr(err, "update testimonial %s", id)
	}
	if image != nil && before.Image != "" && before.Image != *image {
		s.removeImage(ctx, before.Image)
	}

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapErr(err, "reload testimonial %s", id)
	}
	logger.Infow("testimonial updated", logger.Fields{"id": id, "image_replaced": image != nil})
	return rec, nil
}

// Delete removes the record and then, best-effort, its image.
func (s *service) Delete(ctx context.Context, id string) (*testimonial.Testimonial, error) {
	rec, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, mapErr(err, "delete testimonial %s", id)
	}
	if rec.HasImage() {
		s.removeImage(ctx, rec.Image)
	}
	metrics.TestimonialsDeleted.Inc()
	logger.Infow("testimonial deleted", logger.Fields{"id": id})
	return rec, nil
}

func (s *service) Stats(ctx context.Context, g stats.Granularity) (stats.Report, error) {
	list, err := s.List(ctx)
	if err != nil {
		return stats.Report{}, err
	}
	entries := make([]stats.Entry, len(list))
	for i, t := range list {
		entries[i] = stats.Entry{CreatedAt: t.CreatedAt, HasImage: t.HasImage()}
	}
	return stats.Bucketize(entries, g)
}

func (s *service) OpenImage(ctx context.Context, name string) (io.ReadCloser, string, error) {
	if !storage.ValidKey(name) {
		return nil, "", ErrNotFound
	}
	rc, ct, err := s.store.Open(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("open image %s: %w", name, err)
	}
	return rc, ct, nil
}

func (s *service) validate(in *Input) error {
	in.Fields.Normalize()
	if err := in.Fields.Validate(); err != nil {
		recordValidation(err)
		return err
	}
	return nil
}

// storeImage validates fh and saves it under a generated name. It returns
// the public reference and the object name.
func (s *service) storeImage(ctx context.Context, fh *multipart.FileHeader) (string, string, error) {
	img, err := s.constraints.Validate(fh)
	if err != nil {
		if intake.IsValidation(err) {
			recordValidation(err)
			metrics.RecordUpload("other", "rejected", 0)
		}
		return "", "", err
	}

	f, err := fh.Open()
	if err != nil {
		return "", "", fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	name := intake.NewObjectName(img.Ext)
	if err := s.store.Save(ctx, name, f, img.Size(), img.ContentType); err != nil {
		metrics.RecordUpload(img.ContentType, "failed", 0)
		return "", "", fmt.Errorf("store image: %w", err)
	}
	metrics.RecordUpload(img.ContentType, "stored", img.Size())
	return intake.Reference(name), name, nil
}

// discard removes an object stored for a write that then failed.
func (s *service) discard(ctx context.Context, name string) {
	if name == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()
	if err := s.store.Delete(ctx, name); err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.Warnf("service: failed to discard orphaned image %s: %v", name, err)
	}
}

// removeImage deletes the object behind a reference. References this service
// did not produce are left alone.
func (s *service) removeImage(ctx context.Context, ref string) {
	name, ok := intake.ObjectName(ref)
	if !ok {
		logger.Debugf("service: not removing foreign image reference %q", ref)
		return
	}
	s.discard(ctx, name)
}

func mapErr(err error, format string, args ...interface{}) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

func recordValidation(err error) {
	var verr *intake.ValidationError
	if !errors.As(err, &verr) {
		return
	}
	for _, f := range verr.Fields {
		metrics.ValidationFailures.WithLabelValues(f).Inc()
	}
}
