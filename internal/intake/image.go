package intake

import (
	"fmt"
	"mime"
	"mime/multipart"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/oklog/ulid/v2"
)

// DefaultMaxImageBytes applies when no limit is configured.
const DefaultMaxImageBytes int64 = 5 << 20

// Constraints bound an uploaded image. AllowedTypes maps each accepted MIME
// type to the extension used for stored names.
type Constraints struct {
	AllowedTypes map[string]string
	MaxSize      int64
}

// ImageConstraints accepts JPEG, PNG and GIF up to maxSize bytes.
func ImageConstraints(maxSize int64) Constraints {
	if maxSize <= 0 {
		maxSize = DefaultMaxImageBytes
	}
	return Constraints{
		AllowedTypes: map[string]string{
			"image/jpeg": ".jpg",
			"image/png":  ".png",
			"image/gif":  ".gif",
		},
		MaxSize: maxSize,
	}
}

// Image is an upload that passed validation.
type Image struct {
	Header      *multipart.FileHeader
	ContentType string
	Ext         string
}

// Size is the upload size in bytes.
func (i *Image) Size() int64 { return i.Header.Size }

func (c Constraints) allowedList() string {
	names := make([]string, 0, len(c.AllowedTypes))
	for t := range c.AllowedTypes {
		names = append(names, strings.TrimPrefix(t, "image/"))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// Validate checks, in order: the declared content type, the size, then the
// sniffed content. Nothing is written.
func (c Constraints) Validate(fh *multipart.FileHeader) (*Image, error) {
	declared, _, err := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	if err != nil {
		declared = ""
	}
	declared = strings.ToLower(declared)
	if declared == "image/jpg" || declared == "image/pjpeg" {
		declared = "image/jpeg"
	}
	if _, ok := c.AllowedTypes[declared]; !ok {
		return nil, &ValidationError{
			Fields:  []string{"image"},
			Message: fmt.Sprintf("Only images are allowed (%s)", c.allowedList()),
		}
	}

	if fh.Size > c.MaxSize {
		return nil, &ValidationError{
			Fields:  []string{"image"},
			Message: fmt.Sprintf("File size exceeds the %s limit", humanBytes(c.MaxSize)),
		}
	}
	if fh.Size == 0 {
		return nil, &ValidationError{Fields: []string{"image"}, Message: "File is empty"}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	detected, err := mimetype.DetectReader(f)
	if err != nil {
		return nil, fmt.Errorf("sniff upload: %w", err)
	}
	for t, ext := range c.AllowedTypes {
		if detected.Is(t) {
			return &Image{Header: fh, ContentType: t, Ext: ext}, nil
		}
	}
	return nil, &ValidationError{
		Fields:  []string{"image"},
		Message: fmt.Sprintf("File content is not an allowed image (detected %s)", detected.String()),
	}
}

func humanBytes(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}

// NewObjectName returns a collision-free, time-ordered name such as
// "01hq3k9v4d6x7y8z9a0b1c2d3e.png".
func NewObjectName(ext string) string {
	id := ulid.Make()
	return strings.ToLower(id.String()) + ext
}
