package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/testimonials/testimonials/internal/intake"
	"github.com/testimonials/testimonials/internal/stats"
	"github.com/testimonials/testimonials/internal/testimonial"
	"github.com/testimonials/testimonials/internal/testimonial/service"
	"github.com/testimonials/testimonials/pkg/logger"
	"github.com/testimonials/testimonials/pkg/metrics"
	"github.com/testimonials/testimonials/pkg/middleware"
)

// ImageField is the multipart field carrying the optional image.
const ImageField = "image"

// Revoker invalidates a bearer token before it expires.
type Revoker interface {
	RevokeToken(ctx context.Context, raw string) error
}

// Options configure RegisterTestimonialRoutes. Zero values disable the
// corresponding behavior.
type Options struct {
	// MaxBodyBytes caps the whole request body.
	MaxBodyBytes int64
	// MaxMemory is buffered in memory before multipart files spill to disk.
	MaxMemory int64
	// IntakeMiddleware runs before the public submission route.
	IntakeMiddleware []gin.HandlerFunc
	// AdminMiddleware guards every /admin route.
	AdminMiddleware []gin.HandlerFunc
	Revoker         Revoker
}

func RegisterTestimonialRoutes(r gin.IRouter, svc service.Service, opts Options) {
	h := &handler{svc: svc, opts: opts}

	api := r.Group("/api/testimonials")
	api.GET("", h.list)
	api.GET("/stats", h.stats)
	intakeChain := append(append([]gin.HandlerFunc{}, opts.IntakeMiddleware...), h.create)
	api.POST("", intakeChain...)

	admin := api.Group("/admin", opts.AdminMiddleware...)
	admin.POST("/create", h.create)
	admin.PUT("/update/:id", h.update)
	admin.DELETE("/delete/:id", h.delete)
	admin.POST("/logout", h.logout)

	r.GET(intake.ReferencePrefix+":name", h.image)
}

type handler struct {
	svc  service.Service
	opts Options
}

func (h *handler) list(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handler) create(c *gin.Context) {
	in, err := h.bind(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rec, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *handler) update(c *gin.Context) {
	in, err := h.bind(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rec, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *handler) delete(c *gin.Context) {
	if _, err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Testimonial deleted successfully"})
}

func (h *handler) stats(c *gin.Context) {
	g, err := stats.ParseGranularity(c.Query("granularity"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	report, err := h.svc.Stats(c.Request.Context(), g)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *handler) logout(c *gin.Context) {
	raw := c.GetString(middleware.TokenKey)
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no bearer token presented"})
		return
	}
	if h.opts.Revoker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "token revocation unavailable"})
		return
	}
	if err := h.opts.Revoker.RevokeToken(c.Request.Context(), raw); err != nil {
		respondError(c, fmt.Errorf("revoke token: %w", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *handler) image(c *gin.Context) {
	rc, ct, err := h.svc.OpenImage(c.Request.Context(), c.Param("name"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
			return
		}
		respondError(c, err)
		return
	}
	defer rc.Close()
	// Object names are never reused.
	c.DataFromReader(http.StatusOK, -1, ct, rc, map[string]string{
		"Cache-Control":          "public, max-age=31536000, immutable",
		"X-Content-Type-Options": "nosniff",
	})
}

// bind reads the text fields from a JSON or form body and, for multipart
// bodies, the optional image.
func (h *handler) bind(c *gin.Context) (service.Input, error) {
	var in service.Input
	if h.opts.MaxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxBodyBytes)
	}
	multipart := c.ContentType() == gin.MIMEMultipartPOSTForm
	if multipart {
		maxMemory := h.opts.MaxMemory
		if maxMemory <= 0 {
			maxMemory = 32 << 20
		}
		if err := c.Request.ParseMultipartForm(maxMemory); err != nil {
			return in, bodyError(err)
		}
	}

	var f testimonial.Fields
	if err := c.ShouldBind(&f); err != nil {
		return in, bodyError(err)
	}
	in.Fields = f

	if multipart {
		fh, err := c.FormFile(ImageField)
		switch {
		case err == nil:
			in.Image = fh
		case !errors.Is(err, http.ErrMissingFile):
			return in, bodyError(err)
		}
	}
	return in, nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		metrics.ValidationFailures.WithLabelValues("body").Inc()
		return &intake.ValidationError{Message: "Request body too large"}
	}
	return &intake.ValidationError{Message: "Invalid request body"}
}

func respondError(c *gin.Context, err error) {
	var verr *intake.ValidationError
	switch {
	case errors.As(err, &verr):
		body := gin.H{"error": verr.Message}
		if len(verr.Fields) > 0 {
			body["fields"] = verr.Fields
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Testimonial not found"})
	default:
		logger.Errorw("request failed", logger.Fields{
			"request_id": c.GetString(middleware.RequestIDKey),
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"error":      err.Error(),
		})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
