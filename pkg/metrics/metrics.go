package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "testimonials", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "testimonials", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)

	TestimonialsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "testimonials", Name: "created_total", Help: "Testimonials stored, split by image presence."},
		[]string{"image"},
	)
	TestimonialsDeleted = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "testimonials", Name: "deleted_total", Help: "Testimonials removed by admins."},
	)
	ValidationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "testimonials", Name: "validation_failures_total", Help: "Rejected submissions by offending field."},
		[]string{"field"},
	)

	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "testimonials", Subsystem: "upload", Name: "files_total", Help: "Image uploads by content type and outcome."},
		[]string{"content_type", "status"},
	)
	UploadBytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "testimonials", Subsystem: "upload", Name: "bytes_total", Help: "Bytes of stored images."},
		[]string{"content_type"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(TestimonialsCreated)
	reg.MustRegister(TestimonialsDeleted)
	reg.MustRegister(ValidationFailures)
	reg.MustRegister(UploadsTotal)
	reg.MustRegister(UploadBytesTotal)
}

// RecordUpload counts an upload attempt; bytes are only added for stored files.
func RecordUpload(contentType, status string, bytes int64) {
	UploadsTotal.WithLabelValues(contentType, status).Inc()
	if status == "stored" {
		UploadBytesTotal.WithLabelValues(contentType).Add(float64(bytes))
	}
}

// RecordCreated counts a stored testimonial.
func RecordCreated(withImage bool) {
	label := "absent"
	if withImage {
		label = "present"
	}
	TestimonialsCreated.WithLabelValues(label).Inc()
}
