package testimonial

import (
	"strings"
	"time"

	"github.com/testimonials/testimonials/internal/intake"
)

// Testimonial is one stored customer testimonial.
type Testimonial struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name"`
	Message   string    `json:"message" bson:"message"`
	JobTitle  string    `json:"jobTitle" bson:"jobTitle"`
	Company   string    `json:"company" bson:"company"`
	Image     string    `json:"image,omitempty" bson:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// HasImage reports whether an image reference is recorded.
func (t *Testimonial) HasImage() bool { return t.Image != "" }

// Fields are the client-supplied text fields, bound from JSON or a form.
type Fields struct {
	Name     string `json:"name" form:"name"`
	Message  string `json:"message" form:"message"`
	JobTitle string `json:"jobTitle" form:"jobTitle"`
	Company  string `json:"company" form:"company"`
}

// Normalize trims surrounding whitespace from every field.
func (f *Fields) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Message = strings.TrimSpace(f.Message)
	f.JobTitle = strings.TrimSpace(f.JobTitle)
	f.Company = strings.TrimSpace(f.Company)
}

// Validate requires all four fields.
func (f Fields) Validate() error {
	return intake.RequireFields(
		intake.Field{Name: "name", Value: f.Name},
		intake.Field{Name: "message", Value: f.Message},
		intake.Field{Name: "jobTitle", Value: f.JobTitle},
		intake.Field{Name: "company", Value: f.Company},
	)
}

// Apply copies the fields onto t.
func (f Fields) Apply(t *Testimonial) {
	t.Name = f.Name
	t.Message = f.Message
	t.JobTitle = f.JobTitle
	t.Company = f.Company
}
