package intake

import "strings"

// Field is one named text value of a submission.
type Field struct {
	Name  string
	Value string
}

// RequireFields fails when any value is blank, naming every missing field.
func RequireFields(fields ...Field) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing, Message: "All fields are required"}
	}
	return nil
}
