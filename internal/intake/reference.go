package intake

import "strings"

// ReferencePrefix is the public path under which stored images are served.
const ReferencePrefix = "/uploads/"

// Reference returns the value recorded on a testimonial for a stored object.
func Reference(name string) string {
	return ReferencePrefix + name
}

// ObjectName extracts the stored object name from a reference; ok is false
// for references this service did not produce.
func ObjectName(ref string) (string, bool) {
	if !strings.HasPrefix(ref, ReferencePrefix) {
		return "", false
	}
	name := strings.TrimPrefix(ref, ReferencePrefix)
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}
