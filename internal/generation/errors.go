package generation

import "errors"

var (
	// ErrNotFound is returned when the requested schedule does not exist.
	ErrNotFound = errors.New("generation: schedule not found")
)

// ValidationError captures field level validation issues for a schedule.
// All violations are collected before the error is returned.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
