package solar

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is matched by every validation failure returned from this package.
var ErrInvalidConfig = errors.New("invalid config")

// FieldError describes a single rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// InvalidConfigError lists every offending field of a request. No irradiance
// has been computed when it is returned.
type InvalidConfigError struct {
	Fields []FieldError
}

func (e *InvalidConfigError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return fmt.Sprintf("%v: %s", ErrInvalidConfig, strings.Join(parts, "; "))
}

// Is lets errors.Is(err, ErrInvalidConfig) succeed.
func (e *InvalidConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

// Has reports whether the named field was rejected.
func (e *InvalidConfigError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// FieldMap returns the offending fields keyed by name.
func (e *InvalidConfigError) FieldMap() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		m[f.Field] = f.Message
	}
	return m
}

// fieldErrors accumulates validation failures across a whole request.
type fieldErrors []FieldError

func (fe *fieldErrors) add(field, format string, args ...any) {
	*fe = append(*fe, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (fe fieldErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	return &InvalidConfigError{Fields: append([]FieldError(nil), fe...)}
}
