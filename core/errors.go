package core

import "github.com/pkg/errors"

// FieldError pairs a request field with a human readable message, e.g. {"access_token", "Access token is required"}.
type FieldError struct {
	Field string
	Error string
}

// ValidationError reports bad client input. The API answers it with 400,
// rendering Fields as a {field: message} object when present and Err otherwise.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

// NewValidationError wraps err, the cause that errors.Is should still match.
func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err ValidationError) Unwrap() error {
	return err.Err
}

// FieldMap indexes Fields by name; nil when the error carries no field details.
func (err ValidationError) FieldMap() map[string]string {
	if len(err.Fields) == 0 {
		return nil
	}
	m := make(map[string]string, len(err.Fields))
	for _, f := range err.Fields {
		m[f.Field] = f.Error
	}
	return m
}

// shutdown is raised when the process can no longer serve requests safely.
type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

// IsShutdown reports whether a shutdown error sits at the root of err's wrap chain.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
