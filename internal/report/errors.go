package report

import (
	"errors"
	"fmt"
)

// CodecErrorCode categorizes codec errors.
type CodecErrorCode string

const (
	// ErrCodeMissingRequiredField indicates a record that cannot be
	// rendered because a field its kind requires is absent, e.g. a
	// pair record with an empty LW classifier.
	ErrCodeMissingRequiredField CodecErrorCode = "MISSING_REQUIRED_FIELD"
)

// CodecError is an error detected while rendering a document.
// Parsing never produces one; malformed input degrades to unknown
// records instead.
type CodecError struct {
	// Code identifies the error category.
	Code CodecErrorCode

	// Message is a human-readable description.
	Message string

	// Field names the offending record field, if any.
	Field string

	// Record is a short rendering of the offending record for
	// diagnostics.
	Record string
}

// Error implements the error interface.
func (e *CodecError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s, record=%s)", e.Code, e.Message, e.Field, e.Record)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsMissingRequiredField reports whether err is a missing-required-field
// codec error. Uses errors.As to handle wrapped errors.
func IsMissingRequiredField(err error) bool {
	var ce *CodecError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeMissingRequiredField
	}
	return false
}

// newMissingFieldError builds the codec error for a record lacking a
// field its kind requires.
func newMissingFieldError(field, record string) *CodecError {
	return &CodecError{
		Code:    ErrCodeMissingRequiredField,
		Message: "record is missing a field required by its kind",
		Field:   field,
		Record:  record,
	}
}
