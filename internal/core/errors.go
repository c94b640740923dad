package core

// errors.go defines the error taxonomy for store operations.
//
// The store never panics past its own boundary: every operation returns an
// explicit error. Callers distinguish three failure classes:
//
//   - ValidationError: an ingestion row is missing a required field or a
//     numeric field cannot be coerced
//   - ErrNotFound: an update/delete target does not exist
//   - ErrNoRecords: an aggregation or export was attempted on an empty store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an update or delete targets an invoice number
// that has no record.
var ErrNotFound = errors.New("record not found")

// ErrNoRecords is returned when an operation requires at least one record
// (averages, exports) and the store is empty.
var ErrNoRecords = errors.New("no records loaded")

// ValidationError describes a rejected ingestion row.
type ValidationError struct {
	Field   string // Dataset column name
	Value   string // The offending value, if any
	Message string // Human-readable explanation
}

func (e *ValidationError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("%s: %s (%q)", e.Field, e.Message, e.Value)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
