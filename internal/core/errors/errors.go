// Package errors provides centralized error definitions for the application.
// Errors are organized by failure class so callers can decide whether a failure
// is fatal for the whole run or local to a single document.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - Unexported errors (err*): Use for internal package errors
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Configuration errors. Fatal at startup, never raised per document.
var (
	// ErrInvalidProfile indicates inconsistent or out-of-range classifier thresholds.
	ErrInvalidProfile = errors.New("invalid quality profile")

	// ErrInvalidWorkerCount indicates a negative worker count.
	ErrInvalidWorkerCount = errors.New("invalid worker count")

	// ErrInvalidLimit indicates a negative document limit or queue size.
	ErrInvalidLimit = errors.New("invalid batch limit")

	// ErrStoreNotConfigured indicates persistence was requested without a DSN.
	ErrStoreNotConfigured = errors.New("verdict store not configured")
)

// Ingestion errors. Attached to a single document; the run continues.
var (
	// ErrMalformedRecord indicates a record that is not a valid JSON object.
	ErrMalformedRecord = errors.New("malformed record")

	// ErrMissingText indicates a record without a string text field.
	ErrMissingText = errors.New("record has no text field")

	// ErrInvalidUTF8 indicates text that does not decode as UTF-8.
	ErrInvalidUTF8 = errors.New("text is not valid utf-8")

	// ErrRecordTooLarge indicates a record above the configured size cap.
	ErrRecordTooLarge = errors.New("record too large")
)

// Systemic errors. Abort the run; no report is written.
var (
	// ErrInputUnavailable indicates the input could not be opened.
	ErrInputUnavailable = errors.New("input unavailable")

	// ErrInputRead indicates an I/O failure while reading the input stream.
	ErrInputRead = errors.New("input read failed")

	// ErrRunNotFound indicates a stored run id does not exist.
	ErrRunNotFound = errors.New("run not found")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
