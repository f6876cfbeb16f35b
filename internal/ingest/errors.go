package ingest

import "errors"

// Ingestion failures. All of them leave the caller's document untouched; the
// returned error wraps one of these so callers can branch with errors.Is.
var (
	// ErrInvalidFormat reports an unsupported media type.
	ErrInvalidFormat = errors.New("invalid image format")
	// ErrTooLarge reports a payload above the configured size cap.
	ErrTooLarge = errors.New("image too large")
	// ErrDecodeFailure reports corrupt data or a failed remote fetch.
	ErrDecodeFailure = errors.New("image decode failed")
)
