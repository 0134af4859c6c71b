package records

import "errors"

var (
	// ErrNotFound reports that no record with the requested ID exists.
	ErrNotFound = errors.New("record not found")
	// ErrValidation reports a missing or malformed required field.
	ErrValidation = errors.New("invalid record")
	// ErrCorrupt reports a backing file that exists but cannot be parsed.
	// Treat as fatal for the collection, not for the process.
	ErrCorrupt = errors.New("collection file is corrupt")
)
