package domain

import "errors"

// Error taxonomy shared by the store, the views and the HTTP layer.
// Wrap with fmt.Errorf("%w: ...") and match with errors.Is.
var (
	// ErrValidation reports an empty or out-of-range required field.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound reports a referenced deck or entry that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNetwork reports an unreachable or misbehaving remote service.
	ErrNetwork = errors.New("remote service unavailable")
)
