package model

import "errors"

// Error taxonomy shared by the stores, the rental engine and the API layer.
// Callers match with errors.Is; messages wrap these with fmt.Errorf("%w: ...").
var (
	// ErrNotFound covers missing, soft-deleted and not-visible records alike.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition means the requested status change is not allowed.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrPreconditionFailed means the record is not in a state the operation accepts.
	ErrPreconditionFailed = errors.New("precondition failed")
	// ErrValidation means malformed or missing input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict means a uniqueness rule would be broken.
	ErrConflict = errors.New("conflict")
	// ErrForbidden means the record is visible but the caller may not change it.
	ErrForbidden = errors.New("forbidden")
)
