package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrReadOnly          = errors.New("target is read-only")
	ErrWriteFailed       = errors.New("write failed")
	ErrMissingCapability = errors.New("rendering surface unavailable")
)
