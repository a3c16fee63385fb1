package core

import "errors"

// Common errors.
var (
	ErrNotFound      = errors.New("key not found")
	ErrCorrupt       = errors.New("stored value is malformed")
	ErrInvalidLayout = errors.New("invalid layout mode")
	ErrReadOnly      = errors.New("storage is in read-only mode")
	ErrClosed        = errors.New("store is closed")
)
