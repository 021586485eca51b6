package store

import "errors"

var (
	ErrValidation   = errors.New("missing required field")
	ErrDuplicateKey = errors.New("slug already exists")
	ErrConflict     = errors.New("record is in use")
	ErrNotFound     = errors.New("record not found")
	ErrUnavailable  = errors.New("content store unavailable")
)
