package party

import "errors"

var (
	ErrNotFound      = errors.New("record not found")
	ErrDuplicate     = errors.New("duplicate record")
	ErrReferenced    = errors.New("record is referenced by related records")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnknownEntity = errors.New("unknown entity")
)
