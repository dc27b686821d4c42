package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repositories when a lookup matches nothing.
var ErrNotFound = errors.New("not found")

// ParseError reports a malformed row or number in the mileage matrix.
type ParseError struct {
	Line   int
	Column int
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("mileage line %d column %d (%q): %v", e.Line, e.Column, e.Value, e.Err)
	}
	return fmt.Sprintf("mileage line %d: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError wraps a fault raised by the persistence layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
