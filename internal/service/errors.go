package service

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation wraps validation.Errors for missing or empty form fields
	ErrValidation = errors.New("missing required fields")
	// ErrMissingFile is returned when the upload carries no file part
	ErrMissingFile = errors.New("file is required")
	// ErrInvalidID is returned for identifiers that are not UUIDs
	ErrInvalidID = errors.New("invalid id")
	// ErrInvalidFileName is returned when a file name sanitizes to nothing
	ErrInvalidFileName = errors.New("invalid file name")
	// ErrNotFound is returned for unknown records or files
	ErrNotFound = errors.New("not found")
)

// StorageError reports a failed disk operation
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// PersistenceError reports a failed metadata store operation
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("metadata store %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
