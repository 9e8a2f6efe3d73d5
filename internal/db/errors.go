package db

import (
	"errors"
	"fmt"
)

// ErrEventNotFound is the normal negative result for lookups by id.
var ErrEventNotFound = errors.New("event not found")

// StorageError wraps a persistence failure. Unlike ErrEventNotFound it
// signals an infrastructure problem the caller must decide how to handle.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error in %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
