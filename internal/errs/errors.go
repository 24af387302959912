// Package errs defines the error taxonomy shared by the cache, scheduler
// and store layers. Validation errors are caller-correctable and never
// retried; storage errors abort the operation that needed the store.
package errs

import (
	"errors"
	"fmt"
)

// ValidationError reports malformed input to a public operation.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func Validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// StorageError reports a failure of the persistent store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	if e.Err == nil {
		return e.Op + ": storage failure"
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

func Storage(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

func IsStorage(err error) bool {
	var s *StorageError
	return errors.As(err, &s)
}
