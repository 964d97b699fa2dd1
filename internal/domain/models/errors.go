package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound reports that an update or delete target no longer exists.
var ErrNotFound = errors.New("gallery image not found")

// ValidationError is a client-side precondition failure. It never reaches the store.
type ValidationError struct {
	Errors []string
	// Cause is an optional sentinel the failure maps to.
	Cause error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// IsValidationError reports whether err is, or wraps, a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// StoreError wraps any transport or remote-service failure of a store operation.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
