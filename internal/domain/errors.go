package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
	ErrStoreFailure = errors.New("store failure")
)

// Hierarchy and attachment error kinds. Each one wraps one of the sentinels
// above so callers can match either the specific kind or its class.
var (
	ErrFolderNotFound   = fmt.Errorf("folder %w", ErrNotFound)
	ErrResourceNotFound = fmt.Errorf("resource %w", ErrNotFound)
	ErrParentNotFound   = fmt.Errorf("%w: parent folder does not exist", ErrValidation)
	ErrInvalidArgument  = ErrValidation
	ErrCyclicMove       = fmt.Errorf("%w: folder cannot be moved into itself or one of its descendants", ErrValidation)
	ErrNoChange         = fmt.Errorf("%w: folder already has the requested parent", ErrConflict)
)

// ValidationError indicates invalid input on a named field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// Is allows errors.Is() to match against ErrValidation
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StoreError wraps an I/O failure reported by a folder or resource store.
// The core does not distinguish store faults any further.
type StoreError struct {
	Op  string // e.g. "get folder", "delete resources by folder"
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) StatusCode() int { return http.StatusInternalServerError }

// Is allows errors.Is() to match against ErrStoreFailure
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreFailure
}

// NewStoreError returns nil when err is nil so call sites can wrap unconditionally.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
