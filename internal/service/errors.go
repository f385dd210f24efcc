// Package service holds the business operations behind each route group: auth, locations
// and gyms. Handlers translate HTTP to calls on these services and map the returned errors
// to status codes.
package service

import "errors"

// Error kinds. Handlers pick the status code with errors.Is against these.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrAuth       = errors.New("authentication failed")
	ErrNotFound   = errors.New("not found")
)

// Error is a business error with a message that is safe to show to API clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func validationError(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }
func conflictError(msg string) error   { return &Error{Kind: ErrConflict, Message: msg} }
func authError(msg string) error       { return &Error{Kind: ErrAuth, Message: msg} }
func notFoundError(msg string) error   { return &Error{Kind: ErrNotFound, Message: msg} }

// StorageError wraps an unexpected database failure. Its message is the driver's own,
// passed through unchanged; Op names the failing query for the logs.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Err.Error() }

func (e *StorageError) Unwrap() error { return e.Err }

func storageError(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}

