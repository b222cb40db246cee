package service

import "errors"

// Error kinds. Every error a service returns matches exactly one of these
// with errors.Is.
var (
	ErrValidation   = errors.New("validation error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrStorage      = errors.New("storage error")
)

// Error carries a client-facing message next to its kind and the
// underlying cause, if any.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func validationError(msg string) error { return &Error{Kind: ErrValidation, Message: msg} }
func notFoundError(msg string) error   { return &Error{Kind: ErrNotFound, Message: msg} }
func conflictError(msg string) error   { return &Error{Kind: ErrConflict, Message: msg} }

func storageError(err error) error {
	return &Error{Kind: ErrStorage, Message: "storage error", Err: err}
}

// errInvalidCredentials is shared by every login failure so callers cannot
// tell an unknown email from a wrong password.
var errInvalidCredentials = &Error{Kind: ErrUnauthorized, Message: "invalid credentials"}
