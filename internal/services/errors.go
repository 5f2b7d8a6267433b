package services

import (
	"errors"
	"fmt"

	"github.com/terraincognita07/tempo/internal/db"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrPermission      = errors.New("permission denied")
	ErrUnauthenticated = errors.New("unauthorized")
	ErrConflict        = errors.New("conflict")
	ErrInternal        = errors.New("internal error")
)

// Error pairs one of the kinds above with a message that is safe to show
// to clients.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.Error()
	}
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// PublicMessage returns the client-facing text of err, falling back to the
// kind when no message was attached.
func PublicMessage(err error) string {
	var typed *Error
	if errors.As(err, &typed) {
		if typed.Kind == ErrInternal {
			return ErrInternal.Error()
		}
		if typed.Message != "" {
			return typed.Message
		}
		return typed.Kind.Error()
	}
	return ErrInternal.Error()
}

func validationError(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

func notFoundError(entity string) error {
	return &Error{Kind: ErrNotFound, Message: entity + " not found"}
}

func permissionError(message string) error {
	return &Error{Kind: ErrPermission, Message: message}
}

func conflictError(message string) error {
	return &Error{Kind: ErrConflict, Message: message}
}

func internalError(operation string, err error) error {
	return &Error{Kind: ErrInternal, Message: operation, Err: err}
}

// lookupError turns a repository failure into NotFound for missing rows and
// Internal for everything else.
func lookupError(entity string, err error) error {
	if db.IsNotFound(err) {
		return notFoundError(entity)
	}
	return internalError("load "+entity, err)
}
