package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/diet-service/internal/i18n"
)

// Error kinds. Match them with errors.Is.
var (
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrUnauthenticated = errors.New("not authenticated")
)

// Error is a domain failure that endpoints report to the client. Key and
// Args select the translated message.
type Error struct {
	Kind error
	Key  string
	Args []interface{}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %s %v", e.Kind, e.Key, e.Args)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Message renders the error in the caller's language.
func (e *Error) Message(tr i18n.Translator) string {
	return tr.Translate(e.Key, e.Args...)
}

func NewNotFoundError(key string, args ...interface{}) *Error {
	return &Error{Kind: ErrNotFound, Key: key, Args: args}
}

func NewConflictError(key string, args ...interface{}) *Error {
	return &Error{Kind: ErrConflict, Key: key, Args: args}
}

// NewPermissionError reports an actor that may not perform the action.
func NewPermissionError() *Error {
	return &Error{Kind: ErrForbidden, Key: "user.no_permission"}
}

func NewAuthenticationError() *Error {
	return &Error{Kind: ErrUnauthenticated, Key: "user.not_authenticated"}
}

func errUserNotFound(userID string) *Error {
	return NewNotFoundError("user.not_found", userID)
}

func errGenericNotFound() *Error {
	return NewNotFoundError("generic.not_found")
}
