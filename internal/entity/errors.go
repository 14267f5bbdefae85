package entity

import (
	"errors"
	"fmt"
)

// Domain errors for staged annotations and review metadata.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidUserName     = errors.New("invalid user name")
	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrStatementNotFound   = errors.New("statement not found")
	ErrInvalidStatementID  = errors.New("invalid statement ID")
	ErrEntityNotFound      = errors.New("entity not found")
	ErrImageNotFound       = errors.New("image not found")
	ErrNotLoggedIn         = errors.New("not logged in")
	ErrProjectLeadRequired = errors.New("project lead role required")
	ErrNotStatementOwner   = errors.New("statement belongs to another user")
	ErrStaleQualifier      = errors.New("this region does not exist (anymore); it may have been edited in the meantime, please reload the page and try again")
)

// ValidationError reports malformed user input. It is raised before any write happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError with a formatted reason.
func NewValidationError(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// UnexpectedValueTypeError signals that remote data does not have the data value type the tool relies on.
type UnexpectedValueTypeError struct {
	Expected string
	Actual   string
}

func (e *UnexpectedValueTypeError) Error() string {
	return fmt.Sprintf("unexpected data value type: expected %q, got %q", e.Expected, e.Actual)
}

// RemoteError carries an error reported by a remote MediaWiki API.
type RemoteError struct {
	Code string
	Info string
}

func (e *RemoteError) Error() string {
	if e.Info == "" {
		return "remote API error: " + e.Code
	}
	return fmt.Sprintf("remote API error %s: %s", e.Code, e.Info)
}

// Is reports a "no-such-qualifier" rejection as ErrStaleQualifier.
func (e *RemoteError) Is(target error) bool {
	return target == ErrStaleQualifier && e.Code == "no-such-qualifier"
}

// AuthorizationError rejects a request before it touches the store or a remote API.
type AuthorizationError struct {
	Reason string
	Err    error
}

func (e *AuthorizationError) Error() string {
	switch {
	case e.Reason != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Reason
	}
}

func (e *AuthorizationError) Unwrap() error { return e.Err }

// Unauthorized wraps err (usually ErrNotLoggedIn or ErrProjectLeadRequired) in an AuthorizationError.
func Unauthorized(err error, reason string) error {
	return &AuthorizationError{Reason: reason, Err: err}
}
