// Package apperr holds the error kinds shared by the domain and application layers.
// Every failure leaving a use case carries exactly one Kind so callers can map it
// to a transport response without string matching.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindInvalidValue               Kind = "invalid_value"
	KindInvalidCredentials         Kind = "invalid_credentials"
	KindNotFound                   Kind = "not_found"
	KindAlreadyExists              Kind = "already_exists"
	KindInvalidPermissionReference Kind = "invalid_permission_reference"
	KindInvalidRoleReference       Kind = "invalid_role_reference"
	KindNoActiveSession            Kind = "no_active_session"
	KindTokenInvalid               Kind = "token_invalid"
	KindTokenIssuanceFailed        Kind = "token_issuance_failed"
	KindTokenRefreshFailed         Kind = "token_refresh_failed"
	KindUserResolutionFailed       Kind = "user_resolution_failed"
	KindInternal                   Kind = "internal"
)

// Sentinels for errors.Is. Comparison is by Kind only.
var (
	ErrInvalidValue               = &Error{Kind: KindInvalidValue}
	ErrInvalidCredentials         = &Error{Kind: KindInvalidCredentials}
	ErrNotFound                   = &Error{Kind: KindNotFound}
	ErrAlreadyExists              = &Error{Kind: KindAlreadyExists}
	ErrInvalidPermissionReference = &Error{Kind: KindInvalidPermissionReference}
	ErrInvalidRoleReference       = &Error{Kind: KindInvalidRoleReference}
	ErrNoActiveSession            = &Error{Kind: KindNoActiveSession}
	ErrTokenInvalid               = &Error{Kind: KindTokenInvalid}
	ErrTokenIssuanceFailed        = &Error{Kind: KindTokenIssuanceFailed}
	ErrTokenRefreshFailed         = &Error{Kind: KindTokenRefreshFailed}
	ErrUserResolutionFailed       = &Error{Kind: KindUserResolutionFailed}
)

// Error is a domain failure with a human-readable message.
// Refs lists offending references (permission or role names) when relevant.
type Error struct {
	Kind    Kind
	Message string
	Refs    []string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = strings.ReplaceAll(string(e.Kind), "_", " ")
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func InvalidValue(format string, args ...any) *Error {
	return newf(KindInvalidValue, format, args...)
}

func InvalidCredentials() *Error {
	return &Error{Kind: KindInvalidCredentials, Message: "Invalid email or password."}
}

func NotFound(format string, args ...any) *Error {
	return newf(KindNotFound, format, args...)
}

func AlreadyExists(format string, args ...any) *Error {
	return newf(KindAlreadyExists, format, args...)
}

func InvalidPermissionReference(names []string) *Error {
	return &Error{
		Kind:    KindInvalidPermissionReference,
		Message: "The following permissions do not exist: " + strings.Join(names, ", "),
		Refs:    names,
	}
}

func InvalidRoleReference(names []string) *Error {
	return &Error{
		Kind:    KindInvalidRoleReference,
		Message: "The following roles do not exist: " + strings.Join(names, ", "),
		Refs:    names,
	}
}

func NoActiveSession() *Error {
	return &Error{Kind: KindNoActiveSession, Message: "No authentication token present."}
}

// Wrap attaches a kind and message to a lower-level cause.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind carried by err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// RefsOf returns the offending references carried by err, if any.
func RefsOf(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Refs
	}
	return nil
}
