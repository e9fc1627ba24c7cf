package application

import (
	"errors"
	"net/http"
)

// Kind classifies failures for transport mapping.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindService
)

// Status maps a kind to its HTTP status code. Unknown failures are always 500.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified application failure. Message is safe to show to
// clients; Err holds the underlying cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

var (
	ErrInvalidCredentials      = errors.New("invalid credentials")
	ErrNoAccount               = errors.New("no account for email")
	ErrUserNotFound            = errors.New("user not found")
	ErrCurrentPasswordMismatch = errors.New("current password mismatch")
	ErrInvalidResetToken       = errors.New("invalid reset token")
	ErrInvalidVerification     = errors.New("invalid verification hash")
	ErrMailUnavailable         = errors.New("mail dispatch unavailable")
)

func Validation(message string, details map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

func Unauthenticated(message string, err error) *Error {
	return &Error{Kind: KindAuthentication, Message: message, Err: err}
}

func Forbidden(message string, err error) *Error {
	return &Error{Kind: KindAuthorization, Message: message, Err: err}
}

func NotFound(message string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: message, Err: err}
}

func ServiceFailure(message string, err error) *Error {
	return &Error{Kind: KindService, Message: message, Err: err}
}

// KindOf returns the kind of err, KindUnknown for unclassified errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindUnknown
}
