package apperrors

import (
	"errors"
)

// Sentinel errors returned by repositories
// Services wrap them into *Error with a client safe message when needed
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already in use")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrInvalidToken         = errors.New("token is invalid or expired")

	ErrTrailerNotFound = errors.New("trailer not found")
)

// Kind classifies an error for the HTTP boundary
// The boundary maps every kind to a status code and never exposes anything
// beyond the attached message
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindAuthorization
	KindNotFound
)

// Error carries a kind and a message that is safe to show to the client
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// WithCause attaches the underlying error so errors.Is keeps working
func (e *Error) WithCause(err error) *Error {
	return &Error{Kind: e.Kind, Message: e.Message, cause: err}
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// KindOf returns the kind of err or KindInternal for unrecognized errors
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf returns the client safe message of err
// Unrecognized errors get the generic internal message so storage details
// never leak to the client
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}
