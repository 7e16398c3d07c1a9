package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/piresc/arbiter/internal/pkg/constants"
)

// Error is a failure that can be reported to a client. Code is stable and
// machine readable, Message is safe to show, Err keeps the cause for logs.
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		if e.Message != "" {
			return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error carrying the same code
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Code == e.Code && t.Message == "" && t.Err == nil
	}
	return false
}

// Sentinels usable with errors.Is
var (
	ErrInvalidToken     = &Error{Code: constants.ErrorInvalidToken}
	ErrExpired          = &Error{Code: constants.ErrorExpired}
	ErrExpiryTooShort   = &Error{Code: constants.ErrorExpiryTooShort}
	ErrUnauthorized     = &Error{Code: constants.ErrorUnauthorized}
	ErrForbidden        = &Error{Code: constants.ErrorForbidden}
	ErrNotFound         = &Error{Code: constants.ErrorNotFound}
	ErrAlreadyExists    = &Error{Code: constants.ErrorAlreadyExists}
	ErrUnknown          = &Error{Code: constants.ErrorUnknown}
	ErrUpstream         = &Error{Code: constants.ErrorUpstream}
	ErrMalformedMessage = &Error{Code: constants.ErrorMalformedMessage}
	ErrBadGateway       = &Error{Code: constants.ErrorBadGateway}
	ErrInvalidParams    = &Error{Code: constants.ErrorInvalidParams}
)

func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func InvalidToken(err error) *Error {
	return Wrap(constants.ErrorInvalidToken, "invalid token", err)
}

func Expired() *Error {
	return New(constants.ErrorExpired, "token expired")
}

func ExpiryTooShort() *Error {
	return New(constants.ErrorExpiryTooShort, "upstream session expires before the issued token")
}

func Unauthorized(message string) *Error {
	return New(constants.ErrorUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(constants.ErrorForbidden, message)
}

func NotFound(message string) *Error {
	return New(constants.ErrorNotFound, message)
}

func AlreadyExists(message string) *Error {
	return New(constants.ErrorAlreadyExists, message)
}

func Unknown(err error) *Error {
	return Wrap(constants.ErrorUnknown, "internal error", err)
}

// Upstream carries a failure reported by the upstream executor itself
func Upstream(detail string) *Error {
	return New(constants.ErrorUpstream, detail)
}

func MalformedMessage(err error) *Error {
	return Wrap(constants.ErrorMalformedMessage, "malformed message", err)
}

func BadGateway(err error) *Error {
	return Wrap(constants.ErrorBadGateway, "upstream unreachable or returned an invalid response", err)
}

func InvalidParams(err error) *Error {
	return Wrap(constants.ErrorInvalidParams, "invalid params", err)
}

// From converts any error into an *Error, defaulting to unknown
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Unknown(err)
}

// KnownCode reports whether code belongs to the taxonomy
func KnownCode(code string) bool {
	switch code {
	case constants.ErrorInvalidToken, constants.ErrorExpired, constants.ErrorExpiryTooShort,
		constants.ErrorUnauthorized, constants.ErrorForbidden, constants.ErrorNotFound,
		constants.ErrorAlreadyExists, constants.ErrorUnknown, constants.ErrorUpstream,
		constants.ErrorMalformedMessage, constants.ErrorBadGateway, constants.ErrorInvalidParams:
		return true
	}
	return false
}

// HasCode reports whether err is an *Error with the given code
func HasCode(err error, code string) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Code == code
}

// HTTPStatus maps a code to the status used by the HTTP surface
func HTTPStatus(err error) int {
	switch From(err).Code {
	case constants.ErrorInvalidToken, constants.ErrorExpired, constants.ErrorUnauthorized, constants.ErrorExpiryTooShort:
		return http.StatusUnauthorized
	case constants.ErrorForbidden:
		return http.StatusForbidden
	case constants.ErrorNotFound:
		return http.StatusNotFound
	case constants.ErrorAlreadyExists:
		return http.StatusConflict
	case constants.ErrorInvalidParams, constants.ErrorMalformedMessage:
		return http.StatusBadRequest
	case constants.ErrorBadGateway, constants.ErrorUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
