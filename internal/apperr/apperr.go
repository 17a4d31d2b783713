package apperr

import (
	"errors"
	"fmt"
	"net/http"

	appLog "athletics/internal/log"
)

type Code string

const (
	ErrBadRequest    Code = "bad-request"
	ErrUnauthorized  Code = "unauthorized"
	ErrForbidden     Code = "forbidden"
	ErrNotFound      Code = "not-found"
	ErrConfig        Code = "config"
	ErrCommunication Code = "communication"
	ErrInternal      Code = "internal"
)

// Details holds additional error details that are logged but never sent to
// clients.
type Details map[string]any

// Error is the general error type returned by services in this module.
type Error struct {
	Code Code
	// Err is the original error, if any.
	Err error
	// Message is safe to show to an operator.
	Message string
	Details Details
}

func (e Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e Error) Unwrap() error {
	return e.Err
}

// New creates an Error without an underlying cause.
func New(code Code, message string) error {
	return Error{Code: code, Message: message}
}

// FromErr creates an Error wrapping err.
func FromErr(code Code, message string, err error, details Details) error {
	return Error{Code: code, Err: err, Message: message, Details: details}
}

// Cast extracts an Error from err. Foreign errors become ErrInternal and false
// is returned.
func Cast(err error) (Error, bool) {
	var e Error
	if errors.As(err, &e) {
		return e, true
	}
	return Error{
		Code:    ErrInternal,
		Err:     err,
		Message: "unexpected error",
		Details: Details{},
	}, false
}

// Wrap prefixes the message of err, keeping its code.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	e, ok := Cast(err)
	if !ok {
		return Error{Code: ErrInternal, Err: err, Message: message}
	}
	e.Message = message + ": " + e.Message
	return e
}

// CodeOf returns the code of err, ErrInternal for foreign errors.
func CodeOf(err error) Code {
	e, _ := Cast(err)
	return e.Code
}

// HTTPStatus maps an error code to the response status used by the web layer.
func HTTPStatus(code Code) int {
	switch code {
	case ErrBadRequest, ErrConfig:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrCommunication:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Log writes err with its details. Client-side problems are logged at warn
// level, everything else at error level.
func Log(err error, kv ...any) {
	e, _ := Cast(err)
	fields := append([]any{"err_code", string(e.Code)}, kv...)
	for k, v := range e.Details {
		fields = append(fields, "err_details_"+k, v)
	}
	switch e.Code {
	case ErrBadRequest, ErrUnauthorized, ErrForbidden, ErrNotFound:
		appLog.Warn(e.Error(), fields...)
	default:
		appLog.Error(e.Message, e.Err, fields...)
	}
}
