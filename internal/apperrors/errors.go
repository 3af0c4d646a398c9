package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a coded error surfaced to API clients with its message intact.
type AppError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Cause }

// Constructors
func New(code Code, message string) error {
	return &AppError{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) error {
	return &AppError{Code: code, Message: message, Cause: cause}
}

func Validation(msg string) error {
	return New(CodeValidation, msg)
}

func Auth(msg string) error {
	return New(CodeAuth, msg)
}

func Forbidden(msg string) error {
	return New(CodePermissionDenied, msg)
}

func NotFound(msg string) error {
	return New(CodeNotFound, msg)
}

func AlreadyExists(msg string) error {
	return New(CodeAlreadyExists, msg)
}

func InvalidState(msg string) error {
	return New(CodeInvalidState, msg)
}

func Upload(msg string, cause error) error {
	return Wrap(CodeUpload, msg, cause)
}

func EmailDelivery(msg string, cause error) error {
	return Wrap(CodeEmailDelivery, msg, cause)
}

func Internal(msg string) error {
	return New(CodeInternal, msg)
}

// CodeOf extracts the code from an error chain, CodeUnknown when none.
func CodeOf(err error) Code {
	var app *AppError
	if errors.As(err, &app) {
		return app.Code
	}
	return CodeUnknown
}

// HTTPStatus maps an error to the status its handler should answer with.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeValidation, CodeUpload:
		return http.StatusBadRequest
	case CodeAuth:
		return http.StatusUnauthorized
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists, CodeInvalidState:
		return http.StatusConflict
	case CodeEmailDelivery:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
