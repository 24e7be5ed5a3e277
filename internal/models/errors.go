package models

import (
	"fmt"
	"net/http"
)

// Error codes carried by AppError.
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeUnavailable  = "UNAVAILABLE"
)

// User-facing messages shown on the redisplayed form or the error page.
const (
	MsgEmailTaken          = "A user with this email already exists. Please log in instead."
	MsgRegistrationFailed  = "An unexpected error occurred during registration. Please try again later."
	MsgIncorrectPassword   = "Incorrect password. Please try again."
	MsgNoAccount           = "No account found with that email. Please register first."
	MsgCommentFailed       = "Unable to post your comment at this time. Please try again later."
	MsgDuplicateTitle      = "A post with this title already exists. Please use a different title."
	MsgContactFailed       = "Your message could not be delivered right now. Please try again later."
	MsgSomethingWentWrong  = "Something went wrong on our side. Please try again later."
	MsgLoginRequired       = "Please log in to continue."
	MsgNotPostAuthor       = "Only the author of this post can change it."
	MsgAdminAccessRequired = "Admin access required."
)

// AppError is the error type returned by repositories and services.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error code to a response status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{Code: ErrCodeValidation, Message: message}
}

func NewNotFoundError(resource string, id any) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: fmt.Sprintf("%s %v not found", resource, id)}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: ErrCodeUnauthorized, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Code: ErrCodeForbidden, Message: message}
}

// NewInternalError wraps a storage or runtime failure behind a generic message.
func NewInternalError(err error) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: MsgSomethingWentWrong, Err: err}
}

// NewInternalErrorWithMessage is NewInternalError with a route-specific message.
func NewInternalErrorWithMessage(err error, message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message, Err: err}
}

// NewUnavailableError reports a failed call to an upstream service such as SMTP.
func NewUnavailableError(err error, message string) *AppError {
	return &AppError{Code: ErrCodeUnavailable, Message: message, Err: err}
}
