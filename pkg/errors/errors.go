package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("User password is not correct")
	ErrEmailNotRegistered = errors.New("User with email does not exist")
	ErrUnauthorized       = errors.New("Authentication credentials were not provided.")
	ErrInvalidToken       = errors.New("Invalid token.")

	ErrAccountNotFound    = errors.New("User does not exist.")
	ErrAccountExists      = errors.New("User with email already exists.")
	ErrProfileNotFound    = errors.New("Profile was not found")
	ErrCodeMismatch       = errors.New("User code is invalid")
	ErrAccountNotVerified = errors.New("User account is not verified")

	ErrPasswordMismatch = errors.New("Passwords must match")
	ErrSamePassword     = errors.New("New password must be different from the previous passwords.")
	ErrWrongOldPassword = errors.New("Old Password entered is incorrect")
)

// AppError carries a machine code alongside the client-facing message.
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// UpstreamError reports a failure from an external collaborator (mail or
// image service) together with the status it answered with.
type UpstreamError struct {
	Service string
	Status  int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s service failed with status %d", e.Service, e.Status)
}

func NewUpstreamError(service string, status int) *UpstreamError {
	return &UpstreamError{Service: service, Status: status}
}
