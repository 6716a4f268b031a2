package application

import (
	"errors"
	"fmt"
	"net/http"
)

// APPLICATION-LEVEL ERRORS (Orchestration)

type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeTransport       = "TRANSPORT_ERROR"
	ErrCodePersistence     = "PERSISTENCE_ERROR"
	ErrCodeInvalidArgument = "INVALID_ARGUMENT"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeUnauthenticated = "UNAUTHENTICATED"
	ErrCodeInternal        = "INTERNAL_ERROR"
)

// NewTransportError wraps a failure talking to the gateway or the push
// transport. Always retryable on the caller's own cadence; never a reason
// to write terminal state.
func NewTransportError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeTransport,
		Message:    "upstream transport failure",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewPersistenceError wraps a read/write failure against the order/user
// store. Surfaced to the caller; not retried internally.
func NewPersistenceError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodePersistence,
		Message:    "persistence failure",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewInvalidArgumentError(msg string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidArgument,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}

func NewNotFoundError(msg string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeNotFound,
		Message:    msg,
		HTTPStatus: http.StatusNotFound,
	}
}

func NewUnauthenticatedError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeUnauthenticated,
		Message:    "caller must be authenticated",
		HTTPStatus: http.StatusUnauthorized,
	}
}

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "an internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}

func IsNotFound(err error) bool {
	svcErr, ok := IsServiceError(err)
	return ok && svcErr.Code == ErrCodeNotFound
}
