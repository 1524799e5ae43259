package apperrors

import (
	"errors"
	"net/http"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the resource is not in a state that allows the operation.
var ErrConflict = errors.New("resource state conflict")

// ErrUnauthorized indicates missing or invalid credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden indicates that the caller is known but may not perform the operation.
var ErrForbidden = errors.New("forbidden")

// ErrOutOfRange indicates a ledger date outside the fiscal year it belongs to.
var ErrOutOfRange = errors.New("date outside fiscal year range")

// ErrConfirmation indicates that a confirmation phrase did not match.
var ErrConfirmation = errors.New("confirmation mismatch")

// ErrCollaborator indicates that an external collaborator (database, blob store, identity provider) failed.
var ErrCollaborator = errors.New("collaborator failure")

// ErrPartialFailure indicates that a multi-step operation committed its durable part
// but a follow-up step did not complete.
var ErrPartialFailure = errors.New("operation partially completed")

// AppError carries an HTTP status code together with a user facing message.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func NewBadRequestError(message string) *AppError {
	return NewAppError(http.StatusBadRequest, message, ErrValidation)
}

func NewUnauthorizedError(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, message, ErrUnauthorized)
}

func NewInternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, message, nil)
}

func NewGatewayTimeoutError(message string) *AppError {
	return NewAppError(http.StatusGatewayTimeout, message, ErrCollaborator)
}
