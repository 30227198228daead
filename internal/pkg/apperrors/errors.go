package apperrors

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// Resource errors
	ErrExamNotFound      = errors.New("exam not found")
	ErrSeatNotFound      = errors.New("seat not found")
	ErrExamAlreadyExists = errors.New("exam already exists")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Seat reconciliation errors
	ErrDuplicateSeat = errors.New("duplicate seat number")

	// Storage errors
	ErrStorage = errors.New("storage failure")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameExists     = errors.New("username already exists")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
)

// DuplicateSeatError reports a seat number that violates per-exam uniqueness,
// either inside one batch or against already persisted seats. It unwraps to
// ErrDuplicateSeat so callers can match it with errors.Is and extract the
// offending number with errors.As.
type DuplicateSeatError struct {
	SeatNumber int
}

// Error implements error interface
func (e *DuplicateSeatError) Error() string {
	return fmt.Sprintf("seat number %d is already assigned", e.SeatNumber)
}

// Unwrap implements errors.Unwrap interface
func (e *DuplicateSeatError) Unwrap() error {
	return ErrDuplicateSeat
}

// NewDuplicateSeatError creates a DuplicateSeatError for the given seat number
func NewDuplicateSeatError(seatNumber int) error {
	return &DuplicateSeatError{SeatNumber: seatNumber}
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err     error
	Message string
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// NewValidationError creates a caller-correctable input error with a message
func NewValidationError(message string) error {
	return &CustomError{
		Err:     ErrValidationFailed,
		Message: message,
	}
}

// NewNotFoundError creates an exam-not-found error with a message
func NewNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrExamNotFound,
		Message: message,
	}
}

// NewStorageError wraps a persistence failure. The original error stays
// reachable through the message for logging; callers only match ErrStorage.
func NewStorageError(op string, err error) error {
	return &CustomError{
		Err:     ErrStorage,
		Message: fmt.Sprintf("%s: %v", op, err),
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}
