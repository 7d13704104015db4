package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeInvalidAmount      = "INVALID_AMOUNT"
	ErrCodeInvalidSignature   = "INVALID_SIGNATURE"
	ErrCodeInvalidTransition  = "INVALID_TRANSITION"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeGatewayUnavailable = "GATEWAY_UNAVAILABLE"
	ErrCodeContention         = "CONTENTION"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

func NewInvalidAmountError(amount float64) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidAmount,
		Message: fmt.Sprintf("amount must be greater than zero, got %.2f", amount),
	}
}

func NewInvalidSignatureError() *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidSignature,
		Message: "callback signature verification failed",
	}
}

func NewInvalidTransitionError(from, to PaymentStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition from %s to %s", from, to),
	}
}

func NewNotFoundError(what, id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s %s not found", what, id),
	}
}

func NewGatewayUnavailableError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeGatewayUnavailable,
		Message: "payment gateway unavailable",
		Err:     err,
	}
}

func NewContentionError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeContention,
		Message: "storage contention",
		Err:     err,
	}
}

func NewValidationError(msg string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidation,
		Message: msg,
	}
}

func NewInternalError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeInternal,
		Message: "an internal error occurred",
		Err:     err,
	}
}

// IsCode reports whether err is a DomainError carrying the given code.
func IsCode(err error, code string) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == code
}

// IsContention reports whether err is a transient storage lock error
// worth retrying.
func IsContention(err error) bool {
	return IsCode(err, ErrCodeContention)
}
