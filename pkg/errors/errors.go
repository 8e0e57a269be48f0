package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrCreditNotFound            = errors.New("credit not found")
	ErrInstallmentNotFound       = errors.New("installment not found")
	ErrInvalidScheduleParameters = errors.New("invalid schedule parameters")
	ErrDuplicateSequence         = errors.New("duplicate installment sequence number")
	ErrInvalidStatusTransition   = errors.New("invalid installment status transition")
	ErrPaymentDateRequired       = errors.New("payment date is required when marking paid")
	ErrPaymentDateNotAllowed     = errors.New("payment date must be empty when reverting to pending")
	ErrUnknownInstallmentStatus  = errors.New("unknown installment status")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeCreditNotFound            = "CREDIT_NOT_FOUND"
	ErrCodeInstallmentNotFound       = "INSTALLMENT_NOT_FOUND"
	ErrCodeInvalidScheduleParameters = "INVALID_SCHEDULE_PARAMETERS"
	ErrCodeDuplicateSequence         = "DUPLICATE_SEQUENCE"
	ErrCodeInvalidTransition         = "INVALID_TRANSITION"
	ErrCodeInvalidRequest            = "INVALID_REQUEST"
	ErrCodeDatabaseError             = "DATABASE_ERROR"
	ErrCodeCacheError                = "CACHE_ERROR"
)

// Wrap common errors with business context

func WrapCreditNotFound(creditID string) *BusinessError {
	return NewBusinessError(
		ErrCodeCreditNotFound,
		fmt.Sprintf("credit %s not found", creditID),
		ErrCreditNotFound,
	)
}

func WrapInstallmentNotFound(installmentID string) *BusinessError {
	return NewBusinessError(
		ErrCodeInstallmentNotFound,
		fmt.Sprintf("installment %s not found", installmentID),
		ErrInstallmentNotFound,
	)
}

func WrapInvalidScheduleParameters(reason string) *BusinessError {
	return NewBusinessError(
		ErrCodeInvalidScheduleParameters,
		reason,
		ErrInvalidScheduleParameters,
	)
}

func WrapDuplicateSequence(creditID string) *BusinessError {
	return NewBusinessError(
		ErrCodeDuplicateSequence,
		fmt.Sprintf("credit %s already has an installment with the same sequence number", creditID),
		ErrDuplicateSequence,
	)
}

func WrapInvalidTransition(reason string, err error) *BusinessError {
	if err == nil {
		err = ErrInvalidStatusTransition
	}
	return NewBusinessError(ErrCodeInvalidTransition, reason, err)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}

// CodeOf extracts the business error code from err, or DATABASE_ERROR when
// err carries no business context.
func CodeOf(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ErrCodeDatabaseError
}
