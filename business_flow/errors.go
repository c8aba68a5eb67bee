// Package businessflow contains the core business logic and use cases for contracts, certificates and profiles
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Identity errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrUnauthorized     = errors.New("unauthorized")

	// Lookup errors
	ErrProfileNotFound     = errors.New("profile not found")
	ErrContractNotFound    = errors.New("contract not found")
	ErrCertificateNotFound = errors.New("certificate not found")

	// Conflict errors
	ErrContractNumberExists      = errors.New("contract number already exists")
	ErrBrokerCodeExists          = errors.New("broker code already assigned")
	ErrContractInUse             = errors.New("contract has certificates")
	ErrCertificateNumberConflict = errors.New("certificate number conflict")

	// Validation errors
	ErrValidation = errors.New("validation failed")

	// Allocation errors
	ErrCertificateNumberGeneration = errors.New("failed to generate certificate number")
)

// Error codes surfaced to API clients
const (
	CodeNotAuthenticated            = "NOT_AUTHENTICATED"
	CodeUnauthorized                = "UNAUTHORIZED"
	CodeValidation                  = "VALIDATION_ERROR"
	CodeProfileNotFound             = "PROFILE_NOT_FOUND"
	CodeContractNotFound            = "CONTRACT_NOT_FOUND"
	CodeCertificateNotFound         = "CERTIFICATE_NOT_FOUND"
	CodeContractNumberExists        = "CONTRACT_NUMBER_EXISTS"
	CodeBrokerCodeExists            = "BROKER_CODE_EXISTS"
	CodeContractInUse               = "CONTRACT_IN_USE"
	CodeCertificateNumberConflict   = "CERTIFICATE_NUMBER_CONFLICT"
	CodeCertificateNumberGeneration = "CERTIFICATE_NUMBER_FAILED"
	CodeCurrencyNotSupported        = "CURRENCY_NOT_SUPPORTED"
	CodeCurrencyAPIUnavailable      = "CURRENCY_API_UNAVAILABLE"
	CodePDFGeneration               = "PDF_GENERATION_FAILED"
	CodePersistence                 = "PERSISTENCE_ERROR"
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

// NewValidationError builds a user-facing validation failure
func NewValidationError(message string) *BusinessError {
	return NewBusinessError(CodeValidation, message, ErrValidation)
}

// NewValidationErrorf builds a formatted user-facing validation failure
func NewValidationErrorf(format string, args ...any) *BusinessError {
	return NewBusinessErrorf(CodeValidation, format, ErrValidation, args...)
}

// newPersistenceError hides store details behind a generic message
func newPersistenceError(message string, err error) *BusinessError {
	return NewBusinessError(CodePersistence, message, err)
}

// ValueLimitError is the value-limit validation failure; it carries both amounts
type ValueLimitError struct {
	*BusinessError
	Attempted string
	Maximum   string
}

func (e *ValueLimitError) Unwrap() error {
	return e.BusinessError
}

func IsNotAuthenticated(err error) bool {
	return errors.Is(err, ErrNotAuthenticated)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrProfileNotFound) ||
		errors.Is(err, ErrContractNotFound) ||
		errors.Is(err, ErrCertificateNotFound)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrContractNumberExists) ||
		errors.Is(err, ErrBrokerCodeExists) ||
		errors.Is(err, ErrContractInUse) ||
		errors.Is(err, ErrCertificateNumberConflict)
}

// AsBusinessError returns the outermost BusinessError in err's chain
func AsBusinessError(err error) (*BusinessError, bool) {
	var be *BusinessError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
