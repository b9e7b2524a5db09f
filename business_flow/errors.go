// Package businessflow contains the core business logic and use cases for the sales panel
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Account-related errors
	ErrAccountNotFound    = errors.New("account not found")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrIncorrectPassword  = errors.New("incorrect password")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrCPFAlreadyExists   = errors.New("cpf already exists")
	ErrInvalidRole        = errors.New("invalid role")

	// Seller-related errors
	ErrSellerNotFound       = errors.New("seller not found")
	ErrSellerInactive       = errors.New("seller is inactive")
	ErrCommissionRateRange  = errors.New("commission rate must be between 0 and 100")
	ErrSellerFieldsRequired = errors.New("seller name fields are required")

	// Sale-related errors
	ErrSaleNotFound  = errors.New("sale not found")
	ErrDuplicateSale = errors.New("seller already has a sale registered for this date")
	ErrInvalidAmount = errors.New("sale amount must not be negative")
	ErrMissingDate   = errors.New("sale date is required")

	// Commission and payout errors
	ErrCommissionNotFound     = errors.New("commission not found")
	ErrNoSelection            = errors.New("no sellers selected for payout")
	ErrNoPendingCommissions   = errors.New("selected sellers have no pending commissions")
	ErrPayoutAlreadyRunning   = errors.New("a payout batch is already running")
	ErrPaidStateInconsistency = errors.New("payout batch updated a different number of commissions than it collected")

	// Filter errors
	ErrInvalidPage           = errors.New("page must be at least 1")
	ErrInvalidPageSize       = errors.New("page size must be between 1 and 100")
	ErrStartDateAfterEndDate = errors.New("start date cannot be after end date")
	ErrInvalidPeriod         = errors.New("period must be one of today, week, month, year or custom")
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

func IsAccountNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsCPFAlreadyExists(err error) bool {
	return errors.Is(err, ErrCPFAlreadyExists)
}

func IsInvalidRole(err error) bool {
	return errors.Is(err, ErrInvalidRole)
}

func IsSellerNotFound(err error) bool {
	return errors.Is(err, ErrSellerNotFound)
}

func IsSellerInactive(err error) bool {
	return errors.Is(err, ErrSellerInactive)
}

func IsCommissionRateRange(err error) bool {
	return errors.Is(err, ErrCommissionRateRange)
}

func IsSellerFieldsRequired(err error) bool {
	return errors.Is(err, ErrSellerFieldsRequired)
}

func IsSaleNotFound(err error) bool {
	return errors.Is(err, ErrSaleNotFound)
}

func IsDuplicateSale(err error) bool {
	return errors.Is(err, ErrDuplicateSale)
}

func IsInvalidAmount(err error) bool {
	return errors.Is(err, ErrInvalidAmount)
}

func IsMissingDate(err error) bool {
	return errors.Is(err, ErrMissingDate)
}

func IsCommissionNotFound(err error) bool {
	return errors.Is(err, ErrCommissionNotFound)
}

func IsNoSelection(err error) bool {
	return errors.Is(err, ErrNoSelection)
}

func IsNoPendingCommissions(err error) bool {
	return errors.Is(err, ErrNoPendingCommissions)
}

func IsPayoutAlreadyRunning(err error) bool {
	return errors.Is(err, ErrPayoutAlreadyRunning)
}

func IsPaidStateInconsistency(err error) bool {
	return errors.Is(err, ErrPaidStateInconsistency)
}

func IsInvalidPage(err error) bool {
	return errors.Is(err, ErrInvalidPage)
}

func IsInvalidPageSize(err error) bool {
	return errors.Is(err, ErrInvalidPageSize)
}

func IsStartDateAfterEndDate(err error) bool {
	return errors.Is(err, ErrStartDateAfterEndDate)
}

func IsInvalidPeriod(err error) bool {
	return errors.Is(err, ErrInvalidPeriod)
}
