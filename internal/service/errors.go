package service

import (
	"errors"
	"fmt"

	"go-commerce-ledger/pkg/validator"
)

// Error taxonomy shared across services. Handlers map these to HTTP statuses
// with errors.Is.
var (
	ErrNotFound                  = errors.New("entity not found")
	ErrValidation                = errors.New("validation failed")
	ErrInsufficientStock         = errors.New("insufficient stock remaining")
	ErrCreditLimitExceeded       = errors.New("credit limit exceeded")
	ErrInvalidAmount             = errors.New("payment amount must be greater than zero")
	ErrAmountExceedsRemaining    = errors.New("payment amount exceeds remaining balance")
	ErrAlreadyProcessed          = errors.New("request has already been processed")
	ErrInvalidDecision           = errors.New("decision must be approved or rejected")
	ErrUnauthorized              = errors.New("not authorized for this operation")
	ErrPaymentVerificationFailed = errors.New("payment verification failed")
	// ErrPersistenceConflict surfaces after a bounded number of retries when
	// a conditional update keeps losing to concurrent writers.
	ErrPersistenceConflict = errors.New("concurrent update conflict, please retry")
)

// maxConflictRetries bounds optimistic-update retry loops before
// ErrPersistenceConflict surfaces to the caller.
const maxConflictRetries = 3

// validateInput runs struct validation and wraps the first failure in
// ErrValidation so handlers can map it to 400.
func validateInput(data interface{}) error {
	if errs := validator.ValidateStruct(data); len(errs) > 0 {
		first := errs[0]
		return fmt.Errorf("%w: field '%s' failed on tag '%s'", ErrValidation, first.FailedField, first.Tag)
	}
	return nil
}
