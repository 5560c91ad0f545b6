package domain

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound         = errors.New("pending order not found")
	ErrPaymentMethodRequired = errors.New("payment method required")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrInvalidDiscount       = errors.New("discount must be between 0 and the order price")
	ErrFeedAlreadyStarted    = errors.New("feed already started")
)

// ReconciliationError marks the partial-failure case of a confirm: the ledger
// insert succeeded but the pending-row delete did not, so the order now exists
// in both stores. It must be surfaced distinctly from a clean failure; retrying
// the insert would duplicate the ledger entry.
type ReconciliationError struct {
	OrderID       int64
	TransactionID int64
	Err           error
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("order %d confirmed as transaction %d but pending row not deleted: %v",
		e.OrderID, e.TransactionID, e.Err)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}
