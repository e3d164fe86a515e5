package entity

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors recovered locally by callers; none of them implies a
// mutation was attempted.
var (
	// ErrInvalidQuantity rejects zero or negative quantities.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrInvalidPrice rejects non-positive listing prices.
	ErrInvalidPrice = errors.New("price must be positive")

	// ErrInvalidStock rejects negative stock values.
	ErrInvalidStock = errors.New("stock must not be negative")

	// ErrIncompleteShippingInfo rejects a checkout whose shipping
	// address has a blank required field.
	ErrIncompleteShippingInfo = errors.New("all shipping address fields are required")

	// ErrEmptyCart means a checkout had nothing to process. It is a
	// distinct outcome, not a failure; no order is created.
	ErrEmptyCart = errors.New("cart is empty, nothing to check out")

	// ErrNotFound covers unknown products, listings and orders.
	ErrNotFound = errors.New("not found")
)

// InsufficientStockError aborts a checkout when a listing cannot cover
// the requested quantity. The whole checkout fails; no partial order
// is ever created.
type InsufficientStockError struct {
	ListingID int64
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for listing %d: only %d left", e.ListingID, e.Available)
}

// CheckoutFailedError wraps a commit-time store failure. The
// transaction has been rolled back in full; retrying from a fresh cart
// snapshot is safe.
type CheckoutFailedError struct {
	Cause error
}

func (e *CheckoutFailedError) Error() string {
	return fmt.Sprintf("checkout failed: %v", e.Cause)
}

func (e *CheckoutFailedError) Unwrap() error {
	return e.Cause
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
