package ppe

import (
	"errors"
	"fmt"
)

// Sentinel errors for the movement engine. Use with errors.Is().
var (
	// ErrItemNotFound is returned when an item lookup matches nothing.
	ErrItemNotFound = errors.New("item not found")

	// ErrPersonNotFound is returned when the subject person doesn't exist.
	ErrPersonNotFound = errors.New("person not found")

	// ErrValidation is returned for empty or malformed input.
	ErrValidation = errors.New("invalid input")

	// ErrInvalidQuantity is returned when a requested quantity is out of
	// range, e.g. a return exceeding the outstanding balance.
	ErrInvalidQuantity = errors.New("invalid quantity")

	// ErrInsufficientStock is returned when a withdrawal exceeds the
	// on-hand quantity.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrNegativeStock is returned when a quantity adjustment would take
	// an item below zero.
	ErrNegativeStock = errors.New("adjustment would result in negative stock")

	// ErrIndexOutOfRange is returned when removing a staged line by an
	// invalid position.
	ErrIndexOutOfRange = errors.New("staged line index out of range")

	// ErrNothingToConfirm is returned when confirming an empty stage.
	ErrNothingToConfirm = errors.New("no staged lines to confirm")

	// ErrAuthenticationFailed is returned when the subject person's
	// credential doesn't match. Staged lines are preserved so the
	// operator can retry.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrNotAuthorized is returned when the operator's level is too low
	// for the attempted operation.
	ErrNotAuthorized = errors.New("operation not permitted for this level")

	// ErrConcurrentModification is returned when state shifted between
	// staging and confirmation, so a line's precondition no longer holds.
	ErrConcurrentModification = errors.New("state changed between staging and confirmation")
)

// InsufficientStockError reports a withdrawal exceeding on-hand quantity.
type InsufficientStockError struct {
	ItemID    int64
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: have %d, need %d",
		e.Name, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// InvalidQuantityError reports a return exceeding the outstanding balance.
type InvalidQuantityError struct {
	ItemID      int64
	Outstanding int
	Requested   int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("invalid return quantity for item %d: outstanding %d, requested %d",
		e.ItemID, e.Outstanding, e.Requested)
}

func (e *InvalidQuantityError) Unwrap() error {
	return ErrInvalidQuantity
}

// NegativeStockError reports an adjustment that would go below zero.
type NegativeStockError struct {
	ItemID  int64
	Current int
	Delta   int
}

func (e *NegativeStockError) Error() string {
	return fmt.Sprintf("adjustment would result in negative stock for item %d: %d + %d",
		e.ItemID, e.Current, e.Delta)
}

func (e *NegativeStockError) Unwrap() error {
	return ErrNegativeStock
}

// BatchError reports a confirmation batch that stopped mid-apply. Lines
// before the failing one remain applied; application is sequential and
// line-atomic, not all-or-nothing.
type BatchError struct {
	Line    int // index of the failing line
	Applied int // lines successfully applied before the failure
	Err     error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("batch failed at line %d after %d applied lines: %v",
		e.Line, e.Applied, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// IsClientError returns true if the error is due to invalid caller input
// rather than a store failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidQuantity) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrIndexOutOfRange) ||
		errors.Is(err, ErrNothingToConfirm)
}

// IsNotFound returns true if the error indicates a missing item or person.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound) || errors.Is(err, ErrPersonNotFound)
}
