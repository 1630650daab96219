package pos

import "errors"

// ErrEmptySale is returned when finalizing or clearing a sale with no items.
var ErrEmptySale = errors.New("sale has no items")

// ErrItemNotFound is returned when removing an item ID the sale does not
// contain. Removal of an absent item is an error, not a no-op, so the UI
// can tell a stale screen from a successful removal.
var ErrItemNotFound = errors.New("item not found in sale")

// ErrSaleFinalized is returned when mutating a sale that was already frozen.
var ErrSaleFinalized = errors.New("sale is already finalized")

// ErrNoPendingClear is returned when confirming a clear that was never
// requested, or whose token no longer matches.
var ErrNoPendingClear = errors.New("no matching pending clear request")

// ValidationError reports bad line item input. The sale is left untouched.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func invalid(reason string) error {
	return &ValidationError{Reason: reason}
}
