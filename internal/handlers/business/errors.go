package business

import "errors"

// Failure kinds surfaced by the ledger core. Handlers match with
// errors.Is; messages carry the computed context (remaining headroom,
// outstanding balance) via fmt.Errorf wrapping.
var (
	ErrNotFound              = errors.New("record not found")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrCapacityExceeded      = errors.New("capacity exceeded")
	ErrPaymentExceedsBalance = errors.New("payment exceeds outstanding balance")
	ErrConflictRetryable     = errors.New("concurrent update detected, retry the operation")
)
