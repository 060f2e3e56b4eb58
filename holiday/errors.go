package holiday

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Sentinel errors, matched with errors.Is.
var (
	// ErrRequestNotFound is returned when no request matches the key, or
	// when the caller is not permitted to see the one that does.
	ErrRequestNotFound = errors.New("request not found")

	// ErrInvalidTransition is returned when an approval, rejection or
	// cancellation is attempted from a state that forbids it.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrInsufficientBalance is returned when a submission asks for more
	// days than the entitlement ledger has available.
	ErrInsufficientBalance = errors.New("insufficient entitlement balance")

	// ErrConflict is returned when a concurrent update won the
	// compare-and-swap on a request row.
	ErrConflict = errors.New("request was modified concurrently")

	// ErrReasonRequired is returned when a rejection carries no reason.
	ErrReasonRequired = errors.New("rejection reason is required")

	// ErrEmptyRange is returned when a submitted range contains no
	// chargeable days.
	ErrEmptyRange = errors.New("date range contains no working days")

	// ErrCalendarUnavailable wraps a calendar failure during the one
	// operation where it is fatal: placeholder creation at submission.
	ErrCalendarUnavailable = errors.New("calendar service unavailable")
)

// InsufficientBalanceError carries the numbers behind an ErrInsufficientBalance.
type InsufficientBalanceError struct {
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("you only have %s days left, requested %s",
		e.Available.StringFixed(1), e.Requested.StringFixed(1))
}

func (e *InsufficientBalanceError) Unwrap() error {
	return ErrInsufficientBalance
}
