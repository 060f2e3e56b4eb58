package holiday

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Request is a single leave request row. The linked calendar event is a
// derived, best-effort mirror; the row is the source of truth.
type Request struct {
	ID                string
	UserID            string
	RequestDate       time.Time
	StartDate         time.Time
	EndDate           time.Time
	NumberOfDays      decimal.Decimal
	AccruedHoursUsed  decimal.Decimal
	Status            Status
	ManagerApprovedAt *time.Time
	CFOApprovedAt     *time.Time
	RejectionReason   string
	CalendarEventID   string
	CalendarID        string

	// Version is the optimistic-concurrency token. Every update compares
	// and swaps it; a mismatch surfaces as ErrConflict instead of a
	// silent lost update.
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AvailabilityStatus is the lifecycle of a contractor availability block.
type AvailabilityStatus string

const (
	AvailabilityActive    AvailabilityStatus = "Active"
	AvailabilityCancelled AvailabilityStatus = "Cancelled"
)

// AvailabilityBlock marks a contractor's unavailability window. Same
// creation/cancellation shape as Request but with no approval gate.
type AvailabilityBlock struct {
	ID              string
	UserID          string
	StartDate       time.Time
	EndDate         time.Time
	Reason          string
	Status          AvailabilityStatus
	CalendarEventID string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Store is the persistence contract for the leave workflow.
// Single-record lookups return (nil, nil) when nothing matches.
// UpdateRequest must compare-and-swap on Request.Version and return
// ErrConflict on mismatch.
type Store interface {
	SaveRequest(ctx context.Context, r Request) error
	GetRequest(ctx context.Context, id string) (*Request, error)
	UpdateRequest(ctx context.Context, r Request) error
	ListRequests(ctx context.Context) ([]Request, error)
	ListRequestsByUser(ctx context.Context, userID string) ([]Request, error)

	SaveAvailability(ctx context.Context, b AvailabilityBlock) error
	GetAvailability(ctx context.Context, id string) (*AvailabilityBlock, error)
	UpdateAvailability(ctx context.Context, b AvailabilityBlock) error
	ListAvailabilityByUser(ctx context.Context, userID string) ([]AvailabilityBlock, error)
	ListAvailability(ctx context.Context) ([]AvailabilityBlock, error)

	// DeductAccruedHours subtracts from the user's stored entitlement
	// balance, floored at zero.
	DeductAccruedHours(ctx context.Context, userID string, hours decimal.Decimal) error
}
