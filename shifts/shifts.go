/*
Package shifts manages the offer, accept and complete lifecycle of work
shifts. Shifts are offered department-wide; any active user may accept an
unassigned offer. Completion records the hours actually worked, which feed
draft invoice generation downstream.
*/
package shifts

import (
	"context"
	"errors"
	"time"

	"github.com/opsdesk/staffcentre/staffdir"
	"github.com/shopspring/decimal"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrShiftNotFound    = errors.New("shift not found")
	ErrShiftUnavailable = errors.New("shift not found or already accepted")
	ErrNotAssignee      = errors.New("shift not assigned to user")
	ErrInvalidHours     = errors.New("actual hours must be positive")
)

// =============================================================================
// TYPES
// =============================================================================

// Status is the lifecycle state of a shift.
type Status string

const (
	StatusOffered   Status = "Offered"
	StatusAccepted  Status = "Accepted"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

// Shift is one offered unit of work.
type Shift struct {
	ID                 string
	Department         staffdir.Department
	ShiftDate          time.Time
	StartTime          string // "HH:MM" wall clock, informational
	EndTime            string
	ActualHours        decimal.Decimal
	Description        string
	Status             Status
	AssignedUserID     string
	AcceptedAt         *time.Time
	CompletedAt        *time.Time
	DraftGenerated     bool // set once a draft invoice exists for this shift
	GeneratedInvoiceID string
	CreatedByUserID    string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// =============================================================================
// STORE
// =============================================================================

// Store is the persistence contract. Get returns (nil, nil) when the shift
// does not exist.
type Store interface {
	SaveShift(ctx context.Context, s Shift) error
	GetShift(ctx context.Context, id string) (*Shift, error)
	UpdateShift(ctx context.Context, s Shift) error
	ListShifts(ctx context.Context) ([]Shift, error)
	ListShiftsByUser(ctx context.Context, userID string) ([]Shift, error)
}
