/*
Package invoicing handles contractor and staff invoices: manual creation,
automatic drafts from completed shifts, and the two-step approval chain
ending in payment.

Lifecycle:

	Draft -> Submitted -> ManagerApproved -> CFOApproved -> Paid

A manager rejects from Submitted, the CFO from ManagerApproved or
CFOApproved. CarriedOver marks an invoice rolled into the next period.
*/
package invoicing

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrInvoiceNotFound   = errors.New("invoice not found")
	ErrAlreadyDrafted    = errors.New("invoice already generated for this shift")
	ErrNoHourlyRate      = errors.New("user has no hourly rate defined")
	ErrInvalidHours      = errors.New("invalid actual hours worked")
	ErrInvalidTransition = errors.New("invalid invoice transition")
	ErrReasonRequired    = errors.New("rejection reason is required")
)

// =============================================================================
// TYPES
// =============================================================================

// Type classifies what an invoice bills for.
type Type string

const (
	TypeShiftWork Type = "ShiftWork"
	TypeCPD       Type = "CPD"
	TypeExpense   Type = "Expense"
	TypeCourse    Type = "Course"
)

// Status is the approval state of an invoice.
type Status string

const (
	StatusDraft           Status = "Draft"
	StatusSubmitted       Status = "Submitted"
	StatusManagerApproved Status = "ManagerApproved"
	StatusCFOApproved     Status = "CFOApproved"
	StatusRejected        Status = "Rejected"
	StatusPaid            Status = "Paid"
	StatusCarriedOver     Status = "CarriedOver"
)

// Invoice is the header row; line detail lives in Items.
type Invoice struct {
	ID                string
	UserID            string
	InvoiceDate       time.Time
	Type              Type
	TotalAmount       decimal.Decimal
	Status            Status
	RelatedShiftIDs   string // comma-separated shift IDs for ShiftWork drafts
	Description       string
	ManagerApprovedAt *time.Time
	CFOApprovedAt     *time.Time
	PaymentDate       *time.Time
	RejectionReason   string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Item is one invoice line.
type Item struct {
	ID          string
	InvoiceID   string
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// =============================================================================
// STORE
// =============================================================================

// Store is the persistence contract. GetInvoice returns (nil, nil) when the
// invoice does not exist.
type Store interface {
	SaveInvoice(ctx context.Context, inv Invoice) error
	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	UpdateInvoice(ctx context.Context, inv Invoice) error
	DeleteInvoice(ctx context.Context, id string) error
	ListInvoices(ctx context.Context) ([]Invoice, error)
	ListInvoicesByUser(ctx context.Context, userID string) ([]Invoice, error)
	SaveItem(ctx context.Context, item Item) error
	ListItems(ctx context.Context, invoiceID string) ([]Item, error)
}
