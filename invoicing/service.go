/*
service.go - Invoice operations

PURPOSE:
  Manual invoices, draft generation from completed shifts, and the
  Submitted -> ManagerApproved -> CFOApproved -> Paid approval chain.
  Manager approval is scoped to the manager's own department.
*/
package invoicing

import (
	"context"
	"fmt"
	"time"

	"github.com/opsdesk/staffcentre/shifts"
	"github.com/opsdesk/staffcentre/staffdir"
	"github.com/shopspring/decimal"
)

// Service orchestrates invoice workflows.
type Service struct {
	store Store
	dir   *staffdir.Directory
}

func NewService(store Store, dir *staffdir.Directory) *Service {
	return &Service{store: store, dir: dir}
}

// =============================================================================
// CREATION
// =============================================================================

// ManualInput is a user-entered invoice (CPD, expense, course).
type ManualInput struct {
	Type        Type
	TotalAmount decimal.Decimal
	Description string
}

// CreateManual records a Draft invoice owned by the principal.
func (s *Service) CreateManual(ctx context.Context, principal *staffdir.User, in ManualInput) (*Invoice, error) {
	now := time.Now().UTC()
	inv := Invoice{
		ID:          staffdir.NewID("INV"),
		UserID:      principal.ID,
		InvoiceDate: now,
		Type:        in.Type,
		TotalAmount: in.TotalAmount,
		Status:      StatusDraft,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.SaveInvoice(ctx, inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// DraftFromShift builds a ShiftWork draft from a completed shift:
// TotalAmount = HourlyRate x ActualHours rounded to 2dp, with a single line
// item. Refuses shifts that already have a draft, assignees without an
// hourly rate, and non-positive hours. Satisfies shifts.InvoiceDrafter.
func (s *Service) DraftFromShift(ctx context.Context, shift *shifts.Shift) (string, error) {
	if shift.DraftGenerated {
		return "", ErrAlreadyDrafted
	}
	if !shift.ActualHours.IsPositive() {
		return "", ErrInvalidHours
	}
	worker, err := s.dir.ByID(ctx, shift.AssignedUserID)
	if err != nil {
		return "", err
	}
	if !worker.HourlyRate.IsPositive() {
		return "", ErrNoHourlyRate
	}

	total := worker.HourlyRate.Mul(shift.ActualHours).Round(2)
	now := time.Now().UTC()
	inv := Invoice{
		ID:              staffdir.NewID("INV"),
		UserID:          worker.ID,
		InvoiceDate:     now,
		Type:            TypeShiftWork,
		TotalAmount:     total,
		Status:          StatusDraft,
		RelatedShiftIDs: shift.ID,
		Description:     "Auto-generated from completed shift",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.SaveInvoice(ctx, inv); err != nil {
		return "", err
	}

	desc := shift.Description
	if desc == "" {
		desc = "Shift Work"
	}
	item := Item{
		ID:          staffdir.NewID("ITM"),
		InvoiceID:   inv.ID,
		Description: desc,
		Quantity:    shift.ActualHours,
		UnitPrice:   worker.HourlyRate,
		LineTotal:   total,
	}
	if err := s.store.SaveItem(ctx, item); err != nil {
		return "", err
	}
	return inv.ID, nil
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Submit moves the principal's own Draft into the approval queue.
func (s *Service) Submit(ctx context.Context, principal *staffdir.User, invoiceID string) (*Invoice, error) {
	inv, err := s.getOwned(ctx, principal, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status != StatusDraft {
		return nil, fmt.Errorf("%w: cannot submit from %s", ErrInvalidTransition, inv.Status)
	}
	inv.Status = StatusSubmitted
	inv.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateInvoice(ctx, *inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Approve advances an invoice one step. Managers approve Submitted invoices
// from their own department; the CFO approves ManagerApproved invoices.
func (s *Service) Approve(ctx context.Context, principal *staffdir.User, invoiceID string) (*Invoice, error) {
	inv, err := s.get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	switch principal.Role {
	case staffdir.RoleManager:
		if inv.Status != StatusSubmitted {
			return nil, fmt.Errorf("%w: manager cannot approve %s", ErrInvalidTransition, inv.Status)
		}
		if err := s.checkDepartment(ctx, principal, inv.UserID); err != nil {
			return nil, err
		}
		inv.Status = StatusManagerApproved
		inv.ManagerApprovedAt = &now
	case staffdir.RoleCFO:
		if inv.Status != StatusManagerApproved {
			return nil, fmt.Errorf("%w: CFO cannot approve %s", ErrInvalidTransition, inv.Status)
		}
		inv.Status = StatusCFOApproved
		inv.CFOApprovedAt = &now
	default:
		return nil, staffdir.ErrUnauthorized
	}

	inv.UpdatedAt = now
	if err := s.store.UpdateInvoice(ctx, *inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Reject refuses an invoice, recording the mandatory reason.
func (s *Service) Reject(ctx context.Context, principal *staffdir.User, invoiceID, reason string) (*Invoice, error) {
	if reason == "" {
		return nil, ErrReasonRequired
	}
	inv, err := s.get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}

	switch principal.Role {
	case staffdir.RoleManager:
		if inv.Status != StatusSubmitted {
			return nil, fmt.Errorf("%w: manager cannot reject %s", ErrInvalidTransition, inv.Status)
		}
		if err := s.checkDepartment(ctx, principal, inv.UserID); err != nil {
			return nil, err
		}
	case staffdir.RoleCFO:
		if inv.Status != StatusManagerApproved && inv.Status != StatusCFOApproved {
			return nil, fmt.Errorf("%w: CFO cannot reject %s", ErrInvalidTransition, inv.Status)
		}
	default:
		return nil, staffdir.ErrUnauthorized
	}

	inv.Status = StatusRejected
	inv.RejectionReason = reason
	inv.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateInvoice(ctx, *inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// MarkPaid records payment of a fully approved invoice. CFO only.
func (s *Service) MarkPaid(ctx context.Context, principal *staffdir.User, invoiceID string) (*Invoice, error) {
	if principal.Role != staffdir.RoleCFO {
		return nil, staffdir.ErrUnauthorized
	}
	inv, err := s.get(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if inv.Status != StatusCFOApproved {
		return nil, fmt.Errorf("%w: cannot pay %s", ErrInvalidTransition, inv.Status)
	}
	now := time.Now().UTC()
	inv.Status = StatusPaid
	inv.PaymentDate = &now
	inv.UpdatedAt = now
	if err := s.store.UpdateInvoice(ctx, *inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Delete removes an invoice outright. Administrator escape hatch.
func (s *Service) Delete(ctx context.Context, principal *staffdir.User, invoiceID string) error {
	if principal.Role != staffdir.RoleAdministrator {
		return staffdir.ErrUnauthorized
	}
	inv, err := s.get(ctx, invoiceID)
	if err != nil {
		return err
	}
	return s.store.DeleteInvoice(ctx, inv.ID)
}

// =============================================================================
// QUERIES
// =============================================================================

// Mine returns the principal's invoices.
func (s *Service) Mine(ctx context.Context, principal *staffdir.User) ([]Invoice, error) {
	return s.store.ListInvoicesByUser(ctx, principal.ID)
}

// Items returns the line items of one invoice.
func (s *Service) Items(ctx context.Context, invoiceID string) ([]Item, error) {
	return s.store.ListItems(ctx, invoiceID)
}

// PendingRow is one invoice awaiting a manager, joined with the owner's name.
type PendingRow struct {
	Invoice
	EmployeeName string
}

// PendingForManager returns Submitted invoices from the manager's own
// department.
func (s *Service) PendingForManager(ctx context.Context, principal *staffdir.User) ([]PendingRow, error) {
	if principal.Role != staffdir.RoleManager {
		return nil, staffdir.ErrUnauthorized
	}

	users, err := s.dir.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string)
	for i := range users {
		if users[i].Department == principal.Department {
			names[users[i].ID] = users[i].FullName()
		}
	}

	invoices, err := s.store.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}
	var out []PendingRow
	for i := range invoices {
		name, inDept := names[invoices[i].UserID]
		if invoices[i].Status != StatusSubmitted || !inDept {
			continue
		}
		out = append(out, PendingRow{Invoice: invoices[i], EmployeeName: name})
	}
	return out, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Service) get(ctx context.Context, id string) (*Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: %s", ErrInvoiceNotFound, id)
	}
	return inv, nil
}

func (s *Service) getOwned(ctx context.Context, principal *staffdir.User, id string) (*Invoice, error) {
	inv, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.UserID != principal.ID {
		return nil, fmt.Errorf("%w: %s", ErrInvoiceNotFound, id)
	}
	return inv, nil
}

func (s *Service) checkDepartment(ctx context.Context, manager *staffdir.User, ownerID string) error {
	owner, err := s.dir.ByID(ctx, ownerID)
	if err != nil {
		return err
	}
	if owner.Department != manager.Department {
		return staffdir.ErrUnauthorized
	}
	return nil
}
