/*
service.go - Shift lifecycle operations

PURPOSE:
  Offer, accept and complete shifts. Completion hands the shift to the
  InvoiceDrafter exactly once; the DraftGenerated flag on the row is the
  guard, so a retried completion never produces a second invoice.
*/
package shifts

import (
	"context"
	"fmt"
	"time"

	"github.com/opsdesk/staffcentre/staffdir"
	"github.com/shopspring/decimal"
)

// InvoiceDrafter turns a completed shift into a draft invoice and returns
// the new invoice ID. Implemented by the invoicing package.
type InvoiceDrafter interface {
	DraftFromShift(ctx context.Context, shift *Shift) (string, error)
}

// Service orchestrates the shift lifecycle.
type Service struct {
	store   Store
	drafter InvoiceDrafter
}

func NewService(store Store, drafter InvoiceDrafter) *Service {
	return &Service{store: store, drafter: drafter}
}

// CreateInput is a new shift offer.
type CreateInput struct {
	Department  staffdir.Department
	ShiftDate   time.Time
	StartTime   string
	EndTime     string
	Description string
}

// Create publishes a new offer. Managers and administrators only.
func (s *Service) Create(ctx context.Context, principal *staffdir.User, in CreateInput) (*Shift, error) {
	if principal.Role != staffdir.RoleManager && principal.Role != staffdir.RoleAdministrator {
		return nil, staffdir.ErrUnauthorized
	}

	now := time.Now().UTC()
	shift := Shift{
		ID:              staffdir.NewID("SHF"),
		Department:      in.Department,
		ShiftDate:       in.ShiftDate,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		Description:     in.Description,
		Status:          StatusOffered,
		CreatedByUserID: principal.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.SaveShift(ctx, shift); err != nil {
		return nil, err
	}
	return &shift, nil
}

// Available returns open offers: Offered status with no assignee.
func (s *Service) Available(ctx context.Context) ([]Shift, error) {
	all, err := s.store.ListShifts(ctx)
	if err != nil {
		return nil, err
	}
	var out []Shift
	for i := range all {
		if all[i].Status == StatusOffered && all[i].AssignedUserID == "" {
			out = append(out, all[i])
		}
	}
	return out, nil
}

// Mine returns every shift assigned to the principal, any status.
func (s *Service) Mine(ctx context.Context, principal *staffdir.User) ([]Shift, error) {
	return s.store.ListShiftsByUser(ctx, principal.ID)
}

// Accept assigns an open offer to the principal. Anything other than an
// unassigned Offered shift is refused; first writer wins.
func (s *Service) Accept(ctx context.Context, principal *staffdir.User, shiftID string) (*Shift, error) {
	shift, err := s.store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift == nil || shift.Status != StatusOffered || shift.AssignedUserID != "" {
		return nil, ErrShiftUnavailable
	}

	now := time.Now().UTC()
	shift.Status = StatusAccepted
	shift.AssignedUserID = principal.ID
	shift.AcceptedAt = &now
	shift.UpdatedAt = now
	if err := s.store.UpdateShift(ctx, *shift); err != nil {
		return nil, err
	}
	return shift, nil
}

// Complete records the hours actually worked and generates the draft
// invoice. Only the assignee may complete their own accepted shift.
func (s *Service) Complete(ctx context.Context, principal *staffdir.User, shiftID string, actualHours decimal.Decimal) (*Shift, error) {
	shift, err := s.store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, fmt.Errorf("%w: %s", ErrShiftNotFound, shiftID)
	}
	if shift.AssignedUserID != principal.ID {
		return nil, ErrNotAssignee
	}
	if shift.Status != StatusAccepted {
		return nil, fmt.Errorf("%w: status is %s", ErrShiftUnavailable, shift.Status)
	}
	if !actualHours.IsPositive() {
		return nil, ErrInvalidHours
	}

	now := time.Now().UTC()
	shift.Status = StatusCompleted
	shift.ActualHours = actualHours
	shift.CompletedAt = &now
	shift.UpdatedAt = now
	if err := s.store.UpdateShift(ctx, *shift); err != nil {
		return nil, err
	}

	if s.drafter != nil && !shift.DraftGenerated {
		invoiceID, err := s.drafter.DraftFromShift(ctx, shift)
		if err != nil {
			// The shift stays Completed without a draft; the owner can
			// raise a manual invoice instead.
			return shift, err
		}
		shift.DraftGenerated = true
		shift.GeneratedInvoiceID = invoiceID
		shift.UpdatedAt = time.Now().UTC()
		if err := s.store.UpdateShift(ctx, *shift); err != nil {
			return nil, err
		}
	}

	return shift, nil
}

// Cancel withdraws an offer before anyone accepts it. Managers and
// administrators only.
func (s *Service) Cancel(ctx context.Context, principal *staffdir.User, shiftID string) (*Shift, error) {
	if principal.Role != staffdir.RoleManager && principal.Role != staffdir.RoleAdministrator {
		return nil, staffdir.ErrUnauthorized
	}
	shift, err := s.store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if shift == nil {
		return nil, fmt.Errorf("%w: %s", ErrShiftNotFound, shiftID)
	}
	if shift.Status != StatusOffered {
		return nil, fmt.Errorf("%w: status is %s", ErrShiftUnavailable, shift.Status)
	}

	shift.Status = StatusCancelled
	shift.UpdatedAt = time.Now().UTC()
	if err := s.store.UpdateShift(ctx, *shift); err != nil {
		return nil, err
	}
	return shift, nil
}
