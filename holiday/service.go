/*
service.go - Leave workflow orchestration

PURPOSE:
  Wires the pieces of the lifecycle together: directory lookup, entitlement
  check, working-day calculation, persistence, calendar mirroring and
  notifications. The authenticated principal is an explicit argument to
  every operation; nothing here reads ambient session state.

SIDE EFFECTS PER TRANSITION:
  -> Approved:            debit entitlement, replace mirrored event, notify requester
  -> PendingCFOApproval:  notify the CFO, notify requester
  -> Rejected/Cancelled:  best-effort delete mirrored event, notify requester

CONCURRENCY:
  Updates go through the store's compare-and-swap; the ledger debit and the
  notifications run only after the CAS succeeds, so two racing approvals
  resolve to one winner and one ErrConflict rather than a double debit.
*/
package holiday

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/opsdesk/staffcentre/calendar"
	"github.com/opsdesk/staffcentre/notify"
	"github.com/opsdesk/staffcentre/staffdir"
	"github.com/shopspring/decimal"
)

const defaultReason = "Annual Leave"

// Service orchestrates the leave request lifecycle.
type Service struct {
	store    Store
	dir      *staffdir.Directory
	sync     *calendar.Synchronizer
	notifier notify.Notifier
}

func NewService(store Store, dir *staffdir.Directory, sync *calendar.Synchronizer, notifier notify.Notifier) *Service {
	return &Service{store: store, dir: dir, sync: sync, notifier: notifier}
}

// =============================================================================
// SUBMISSION
// =============================================================================

// SubmitInput is a new leave request.
type SubmitInput struct {
	StartDate time.Time
	EndDate   time.Time
	StartHalf bool
	EndHalf   bool
	Reason    string
}

// Submit validates entitlement, creates the placeholder calendar event and
// persists the request in its role-dependent initial state. A calendar
// failure aborts the submission: the row has not been written yet.
func (s *Service) Submit(ctx context.Context, principal *staffdir.User, in SubmitInput) (*Request, error) {
	days := RequestedDays(in.StartDate, in.EndDate, in.StartHalf, in.EndHalf)
	if !days.IsPositive() {
		return nil, ErrEmptyRange
	}

	existing, err := s.store.ListRequestsByUser(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	available := AvailableDays(principal.AccruedHours, UsedDays(existing))
	if days.GreaterThan(available) {
		return nil, &InsufficientBalanceError{Available: available, Requested: days}
	}

	reason := in.Reason
	if reason == "" {
		reason = defaultReason
	}
	status := InitialStatus(principal.Role)

	eventID, err := s.sync.CreateHolidayEvent(ctx, calendar.EventInput{
		Title:       "Holiday: " + principal.FullName(),
		Description: fmt.Sprintf("Pending holiday for %s\nReason: %s", principal.FullName(), reason),
		Start:       in.StartDate,
		End:         in.EndDate,
		Metadata: calendar.Metadata{
			UserID:       principal.ID,
			UserEmail:    principal.Email,
			Status:       string(status),
			Reason:       reason,
			NumberOfDays: days.String(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCalendarUnavailable, err)
	}

	now := time.Now().UTC()
	req := Request{
		ID:               staffdir.NewID("HREQ"),
		UserID:           principal.ID,
		RequestDate:      now,
		StartDate:        in.StartDate,
		EndDate:          in.EndDate,
		NumberOfDays:     days,
		AccruedHoursUsed: HoursForDays(days),
		Status:           status,
		CalendarEventID:  eventID,
		CalendarID:       s.sync.HolidayCalendarID(),
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.SaveRequest(ctx, req); err != nil {
		// The placeholder event is now orphaned; the audit will find it.
		log.Printf("[Holiday] request save failed after event %s was created: %v", eventID, err)
		return nil, err
	}

	if manager, err := s.dir.ManagerFor(ctx, principal.Department); err == nil {
		s.send(ctx, notify.Message{
			To:      manager.Email,
			Subject: "Holiday Request Submitted",
			Body: fmt.Sprintf("%s has submitted a holiday request.\n\nFrom: %s\nTo: %s\nDays: %s\n\nPlease review in the system.",
				principal.FullName(), in.StartDate.Format("2006-01-02"), in.EndDate.Format("2006-01-02"), days.StringFixed(1)),
		})
	}

	return &req, nil
}

// =============================================================================
// APPROVAL / REJECTION / CANCELLATION
// =============================================================================

// Approve advances a request one approval step on behalf of the principal.
func (s *Service) Approve(ctx context.Context, principal *staffdir.User, requestID string) (*Request, error) {
	if !principal.CanApproveRequests() {
		return nil, staffdir.ErrUnauthorized
	}
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	submitter, err := s.dir.ByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	next, err := NextStatus(req.Status, principal.Role, submitter.Role)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	req.Status = next
	switch principal.Role {
	case staffdir.RoleManager:
		req.ManagerApprovedAt = &now
	case staffdir.RoleCFO:
		req.CFOApprovedAt = &now
	}

	oldEventID := req.CalendarEventID
	var newEventID string
	if next == StatusApproved {
		// Replace the placeholder with the final event. Best-effort: a
		// calendar failure must not block the approval itself.
		newEventID, err = s.sync.CreateHolidayEvent(ctx, calendar.EventInput{
			Title:       "Holiday: " + submitter.FullName(),
			Description: fmt.Sprintf("Holiday for %s (%s)", submitter.FullName(), submitter.Email),
			Start:       req.StartDate,
			End:         req.EndDate,
			Metadata: calendar.Metadata{
				UserID:       submitter.ID,
				UserEmail:    submitter.Email,
				Status:       string(StatusApproved),
				NumberOfDays: req.NumberOfDays.String(),
			},
		})
		if err != nil {
			log.Printf("[Holiday] approved event creation failed for %s: %v", req.ID, err)
		} else {
			req.CalendarEventID = newEventID
		}
	}

	if err := s.store.UpdateRequest(ctx, *req); err != nil {
		// Lost the race; remove the event we optimistically created.
		if newEventID != "" {
			s.sync.DeleteHolidayEvent(ctx, newEventID)
		}
		return nil, err
	}

	if next == StatusApproved {
		if newEventID != "" {
			s.sync.DeleteHolidayEvent(ctx, oldEventID)
		}
		if err := s.store.DeductAccruedHours(ctx, req.UserID, req.AccruedHoursUsed); err != nil {
			// The status update already committed: the request stands
			// Approved while the ledger still carries the hours.
			log.Printf("[Holiday] request %s approved but the %s-hour debit for user %s failed: %v",
				req.ID, req.AccruedHoursUsed, req.UserID, err)
			return nil, err
		}
	}

	if next == StatusPendingCFO {
		if cfo, err := s.dir.CFO(ctx); err == nil {
			s.send(ctx, notify.Message{
				To:      cfo.Email,
				Subject: "Holiday Request Awaiting CFO Approval",
				Body: fmt.Sprintf("Request %s from %s has been approved by the Manager and awaits your review.",
					req.ID, submitter.FullName()),
			})
		}
	}
	s.send(ctx, notify.Message{
		To:      submitter.Email,
		Subject: "Holiday Approved",
		Body:    fmt.Sprintf("Your holiday has been approved (%s).", next),
	})

	return req, nil
}

// Reject refuses a pending request, recording the mandatory reason.
func (s *Service) Reject(ctx context.Context, principal *staffdir.User, requestID, reason string) (*Request, error) {
	if !principal.CanApproveRequests() {
		return nil, staffdir.ErrUnauthorized
	}
	if reason == "" {
		return nil, ErrReasonRequired
	}
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !CanReject(req.Status, principal.Role) {
		return nil, fmt.Errorf("%w: cannot reject %s as %s", ErrInvalidTransition, req.Status, principal.Role)
	}

	now := time.Now().UTC()
	req.Status = StatusRejected
	req.RejectionReason = reason
	switch principal.Role {
	case staffdir.RoleManager:
		req.ManagerApprovedAt = &now
	case staffdir.RoleCFO:
		req.CFOApprovedAt = &now
	}
	oldEventID := req.CalendarEventID
	req.CalendarEventID = ""

	if err := s.store.UpdateRequest(ctx, *req); err != nil {
		return nil, err
	}

	s.sync.DeleteHolidayEvent(ctx, oldEventID)

	if submitter, err := s.dir.ByID(ctx, req.UserID); err == nil {
		s.send(ctx, notify.Message{
			To:      submitter.Email,
			Subject: "Holiday Rejected",
			Body:    "Reason: " + reason,
		})
	}

	return req, nil
}

// Cancel withdraws the principal's own request while it is still pending.
func (s *Service) Cancel(ctx context.Context, principal *staffdir.User, requestID string) (*Request, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.UserID != principal.ID {
		// Do not leak other users' requests.
		return nil, fmt.Errorf("%w: %s", ErrRequestNotFound, requestID)
	}
	if !CanCancel(req.Status) {
		return nil, fmt.Errorf("%w: cannot cancel after final decision", ErrInvalidTransition)
	}

	req.Status = StatusCancelled
	oldEventID := req.CalendarEventID
	req.CalendarEventID = ""

	if err := s.store.UpdateRequest(ctx, *req); err != nil {
		return nil, err
	}

	s.sync.DeleteHolidayEvent(ctx, oldEventID)
	s.send(ctx, notify.Message{
		To:      principal.Email,
		Subject: "Holiday Request Cancelled",
		Body:    fmt.Sprintf("Your request %s has been cancelled.", req.ID),
	})

	return req, nil
}

// =============================================================================
// QUERIES
// =============================================================================

// MySummary is the owner's view of their requests and balance.
type MySummary struct {
	Requests      []Request
	DaysTaken     decimal.Decimal
	DaysPending   decimal.Decimal
	DaysRemaining decimal.Decimal
}

// Mine returns the principal's requests with the derived balance numbers.
func (s *Service) Mine(ctx context.Context, principal *staffdir.User) (*MySummary, error) {
	requests, err := s.store.ListRequestsByUser(ctx, principal.ID)
	if err != nil {
		return nil, err
	}

	taken := decimal.Zero
	pending := decimal.Zero
	for i := range requests {
		switch {
		case requests[i].Status == StatusApproved:
			taken = taken.Add(requests[i].NumberOfDays)
		case requests[i].Status.Pending():
			pending = pending.Add(requests[i].NumberOfDays)
		}
	}

	return &MySummary{
		Requests:      requests,
		DaysTaken:     taken,
		DaysPending:   pending,
		DaysRemaining: AvailableDays(principal.AccruedHours, UsedDays(requests)),
	}, nil
}

// TeamEntry is one request joined with its owner's directory attributes.
type TeamEntry struct {
	Request
	FullName string
	Email    string
}

// PendingForManager returns the pending requests of the manager's own
// department.
func (s *Service) PendingForManager(ctx context.Context, principal *staffdir.User) ([]TeamEntry, error) {
	if principal.Role != staffdir.RoleManager {
		return nil, staffdir.ErrUnauthorized
	}
	return s.teamEntries(ctx, principal.Department, true)
}

// TeamCalendar returns every request of the manager's department,
// regardless of status.
func (s *Service) TeamCalendar(ctx context.Context, principal *staffdir.User) ([]TeamEntry, error) {
	if principal.Role != staffdir.RoleManager {
		return nil, staffdir.ErrUnauthorized
	}
	return s.teamEntries(ctx, principal.Department, false)
}

func (s *Service) teamEntries(ctx context.Context, dept staffdir.Department, pendingOnly bool) ([]TeamEntry, error) {
	requests, err := s.store.ListRequests(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.dir.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*staffdir.User, len(users))
	for i := range users {
		byID[users[i].ID] = &users[i]
	}

	var out []TeamEntry
	for i := range requests {
		owner, ok := byID[requests[i].UserID]
		if !ok || owner.Department != dept {
			continue
		}
		if pendingOnly && !requests[i].Status.Pending() {
			continue
		}
		out = append(out, TeamEntry{
			Request:  requests[i],
			FullName: owner.FullName(),
			Email:    owner.Email,
		})
	}
	return out, nil
}

// =============================================================================
// CONTRACTOR AVAILABILITY
// =============================================================================

// AvailabilityInput is a new unavailability block.
type AvailabilityInput struct {
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

// SubmitAvailability records a contractor's unavailability window and its
// mirrored calendar event. Permanent staff use the leave workflow instead.
func (s *Service) SubmitAvailability(ctx context.Context, principal *staffdir.User, in AvailabilityInput) (*AvailabilityBlock, error) {
	if principal.Permanent {
		return nil, staffdir.ErrUnauthorized
	}
	if dateOnly(in.StartDate).After(dateOnly(in.EndDate)) {
		return nil, ErrEmptyRange
	}

	reason := in.Reason
	if reason == "" {
		reason = "Unavailable"
	}
	eventID, err := s.sync.CreateAvailabilityEvent(ctx, calendar.EventInput{
		Title:       reason,
		Description: fmt.Sprintf("Availability block for %s", principal.FullName()),
		Start:       in.StartDate,
		End:         in.EndDate,
		Metadata: calendar.Metadata{
			UserID:    principal.ID,
			UserEmail: principal.Email,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCalendarUnavailable, err)
	}

	now := time.Now().UTC()
	block := AvailabilityBlock{
		ID:              staffdir.NewID("AVL"),
		UserID:          principal.ID,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		Reason:          reason,
		Status:          AvailabilityActive,
		CalendarEventID: eventID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.SaveAvailability(ctx, block); err != nil {
		log.Printf("[Holiday] availability save failed after event %s was created: %v", eventID, err)
		return nil, err
	}
	return &block, nil
}

// CancelAvailability withdraws the principal's own block.
func (s *Service) CancelAvailability(ctx context.Context, principal *staffdir.User, blockID string) (*AvailabilityBlock, error) {
	block, err := s.store.GetAvailability(ctx, blockID)
	if err != nil {
		return nil, err
	}
	if block == nil || block.UserID != principal.ID {
		return nil, fmt.Errorf("%w: %s", ErrRequestNotFound, blockID)
	}
	if block.Status == AvailabilityCancelled {
		return nil, fmt.Errorf("%w: already cancelled", ErrInvalidTransition)
	}

	block.Status = AvailabilityCancelled
	oldEventID := block.CalendarEventID
	block.CalendarEventID = ""
	block.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateAvailability(ctx, *block); err != nil {
		return nil, err
	}
	s.sync.DeleteAvailabilityEvent(ctx, oldEventID)
	return block, nil
}

// MyAvailability returns the principal's non-cancelled blocks.
func (s *Service) MyAvailability(ctx context.Context, principal *staffdir.User) ([]AvailabilityBlock, error) {
	blocks, err := s.store.ListAvailabilityByUser(ctx, principal.ID)
	if err != nil {
		return nil, err
	}
	out := blocks[:0]
	for _, b := range blocks {
		if b.Status != AvailabilityCancelled {
			out = append(out, b)
		}
	}
	return out, nil
}

// =============================================================================
// CALENDAR AUDITS
// =============================================================================

// AuditHolidays cross-references the request store against the staff
// holiday calendar. Detection only: orphans and missing events are
// reported, nothing is repaired.
func (s *Service) AuditHolidays(ctx context.Context, from, to time.Time) (*calendar.AuditReport, error) {
	requests, err := s.store.ListRequests(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]calendar.RecordRef, 0, len(requests))
	for i := range requests {
		refs = append(refs, calendar.RecordRef{
			RecordID:      requests[i].ID,
			EventID:       requests[i].CalendarEventID,
			RequiresEvent: requests[i].Status == StatusApproved,
		})
	}
	return s.sync.Audit(ctx, s.sync.HolidayCalendarID(), refs, from, to, false)
}

// AuditAvailability does the same for the contractor calendar, deleting
// orphaned events outright — that calendar has no other consumers.
func (s *Service) AuditAvailability(ctx context.Context, from, to time.Time) (*calendar.AuditReport, error) {
	blocks, err := s.store.ListAvailability(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]calendar.RecordRef, 0, len(blocks))
	for i := range blocks {
		refs = append(refs, calendar.RecordRef{
			RecordID:      blocks[i].ID,
			EventID:       blocks[i].CalendarEventID,
			RequiresEvent: blocks[i].Status == AvailabilityActive,
		})
	}
	return s.sync.Audit(ctx, s.sync.AvailabilityCalendarID(), refs, from, to, true)
}

// =============================================================================
// HELPERS
// =============================================================================

func (s *Service) getRequest(ctx context.Context, id string) (*Request, error) {
	req, err := s.store.GetRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: %s", ErrRequestNotFound, id)
	}
	return req, nil
}

// send delivers a notification, logging and swallowing failures.
func (s *Service) send(ctx context.Context, msg notify.Message) {
	if err := s.notifier.Send(ctx, msg); err != nil {
		log.Printf("[Holiday] notification to %s failed: %v", msg.To, err)
	}
}
