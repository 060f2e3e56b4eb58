package holiday_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opsdesk/staffcentre/calendar"
	"github.com/opsdesk/staffcentre/holiday"
	"github.com/opsdesk/staffcentre/notify"
	"github.com/opsdesk/staffcentre/staffdir"
	"github.com/opsdesk/staffcentre/store/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	holidayCal      = "cal-holidays"
	availabilityCal = "cal-availability"
)

type fixture struct {
	svc      *holiday.Service
	store    *sqlite.Store
	dir      *staffdir.Directory
	cal      *calendar.MemoryClient
	recorder *notify.Recorder

	employee *staffdir.User
	manager  *staffdir.User
	cfo      *staffdir.User
}

// newFixture wires the service against an in-memory store and calendar and
// seeds one employee, one manager (same department) and a CFO.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	cal := calendar.NewMemoryClient()
	sync := calendar.NewSynchronizer(cal, holidayCal, availabilityCal)
	recorder := &notify.Recorder{}
	dir := staffdir.NewDirectory(store)
	svc := holiday.NewService(store, dir, sync, recorder)

	f := &fixture{svc: svc, store: store, dir: dir, cal: cal, recorder: recorder}
	ctx := context.Background()

	f.employee, err = dir.Create(ctx, staffdir.User{
		Email:        "emma@opsdesk.test",
		FirstName:    "Emma",
		LastName:     "Stone",
		Role:         staffdir.RoleEmployee,
		Department:   staffdir.DeptOperations,
		AccruedHours: decimal.NewFromInt(140), // 20 days
		Permanent:    true,
	})
	require.NoError(t, err)

	f.manager, err = dir.Create(ctx, staffdir.User{
		Email:        "mark@opsdesk.test",
		FirstName:    "Mark",
		LastName:     "Hill",
		Role:         staffdir.RoleManager,
		Department:   staffdir.DeptOperations,
		AccruedHours: decimal.NewFromInt(140),
		Permanent:    true,
	})
	require.NoError(t, err)

	f.cfo, err = dir.Create(ctx, staffdir.User{
		Email:      "fiona@opsdesk.test",
		FirstName:  "Fiona",
		LastName:   "Cross",
		Role:       staffdir.RoleCFO,
		Department: staffdir.DeptNone,
		Permanent:  true,
	})
	require.NoError(t, err)

	return f
}

// fullWeek is Monday through Friday, five working days.
func fullWeek() holiday.SubmitInput {
	return holiday.SubmitInput{
		StartDate: d(2026, time.September, 7),
		EndDate:   d(2026, time.September, 11),
	}
}

// =============================================================================
// SUBMISSION
// =============================================================================

func TestSubmit_CreatesPendingRequestWithPlaceholderEvent(t *testing.T) {
	// GIVEN: an employee with 20 days of entitlement
	// WHEN:  submitting a five-weekday request
	// THEN:  the request is pending manager approval, costed at 35 hours,
	//        mirrored to the calendar, and the manager is notified

	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.employee, fullWeek())
	require.NoError(t, err)

	assert.Equal(t, holiday.StatusPendingManager, req.Status)
	assert.Equal(t, "5", req.NumberOfDays.String())
	assert.Equal(t, "35", req.AccruedHoursUsed.String())
	assert.Equal(t, 1, req.Version)
	assert.Equal(t, holidayCal, req.CalendarID)

	ev, ok := f.cal.Get(holidayCal, req.CalendarEventID)
	require.True(t, ok, "placeholder event should exist")
	assert.Equal(t, "Holiday: Emma Stone", ev.Title)
	assert.Equal(t, string(holiday.StatusPendingManager), ev.Metadata.Status)

	require.Len(t, f.recorder.Sent, 1)
	assert.Equal(t, f.manager.Email, f.recorder.Sent[0].To)
	assert.Equal(t, "Holiday Request Submitted", f.recorder.Sent[0].Subject)
}

func TestSubmit_ManagerGoesStraightToCFOStage(t *testing.T) {
	f := newFixture(t)

	req, err := f.svc.Submit(context.Background(), f.manager, fullWeek())
	require.NoError(t, err)
	assert.Equal(t, holiday.StatusPendingCFO, req.Status)
}

func TestSubmit_AdministratorGoesStraightToCFOStage(t *testing.T) {
	// GIVEN: an administrator, who has no manager above them in the chain
	// WHEN:  they submit a request
	// THEN:  it skips manager review entirely and only the CFO can decide it

	f := newFixture(t)
	ctx := context.Background()

	admin, err := f.dir.Create(ctx, staffdir.User{
		Email:        "ada@opsdesk.test",
		FirstName:    "Ada",
		LastName:     "Wong",
		Role:         staffdir.RoleAdministrator,
		Department:   staffdir.DeptOperations,
		AccruedHours: decimal.NewFromInt(140),
		Permanent:    true,
	})
	require.NoError(t, err)

	req, err := f.svc.Submit(ctx, admin, fullWeek())
	require.NoError(t, err)
	assert.Equal(t, holiday.StatusPendingCFO, req.Status)

	_, err = f.svc.Approve(ctx, f.manager, req.ID)
	assert.ErrorIs(t, err, holiday.ErrInvalidTransition)

	approved, err := f.svc.Approve(ctx, f.cfo, req.ID)
	require.NoError(t, err)
	assert.Equal(t, holiday.StatusApproved, approved.Status)
}

func TestSubmit_WeekendOnlyRangeRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Submit(context.Background(), f.employee, holiday.SubmitInput{
		StartDate: d(2026, time.September, 12), // Saturday
		EndDate:   d(2026, time.September, 13), // Sunday
	})
	assert.ErrorIs(t, err, holiday.ErrEmptyRange)
}

func TestSubmit_InsufficientBalance(t *testing.T) {
	// GIVEN: an employee with 7 accrued hours (one day)
	// WHEN:  requesting a full week
	// THEN:  the typed balance error reports both sides and nothing is
	//        written to store or calendar

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.dir.Update(ctx, f.employee.ID, staffdir.UserUpdate{
		AccruedHours: decPtr(decimal.NewFromInt(7)),
	})
	require.NoError(t, err)
	f.employee.AccruedHours = decimal.NewFromInt(7)

	_, err = f.svc.Submit(ctx, f.employee, fullWeek())

	var balErr *holiday.InsufficientBalanceError
	require.ErrorAs(t, err, &balErr)
	assert.ErrorIs(t, err, holiday.ErrInsufficientBalance)
	assert.Equal(t, "1", balErr.Available.String())
	assert.Equal(t, "5", balErr.Requested.String())

	requests, err := f.store.ListRequestsByUser(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Empty(t, requests)
	assert.Empty(t, f.recorder.Sent)
}

func TestSubmit_PendingRequestsHoldEntitlement(t *testing.T) {
	// Two weeks pending against 20 days leaves 10; a third 11-day request
	// must not fit.
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, f.employee, fullWeek())
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, f.employee, holiday.SubmitInput{
		StartDate: d(2026, time.September, 14),
		EndDate:   d(2026, time.September, 18),
	})
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, f.employee, holiday.SubmitInput{
		StartDate: d(2026, time.October, 5),
		EndDate:   d(2026, time.October, 19), // 11 working days
	})
	assert.ErrorIs(t, err, holiday.ErrInsufficientBalance)
}

func TestSubmit_CalendarFailureAbortsSubmission(t *testing.T) {
	// GIVEN: a calendar that refuses event creation
	// WHEN:  submitting
	// THEN:  ErrCalendarUnavailable and no stored request

	f := newFixture(t)
	f.cal.CreateErr = errors.New("calendar is down")
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, f.employee, fullWeek())
	assert.ErrorIs(t, err, holiday.ErrCalendarUnavailable)

	requests, err := f.store.ListRequestsByUser(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Empty(t, requests)
}

// =============================================================================
// APPROVAL
// =============================================================================

func TestApprove_ManagerApprovesEmployee(t *testing.T) {
	// GIVEN: a pending employee request for 5 days
	// WHEN:  the manager approves it
	// THEN:  35 hours come off the balance, the placeholder event is
	//        replaced, and the employee is notified

	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.employee, fullWeek())
	require.NoError(t, err)
	placeholderID := req.CalendarEventID
	f.recorder.Sent = nil

	approved, err := f.svc.Approve(ctx, f.manager, req.ID)
	require.NoError(t, err)

	assert.Equal(t, holiday.StatusApproved, approved.Status)
	require.NotNil(t, approved.ManagerApprovedAt)
	assert.Nil(t, approved.CFOApprovedAt)

	// Placeholder replaced by the final event.
	assert.NotEqual(t, placeholderID, approved.CalendarEventID)
	_, ok := f.cal.Get(holidayCal, placeholderID)
	assert.False(t, ok, "placeholder should be deleted")
	ev, ok := f.cal.Get(holidayCal, approved.CalendarEventID)
	require.True(t, ok)
	assert.Equal(t, string(holiday.StatusApproved), ev.Metadata.Status)

	// Entitlement debited exactly once.
	owner, err := f.dir.ByID(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, "105", owner.AccruedHours.String())

	require.Len(t, f.recorder.Sent, 1)
	assert.Equal(t, f.employee.Email, f.recorder.Sent[0].To)
	assert.Equal(t, "Holiday Approved", f.recorder.Sent[0].Subject)
}

func TestApprove_ManagerRequestNeedsBothStages(t *testing.T) {
	// GIVEN: a request submitted by the manager themselves
	// WHEN:  a manager approves at the CFO stage
	// THEN:  refused; only the CFO finishes it

	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.manager, fullWeek())
	require.NoError(t, err)
	require.Equal(t, holiday.StatusPendingCFO, req.Status)

	_, err = f.svc.Approve(ctx, f.manager, req.ID)
	assert.ErrorIs(t, err, holiday.ErrInvalidTransition)

	approved, err := f.svc.Approve(ctx, f.cfo, req.ID)
	require.NoError(t, err)
	assert.Equal(t, holiday.StatusApproved, approved.Status)
	require.NotNil(t, approved.CFOApprovedAt)

	owner, err := f.dir.ByID(ctx, f.manager.ID)
	require.NoError(t, err)
	assert.Equal(t, "105", owner.AccruedHours.String())
}

func TestApprove_EmployeeCannotApprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.employee, fullWeek())
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, f.employee, req.ID)
	assert.ErrorIs(t, err, staffdir.ErrUnauthorized)
}

func TestApprove_SecondApproverLosesRace(t *testing.T) {
	// A decision on an already-decided request fails the transition check
	// before any second debit can happen.
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.employee, fullWeek())
	require.NoError(t, err)

	_, err = f.svc.Approve(ctx, f.manager, req.ID)
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, f.cfo, req.ID)
	assert.ErrorIs(t, err, holiday.ErrInvalidTransition)

	owner, err := f.dir.ByID(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, "105", owner.AccruedHours.String())
}

// debitFailStore wraps the real store with a ledger that always refuses.
type debitFailStore struct {
	*sqlite.Store
	debitErr error
}

func (s *debitFailStore) DeductAccruedHours(context.Context, string, decimal.Decimal) error {
	return s.debitErr
}

func TestApprove_DebitFailureLeavesRequestApproved(t *testing.T) {
	// GIVEN: a store whose entitlement debit fails
	// WHEN:  the manager approves
	// THEN:  the error surfaces, but the already-committed approval stands
	//        and the balance is untouched for the audit trail to find

	f := newFixture(t)
	ctx := context.Background()

	broken := &debitFailStore{Store: f.store, debitErr: errors.New("ledger offline")}
	sync := calendar.NewSynchronizer(f.cal, holidayCal, availabilityCal)
	svc := holiday.NewService(broken, f.dir, sync, f.recorder)

	req, err := svc.Submit(ctx, f.employee, fullWeek())
	require.NoError(t, err)

	_, err = svc.Approve(ctx, f.manager, req.ID)
	require.ErrorContains(t, err, "ledger offline")

	stored, err := f.store.GetRequest(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, holiday.StatusApproved, stored.Status)

	owner, err := f.dir.ByID(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, "140", owner.AccruedHours.String())
}

func TestApprove_UnknownRequest(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Approve(context.Background(), f.manager, "HREQ_missing")
	assert.ErrorIs(t, err, holiday.ErrRequestNotFound)
}

// =============================================================================
// REJECTION
// =============================================================================

func TestReject_RecordsReasonAndRemovesEvent(t *testing.T) {
	// GIVEN: a pending employee request
	// WHEN:  the manager rejects it with a reason
	// THEN:  the reason is stored, the placeholder event deleted, and the
	//        requester notified

	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.employee, fullWeek())
	require.NoError(t, err)
	placeholderID := req.CalendarEventID
	f.recorder.Sent = nil

	rejected, err := f.svc.Reject(ctx, f.manager, req.ID, "Project deadline that week")
	require.NoError(t, err)

	assert.Equal(t, holiday.StatusRejected, rejected.Status)
	assert.Equal(t, "Project deadline that week", rejected.RejectionReason)
	assert.Empty(t, rejected.CalendarEventID)

	_, ok := f.cal.Get(holidayCal, placeholderID)
	assert.False(t, ok, "placeholder should be deleted")

	require.Len(t, f.recorder.Sent, 1)
	assert.Equal(t, f.employee.Email, f.recorder.Sent[0].To)
	assert.Equal(t, "Holiday Rejected", f.recorder.Sent[0].Subject)

	// Rejection releases the held days.
	owner, err := f.dir.ByID(ctx, f.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, "140", owner.AccruedHours.String())
}

func TestReject_ReasonRequired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.employee, fullWeek())
	require.NoError(t, err)

	_, err = f.svc.Reject(ctx, f.manager, req.ID, "")
	assert.ErrorIs(t, err, holiday.ErrReasonRequired)
}

func TestReject_ManagerCannotRejectCFOStage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.manager, fullWeek())
	require.NoError(t, err)

	_, err = f.svc.Reject(ctx, f.manager, req.ID, "no")
	assert.ErrorIs(t, err, holiday.ErrInvalidTransition)

	rejected, err := f.svc.Reject(ctx, f.cfo, req.ID, "budget freeze")
	require.NoError(t, err)
	assert.Equal(t, holiday.StatusRejected, rejected.Status)
}

// =============================================================================
// CANCELLATION
// =============================================================================

func TestCancel_OwnerWithdrawsPendingRequest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.employee, fullWeek())
	require.NoError(t, err)
	placeholderID := req.CalendarEventID

	cancelled, err := f.svc.Cancel(ctx, f.employee, req.ID)
	require.NoError(t, err)
	assert.Equal(t, holiday.StatusCancelled, cancelled.Status)

	_, ok := f.cal.Get(holidayCal, placeholderID)
	assert.False(t, ok)
}

func TestCancel_OnlyOwnerSeesTheRequest(t *testing.T) {
	// A foreign request cancels as not-found, not as forbidden.
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.employee, fullWeek())
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, f.manager, req.ID)
	assert.ErrorIs(t, err, holiday.ErrRequestNotFound)
}

func TestCancel_RefusedAfterFinalDecision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.employee, fullWeek())
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, f.manager, req.ID)
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, f.employee, req.ID)
	assert.ErrorIs(t, err, holiday.ErrInvalidTransition)
}

// =============================================================================
// QUERIES
// =============================================================================

func TestMine_BalanceArithmetic(t *testing.T) {
	// GIVEN: one approved week (already debited) and one pending week
	// WHEN:  the owner views their summary with a freshly resolved record
	// THEN:  taken=5, pending=5, and the remaining balance reflects both
	//        the debit and the held days

	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Submit(ctx, f.employee, fullWeek())
	require.NoError(t, err)
	_, err = f.svc.Approve(ctx, f.manager, first.ID)
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, f.employee, holiday.SubmitInput{
		StartDate: d(2026, time.September, 14),
		EndDate:   d(2026, time.September, 18),
	})
	require.NoError(t, err)

	owner, err := f.dir.ByID(ctx, f.employee.ID)
	require.NoError(t, err)

	summary, err := f.svc.Mine(ctx, owner)
	require.NoError(t, err)

	assert.Len(t, summary.Requests, 2)
	assert.Equal(t, "5", summary.DaysTaken.String())
	assert.Equal(t, "5", summary.DaysPending.String())
	assert.Equal(t, "5", summary.DaysRemaining.String())
}

func TestPendingForManager_ScopedToDepartment(t *testing.T) {
	// GIVEN: pending requests from two departments
	// WHEN:  the Operations manager lists their queue
	// THEN:  only the Operations request appears, joined with owner details

	f := newFixture(t)
	ctx := context.Background()

	other, err := f.dir.Create(ctx, staffdir.User{
		Email:        "carl@opsdesk.test",
		FirstName:    "Carl",
		LastName:     "Reed",
		Role:         staffdir.RoleEmployee,
		Department:   staffdir.DeptCreative,
		AccruedHours: decimal.NewFromInt(140),
		Permanent:    true,
	})
	require.NoError(t, err)

	mine, err := f.svc.Submit(ctx, f.employee, fullWeek())
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, other, holiday.SubmitInput{
		StartDate: d(2026, time.September, 14),
		EndDate:   d(2026, time.September, 18),
	})
	require.NoError(t, err)

	entries, err := f.svc.PendingForManager(ctx, f.manager)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, mine.ID, entries[0].ID)
	assert.Equal(t, "Emma Stone", entries[0].FullName)
	assert.Equal(t, f.employee.Email, entries[0].Email)
}

func TestPendingForManager_EmployeeForbidden(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PendingForManager(context.Background(), f.employee)
	assert.ErrorIs(t, err, staffdir.ErrUnauthorized)
}

func TestTeamCalendar_IncludesDecidedRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.employee, fullWeek())
	require.NoError(t, err)
	_, err = f.svc.Reject(ctx, f.manager, req.ID, "coverage")
	require.NoError(t, err)

	pending, err := f.svc.PendingForManager(ctx, f.manager)
	require.NoError(t, err)
	assert.Empty(t, pending)

	all, err := f.svc.TeamCalendar(ctx, f.manager)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// =============================================================================
// CONTRACTOR AVAILABILITY
// =============================================================================

func newContractor(t *testing.T, f *fixture) *staffdir.User {
	t.Helper()
	u, err := f.dir.Create(context.Background(), staffdir.User{
		Email:      "nina@opsdesk.test",
		FirstName:  "Nina",
		LastName:   "Vale",
		Role:       staffdir.RoleEmployee,
		Department: staffdir.DeptPerformance,
		HourlyRate: decimal.RequireFromString("42.50"),
		Permanent:  false,
	})
	require.NoError(t, err)
	return u
}

func TestSubmitAvailability_ContractorOnly(t *testing.T) {
	// GIVEN: a contractor and a permanent employee
	// THEN:  the block is recorded and mirrored for the contractor only

	f := newFixture(t)
	ctx := context.Background()
	contractor := newContractor(t, f)

	block, err := f.svc.SubmitAvailability(ctx, contractor, holiday.AvailabilityInput{
		StartDate: d(2026, time.September, 7),
		EndDate:   d(2026, time.September, 9),
		Reason:    "Touring",
	})
	require.NoError(t, err)
	assert.Equal(t, holiday.AvailabilityActive, block.Status)

	ev, ok := f.cal.Get(availabilityCal, block.CalendarEventID)
	require.True(t, ok)
	assert.Equal(t, "Touring", ev.Title)

	_, err = f.svc.SubmitAvailability(ctx, f.employee, holiday.AvailabilityInput{
		StartDate: d(2026, time.September, 7),
		EndDate:   d(2026, time.September, 9),
	})
	assert.ErrorIs(t, err, staffdir.ErrUnauthorized)
}

func TestCancelAvailability_RemovesEventAndHidesBlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contractor := newContractor(t, f)

	block, err := f.svc.SubmitAvailability(ctx, contractor, holiday.AvailabilityInput{
		StartDate: d(2026, time.September, 7),
		EndDate:   d(2026, time.September, 9),
	})
	require.NoError(t, err)
	eventID := block.CalendarEventID

	cancelled, err := f.svc.CancelAvailability(ctx, contractor, block.ID)
	require.NoError(t, err)
	assert.Equal(t, holiday.AvailabilityCancelled, cancelled.Status)

	_, ok := f.cal.Get(availabilityCal, eventID)
	assert.False(t, ok)

	remaining, err := f.svc.MyAvailability(ctx, contractor)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	_, err = f.svc.CancelAvailability(ctx, contractor, block.ID)
	assert.ErrorIs(t, err, holiday.ErrInvalidTransition)
}

// =============================================================================
// AUDITS
// =============================================================================

func TestAuditHolidays_DetectsDriftWithoutRepairing(t *testing.T) {
	// GIVEN: one healthy approved request, one orphaned event and one
	//        approved request whose event has gone missing
	// THEN:  both kinds of drift are reported and nothing is deleted

	f := newFixture(t)
	ctx := context.Background()

	req, err := f.svc.Submit(ctx, f.employee, fullWeek())
	require.NoError(t, err)
	approved, err := f.svc.Approve(ctx, f.manager, req.ID)
	require.NoError(t, err)

	orphanID, err := f.cal.CreateAllDayEvent(ctx, holidayCal, calendar.EventInput{
		Title: "Holiday: nobody",
		Start: d(2026, time.September, 7),
		End:   d(2026, time.September, 8),
	})
	require.NoError(t, err)

	require.NoError(t, f.cal.DeleteEvent(ctx, holidayCal, approved.CalendarEventID))

	report, err := f.svc.AuditHolidays(ctx, d(2026, time.August, 1), d(2026, time.December, 1))
	require.NoError(t, err)

	require.Len(t, report.OrphanedEvents, 1)
	assert.Equal(t, orphanID, report.OrphanedEvents[0].ID)
	assert.Zero(t, report.DeletedOrphans)
	assert.Equal(t, []string{approved.ID}, report.MissingEvents)

	// Detection only: the orphan is still there.
	_, ok := f.cal.Get(holidayCal, orphanID)
	assert.True(t, ok)
}

func TestAuditAvailability_DeletesOrphans(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	contractor := newContractor(t, f)

	block, err := f.svc.SubmitAvailability(ctx, contractor, holiday.AvailabilityInput{
		StartDate: d(2026, time.September, 7),
		EndDate:   d(2026, time.September, 9),
	})
	require.NoError(t, err)

	orphanID, err := f.cal.CreateAllDayEvent(ctx, availabilityCal, calendar.EventInput{
		Title: "stale block",
		Start: d(2026, time.September, 7),
		End:   d(2026, time.September, 8),
	})
	require.NoError(t, err)

	report, err := f.svc.AuditAvailability(ctx, d(2026, time.August, 1), d(2026, time.December, 1))
	require.NoError(t, err)

	assert.Equal(t, 1, report.DeletedOrphans)
	assert.Empty(t, report.MissingEvents)

	_, ok := f.cal.Get(availabilityCal, orphanID)
	assert.False(t, ok, "orphan should be deleted")
	_, ok = f.cal.Get(availabilityCal, block.CalendarEventID)
	assert.True(t, ok, "live event should survive")
}

func decPtr(v decimal.Decimal) *decimal.Decimal { return &v }
