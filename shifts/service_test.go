package shifts_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/opsdesk/staffcentre/shifts"
	"github.com/opsdesk/staffcentre/staffdir"
	"github.com/opsdesk/staffcentre/store/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubDrafter stands in for the invoicing service.
type stubDrafter struct {
	invoiceID string
	err       error
	calls     int
}

func (d *stubDrafter) DraftFromShift(_ context.Context, _ *shifts.Shift) (string, error) {
	d.calls++
	if d.err != nil {
		return "", d.err
	}
	return d.invoiceID, nil
}

func newTestService(t *testing.T) (*shifts.Service, *sqlite.Store, *stubDrafter) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	drafter := &stubDrafter{invoiceID: "INV_stub"}
	return shifts.NewService(store, drafter), store, drafter
}

func manager() *staffdir.User {
	return &staffdir.User{ID: "USR_mgr", Role: staffdir.RoleManager, Department: staffdir.DeptPerformance}
}

func worker() *staffdir.User {
	return &staffdir.User{ID: "USR_wkr", Role: staffdir.RoleEmployee, Department: staffdir.DeptPerformance}
}

func eveningShift() shifts.CreateInput {
	return shifts.CreateInput{
		Department:  staffdir.DeptPerformance,
		ShiftDate:   time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC),
		StartTime:   "18:00",
		EndTime:     "23:00",
		Description: "Evening show cover",
	}
}

// =============================================================================
// OFFER AND ACCEPT
// =============================================================================

func TestCreate_ManagerPublishesOffer(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	shift, err := svc.Create(ctx, manager(), eveningShift())
	require.NoError(t, err)
	assert.Equal(t, shifts.StatusOffered, shift.Status)
	assert.Equal(t, "USR_mgr", shift.CreatedByUserID)
	assert.Empty(t, shift.AssignedUserID)

	open, err := svc.Available(ctx)
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestCreate_EmployeeForbidden(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), worker(), eveningShift())
	assert.ErrorIs(t, err, staffdir.ErrUnauthorized)
}

func TestAccept_FirstWorkerWins(t *testing.T) {
	// GIVEN: an open offer
	// WHEN:  two workers accept in turn
	// THEN:  the first gets it, the second gets ErrShiftUnavailable

	svc, _, _ := newTestService(t)
	ctx := context.Background()

	shift, err := svc.Create(ctx, manager(), eveningShift())
	require.NoError(t, err)

	accepted, err := svc.Accept(ctx, worker(), shift.ID)
	require.NoError(t, err)
	assert.Equal(t, shifts.StatusAccepted, accepted.Status)
	assert.Equal(t, "USR_wkr", accepted.AssignedUserID)
	require.NotNil(t, accepted.AcceptedAt)

	other := &staffdir.User{ID: "USR_other", Role: staffdir.RoleEmployee}
	_, err = svc.Accept(ctx, other, shift.ID)
	assert.ErrorIs(t, err, shifts.ErrShiftUnavailable)

	open, err := svc.Available(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestAccept_UnknownShift(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Accept(context.Background(), worker(), "SHF_ghost")
	assert.ErrorIs(t, err, shifts.ErrShiftUnavailable)
}

// =============================================================================
// COMPLETION AND DRAFT GENERATION
// =============================================================================

func acceptedShift(t *testing.T, svc *shifts.Service) *shifts.Shift {
	t.Helper()
	ctx := context.Background()
	shift, err := svc.Create(ctx, manager(), eveningShift())
	require.NoError(t, err)
	accepted, err := svc.Accept(ctx, worker(), shift.ID)
	require.NoError(t, err)
	return accepted
}

func TestComplete_RecordsHoursAndDraftsInvoice(t *testing.T) {
	// GIVEN: an accepted shift
	// WHEN:  the assignee completes it with 5 hours
	// THEN:  the shift is Completed and the draft is generated exactly once

	svc, store, drafter := newTestService(t)
	ctx := context.Background()
	shift := acceptedShift(t, svc)

	done, err := svc.Complete(ctx, worker(), shift.ID, decimal.NewFromInt(5))
	require.NoError(t, err)

	assert.Equal(t, shifts.StatusCompleted, done.Status)
	assert.Equal(t, "5", done.ActualHours.String())
	require.NotNil(t, done.CompletedAt)
	assert.True(t, done.DraftGenerated)
	assert.Equal(t, "INV_stub", done.GeneratedInvoiceID)
	assert.Equal(t, 1, drafter.calls)

	stored, err := store.GetShift(ctx, shift.ID)
	require.NoError(t, err)
	assert.True(t, stored.DraftGenerated)
	assert.Equal(t, "INV_stub", stored.GeneratedInvoiceID)
}

func TestComplete_OnlyAssignee(t *testing.T) {
	svc, _, _ := newTestService(t)
	shift := acceptedShift(t, svc)

	intruder := &staffdir.User{ID: "USR_other", Role: staffdir.RoleEmployee}
	_, err := svc.Complete(context.Background(), intruder, shift.ID, decimal.NewFromInt(5))
	assert.ErrorIs(t, err, shifts.ErrNotAssignee)
}

func TestComplete_RequiresPositiveHours(t *testing.T) {
	svc, _, _ := newTestService(t)
	shift := acceptedShift(t, svc)

	_, err := svc.Complete(context.Background(), worker(), shift.ID, decimal.Zero)
	assert.ErrorIs(t, err, shifts.ErrInvalidHours)
}

func TestComplete_TwiceRefused(t *testing.T) {
	// A second completion fails the status check, so no second draft.
	svc, _, drafter := newTestService(t)
	ctx := context.Background()
	shift := acceptedShift(t, svc)

	_, err := svc.Complete(ctx, worker(), shift.ID, decimal.NewFromInt(5))
	require.NoError(t, err)

	_, err = svc.Complete(ctx, worker(), shift.ID, decimal.NewFromInt(5))
	assert.ErrorIs(t, err, shifts.ErrShiftUnavailable)
	assert.Equal(t, 1, drafter.calls)
}

func TestComplete_DrafterFailureKeepsShiftCompleted(t *testing.T) {
	// GIVEN: a drafter that fails
	// WHEN:  completing
	// THEN:  the error surfaces but the shift stays Completed without a
	//        draft, ready for a manual invoice

	svc, store, drafter := newTestService(t)
	drafter.err = errors.New("no hourly rate")
	ctx := context.Background()
	shift := acceptedShift(t, svc)

	done, err := svc.Complete(ctx, worker(), shift.ID, decimal.NewFromInt(5))
	require.Error(t, err)
	require.NotNil(t, done)
	assert.Equal(t, shifts.StatusCompleted, done.Status)

	stored, err := store.GetShift(ctx, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, shifts.StatusCompleted, stored.Status)
	assert.False(t, stored.DraftGenerated)
	assert.Empty(t, stored.GeneratedInvoiceID)
}

// =============================================================================
// CANCELLATION
// =============================================================================

func TestCancel_OfferedOnly(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	shift, err := svc.Create(ctx, manager(), eveningShift())
	require.NoError(t, err)

	cancelled, err := svc.Cancel(ctx, manager(), shift.ID)
	require.NoError(t, err)
	assert.Equal(t, shifts.StatusCancelled, cancelled.Status)

	// An accepted shift cannot be withdrawn.
	second := acceptedShift(t, svc)
	_, err = svc.Cancel(ctx, manager(), second.ID)
	assert.ErrorIs(t, err, shifts.ErrShiftUnavailable)
}

func TestCancel_EmployeeForbidden(t *testing.T) {
	svc, _, _ := newTestService(t)
	shift := acceptedShift(t, svc)

	_, err := svc.Cancel(context.Background(), worker(), shift.ID)
	assert.ErrorIs(t, err, staffdir.ErrUnauthorized)
}

// =============================================================================
// MINE
// =============================================================================

func TestMine_ListsAssignedShiftsAnyStatus(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first := acceptedShift(t, svc)
	_, err := svc.Complete(ctx, worker(), first.ID, decimal.NewFromInt(5))
	require.NoError(t, err)
	acceptedShift(t, svc)

	mine, err := svc.Mine(ctx, worker())
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}
