package holiday_test

import (
	"testing"

	"github.com/opsdesk/staffcentre/holiday"
	"github.com/opsdesk/staffcentre/staffdir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// INITIAL STATE
// =============================================================================

func TestInitialStatus_ByRole(t *testing.T) {
	assert.Equal(t, holiday.StatusPendingManager, holiday.InitialStatus(staffdir.RoleEmployee))
	assert.Equal(t, holiday.StatusPendingCFO, holiday.InitialStatus(staffdir.RoleManager))
	assert.Equal(t, holiday.StatusPendingCFO, holiday.InitialStatus(staffdir.RoleCFO))

	// Administrators have no manager above them either.
	assert.Equal(t, holiday.StatusPendingCFO, holiday.InitialStatus(staffdir.RoleAdministrator))
}

// =============================================================================
// APPROVAL TRANSITIONS
// =============================================================================

func TestNextStatus_ApprovalTable(t *testing.T) {
	cases := []struct {
		name      string
		current   holiday.Status
		actor     staffdir.Role
		submitter staffdir.Role
		want      holiday.Status
	}{
		{"manager approves employee", holiday.StatusPendingManager, staffdir.RoleManager, staffdir.RoleEmployee, holiday.StatusApproved},
		{"manager approves manager escalates", holiday.StatusPendingManager, staffdir.RoleManager, staffdir.RoleManager, holiday.StatusPendingCFO},
		{"cfo short-circuits manager stage", holiday.StatusPendingManager, staffdir.RoleCFO, staffdir.RoleEmployee, holiday.StatusApproved},
		{"cfo approves cfo stage", holiday.StatusPendingCFO, staffdir.RoleCFO, staffdir.RoleManager, holiday.StatusApproved},
		{"cfo approves administrator request", holiday.StatusPendingCFO, staffdir.RoleCFO, staffdir.RoleAdministrator, holiday.StatusApproved},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			next, err := holiday.NextStatus(tc.current, tc.actor, tc.submitter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, next)
		})
	}
}

func TestNextStatus_InvalidTransitions(t *testing.T) {
	cases := []struct {
		name      string
		current   holiday.Status
		actor     staffdir.Role
		submitter staffdir.Role
	}{
		{"employee cannot approve", holiday.StatusPendingManager, staffdir.RoleEmployee, staffdir.RoleEmployee},
		{"manager cannot approve cfo stage", holiday.StatusPendingCFO, staffdir.RoleManager, staffdir.RoleManager},
		{"approved is terminal", holiday.StatusApproved, staffdir.RoleCFO, staffdir.RoleEmployee},
		{"rejected is terminal", holiday.StatusRejected, staffdir.RoleManager, staffdir.RoleEmployee},
		{"cancelled is terminal", holiday.StatusCancelled, staffdir.RoleCFO, staffdir.RoleEmployee},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := holiday.NextStatus(tc.current, tc.actor, tc.submitter)
			assert.ErrorIs(t, err, holiday.ErrInvalidTransition)
		})
	}
}

// =============================================================================
// REJECTION AND CANCELLATION GATES
// =============================================================================

func TestCanReject_RoleGates(t *testing.T) {
	// Manager owns the manager stage only.
	assert.True(t, holiday.CanReject(holiday.StatusPendingManager, staffdir.RoleManager))
	assert.False(t, holiday.CanReject(holiday.StatusPendingCFO, staffdir.RoleManager))

	// CFO may refuse either pending stage.
	assert.True(t, holiday.CanReject(holiday.StatusPendingManager, staffdir.RoleCFO))
	assert.True(t, holiday.CanReject(holiday.StatusPendingCFO, staffdir.RoleCFO))

	// Terminal states refuse everyone; rejecting twice is not possible.
	assert.False(t, holiday.CanReject(holiday.StatusRejected, staffdir.RoleCFO))
	assert.False(t, holiday.CanReject(holiday.StatusApproved, staffdir.RoleManager))

	// Employees are never in the chain.
	assert.False(t, holiday.CanReject(holiday.StatusPendingManager, staffdir.RoleEmployee))
}

func TestCanCancel_OnlyWhilePending(t *testing.T) {
	assert.True(t, holiday.CanCancel(holiday.StatusPendingManager))
	assert.True(t, holiday.CanCancel(holiday.StatusPendingCFO))
	assert.False(t, holiday.CanCancel(holiday.StatusApproved))
	assert.False(t, holiday.CanCancel(holiday.StatusRejected))
	assert.False(t, holiday.CanCancel(holiday.StatusCancelled))
}

func TestStatus_TerminalAndPending(t *testing.T) {
	for _, s := range []holiday.Status{holiday.StatusApproved, holiday.StatusRejected, holiday.StatusCancelled} {
		assert.True(t, s.Terminal(), s)
		assert.False(t, s.Pending(), s)
	}
	for _, s := range []holiday.Status{holiday.StatusPendingManager, holiday.StatusPendingCFO} {
		assert.False(t, s.Terminal(), s)
		assert.True(t, s.Pending(), s)
	}
}
