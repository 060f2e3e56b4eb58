/*
Package holiday implements the leave request lifecycle: submission,
manager/CFO approval routing, entitlement accounting, and the mirrored
calendar events.

PURPOSE:
  The approval workflow is a small role-gated state machine. A request is
  created in a role-dependent pending state and advances only through the
  transitions below; Approved, Rejected and Cancelled are terminal.

TRANSITIONS (approve):
  PendingManagerApproval + Manager, submitter Employee -> Approved
  PendingManagerApproval + Manager, submitter Manager  -> PendingCFOApproval
  PendingManagerApproval + CFO                         -> Approved
  PendingCFOApproval     + CFO                         -> Approved
  anything else                                        -> ErrInvalidTransition

REJECTION:
  A Manager may reject only PendingManagerApproval; the CFO may reject
  either pending state. A reason is mandatory.

CANCELLATION:
  Only the owner, and only while the request is still pending.

SEE ALSO:
  - service.go: Orchestration and side effects per transition
  - entitlement.go: Balance accounting
*/
package holiday

import (
	"fmt"

	"github.com/opsdesk/staffcentre/staffdir"
)

// =============================================================================
// STATUS
// =============================================================================

type Status string

const (
	StatusPendingManager Status = "PendingManagerApproval"
	StatusPendingCFO     Status = "PendingCFOApproval"
	StatusApproved       Status = "Approved"
	StatusRejected       Status = "Rejected"
	StatusCancelled      Status = "Cancelled"
)

// Terminal reports whether no further workflow transition is permitted.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// Pending reports whether the request still awaits a decision.
func (s Status) Pending() bool {
	return s == StatusPendingManager || s == StatusPendingCFO
}

// Label returns the human-readable form shown in request lists.
func (s Status) Label() string {
	switch s {
	case StatusPendingManager:
		return "Awaiting Manager Approval"
	case StatusPendingCFO:
		return "Awaiting CFO Approval"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	case StatusCancelled:
		return "Cancelled by Employee"
	}
	return "Unknown"
}

// =============================================================================
// TRANSITION RULES
// =============================================================================

// InitialStatus returns the pending state a new request starts in. Only
// employee requests enter manager review; every other role goes straight
// to the CFO stage, since no manager sits above them in the chain.
func InitialStatus(submitter staffdir.Role) Status {
	if submitter == staffdir.RoleEmployee {
		return StatusPendingManager
	}
	return StatusPendingCFO
}

// NextStatus validates an approval and returns the resulting state.
// The submitter's role matters in one place: a manager approving another
// manager's request escalates to the CFO instead of finalizing.
func NextStatus(current Status, actor, submitter staffdir.Role) (Status, error) {
	if current == StatusPendingManager {
		switch {
		case actor == staffdir.RoleManager && submitter == staffdir.RoleEmployee:
			return StatusApproved, nil
		case actor == staffdir.RoleManager && submitter == staffdir.RoleManager:
			return StatusPendingCFO, nil
		case actor == staffdir.RoleCFO:
			return StatusApproved, nil
		}
	}
	if current == StatusPendingCFO && actor == staffdir.RoleCFO {
		return StatusApproved, nil
	}
	return "", fmt.Errorf("%w: cannot approve %s as %s", ErrInvalidTransition, current, actor)
}

// CanReject reports whether actor may reject a request in the given state.
// Mirrors the approval entry states: a Manager owns the manager stage, the
// CFO may short-circuit either pending stage.
func CanReject(current Status, actor staffdir.Role) bool {
	switch actor {
	case staffdir.RoleManager:
		return current == StatusPendingManager
	case staffdir.RoleCFO:
		return current == StatusPendingManager || current == StatusPendingCFO
	}
	return false
}

// CanCancel reports whether the owner may still withdraw the request.
func CanCancel(current Status) bool {
	return current.Pending()
}
