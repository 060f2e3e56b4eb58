/*
Package staffdir holds the user directory: identity records, roles, and
departments.

PURPOSE:
  Every inbound operation starts by resolving an authenticated principal
  (by email) into a directory record. Role and department attributes on
  that record gate everything downstream: approval routing, team
  visibility, invoice queues.

KEY TYPES:
  User:      the identity record (email is the login key)
  Role:      Employee | Manager | CFO | Administrator
  Department: fixed small set, used for team scoping

LIFECYCLE:
  Users are created by administrative action, mutated by profile updates
  and entitlement deduction, and never hard-deleted in normal flow.
  Delete exists only as an administrative escape hatch.

SEE ALSO:
  - directory.go: Lookup and mutation operations
  - store/sqlite: Persistence
*/
package staffdir

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrUserNotFound is returned when no directory record matches the key.
	ErrUserNotFound = errors.New("user not found")

	// ErrUnauthorized is returned when the principal's role does not permit
	// the attempted action.
	ErrUnauthorized = errors.New("not authorized")
)

// =============================================================================
// ROLES AND DEPARTMENTS
// =============================================================================

type Role string

const (
	RoleEmployee      Role = "Employee"
	RoleManager       Role = "Manager"
	RoleCFO           Role = "CFO"
	RoleAdministrator Role = "Administrator"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleCFO, RoleAdministrator:
		return true
	}
	return false
}

type Department string

const (
	DeptSIC         Department = "SIC"
	DeptPerformance Department = "Performance"
	DeptOperations  Department = "Operations"
	DeptCreative    Department = "Creative"
	DeptB2AFC       Department = "B2AFC"
	DeptNone        Department = "N/A"
)

type AccountStatus string

const (
	AccountActive   AccountStatus = "Active"
	AccountDisabled AccountStatus = "Disabled"
)

// =============================================================================
// USER RECORD
// =============================================================================

// User is a single directory record.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	Role         Role
	Department   Department
	HourlyRate   decimal.Decimal
	AccruedHours decimal.Decimal // leave entitlement, in hours
	Permanent    bool            // false = contractor
	Status       AccountStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName returns "First Last".
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// CanApproveRequests reports whether the user sits in the approval chain.
func (u *User) CanApproveRequests() bool {
	return u.Role == RoleManager || u.Role == RoleCFO
}

// NewID generates a short prefixed identifier, e.g. "USR_1a2b3c4d".
func NewID(prefix string) string {
	return prefix + "_" + uuid.NewString()[:8]
}
