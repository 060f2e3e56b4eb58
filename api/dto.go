/*
dto.go - Request and response data structures

PURPOSE:
  Wire representations for the HTTP API, kept separate from the domain
  types. Every response travels inside the success/error envelope:

    {"success": true,  "data": ...}
    {"success": false, "error": "..."}

  Dates cross the wire as "2006-01-02", timestamps as RFC3339, decimals
  as strings.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/opsdesk/staffcentre/holiday"
	"github.com/opsdesk/staffcentre/invoicing"
	"github.com/opsdesk/staffcentre/shifts"
	"github.com/opsdesk/staffcentre/staffdir"
)

const dateLayout = "2006-01-02"

// Envelope is the uniform response wrapper.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// =============================================================================
// USERS
// =============================================================================

type UserDTO struct {
	ID           string `json:"userId"`
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	FullName     string `json:"fullName"`
	Role         string `json:"role"`
	Department   string `json:"department"`
	HourlyRate   string `json:"hourlyRate"`
	AccruedHours string `json:"accruedHours"`
	Permanent    bool   `json:"permanent"`
	Status       string `json:"accountStatus"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

func toUserDTO(u *staffdir.User) UserDTO {
	return UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		FullName:     u.FullName(),
		Role:         string(u.Role),
		Department:   string(u.Department),
		HourlyRate:   u.HourlyRate.String(),
		AccruedHours: u.AccruedHours.String(),
		Permanent:    u.Permanent,
		Status:       string(u.Status),
		CreatedAt:    u.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    u.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateUserRequest is the admin user-creation payload.
type CreateUserRequest struct {
	Email        string `json:"email"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Role         string `json:"role"`
	Department   string `json:"department"`
	HourlyRate   string `json:"hourlyRate"`
	AccruedHours string `json:"accruedHours"`
	Permanent    *bool  `json:"permanent"`
}

// UpdateUserRequest carries partial profile updates; absent fields are
// left untouched.
type UpdateUserRequest struct {
	UserID       string  `json:"userId"`
	FirstName    *string `json:"firstName"`
	LastName     *string `json:"lastName"`
	Role         *string `json:"role"`
	Department   *string `json:"department"`
	HourlyRate   *string `json:"hourlyRate"`
	AccruedHours *string `json:"accruedHours"`
	Permanent    *bool   `json:"permanent"`
	Status       *string `json:"accountStatus"`
}

// =============================================================================
// HOLIDAY REQUESTS
// =============================================================================

type HolidayRequestDTO struct {
	ID                string `json:"requestId"`
	UserID            string `json:"userId"`
	RequestDate       string `json:"requestDate"`
	StartDate         string `json:"startDate"`
	EndDate           string `json:"endDate"`
	NumberOfDays      string `json:"numberOfDays"`
	AccruedHoursUsed  string `json:"accruedHoursUsed"`
	Status            string `json:"status"`
	StatusLabel       string `json:"statusLabel"`
	ManagerApprovedAt string `json:"managerApprovedAt,omitempty"`
	CFOApprovedAt     string `json:"cfoApprovedAt,omitempty"`
	RejectionReason   string `json:"rejectionReason,omitempty"`
	CalendarEventID   string `json:"calendarEventId,omitempty"`
	Version           int    `json:"version"`
}

func toHolidayRequestDTO(r *holiday.Request) HolidayRequestDTO {
	return HolidayRequestDTO{
		ID:                r.ID,
		UserID:            r.UserID,
		RequestDate:       r.RequestDate.Format(dateLayout),
		StartDate:         r.StartDate.Format(dateLayout),
		EndDate:           r.EndDate.Format(dateLayout),
		NumberOfDays:      r.NumberOfDays.String(),
		AccruedHoursUsed:  r.AccruedHoursUsed.String(),
		Status:            string(r.Status),
		StatusLabel:       r.Status.Label(),
		ManagerApprovedAt: fmtTimePtr(r.ManagerApprovedAt),
		CFOApprovedAt:     fmtTimePtr(r.CFOApprovedAt),
		RejectionReason:   r.RejectionReason,
		CalendarEventID:   r.CalendarEventID,
		Version:           r.Version,
	}
}

// SubmitHolidayRequest is the leave submission payload.
type SubmitHolidayRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	StartHalf bool   `json:"startHalfDay"`
	EndHalf   bool   `json:"endHalfDay"`
	Reason    string `json:"reason"`
}

// DecisionRequest carries an approve/reject decision.
type DecisionRequest struct {
	Action string `json:"action"` // "approve" or "reject"
	Reason string `json:"reason"`
}

// MySummaryDTO is the owner's view: requests plus derived balances.
type MySummaryDTO struct {
	Requests      []HolidayRequestDTO `json:"requests"`
	DaysTaken     string              `json:"daysTaken"`
	DaysPending   string              `json:"daysPending"`
	DaysRemaining string              `json:"daysRemaining"`
}

// TeamEntryDTO is one request joined with the owner's directory info.
type TeamEntryDTO struct {
	HolidayRequestDTO
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

func toTeamEntryDTO(e holiday.TeamEntry) TeamEntryDTO {
	return TeamEntryDTO{
		HolidayRequestDTO: toHolidayRequestDTO(&e.Request),
		FullName:          e.FullName,
		Email:             e.Email,
	}
}

// =============================================================================
// AVAILABILITY
// =============================================================================

type AvailabilityDTO struct {
	ID        string `json:"availabilityId"`
	UserID    string `json:"userId"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
	Status    string `json:"status"`
}

func toAvailabilityDTO(b *holiday.AvailabilityBlock) AvailabilityDTO {
	return AvailabilityDTO{
		ID:        b.ID,
		UserID:    b.UserID,
		StartDate: b.StartDate.Format(dateLayout),
		EndDate:   b.EndDate.Format(dateLayout),
		Reason:    b.Reason,
		Status:    string(b.Status),
	}
}

// SubmitAvailabilityRequest is the contractor unavailability payload.
type SubmitAvailabilityRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Reason    string `json:"reason"`
}

// =============================================================================
// SHIFTS
// =============================================================================

type ShiftDTO struct {
	ID                 string `json:"shiftId"`
	Department         string `json:"department"`
	ShiftDate          string `json:"shiftDate"`
	StartTime          string `json:"startTime"`
	EndTime            string `json:"endTime"`
	ActualHours        string `json:"actualHoursWorked"`
	Description        string `json:"description"`
	Status             string `json:"status"`
	AssignedUserID     string `json:"assignedUserId,omitempty"`
	AcceptedAt         string `json:"acceptedAt,omitempty"`
	CompletedAt        string `json:"completedAt,omitempty"`
	GeneratedInvoiceID string `json:"generatedInvoiceId,omitempty"`
}

func toShiftDTO(s *shifts.Shift) ShiftDTO {
	return ShiftDTO{
		ID:                 s.ID,
		Department:         string(s.Department),
		ShiftDate:          s.ShiftDate.Format(dateLayout),
		StartTime:          s.StartTime,
		EndTime:            s.EndTime,
		ActualHours:        s.ActualHours.String(),
		Description:        s.Description,
		Status:             string(s.Status),
		AssignedUserID:     s.AssignedUserID,
		AcceptedAt:         fmtTimePtr(s.AcceptedAt),
		CompletedAt:        fmtTimePtr(s.CompletedAt),
		GeneratedInvoiceID: s.GeneratedInvoiceID,
	}
}

// CreateShiftRequest is the manager shift-offer payload.
type CreateShiftRequest struct {
	Department  string `json:"department"`
	ShiftDate   string `json:"shiftDate"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Description string `json:"description"`
}

// CompleteShiftRequest records the hours actually worked.
type CompleteShiftRequest struct {
	ActualHours string `json:"actualHours"`
}

// =============================================================================
// INVOICES
// =============================================================================

type InvoiceDTO struct {
	ID              string `json:"invoiceId"`
	UserID          string `json:"userId"`
	InvoiceDate     string `json:"invoiceDate"`
	Type            string `json:"invoiceType"`
	TotalAmount     string `json:"totalAmount"`
	Status          string `json:"status"`
	RelatedShiftIDs string `json:"relatedShiftIds,omitempty"`
	Description     string `json:"description"`
	PaymentDate     string `json:"paymentDate,omitempty"`
	RejectionReason string `json:"rejectionReason,omitempty"`
}

func toInvoiceDTO(inv *invoicing.Invoice) InvoiceDTO {
	return InvoiceDTO{
		ID:              inv.ID,
		UserID:          inv.UserID,
		InvoiceDate:     inv.InvoiceDate.Format(dateLayout),
		Type:            string(inv.Type),
		TotalAmount:     inv.TotalAmount.String(),
		Status:          string(inv.Status),
		RelatedShiftIDs: inv.RelatedShiftIDs,
		Description:     inv.Description,
		PaymentDate:     fmtTimePtr(inv.PaymentDate),
		RejectionReason: inv.RejectionReason,
	}
}

type InvoiceItemDTO struct {
	ID          string `json:"invoiceItemId"`
	InvoiceID   string `json:"invoiceId"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	LineTotal   string `json:"lineTotal"`
}

func toInvoiceItemDTO(item invoicing.Item) InvoiceItemDTO {
	return InvoiceItemDTO{
		ID:          item.ID,
		InvoiceID:   item.InvoiceID,
		Description: item.Description,
		Quantity:    item.Quantity.String(),
		UnitPrice:   item.UnitPrice.String(),
		LineTotal:   item.LineTotal.String(),
	}
}

// CreateInvoiceRequest is the manual invoice payload.
type CreateInvoiceRequest struct {
	Type        string `json:"invoiceType"`
	TotalAmount string `json:"totalAmount"`
	Description string `json:"description"`
}

// =============================================================================
// DISPATCH
// =============================================================================

// ActionRequest is the legacy-style dispatch payload for POST /api/actions.
type ActionRequest struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// =============================================================================
// HELPERS
// =============================================================================

func fmtTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func parseDate(s, field string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q, want YYYY-MM-DD", field, s)
	}
	return t, nil
}
