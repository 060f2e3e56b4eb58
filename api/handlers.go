/*
handlers.go - HTTP API handlers

PURPOSE:
  Exposes the operations backend over REST plus a legacy-style dispatch
  endpoint. Handlers parse and validate input, resolve the authenticated
  principal from the request context, delegate to the domain services and
  wrap results in the success/error envelope.

ENDPOINTS:
  Session:
    GET    /api/session                   Current principal

  Dispatch (legacy client compatibility):
    POST   /api/actions                   {action, payload} for
                                          getUserByEmail, getAllUsers,
                                          createUser, updateUser

  Holidays:
    POST   /api/holidays                  Submit leave request
    GET    /api/holidays/mine             Own requests + balances
    GET    /api/holidays/pending          Manager approval queue
    GET    /api/holidays/team             Department calendar
    POST   /api/holidays/{id}/decision    Approve or reject
    POST   /api/holidays/{id}/cancel      Withdraw own request

  Availability:
    POST   /api/availability              Contractor unavailability block
    GET    /api/availability/mine         Own blocks
    POST   /api/availability/{id}/cancel  Withdraw a block

  Shifts:
    GET    /api/shifts/available          Open offers
    GET    /api/shifts/mine               Own assignments
    POST   /api/shifts                    Offer a shift (manager)
    POST   /api/shifts/{id}/accept        Claim an offer
    POST   /api/shifts/{id}/complete      Record hours worked
    POST   /api/shifts/{id}/cancel        Withdraw an offer (manager)

  Invoices:
    GET    /api/invoices/mine             Own invoices
    GET    /api/invoices/pending          Manager approval queue
    GET    /api/invoices/{id}/items       Line items
    POST   /api/invoices                  Manual invoice
    POST   /api/invoices/{id}/submit      Draft -> Submitted
    POST   /api/invoices/{id}/decision    Approve or reject
    POST   /api/invoices/{id}/paid        Mark paid (CFO)
    DELETE /api/invoices/{id}             Delete (admin)

  Admin:
    DELETE /api/users/{id}                Delete user (admin)
    POST   /api/admin/reconcile           Run the calendar audits now

ERROR HANDLING:
  Domain sentinel errors map to HTTP status via statusForError; every
  error body is {"success": false, "error": "..."}.

SEE ALSO:
  - dto.go: Request/response data structures
  - auth.go: Bearer token middleware
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/opsdesk/staffcentre/calendar"
	"github.com/opsdesk/staffcentre/holiday"
	"github.com/opsdesk/staffcentre/invoicing"
	"github.com/opsdesk/staffcentre/shifts"
	"github.com/opsdesk/staffcentre/staffdir"
	"github.com/shopspring/decimal"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Directory *staffdir.Directory
	Holidays  *holiday.Service
	Shifts    *shifts.Service
	Invoices  *invoicing.Service
	JWTSecret string
}

// NewHandler creates a new handler with the given services.
func NewHandler(dir *staffdir.Directory, holidays *holiday.Service, shiftSvc *shifts.Service, invoices *invoicing.Service, jwtSecret string) *Handler {
	return &Handler{
		Directory: dir,
		Holidays:  holidays,
		Shifts:    shiftSvc,
		Invoices:  invoices,
		JWTSecret: jwtSecret,
	}
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, Envelope{Success: true, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, Envelope{Success: false, Error: err.Error()})
}

// writeDomainError maps a domain error to its HTTP status.
func writeDomainError(w http.ResponseWriter, err error) {
	writeFailure(w, statusForError(err), err)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, staffdir.ErrUserNotFound),
		errors.Is(err, holiday.ErrRequestNotFound),
		errors.Is(err, shifts.ErrShiftNotFound),
		errors.Is(err, invoicing.ErrInvoiceNotFound),
		errors.Is(err, calendar.ErrEventNotFound):
		return http.StatusNotFound

	case errors.Is(err, staffdir.ErrUnauthorized),
		errors.Is(err, shifts.ErrNotAssignee):
		return http.StatusForbidden

	case errors.Is(err, holiday.ErrConflict),
		errors.Is(err, holiday.ErrInvalidTransition),
		errors.Is(err, invoicing.ErrInvalidTransition),
		errors.Is(err, invoicing.ErrAlreadyDrafted),
		errors.Is(err, shifts.ErrShiftUnavailable):
		return http.StatusConflict

	case errors.Is(err, holiday.ErrCalendarUnavailable),
		errors.Is(err, calendar.ErrUnavailable):
		return http.StatusBadGateway

	case errors.Is(err, holiday.ErrInsufficientBalance),
		errors.Is(err, holiday.ErrEmptyRange),
		errors.Is(err, holiday.ErrReasonRequired),
		errors.Is(err, shifts.ErrInvalidHours),
		errors.Is(err, invoicing.ErrInvalidHours),
		errors.Is(err, invoicing.ErrNoHourlyRate),
		errors.Is(err, invoicing.ErrReasonRequired):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// =============================================================================
// SESSION
// =============================================================================

// GetSession returns the authenticated principal.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, toUserDTO(principalFrom(r.Context())))
}

// =============================================================================
// DISPATCH (legacy client compatibility)
// =============================================================================

// Dispatch handles POST /api/actions, the action-name protocol the old
// frontend speaks.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if err := decodeBody(r, &req); err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	principal := principalFrom(r.Context())

	switch req.Action {
	case "getUserByEmail":
		h.dispatchGetUserByEmail(w, r, principal, req.Payload)
	case "getAllUsers":
		h.dispatchGetAllUsers(w, r, principal)
	case "createUser":
		h.dispatchCreateUser(w, r, principal, req.Payload)
	case "updateUser":
		h.dispatchUpdateUser(w, r, principal, req.Payload)
	default:
		writeFailure(w, http.StatusBadRequest, fmt.Errorf("unknown action %q", req.Action))
	}
}

func (h *Handler) dispatchGetUserByEmail(w http.ResponseWriter, r *http.Request, principal *staffdir.User, payload json.RawMessage) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(payload, &body); err != nil || body.Email == "" {
		writeFailure(w, http.StatusBadRequest, fmt.Errorf("email is required"))
		return
	}
	// Self-lookup is open; other records need an elevated role.
	if body.Email != principal.Email && principal.Role == staffdir.RoleEmployee {
		writeDomainError(w, staffdir.ErrUnauthorized)
		return
	}
	u, err := h.Directory.ByEmail(r.Context(), body.Email)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toUserDTO(u))
}

func (h *Handler) dispatchGetAllUsers(w http.ResponseWriter, r *http.Request, principal *staffdir.User) {
	if principal.Role != staffdir.RoleAdministrator && principal.Role != staffdir.RoleManager {
		writeDomainError(w, staffdir.ErrUnauthorized)
		return
	}
	users, err := h.Directory.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]UserDTO, len(users))
	for i := range users {
		dtos[i] = toUserDTO(&users[i])
	}
	writeSuccess(w, http.StatusOK, dtos)
}

func (h *Handler) dispatchCreateUser(w http.ResponseWriter, r *http.Request, principal *staffdir.User, payload json.RawMessage) {
	if principal.Role != staffdir.RoleAdministrator {
		writeDomainError(w, staffdir.ErrUnauthorized)
		return
	}
	var body CreateUserRequest
	if err := json.Unmarshal(payload, &body); err != nil {
		writeFailure(w, http.StatusBadRequest, fmt.Errorf("invalid payload: %w", err))
		return
	}
	permanent := true
	if body.Permanent != nil {
		permanent = *body.Permanent
	}
	u := staffdir.User{
		Email:        body.Email,
		FirstName:    body.FirstName,
		LastName:     body.LastName,
		Role:         staffdir.Role(body.Role),
		Department:   staffdir.Department(body.Department),
		HourlyRate:   parseDecOrZero(body.HourlyRate),
		AccruedHours: parseDecOrZero(body.AccruedHours),
		Permanent:    permanent,
	}
	created, err := h.Directory.Create(r.Context(), u)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toUserDTO(created))
}

func (h *Handler) dispatchUpdateUser(w http.ResponseWriter, r *http.Request, principal *staffdir.User, payload json.RawMessage) {
	if principal.Role != staffdir.RoleAdministrator {
		writeDomainError(w, staffdir.ErrUnauthorized)
		return
	}
	var body UpdateUserRequest
	if err := json.Unmarshal(payload, &body); err != nil || body.UserID == "" {
		writeFailure(w, http.StatusBadRequest, fmt.Errorf("userId is required"))
		return
	}
	upd := staffdir.UserUpdate{
		FirstName: body.FirstName,
		LastName:  body.LastName,
		Permanent: body.Permanent,
	}
	if body.Role != nil {
		role := staffdir.Role(*body.Role)
		upd.Role = &role
	}
	if body.Department != nil {
		dept := staffdir.Department(*body.Department)
		upd.Department = &dept
	}
	if body.Status != nil {
		status := staffdir.AccountStatus(*body.Status)
		upd.Status = &status
	}
	if body.HourlyRate != nil {
		rate, err := decimal.NewFromString(*body.HourlyRate)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, fmt.Errorf("invalid hourlyRate %q", *body.HourlyRate))
			return
		}
		upd.HourlyRate = &rate
	}
	if body.AccruedHours != nil {
		hours, err := decimal.NewFromString(*body.AccruedHours)
		if err != nil {
			writeFailure(w, http.StatusBadRequest, fmt.Errorf("invalid accruedHours %q", *body.AccruedHours))
			return
		}
		upd.AccruedHours = &hours
	}
	updated, err := h.Directory.Update(r.Context(), body.UserID, upd)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toUserDTO(updated))
}

// DeleteUser removes a directory record. Administrator escape hatch.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())
	if principal.Role != staffdir.RoleAdministrator {
		writeDomainError(w, staffdir.ErrUnauthorized)
		return
	}
	if err := h.Directory.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"deleted": chi.URLParam(r, "id")})
}

// =============================================================================
// HOLIDAY HANDLERS
// =============================================================================

// SubmitHoliday creates a new leave request for the principal.
func (h *Handler) SubmitHoliday(w http.ResponseWriter, r *http.Request) {
	var body SubmitHolidayRequest
	if err := decodeBody(r, &body); err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	start, err := parseDate(body.StartDate, "startDate")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	end, err := parseDate(body.EndDate, "endDate")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}

	req, err := h.Holidays.Submit(r.Context(), principalFrom(r.Context()), holiday.SubmitInput{
		StartDate: start,
		EndDate:   end,
		StartHalf: body.StartHalf,
		EndHalf:   body.EndHalf,
		Reason:    body.Reason,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toHolidayRequestDTO(req))
}

// MyHolidays returns the principal's requests and balance summary.
func (h *Handler) MyHolidays(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Holidays.Mine(r.Context(), principalFrom(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dto := MySummaryDTO{
		Requests:      make([]HolidayRequestDTO, len(summary.Requests)),
		DaysTaken:     summary.DaysTaken.String(),
		DaysPending:   summary.DaysPending.String(),
		DaysRemaining: summary.DaysRemaining.String(),
	}
	for i := range summary.Requests {
		dto.Requests[i] = toHolidayRequestDTO(&summary.Requests[i])
	}
	writeSuccess(w, http.StatusOK, dto)
}

// PendingHolidays returns the manager's approval queue.
func (h *Handler) PendingHolidays(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Holidays.PendingForManager(r.Context(), principalFrom(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toTeamEntryDTOs(entries))
}

// TeamHolidays returns the department calendar view.
func (h *Handler) TeamHolidays(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Holidays.TeamCalendar(r.Context(), principalFrom(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toTeamEntryDTOs(entries))
}

func toTeamEntryDTOs(entries []holiday.TeamEntry) []TeamEntryDTO {
	dtos := make([]TeamEntryDTO, len(entries))
	for i := range entries {
		dtos[i] = toTeamEntryDTO(entries[i])
	}
	return dtos
}

// DecideHoliday approves or rejects a request on the principal's behalf.
func (h *Handler) DecideHoliday(w http.ResponseWriter, r *http.Request) {
	var body DecisionRequest
	if err := decodeBody(r, &body); err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	id := chi.URLParam(r, "id")
	principal := principalFrom(r.Context())

	var (
		req *holiday.Request
		err error
	)
	switch body.Action {
	case "approve":
		req, err = h.Holidays.Approve(r.Context(), principal, id)
	case "reject":
		req, err = h.Holidays.Reject(r.Context(), principal, id, body.Reason)
	default:
		writeFailure(w, http.StatusBadRequest, fmt.Errorf("action must be approve or reject"))
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toHolidayRequestDTO(req))
}

// CancelHoliday withdraws the principal's own pending request.
func (h *Handler) CancelHoliday(w http.ResponseWriter, r *http.Request) {
	req, err := h.Holidays.Cancel(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toHolidayRequestDTO(req))
}

// =============================================================================
// AVAILABILITY HANDLERS
// =============================================================================

// SubmitAvailability records a contractor unavailability block.
func (h *Handler) SubmitAvailability(w http.ResponseWriter, r *http.Request) {
	var body SubmitAvailabilityRequest
	if err := decodeBody(r, &body); err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	start, err := parseDate(body.StartDate, "startDate")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	end, err := parseDate(body.EndDate, "endDate")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	block, err := h.Holidays.SubmitAvailability(r.Context(), principalFrom(r.Context()), holiday.AvailabilityInput{
		StartDate: start,
		EndDate:   end,
		Reason:    body.Reason,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toAvailabilityDTO(block))
}

// MyAvailability returns the principal's non-cancelled blocks.
func (h *Handler) MyAvailability(w http.ResponseWriter, r *http.Request) {
	blocks, err := h.Holidays.MyAvailability(r.Context(), principalFrom(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]AvailabilityDTO, len(blocks))
	for i := range blocks {
		dtos[i] = toAvailabilityDTO(&blocks[i])
	}
	writeSuccess(w, http.StatusOK, dtos)
}

// CancelAvailability withdraws one of the principal's blocks.
func (h *Handler) CancelAvailability(w http.ResponseWriter, r *http.Request) {
	block, err := h.Holidays.CancelAvailability(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toAvailabilityDTO(block))
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// AvailableShifts returns open offers.
func (h *Handler) AvailableShifts(w http.ResponseWriter, r *http.Request) {
	open, err := h.Shifts.Available(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toShiftDTOs(open))
}

// MyShifts returns the principal's assignments.
func (h *Handler) MyShifts(w http.ResponseWriter, r *http.Request) {
	mine, err := h.Shifts.Mine(r.Context(), principalFrom(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toShiftDTOs(mine))
}

func toShiftDTOs(in []shifts.Shift) []ShiftDTO {
	dtos := make([]ShiftDTO, len(in))
	for i := range in {
		dtos[i] = toShiftDTO(&in[i])
	}
	return dtos
}

// CreateShift publishes a new offer.
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var body CreateShiftRequest
	if err := decodeBody(r, &body); err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	date, err := parseDate(body.ShiftDate, "shiftDate")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	shift, err := h.Shifts.Create(r.Context(), principalFrom(r.Context()), shifts.CreateInput{
		Department:  staffdir.Department(body.Department),
		ShiftDate:   date,
		StartTime:   body.StartTime,
		EndTime:     body.EndTime,
		Description: body.Description,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toShiftDTO(shift))
}

// AcceptShift claims an open offer for the principal.
func (h *Handler) AcceptShift(w http.ResponseWriter, r *http.Request) {
	shift, err := h.Shifts.Accept(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toShiftDTO(shift))
}

// CompleteShift records actual hours and triggers draft invoicing.
func (h *Handler) CompleteShift(w http.ResponseWriter, r *http.Request) {
	var body CompleteShiftRequest
	if err := decodeBody(r, &body); err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	hours, err := decimal.NewFromString(body.ActualHours)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, fmt.Errorf("invalid actualHours %q", body.ActualHours))
		return
	}
	shift, err := h.Shifts.Complete(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"), hours)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toShiftDTO(shift))
}

// CancelShift withdraws an open offer.
func (h *Handler) CancelShift(w http.ResponseWriter, r *http.Request) {
	shift, err := h.Shifts.Cancel(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toShiftDTO(shift))
}

// =============================================================================
// INVOICE HANDLERS
// =============================================================================

// MyInvoices returns the principal's invoices.
func (h *Handler) MyInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.Invoices.Mine(r.Context(), principalFrom(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]InvoiceDTO, len(invoices))
	for i := range invoices {
		dtos[i] = toInvoiceDTO(&invoices[i])
	}
	writeSuccess(w, http.StatusOK, dtos)
}

// PendingInvoices returns the manager's invoice approval queue.
func (h *Handler) PendingInvoices(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Invoices.PendingForManager(r.Context(), principalFrom(r.Context()))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	type pendingDTO struct {
		InvoiceDTO
		EmployeeName string `json:"employeeName"`
	}
	dtos := make([]pendingDTO, len(rows))
	for i := range rows {
		dtos[i] = pendingDTO{
			InvoiceDTO:   toInvoiceDTO(&rows[i].Invoice),
			EmployeeName: rows[i].EmployeeName,
		}
	}
	writeSuccess(w, http.StatusOK, dtos)
}

// InvoiceItems returns the line items of one invoice.
func (h *Handler) InvoiceItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Invoices.Items(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	dtos := make([]InvoiceItemDTO, len(items))
	for i := range items {
		dtos[i] = toInvoiceItemDTO(items[i])
	}
	writeSuccess(w, http.StatusOK, dtos)
}

// CreateInvoice records a manual Draft invoice for the principal.
func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var body CreateInvoiceRequest
	if err := decodeBody(r, &body); err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	amount, err := decimal.NewFromString(body.TotalAmount)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, fmt.Errorf("invalid totalAmount %q", body.TotalAmount))
		return
	}
	inv, err := h.Invoices.CreateManual(r.Context(), principalFrom(r.Context()), invoicing.ManualInput{
		Type:        invoicing.Type(body.Type),
		TotalAmount: amount,
		Description: body.Description,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, toInvoiceDTO(inv))
}

// SubmitInvoice moves a Draft into the approval queue.
func (h *Handler) SubmitInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Invoices.Submit(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toInvoiceDTO(inv))
}

// DecideInvoice approves or rejects an invoice.
func (h *Handler) DecideInvoice(w http.ResponseWriter, r *http.Request) {
	var body DecisionRequest
	if err := decodeBody(r, &body); err != nil {
		writeFailure(w, http.StatusBadRequest, err)
		return
	}
	id := chi.URLParam(r, "id")
	principal := principalFrom(r.Context())

	var (
		inv *invoicing.Invoice
		err error
	)
	switch body.Action {
	case "approve":
		inv, err = h.Invoices.Approve(r.Context(), principal, id)
	case "reject":
		inv, err = h.Invoices.Reject(r.Context(), principal, id, body.Reason)
	default:
		writeFailure(w, http.StatusBadRequest, fmt.Errorf("action must be approve or reject"))
		return
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toInvoiceDTO(inv))
}

// PayInvoice marks a fully approved invoice as paid.
func (h *Handler) PayInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Invoices.MarkPaid(r.Context(), principalFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, toInvoiceDTO(inv))
}

// DeleteInvoice removes an invoice. Administrator only.
func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Invoices.Delete(r.Context(), principalFrom(r.Context()), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]string{"deleted": id})
}

// =============================================================================
// ADMIN HANDLERS
// =============================================================================

// auditDTO flattens a calendar audit report for the wire.
type auditDTO struct {
	Calendar       string   `json:"calendar"`
	WindowStart    string   `json:"windowStart"`
	WindowEnd      string   `json:"windowEnd"`
	OrphanedEvents []string `json:"orphanedEventIds"`
	MissingEvents  []string `json:"missingRecordIds"`
	DeletedOrphans int      `json:"deletedOrphans"`
}

func toAuditDTO(name string, rep *calendar.AuditReport) auditDTO {
	dto := auditDTO{
		Calendar:       name,
		WindowStart:    rep.WindowStart.Format(dateLayout),
		WindowEnd:      rep.WindowEnd.Format(dateLayout),
		MissingEvents:  rep.MissingEvents,
		DeletedOrphans: rep.DeletedOrphans,
	}
	for _, ev := range rep.OrphanedEvents {
		dto.OrphanedEvents = append(dto.OrphanedEvents, ev.ID)
	}
	return dto
}

// Reconcile runs both calendar audits over a one-year window centred on
// today and returns the drift found. Manager, CFO or administrator.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	principal := principalFrom(r.Context())
	if principal.Role == staffdir.RoleEmployee {
		writeDomainError(w, staffdir.ErrUnauthorized)
		return
	}

	now := time.Now().UTC()
	from, to := now.AddDate(0, -6, 0), now.AddDate(0, 6, 0)

	holidayReport, err := h.Holidays.AuditHolidays(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	availabilityReport, err := h.Holidays.AuditAvailability(r.Context(), from, to)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, []auditDTO{
		toAuditDTO("holidays", holidayReport),
		toAuditDTO("availability", availabilityReport),
	})
}

func parseDecOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
