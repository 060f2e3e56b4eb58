/*
Package sheet reads and writes the legacy workbook format the system
migrated away from. One tab per table; the first row carries the column
headers and header NAMES, not positions, are the compatibility contract.
Rows with extra or reordered columns import fine; a tab missing a
required header is rejected.
*/
package sheet

import (
	"fmt"
	"strings"
	"time"

	"github.com/opsdesk/staffcentre/holiday"
	"github.com/opsdesk/staffcentre/invoicing"
	"github.com/opsdesk/staffcentre/shifts"
	"github.com/opsdesk/staffcentre/staffdir"
	"github.com/shopspring/decimal"
)

// Tab names, matching the legacy workbook.
const (
	TabUsers        = "Users"
	TabHolidays     = "HolidayRequests"
	TabShifts       = "Shifts"
	TabInvoices     = "Invoices"
	TabInvoiceItems = "InvoiceItems"
	TabAvailability = "Availability"
)

// Legacy column headers per tab. Export writes these in order; import
// resolves them by name so column order does not matter.
var (
	userHeaders = []string{
		"UserID", "Email", "FirstName", "LastName", "Role", "Department",
		"HourlyRate", "HolidayEntitlementAccruedHours", "Permanent",
		"AccountStatus", "CreatedAt", "UpdatedAt",
	}
	holidayHeaders = []string{
		"HolidayRequestID", "UserID", "RequestDate", "StartDate", "EndDate",
		"NumberOfDays", "AccruedHoursUsed", "Status", "ManagerApprovalTimestamp",
		"CFOApprovalTimestamp", "RejectionReason", "CalendarEventID",
		"CalendarID", "Version", "CreatedAt", "UpdatedAt",
	}
	shiftHeaders = []string{
		"ShiftID", "Department", "ShiftDate", "StartTime", "EndTime",
		"ActualHoursWorked", "Description", "Status", "AssignedUserID",
		"AcceptedTimestamp", "CompletedTimestamp", "IsInvoiceDraftGenerated",
		"GeneratedInvoiceID", "CreatedByUserID", "CreatedAt", "UpdatedAt",
	}
	invoiceHeaders = []string{
		"InvoiceID", "UserID", "InvoiceDate", "InvoiceType", "TotalAmount",
		"Status", "RelatedShiftIDs", "DescriptionOrPurpose",
		"ManagerApprovalTimestamp", "CFOApprovalTimestamp", "PaymentDate",
		"RejectionReason", "CreatedAt", "UpdatedAt",
	}
	itemHeaders = []string{
		"InvoiceItemID", "InvoiceID", "Description", "Quantity", "UnitPrice",
		"LineTotal",
	}
	availabilityHeaders = []string{
		"AvailabilityID", "UserID", "StartDate", "EndDate", "Reason",
		"Status", "CalendarEventID", "CreatedAt", "UpdatedAt",
	}
)

// Stores bundles the persistence interfaces the workbook maps onto.
type Stores struct {
	Users    staffdir.Store
	Holidays holiday.Store
	Shifts   shifts.Store
	Invoices invoicing.Store
}

// =============================================================================
// ROW ACCESS
// =============================================================================

// row wraps one data row with its tab's resolved header positions.
type row struct {
	cols map[string]int
	vals []string
}

// resolveHeaders maps header names to column indexes. Names are matched
// exactly; unknown extra columns are ignored.
func resolveHeaders(headerRow []string) map[string]int {
	cols := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	return cols
}

// requireHeaders verifies the tab carries every named column.
func requireHeaders(tab string, cols map[string]int, names ...string) error {
	for _, n := range names {
		if _, ok := cols[n]; !ok {
			return fmt.Errorf("tab %s: missing required column %q", tab, n)
		}
	}
	return nil
}

func (r row) str(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.vals) {
		return ""
	}
	return strings.TrimSpace(r.vals[i])
}

func (r row) dec(name string) decimal.Decimal {
	d, err := decimal.NewFromString(r.str(name))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (r row) boolean(name string) bool {
	switch strings.ToUpper(r.str(name)) {
	case "TRUE", "YES", "1":
		return true
	}
	return false
}

// cellTimeLayouts covers the formats seen in hand-edited workbooks.
var cellTimeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func (r row) when(name string) time.Time {
	s := r.str(name)
	for _, layout := range cellTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func (r row) whenPtr(name string) *time.Time {
	t := r.when(name)
	if t.IsZero() {
		return nil
	}
	return &t
}

// =============================================================================
// CELL FORMATTING
// =============================================================================

func cellTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func cellTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return cellTime(*t)
}

func cellBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
