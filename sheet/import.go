/*
import.go - Workbook import

PURPOSE:
  Loads a legacy workbook into the store. Each known tab is optional; a
  present tab must carry its required headers. Rows import in sheet
  order, preserving the IDs the workbook already assigned.
*/
package sheet

import (
	"context"
	"fmt"

	"github.com/opsdesk/staffcentre/holiday"
	"github.com/opsdesk/staffcentre/invoicing"
	"github.com/opsdesk/staffcentre/shifts"
	"github.com/opsdesk/staffcentre/staffdir"
	"github.com/xuri/excelize/v2"
)

// ImportReport counts what one import run loaded.
type ImportReport struct {
	Users        int
	Holidays     int
	Availability int
	Shifts       int
	Invoices     int
	InvoiceItems int
}

// Import reads the workbook at path into the stores.
func Import(ctx context.Context, path string, stores Stores) (*ImportReport, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	report := &ImportReport{}
	steps := []func(context.Context, *excelize.File, Stores, *ImportReport) error{
		importUsers,
		importHolidays,
		importAvailability,
		importShifts,
		importInvoices,
		importItems,
	}
	for _, step := range steps {
		if err := step(ctx, f, stores, report); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// tabRows returns the data rows of a tab with headers resolved, or
// (nil, nil) when the tab is absent or empty.
func tabRows(f *excelize.File, tab string, required ...string) ([]row, error) {
	idx, err := f.GetSheetIndex(tab)
	if err != nil || idx < 0 {
		return nil, nil
	}
	raw, err := f.GetRows(tab)
	if err != nil {
		return nil, fmt.Errorf("tab %s: %w", tab, err)
	}
	if len(raw) < 2 {
		return nil, nil
	}
	cols := resolveHeaders(raw[0])
	if err := requireHeaders(tab, cols, required...); err != nil {
		return nil, err
	}
	rows := make([]row, 0, len(raw)-1)
	for _, vals := range raw[1:] {
		rows = append(rows, row{cols: cols, vals: vals})
	}
	return rows, nil
}

func importUsers(ctx context.Context, f *excelize.File, stores Stores, rep *ImportReport) error {
	rows, err := tabRows(f, TabUsers, "UserID", "Email", "Role")
	if err != nil {
		return err
	}
	for _, r := range rows {
		if r.str("UserID") == "" {
			continue
		}
		permanent := true
		if _, ok := r.cols["Permanent"]; ok {
			permanent = r.boolean("Permanent")
		}
		u := staffdir.User{
			ID:           r.str("UserID"),
			Email:        r.str("Email"),
			FirstName:    r.str("FirstName"),
			LastName:     r.str("LastName"),
			Role:         staffdir.Role(r.str("Role")),
			Department:   staffdir.Department(r.str("Department")),
			HourlyRate:   r.dec("HourlyRate"),
			AccruedHours: r.dec("HolidayEntitlementAccruedHours"),
			Permanent:    permanent,
			Status:       staffdir.AccountStatus(r.str("AccountStatus")),
			CreatedAt:    r.when("CreatedAt"),
			UpdatedAt:    r.when("UpdatedAt"),
		}
		if u.Status == "" {
			u.Status = staffdir.AccountActive
		}
		if err := stores.Users.SaveUser(ctx, u); err != nil {
			return fmt.Errorf("tab %s: user %s: %w", TabUsers, u.ID, err)
		}
		rep.Users++
	}
	return nil
}

func importHolidays(ctx context.Context, f *excelize.File, stores Stores, rep *ImportReport) error {
	rows, err := tabRows(f, TabHolidays, "HolidayRequestID", "UserID", "StartDate", "EndDate", "Status")
	if err != nil {
		return err
	}
	for _, r := range rows {
		if r.str("HolidayRequestID") == "" {
			continue
		}
		version := 1
		if v := r.dec("Version"); v.IsPositive() {
			version = int(v.IntPart())
		}
		req := holiday.Request{
			ID:                r.str("HolidayRequestID"),
			UserID:            r.str("UserID"),
			RequestDate:       r.when("RequestDate"),
			StartDate:         r.when("StartDate"),
			EndDate:           r.when("EndDate"),
			NumberOfDays:      r.dec("NumberOfDays"),
			AccruedHoursUsed:  r.dec("AccruedHoursUsed"),
			Status:            holiday.Status(r.str("Status")),
			ManagerApprovedAt: r.whenPtr("ManagerApprovalTimestamp"),
			CFOApprovedAt:     r.whenPtr("CFOApprovalTimestamp"),
			RejectionReason:   r.str("RejectionReason"),
			CalendarEventID:   r.str("CalendarEventID"),
			CalendarID:        r.str("CalendarID"),
			Version:           version,
			CreatedAt:         r.when("CreatedAt"),
			UpdatedAt:         r.when("UpdatedAt"),
		}
		if err := stores.Holidays.SaveRequest(ctx, req); err != nil {
			return fmt.Errorf("tab %s: request %s: %w", TabHolidays, req.ID, err)
		}
		rep.Holidays++
	}
	return nil
}

func importAvailability(ctx context.Context, f *excelize.File, stores Stores, rep *ImportReport) error {
	rows, err := tabRows(f, TabAvailability, "AvailabilityID", "UserID", "StartDate", "EndDate")
	if err != nil {
		return err
	}
	for _, r := range rows {
		if r.str("AvailabilityID") == "" {
			continue
		}
		status := holiday.AvailabilityStatus(r.str("Status"))
		if status == "" {
			status = holiday.AvailabilityActive
		}
		block := holiday.AvailabilityBlock{
			ID:              r.str("AvailabilityID"),
			UserID:          r.str("UserID"),
			StartDate:       r.when("StartDate"),
			EndDate:         r.when("EndDate"),
			Reason:          r.str("Reason"),
			Status:          status,
			CalendarEventID: r.str("CalendarEventID"),
			CreatedAt:       r.when("CreatedAt"),
			UpdatedAt:       r.when("UpdatedAt"),
		}
		if err := stores.Holidays.SaveAvailability(ctx, block); err != nil {
			return fmt.Errorf("tab %s: block %s: %w", TabAvailability, block.ID, err)
		}
		rep.Availability++
	}
	return nil
}

func importShifts(ctx context.Context, f *excelize.File, stores Stores, rep *ImportReport) error {
	rows, err := tabRows(f, TabShifts, "ShiftID", "Department", "ShiftDate", "Status")
	if err != nil {
		return err
	}
	for _, r := range rows {
		if r.str("ShiftID") == "" {
			continue
		}
		sh := shifts.Shift{
			ID:                 r.str("ShiftID"),
			Department:         staffdir.Department(r.str("Department")),
			ShiftDate:          r.when("ShiftDate"),
			StartTime:          r.str("StartTime"),
			EndTime:            r.str("EndTime"),
			ActualHours:        r.dec("ActualHoursWorked"),
			Description:        r.str("Description"),
			Status:             shifts.Status(r.str("Status")),
			AssignedUserID:     r.str("AssignedUserID"),
			AcceptedAt:         r.whenPtr("AcceptedTimestamp"),
			CompletedAt:        r.whenPtr("CompletedTimestamp"),
			DraftGenerated:     r.boolean("IsInvoiceDraftGenerated"),
			GeneratedInvoiceID: r.str("GeneratedInvoiceID"),
			CreatedByUserID:    r.str("CreatedByUserID"),
			CreatedAt:          r.when("CreatedAt"),
			UpdatedAt:          r.when("UpdatedAt"),
		}
		if err := stores.Shifts.SaveShift(ctx, sh); err != nil {
			return fmt.Errorf("tab %s: shift %s: %w", TabShifts, sh.ID, err)
		}
		rep.Shifts++
	}
	return nil
}

func importInvoices(ctx context.Context, f *excelize.File, stores Stores, rep *ImportReport) error {
	rows, err := tabRows(f, TabInvoices, "InvoiceID", "UserID", "InvoiceType", "Status")
	if err != nil {
		return err
	}
	for _, r := range rows {
		if r.str("InvoiceID") == "" {
			continue
		}
		inv := invoicing.Invoice{
			ID:                r.str("InvoiceID"),
			UserID:            r.str("UserID"),
			InvoiceDate:       r.when("InvoiceDate"),
			Type:              invoicing.Type(r.str("InvoiceType")),
			TotalAmount:       r.dec("TotalAmount"),
			Status:            invoicing.Status(r.str("Status")),
			RelatedShiftIDs:   r.str("RelatedShiftIDs"),
			Description:       r.str("DescriptionOrPurpose"),
			ManagerApprovedAt: r.whenPtr("ManagerApprovalTimestamp"),
			CFOApprovedAt:     r.whenPtr("CFOApprovalTimestamp"),
			PaymentDate:       r.whenPtr("PaymentDate"),
			RejectionReason:   r.str("RejectionReason"),
			CreatedAt:         r.when("CreatedAt"),
			UpdatedAt:         r.when("UpdatedAt"),
		}
		if err := stores.Invoices.SaveInvoice(ctx, inv); err != nil {
			return fmt.Errorf("tab %s: invoice %s: %w", TabInvoices, inv.ID, err)
		}
		rep.Invoices++
	}
	return nil
}

func importItems(ctx context.Context, f *excelize.File, stores Stores, rep *ImportReport) error {
	rows, err := tabRows(f, TabInvoiceItems, "InvoiceItemID", "InvoiceID")
	if err != nil {
		return err
	}
	for _, r := range rows {
		if r.str("InvoiceItemID") == "" {
			continue
		}
		item := invoicing.Item{
			ID:          r.str("InvoiceItemID"),
			InvoiceID:   r.str("InvoiceID"),
			Description: r.str("Description"),
			Quantity:    r.dec("Quantity"),
			UnitPrice:   r.dec("UnitPrice"),
			LineTotal:   r.dec("LineTotal"),
		}
		if err := stores.Invoices.SaveItem(ctx, item); err != nil {
			return fmt.Errorf("tab %s: item %s: %w", TabInvoiceItems, item.ID, err)
		}
		rep.InvoiceItems++
	}
	return nil
}
