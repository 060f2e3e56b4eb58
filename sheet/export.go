/*
export.go - Workbook export

PURPOSE:
  Writes the full store contents to a workbook in the legacy tab layout,
  so existing reporting built on the old format keeps working.
*/
package sheet

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Export writes every table to a workbook at path.
func Export(ctx context.Context, path string, stores Stores) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := exportUsers(ctx, f, stores); err != nil {
		return err
	}
	if err := exportHolidays(ctx, f, stores); err != nil {
		return err
	}
	if err := exportAvailability(ctx, f, stores); err != nil {
		return err
	}
	if err := exportShifts(ctx, f, stores); err != nil {
		return err
	}
	if err := exportInvoices(ctx, f, stores); err != nil {
		return err
	}

	// Drop excelize's default sheet so the workbook holds only our tabs.
	f.DeleteSheet("Sheet1")

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// writeTab creates a tab with its header row and data rows.
func writeTab(f *excelize.File, tab string, headers []string, rows [][]any) error {
	if _, err := f.NewSheet(tab); err != nil {
		return fmt.Errorf("tab %s: %w", tab, err)
	}
	headerRow := make([]any, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(tab, "A1", &headerRow); err != nil {
		return fmt.Errorf("tab %s: %w", tab, err)
	}
	for i, vals := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(tab, cell, &vals); err != nil {
			return fmt.Errorf("tab %s row %d: %w", tab, i+2, err)
		}
	}
	return nil
}

func exportUsers(ctx context.Context, f *excelize.File, stores Stores) error {
	users, err := stores.Users.ListUsers(ctx)
	if err != nil {
		return err
	}
	rows := make([][]any, 0, len(users))
	for _, u := range users {
		rows = append(rows, []any{
			u.ID, u.Email, u.FirstName, u.LastName, string(u.Role),
			string(u.Department), u.HourlyRate.String(), u.AccruedHours.String(),
			cellBool(u.Permanent), string(u.Status),
			cellTime(u.CreatedAt), cellTime(u.UpdatedAt),
		})
	}
	return writeTab(f, TabUsers, userHeaders, rows)
}

func exportHolidays(ctx context.Context, f *excelize.File, stores Stores) error {
	requests, err := stores.Holidays.ListRequests(ctx)
	if err != nil {
		return err
	}
	rows := make([][]any, 0, len(requests))
	for _, r := range requests {
		rows = append(rows, []any{
			r.ID, r.UserID, cellTime(r.RequestDate), cellTime(r.StartDate),
			cellTime(r.EndDate), r.NumberOfDays.String(), r.AccruedHoursUsed.String(),
			string(r.Status), cellTimePtr(r.ManagerApprovedAt), cellTimePtr(r.CFOApprovedAt),
			r.RejectionReason, r.CalendarEventID, r.CalendarID, r.Version,
			cellTime(r.CreatedAt), cellTime(r.UpdatedAt),
		})
	}
	return writeTab(f, TabHolidays, holidayHeaders, rows)
}

func exportAvailability(ctx context.Context, f *excelize.File, stores Stores) error {
	blocks, err := stores.Holidays.ListAvailability(ctx)
	if err != nil {
		return err
	}
	rows := make([][]any, 0, len(blocks))
	for _, b := range blocks {
		rows = append(rows, []any{
			b.ID, b.UserID, cellTime(b.StartDate), cellTime(b.EndDate),
			b.Reason, string(b.Status), b.CalendarEventID,
			cellTime(b.CreatedAt), cellTime(b.UpdatedAt),
		})
	}
	return writeTab(f, TabAvailability, availabilityHeaders, rows)
}

func exportShifts(ctx context.Context, f *excelize.File, stores Stores) error {
	all, err := stores.Shifts.ListShifts(ctx)
	if err != nil {
		return err
	}
	rows := make([][]any, 0, len(all))
	for _, sh := range all {
		rows = append(rows, []any{
			sh.ID, string(sh.Department), cellTime(sh.ShiftDate), sh.StartTime,
			sh.EndTime, sh.ActualHours.String(), sh.Description, string(sh.Status),
			sh.AssignedUserID, cellTimePtr(sh.AcceptedAt), cellTimePtr(sh.CompletedAt),
			cellBool(sh.DraftGenerated), sh.GeneratedInvoiceID, sh.CreatedByUserID,
			cellTime(sh.CreatedAt), cellTime(sh.UpdatedAt),
		})
	}
	return writeTab(f, TabShifts, shiftHeaders, rows)
}

func exportInvoices(ctx context.Context, f *excelize.File, stores Stores) error {
	invoices, err := stores.Invoices.ListInvoices(ctx)
	if err != nil {
		return err
	}
	invoiceRows := make([][]any, 0, len(invoices))
	var itemRows [][]any
	for _, inv := range invoices {
		invoiceRows = append(invoiceRows, []any{
			inv.ID, inv.UserID, cellTime(inv.InvoiceDate), string(inv.Type),
			inv.TotalAmount.String(), string(inv.Status), inv.RelatedShiftIDs,
			inv.Description, cellTimePtr(inv.ManagerApprovedAt),
			cellTimePtr(inv.CFOApprovedAt), cellTimePtr(inv.PaymentDate),
			inv.RejectionReason, cellTime(inv.CreatedAt), cellTime(inv.UpdatedAt),
		})
		items, err := stores.Invoices.ListItems(ctx, inv.ID)
		if err != nil {
			return err
		}
		for _, item := range items {
			itemRows = append(itemRows, []any{
				item.ID, item.InvoiceID, item.Description,
				item.Quantity.String(), item.UnitPrice.String(), item.LineTotal.String(),
			})
		}
	}
	if err := writeTab(f, TabInvoices, invoiceHeaders, invoiceRows); err != nil {
		return err
	}
	return writeTab(f, TabInvoiceItems, itemHeaders, itemRows)
}
