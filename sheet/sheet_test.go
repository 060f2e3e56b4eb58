package sheet_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/opsdesk/staffcentre/holiday"
	"github.com/opsdesk/staffcentre/invoicing"
	"github.com/opsdesk/staffcentre/sheet"
	"github.com/opsdesk/staffcentre/shifts"
	"github.com/opsdesk/staffcentre/staffdir"
	"github.com/opsdesk/staffcentre/store/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newStores(t *testing.T) (sheet.Stores, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return sheet.Stores{Users: store, Holidays: store, Shifts: store, Invoices: store}, store
}

func seed(t *testing.T, store *sqlite.Store) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2026, time.August, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveUser(ctx, staffdir.User{
		ID: "USR_1", Email: "emma@opsdesk.test", FirstName: "Emma", LastName: "Stone",
		Role: staffdir.RoleEmployee, Department: staffdir.DeptOperations,
		HourlyRate: decimal.RequireFromString("18.75"), AccruedHours: decimal.NewFromInt(140),
		Permanent: true, Status: staffdir.AccountActive, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, store.SaveRequest(ctx, holiday.Request{
		ID: "HREQ_1", UserID: "USR_1", RequestDate: now,
		StartDate: time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.September, 11, 0, 0, 0, 0, time.UTC),
		NumberOfDays: decimal.NewFromInt(5), AccruedHoursUsed: decimal.NewFromInt(35),
		Status: holiday.StatusApproved, CalendarEventID: "ev-1", CalendarID: "cal-holidays",
		Version: 3, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, store.SaveAvailability(ctx, holiday.AvailabilityBlock{
		ID: "AVL_1", UserID: "USR_1",
		StartDate: time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.October, 3, 0, 0, 0, 0, time.UTC),
		Reason:    "Touring", Status: holiday.AvailabilityActive,
		CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, store.SaveShift(ctx, shifts.Shift{
		ID: "SHF_1", Department: staffdir.DeptOperations,
		ShiftDate: time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC),
		StartTime: "18:00", EndTime: "22:00",
		ActualHours: decimal.NewFromInt(4), Description: "Evening cover",
		Status: shifts.StatusCompleted, AssignedUserID: "USR_1",
		DraftGenerated: true, GeneratedInvoiceID: "INV_1",
		CreatedByUserID: "USR_mgr", CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, store.SaveInvoice(ctx, invoicing.Invoice{
		ID: "INV_1", UserID: "USR_1", InvoiceDate: now, Type: invoicing.TypeShiftWork,
		TotalAmount: decimal.RequireFromString("75"), Status: invoicing.StatusDraft,
		RelatedShiftIDs: "SHF_1", Description: "Auto-generated from completed shift",
		CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, store.SaveItem(ctx, invoicing.Item{
		ID: "ITM_1", InvoiceID: "INV_1", Description: "Evening cover",
		Quantity: decimal.NewFromInt(4), UnitPrice: decimal.RequireFromString("18.75"),
		LineTotal: decimal.RequireFromString("75"),
	}))
}

// =============================================================================
// ROUND TRIP
// =============================================================================

func TestExportImport_RoundTrip(t *testing.T) {
	// GIVEN: a populated store
	// WHEN:  exporting to a workbook and importing into a fresh store
	// THEN:  every row survives with its values intact

	src, srcStore := newStores(t)
	seed(t, srcStore)
	path := filepath.Join(t.TempDir(), "export.xlsx")
	ctx := context.Background()

	require.NoError(t, sheet.Export(ctx, path, src))

	dst, dstStore := newStores(t)
	report, err := sheet.Import(ctx, path, dst)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Users)
	assert.Equal(t, 1, report.Holidays)
	assert.Equal(t, 1, report.Availability)
	assert.Equal(t, 1, report.Shifts)
	assert.Equal(t, 1, report.Invoices)
	assert.Equal(t, 1, report.InvoiceItems)

	u, err := dstStore.GetUser(ctx, "USR_1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "emma@opsdesk.test", u.Email)
	assert.Equal(t, "18.75", u.HourlyRate.String())
	assert.True(t, u.Permanent)

	req, err := dstStore.GetRequest(ctx, "HREQ_1")
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, holiday.StatusApproved, req.Status)
	assert.Equal(t, 3, req.Version)
	assert.Equal(t, "ev-1", req.CalendarEventID)
	assert.Equal(t, time.Date(2026, time.September, 7, 0, 0, 0, 0, time.UTC), req.StartDate)

	sh, err := dstStore.GetShift(ctx, "SHF_1")
	require.NoError(t, err)
	require.NotNil(t, sh)
	assert.True(t, sh.DraftGenerated)
	assert.Equal(t, "INV_1", sh.GeneratedInvoiceID)
	assert.Equal(t, "4", sh.ActualHours.String())

	items, err := dstStore.ListItems(ctx, "INV_1")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "18.75", items[0].UnitPrice.String())
}

// =============================================================================
// IMPORT CONTRACT
// =============================================================================

func writeWorkbook(t *testing.T, tabs map[string][][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for tab, rows := range tabs {
		_, err := f.NewSheet(tab)
		require.NoError(t, err)
		for i, vals := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(tab, cell, &vals))
		}
	}
	f.DeleteSheet("Sheet1")
	path := filepath.Join(t.TempDir(), "legacy.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestImport_MissingTabsAreSkipped(t *testing.T) {
	// A workbook holding only a Users tab imports cleanly.
	stores, dstStore := newStores(t)
	path := writeWorkbook(t, map[string][][]any{
		"Users": {
			{"UserID", "Email", "Role"},
			{"USR_9", "carl@opsdesk.test", "Manager"},
		},
	})

	report, err := sheet.Import(context.Background(), path, stores)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Users)
	assert.Zero(t, report.Holidays)

	u, err := dstStore.GetUser(context.Background(), "USR_9")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, staffdir.RoleManager, u.Role)
	// Absent columns fall back to the defaults.
	assert.True(t, u.Permanent)
	assert.Equal(t, staffdir.AccountActive, u.Status)
}

func TestImport_ExtraAndReorderedColumnsTolerated(t *testing.T) {
	// The legacy sheet carried columns the backend never used; order is
	// resolved by header name.
	stores, dstStore := newStores(t)
	path := writeWorkbook(t, map[string][][]any{
		"Users": {
			{"DateOfBirth", "Email", "UserID", "Role", "HourlyRate"},
			{"1990-01-01", "nina@opsdesk.test", "USR_9", "Employee", "42.50"},
		},
	})

	report, err := sheet.Import(context.Background(), path, stores)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Users)

	u, err := dstStore.GetUser(context.Background(), "USR_9")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "nina@opsdesk.test", u.Email)
	assert.Equal(t, "42.5", u.HourlyRate.String())
}

func TestImport_MissingRequiredHeaderRejected(t *testing.T) {
	stores, _ := newStores(t)
	path := writeWorkbook(t, map[string][][]any{
		"Users": {
			{"UserID", "FirstName"}, // no Email, no Role
			{"USR_9", "Carl"},
		},
	})

	_, err := sheet.Import(context.Background(), path, stores)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func TestImport_BlankIDRowsSkipped(t *testing.T) {
	stores, _ := newStores(t)
	path := writeWorkbook(t, map[string][][]any{
		"Users": {
			{"UserID", "Email", "Role"},
			{"", "stray@opsdesk.test", "Employee"},
			{"USR_9", "carl@opsdesk.test", "Employee"},
		},
	})

	report, err := sheet.Import(context.Background(), path, stores)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Users)
}
