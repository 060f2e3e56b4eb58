/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements every persistence contract (staffdir.Store, holiday.Store,
  shifts.Store, invoicing.Store) on a single SQLite database. The schema
  mirrors the legacy workbook tabs one table per tab, which keeps the
  sheet import/export round trip straightforward.

INTERFACES IMPLEMENTED:
  staffdir.Store:  user directory records
  holiday.Store:   leave requests, availability blocks, entitlement debits
  shifts.Store:    shift offers and assignments
  invoicing.Store: invoices and line items

CONCURRENCY:
  Holiday request rows carry a version column. UpdateRequest compares and
  swaps it; a mismatch returns holiday.ErrConflict so racing approvers
  resolve to one winner. A sync.RWMutex guards the connection on top of
  SQLite's own single-writer model.

ENCODING:
  Decimals are stored as TEXT (exact, no float drift), timestamps as
  RFC3339 TEXT, nullable timestamps as NULL.

WAL MODE:
  The database is opened with WAL so readers do not block behind the
  writer and crash recovery is cheap.

USAGE:
  store, err := sqlite.New("./data/staffcentre.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/opsdesk/staffcentre/holiday"
	"github.com/opsdesk/staffcentre/invoicing"
	"github.com/opsdesk/staffcentre/shifts"
	"github.com/opsdesk/staffcentre/staffdir"
	"github.com/shopspring/decimal"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite is single-writer anyway, and a pooled
	// :memory: database would otherwise be a different database per
	// connection.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Users (directory records)
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		department TEXT NOT NULL DEFAULT 'N/A',
		hourly_rate TEXT NOT NULL DEFAULT '0',
		accrued_hours TEXT NOT NULL DEFAULT '0',
		permanent BOOLEAN NOT NULL DEFAULT TRUE,
		status TEXT NOT NULL DEFAULT 'Active',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	CREATE INDEX IF NOT EXISTS idx_users_department ON users(department);

	-- Holiday requests; version is the optimistic concurrency token
	CREATE TABLE IF NOT EXISTS holiday_requests (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		request_date TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		number_of_days TEXT NOT NULL,
		accrued_hours_used TEXT NOT NULL,
		status TEXT NOT NULL,
		manager_approved_at TEXT,
		cfo_approved_at TEXT,
		rejection_reason TEXT NOT NULL DEFAULT '',
		calendar_event_id TEXT NOT NULL DEFAULT '',
		calendar_id TEXT NOT NULL DEFAULT '',
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_user ON holiday_requests(user_id);
	CREATE INDEX IF NOT EXISTS idx_requests_status ON holiday_requests(status);

	-- Contractor availability blocks
	CREATE TABLE IF NOT EXISTS availability_blocks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		calendar_event_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_availability_user ON availability_blocks(user_id);

	-- Shift offers and assignments
	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		department TEXT NOT NULL,
		shift_date TEXT NOT NULL,
		start_time TEXT NOT NULL DEFAULT '',
		end_time TEXT NOT NULL DEFAULT '',
		actual_hours TEXT NOT NULL DEFAULT '0',
		description TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		assigned_user_id TEXT NOT NULL DEFAULT '',
		accepted_at TEXT,
		completed_at TEXT,
		draft_generated BOOLEAN NOT NULL DEFAULT FALSE,
		generated_invoice_id TEXT NOT NULL DEFAULT '',
		created_by_user_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_shifts_assigned ON shifts(assigned_user_id);
	CREATE INDEX IF NOT EXISTS idx_shifts_status ON shifts(status);

	-- Invoices and their line items
	CREATE TABLE IF NOT EXISTS invoices (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		invoice_date TEXT NOT NULL,
		invoice_type TEXT NOT NULL,
		total_amount TEXT NOT NULL DEFAULT '0',
		status TEXT NOT NULL,
		related_shift_ids TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		manager_approved_at TEXT,
		cfo_approved_at TEXT,
		payment_date TEXT,
		rejection_reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_invoices_user ON invoices(user_id);
	CREATE INDEX IF NOT EXISTS idx_invoices_status ON invoices(status);

	CREATE TABLE IF NOT EXISTS invoice_items (
		id TEXT PRIMARY KEY,
		invoice_id TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		quantity TEXT NOT NULL DEFAULT '0',
		unit_price TEXT NOT NULL DEFAULT '0',
		line_total TEXT NOT NULL DEFAULT '0'
	);

	CREATE INDEX IF NOT EXISTS idx_items_invoice ON invoice_items(invoice_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// USERS (staffdir.Store interface)
// =============================================================================

const userColumns = `id, email, first_name, last_name, role, department,
	hourly_rate, accrued_hours, permanent, status, created_at, updated_at`

// GetUserByEmail returns the first record matching email, or (nil, nil).
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*staffdir.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? ORDER BY rowid LIMIT 1`, email)
	return scanUser(row)
}

// GetUser returns the record with the given id, or (nil, nil).
func (s *Store) GetUser(ctx context.Context, id string) (*staffdir.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// ListUsers returns every record in insertion order.
func (s *Store) ListUsers(ctx context.Context) ([]staffdir.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []staffdir.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// SaveUser inserts a new directory record.
func (s *Store) SaveUser(ctx context.Context, u staffdir.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.FirstName, u.LastName, string(u.Role), string(u.Department),
		u.HourlyRate.String(), u.AccruedHours.String(), u.Permanent, string(u.Status),
		fmtTime(u.CreatedAt), fmtTime(u.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// UpdateUser overwrites a directory record.
func (s *Store) UpdateUser(ctx context.Context, u staffdir.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET email = ?, first_name = ?, last_name = ?, role = ?,
			department = ?, hourly_rate = ?, accrued_hours = ?, permanent = ?,
			status = ?, updated_at = ?
		WHERE id = ?`,
		u.Email, u.FirstName, u.LastName, string(u.Role), string(u.Department),
		u.HourlyRate.String(), u.AccruedHours.String(), u.Permanent, string(u.Status),
		fmtTime(u.UpdatedAt), u.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// DeleteUser removes a directory record.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func scanUser(row scanner) (*staffdir.User, error) {
	var (
		u                    staffdir.User
		role, dept, status   string
		rate, hours          string
		createdAt, updatedAt string
	)
	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &role, &dept,
		&rate, &hours, &u.Permanent, &status, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.Role = staffdir.Role(role)
	u.Department = staffdir.Department(dept)
	u.Status = staffdir.AccountStatus(status)
	u.HourlyRate = parseDec(rate)
	u.AccruedHours = parseDec(hours)
	u.CreatedAt = parseTime(createdAt)
	u.UpdatedAt = parseTime(updatedAt)
	return &u, nil
}

// =============================================================================
// HOLIDAY REQUESTS (holiday.Store interface)
// =============================================================================

const requestColumns = `id, user_id, request_date, start_date, end_date,
	number_of_days, accrued_hours_used, status, manager_approved_at,
	cfo_approved_at, rejection_reason, calendar_event_id, calendar_id,
	version, created_at, updated_at`

// SaveRequest inserts a new leave request.
func (s *Store) SaveRequest(ctx context.Context, r holiday.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO holiday_requests (`+requestColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, fmtTime(r.RequestDate), fmtTime(r.StartDate), fmtTime(r.EndDate),
		r.NumberOfDays.String(), r.AccruedHoursUsed.String(), string(r.Status),
		fmtTimePtr(r.ManagerApprovedAt), fmtTimePtr(r.CFOApprovedAt),
		r.RejectionReason, r.CalendarEventID, r.CalendarID,
		r.Version, fmtTime(r.CreatedAt), fmtTime(r.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}
	return nil
}

// GetRequest returns one request, or (nil, nil).
func (s *Store) GetRequest(ctx context.Context, id string) (*holiday.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM holiday_requests WHERE id = ?`, id)
	return scanRequest(row)
}

// UpdateRequest overwrites a request row, comparing-and-swapping on the
// version column. A stale version returns holiday.ErrConflict.
func (s *Store) UpdateRequest(ctx context.Context, r holiday.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `
		UPDATE holiday_requests SET
			status = ?, number_of_days = ?, accrued_hours_used = ?,
			manager_approved_at = ?, cfo_approved_at = ?, rejection_reason = ?,
			calendar_event_id = ?, calendar_id = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		string(r.Status), r.NumberOfDays.String(), r.AccruedHoursUsed.String(),
		fmtTimePtr(r.ManagerApprovedAt), fmtTimePtr(r.CFOApprovedAt), r.RejectionReason,
		r.CalendarEventID, r.CalendarID,
		fmtTime(time.Now().UTC()), r.ID, r.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		if err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM holiday_requests WHERE id = ?`, r.ID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return fmt.Errorf("%w: %s", holiday.ErrRequestNotFound, r.ID)
		}
		return fmt.Errorf("%w: request %s was modified concurrently", holiday.ErrConflict, r.ID)
	}
	return nil
}

// ListRequests returns every request in insertion order.
func (s *Store) ListRequests(ctx context.Context) ([]holiday.Request, error) {
	return s.queryRequests(ctx,
		`SELECT `+requestColumns+` FROM holiday_requests ORDER BY rowid`)
}

// ListRequestsByUser returns one user's requests in insertion order.
func (s *Store) ListRequestsByUser(ctx context.Context, userID string) ([]holiday.Request, error) {
	return s.queryRequests(ctx,
		`SELECT `+requestColumns+` FROM holiday_requests WHERE user_id = ? ORDER BY rowid`, userID)
}

func (s *Store) queryRequests(ctx context.Context, query string, args ...any) ([]holiday.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []holiday.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *r)
	}
	return requests, rows.Err()
}

func scanRequest(row scanner) (*holiday.Request, error) {
	var (
		r                       holiday.Request
		requestDate, start, end string
		days, hours, status     string
		managerAt, cfoAt        sql.NullString
		createdAt, updatedAt    string
	)
	err := row.Scan(&r.ID, &r.UserID, &requestDate, &start, &end,
		&days, &hours, &status, &managerAt, &cfoAt,
		&r.RejectionReason, &r.CalendarEventID, &r.CalendarID,
		&r.Version, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan request: %w", err)
	}
	r.RequestDate = parseTime(requestDate)
	r.StartDate = parseTime(start)
	r.EndDate = parseTime(end)
	r.NumberOfDays = parseDec(days)
	r.AccruedHoursUsed = parseDec(hours)
	r.Status = holiday.Status(status)
	r.ManagerApprovedAt = parseTimePtr(managerAt)
	r.CFOApprovedAt = parseTimePtr(cfoAt)
	r.CreatedAt = parseTime(createdAt)
	r.UpdatedAt = parseTime(updatedAt)
	return &r, nil
}

// DeductAccruedHours subtracts hours from the user's stored entitlement,
// floored at zero, inside one transaction.
func (s *Store) DeductAccruedHours(ctx context.Context, userID string, hours decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var raw string
	if err := tx.QueryRowContext(ctx,
		`SELECT accrued_hours FROM users WHERE id = ?`, userID).Scan(&raw); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: %s", staffdir.ErrUserNotFound, userID)
		}
		return fmt.Errorf("failed to read balance: %w", err)
	}

	remaining := holiday.DeductHours(parseDec(raw), hours)
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET accrued_hours = ?, updated_at = ? WHERE id = ?`,
		remaining.String(), fmtTime(time.Now().UTC()), userID); err != nil {
		return fmt.Errorf("failed to write balance: %w", err)
	}

	return tx.Commit()
}

// =============================================================================
// AVAILABILITY BLOCKS (holiday.Store interface)
// =============================================================================

const availabilityColumns = `id, user_id, start_date, end_date, reason,
	status, calendar_event_id, created_at, updated_at`

// SaveAvailability inserts a new availability block.
func (s *Store) SaveAvailability(ctx context.Context, b holiday.AvailabilityBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO availability_blocks (`+availabilityColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID, fmtTime(b.StartDate), fmtTime(b.EndDate), b.Reason,
		string(b.Status), b.CalendarEventID, fmtTime(b.CreatedAt), fmtTime(b.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert availability block: %w", err)
	}
	return nil
}

// GetAvailability returns one block, or (nil, nil).
func (s *Store) GetAvailability(ctx context.Context, id string) (*holiday.AvailabilityBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+availabilityColumns+` FROM availability_blocks WHERE id = ?`, id)
	return scanAvailability(row)
}

// UpdateAvailability overwrites a block.
func (s *Store) UpdateAvailability(ctx context.Context, b holiday.AvailabilityBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		UPDATE availability_blocks SET start_date = ?, end_date = ?, reason = ?,
			status = ?, calendar_event_id = ?, updated_at = ?
		WHERE id = ?`,
		fmtTime(b.StartDate), fmtTime(b.EndDate), b.Reason,
		string(b.Status), b.CalendarEventID, fmtTime(b.UpdatedAt), b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update availability block: %w", err)
	}
	return nil
}

// ListAvailabilityByUser returns one user's blocks.
func (s *Store) ListAvailabilityByUser(ctx context.Context, userID string) ([]holiday.AvailabilityBlock, error) {
	return s.queryAvailability(ctx,
		`SELECT `+availabilityColumns+` FROM availability_blocks WHERE user_id = ? ORDER BY rowid`, userID)
}

// ListAvailability returns every block.
func (s *Store) ListAvailability(ctx context.Context) ([]holiday.AvailabilityBlock, error) {
	return s.queryAvailability(ctx,
		`SELECT `+availabilityColumns+` FROM availability_blocks ORDER BY rowid`)
}

func (s *Store) queryAvailability(ctx context.Context, query string, args ...any) ([]holiday.AvailabilityBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query availability blocks: %w", err)
	}
	defer rows.Close()

	var blocks []holiday.AvailabilityBlock
	for rows.Next() {
		b, err := scanAvailability(rows)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, *b)
	}
	return blocks, rows.Err()
}

func scanAvailability(row scanner) (*holiday.AvailabilityBlock, error) {
	var (
		b                    holiday.AvailabilityBlock
		start, end, status   string
		createdAt, updatedAt string
	)
	err := row.Scan(&b.ID, &b.UserID, &start, &end, &b.Reason,
		&status, &b.CalendarEventID, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan availability block: %w", err)
	}
	b.StartDate = parseTime(start)
	b.EndDate = parseTime(end)
	b.Status = holiday.AvailabilityStatus(status)
	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	return &b, nil
}

// =============================================================================
// SHIFTS (shifts.Store interface)
// =============================================================================

const shiftColumns = `id, department, shift_date, start_time, end_time,
	actual_hours, description, status, assigned_user_id, accepted_at,
	completed_at, draft_generated, generated_invoice_id, created_by_user_id,
	created_at, updated_at`

// SaveShift inserts a new shift offer.
func (s *Store) SaveShift(ctx context.Context, sh shifts.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shifts (`+shiftColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sh.ID, string(sh.Department), fmtTime(sh.ShiftDate), sh.StartTime, sh.EndTime,
		sh.ActualHours.String(), sh.Description, string(sh.Status), sh.AssignedUserID,
		fmtTimePtr(sh.AcceptedAt), fmtTimePtr(sh.CompletedAt),
		sh.DraftGenerated, sh.GeneratedInvoiceID, sh.CreatedByUserID,
		fmtTime(sh.CreatedAt), fmtTime(sh.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert shift: %w", err)
	}
	return nil
}

// GetShift returns one shift, or (nil, nil).
func (s *Store) GetShift(ctx context.Context, id string) (*shifts.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+shiftColumns+` FROM shifts WHERE id = ?`, id)
	return scanShift(row)
}

// UpdateShift overwrites a shift row.
func (s *Store) UpdateShift(ctx context.Context, sh shifts.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		UPDATE shifts SET department = ?, shift_date = ?, start_time = ?,
			end_time = ?, actual_hours = ?, description = ?, status = ?,
			assigned_user_id = ?, accepted_at = ?, completed_at = ?,
			draft_generated = ?, generated_invoice_id = ?, updated_at = ?
		WHERE id = ?`,
		string(sh.Department), fmtTime(sh.ShiftDate), sh.StartTime, sh.EndTime,
		sh.ActualHours.String(), sh.Description, string(sh.Status),
		sh.AssignedUserID, fmtTimePtr(sh.AcceptedAt), fmtTimePtr(sh.CompletedAt),
		sh.DraftGenerated, sh.GeneratedInvoiceID, fmtTime(sh.UpdatedAt), sh.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update shift: %w", err)
	}
	return nil
}

// ListShifts returns every shift in insertion order.
func (s *Store) ListShifts(ctx context.Context) ([]shifts.Shift, error) {
	return s.queryShifts(ctx, `SELECT `+shiftColumns+` FROM shifts ORDER BY rowid`)
}

// ListShiftsByUser returns shifts assigned to one user.
func (s *Store) ListShiftsByUser(ctx context.Context, userID string) ([]shifts.Shift, error) {
	return s.queryShifts(ctx,
		`SELECT `+shiftColumns+` FROM shifts WHERE assigned_user_id = ? ORDER BY rowid`, userID)
}

func (s *Store) queryShifts(ctx context.Context, query string, args ...any) ([]shifts.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var out []shifts.Shift
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sh)
	}
	return out, rows.Err()
}

func scanShift(row scanner) (*shifts.Shift, error) {
	var (
		sh                      shifts.Shift
		dept, shiftDate, status string
		hours                   string
		acceptedAt, completedAt sql.NullString
		createdAt, updatedAt    string
	)
	err := row.Scan(&sh.ID, &dept, &shiftDate, &sh.StartTime, &sh.EndTime,
		&hours, &sh.Description, &status, &sh.AssignedUserID,
		&acceptedAt, &completedAt, &sh.DraftGenerated, &sh.GeneratedInvoiceID,
		&sh.CreatedByUserID, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan shift: %w", err)
	}
	sh.Department = staffdir.Department(dept)
	sh.ShiftDate = parseTime(shiftDate)
	sh.ActualHours = parseDec(hours)
	sh.Status = shifts.Status(status)
	sh.AcceptedAt = parseTimePtr(acceptedAt)
	sh.CompletedAt = parseTimePtr(completedAt)
	sh.CreatedAt = parseTime(createdAt)
	sh.UpdatedAt = parseTime(updatedAt)
	return &sh, nil
}

// =============================================================================
// INVOICES (invoicing.Store interface)
// =============================================================================

const invoiceColumns = `id, user_id, invoice_date, invoice_type, total_amount,
	status, related_shift_ids, description, manager_approved_at,
	cfo_approved_at, payment_date, rejection_reason, created_at, updated_at`

// SaveInvoice inserts a new invoice header.
func (s *Store) SaveInvoice(ctx context.Context, inv invoicing.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.UserID, fmtTime(inv.InvoiceDate), string(inv.Type),
		inv.TotalAmount.String(), string(inv.Status), inv.RelatedShiftIDs,
		inv.Description, fmtTimePtr(inv.ManagerApprovedAt), fmtTimePtr(inv.CFOApprovedAt),
		fmtTimePtr(inv.PaymentDate), inv.RejectionReason,
		fmtTime(inv.CreatedAt), fmtTime(inv.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert invoice: %w", err)
	}
	return nil
}

// GetInvoice returns one invoice, or (nil, nil).
func (s *Store) GetInvoice(ctx context.Context, id string) (*invoicing.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = ?`, id)
	return scanInvoice(row)
}

// UpdateInvoice overwrites an invoice header.
func (s *Store) UpdateInvoice(ctx context.Context, inv invoicing.Invoice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		UPDATE invoices SET invoice_type = ?, total_amount = ?, status = ?,
			related_shift_ids = ?, description = ?, manager_approved_at = ?,
			cfo_approved_at = ?, payment_date = ?, rejection_reason = ?,
			updated_at = ?
		WHERE id = ?`,
		string(inv.Type), inv.TotalAmount.String(), string(inv.Status),
		inv.RelatedShiftIDs, inv.Description, fmtTimePtr(inv.ManagerApprovedAt),
		fmtTimePtr(inv.CFOApprovedAt), fmtTimePtr(inv.PaymentDate),
		inv.RejectionReason, fmtTime(inv.UpdatedAt), inv.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}
	return nil
}

// DeleteInvoice removes an invoice and its line items.
func (s *Store) DeleteInvoice(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM invoice_items WHERE invoice_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete invoice items: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM invoices WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}
	return tx.Commit()
}

// ListInvoices returns every invoice in insertion order.
func (s *Store) ListInvoices(ctx context.Context) ([]invoicing.Invoice, error) {
	return s.queryInvoices(ctx, `SELECT `+invoiceColumns+` FROM invoices ORDER BY rowid`)
}

// ListInvoicesByUser returns one user's invoices.
func (s *Store) ListInvoicesByUser(ctx context.Context, userID string) ([]invoicing.Invoice, error) {
	return s.queryInvoices(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE user_id = ? ORDER BY rowid`, userID)
}

func (s *Store) queryInvoices(ctx context.Context, query string, args ...any) ([]invoicing.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	defer rows.Close()

	var out []invoicing.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

func scanInvoice(row scanner) (*invoicing.Invoice, error) {
	var (
		inv                      invoicing.Invoice
		invDate, invType, status string
		total                    string
		managerAt, cfoAt, paidAt sql.NullString
		createdAt, updatedAt     string
	)
	err := row.Scan(&inv.ID, &inv.UserID, &invDate, &invType, &total,
		&status, &inv.RelatedShiftIDs, &inv.Description,
		&managerAt, &cfoAt, &paidAt, &inv.RejectionReason,
		&createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan invoice: %w", err)
	}
	inv.InvoiceDate = parseTime(invDate)
	inv.Type = invoicing.Type(invType)
	inv.TotalAmount = parseDec(total)
	inv.Status = invoicing.Status(status)
	inv.ManagerApprovedAt = parseTimePtr(managerAt)
	inv.CFOApprovedAt = parseTimePtr(cfoAt)
	inv.PaymentDate = parseTimePtr(paidAt)
	inv.CreatedAt = parseTime(createdAt)
	inv.UpdatedAt = parseTime(updatedAt)
	return &inv, nil
}

// SaveItem inserts one invoice line.
func (s *Store) SaveItem(ctx context.Context, item invoicing.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invoice_items (id, invoice_id, description, quantity, unit_price, line_total)
		VALUES (?, ?, ?, ?, ?, ?)`,
		item.ID, item.InvoiceID, item.Description,
		item.Quantity.String(), item.UnitPrice.String(), item.LineTotal.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert invoice item: %w", err)
	}
	return nil
}

// ListItems returns the lines of one invoice.
func (s *Store) ListItems(ctx context.Context, invoiceID string) ([]invoicing.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, invoice_id, description, quantity, unit_price, line_total
		FROM invoice_items WHERE invoice_id = ? ORDER BY rowid`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query invoice items: %w", err)
	}
	defer rows.Close()

	var items []invoicing.Item
	for rows.Next() {
		var (
			item              invoicing.Item
			qty, price, total string
		)
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.Description,
			&qty, &price, &total); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		item.Quantity = parseDec(qty)
		item.UnitPrice = parseDec(price)
		item.LineTotal = parseDec(total)
		items = append(items, item)
	}
	return items, rows.Err()
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func parseTimePtr(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	t := parseTime(ns.String)
	return &t
}

// parseDec tolerates empty and malformed text, treating it as zero. The
// store only ever writes canonical decimal strings; this guards against
// rows imported from a hand-edited workbook.
func parseDec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
