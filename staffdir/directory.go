package staffdir

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Store is the persistence contract for directory records.
// Lookups return (nil, nil) when no record matches; the Directory turns
// that into ErrUserNotFound so callers deal with one error shape.
type Store interface {
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	SaveUser(ctx context.Context, u User) error
	UpdateUser(ctx context.Context, u User) error
	DeleteUser(ctx context.Context, id string) error
}

// Directory resolves principals and manages directory records.
type Directory struct {
	store Store
}

func NewDirectory(store Store) *Directory {
	return &Directory{store: store}
}

// ByEmail returns the unique record matching email, or ErrUserNotFound.
// If duplicates exist the first stored match wins.
func (d *Directory) ByEmail(ctx context.Context, email string) (*User, error) {
	u, err := d.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
	}
	return u, nil
}

// ByID returns the record with the given identifier, or ErrUserNotFound.
func (d *Directory) ByID(ctx context.Context, id string) (*User, error) {
	u, err := d.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
	}
	return u, nil
}

// List returns every record in insertion order.
func (d *Directory) List(ctx context.Context) ([]User, error) {
	return d.store.ListUsers(ctx)
}

// Create inserts a new record, assigning an identifier and timestamps.
func (d *Directory) Create(ctx context.Context, u User) (*User, error) {
	if u.Email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if u.Role == "" {
		u.Role = RoleEmployee
	}
	if !u.Role.Valid() {
		return nil, fmt.Errorf("unknown role %q", u.Role)
	}
	if u.Status == "" {
		u.Status = AccountActive
	}
	u.ID = NewID("USR")
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if err := d.store.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UserUpdate carries partial profile updates; nil fields are left untouched.
type UserUpdate struct {
	FirstName    *string
	LastName     *string
	Role         *Role
	Department   *Department
	HourlyRate   *decimal.Decimal
	AccruedHours *decimal.Decimal
	Permanent    *bool
	Status       *AccountStatus
}

// Update applies a partial update to the record with the given identifier.
func (d *Directory) Update(ctx context.Context, id string, upd UserUpdate) (*User, error) {
	u, err := d.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.FirstName != nil {
		u.FirstName = *upd.FirstName
	}
	if upd.LastName != nil {
		u.LastName = *upd.LastName
	}
	if upd.Role != nil {
		if !upd.Role.Valid() {
			return nil, fmt.Errorf("unknown role %q", *upd.Role)
		}
		u.Role = *upd.Role
	}
	if upd.Department != nil {
		u.Department = *upd.Department
	}
	if upd.HourlyRate != nil {
		u.HourlyRate = *upd.HourlyRate
	}
	if upd.AccruedHours != nil {
		u.AccruedHours = *upd.AccruedHours
	}
	if upd.Permanent != nil {
		u.Permanent = *upd.Permanent
	}
	if upd.Status != nil {
		u.Status = *upd.Status
	}
	u.UpdatedAt = time.Now().UTC()
	if err := d.store.UpdateUser(ctx, *u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes a record outright. Administrative escape hatch only;
// normal flows disable accounts instead.
func (d *Directory) Delete(ctx context.Context, id string) error {
	if _, err := d.ByID(ctx, id); err != nil {
		return err
	}
	return d.store.DeleteUser(ctx, id)
}

// ManagerFor returns the manager of the given department, or ErrUserNotFound
// if the department has none.
func (d *Directory) ManagerFor(ctx context.Context, dept Department) (*User, error) {
	users, err := d.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Role == RoleManager && users[i].Department == dept {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no manager for department %s", ErrUserNotFound, dept)
}

// CFO returns the (a) CFO user.
func (d *Directory) CFO(ctx context.Context) (*User, error) {
	users, err := d.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Role == RoleCFO {
			return &users[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no CFO configured", ErrUserNotFound)
}
