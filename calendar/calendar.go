/*
Package calendar mirrors leave requests and availability blocks into an
external shared calendar.

PURPOSE:
  Events are a derived, best-effort view of the request store. Each event
  carries a private metadata block sufficient to reconcile it back to the
  owning row later; the event identifier recorded on the row is the join
  key in the other direction.

CONSISTENCY:
  Creation at submission time is required (the row is not yet committed,
  so a failure fails the whole submission). Deletion is best-effort:
  failures are logged and swallowed so the primary state mutation still
  commits. Drift is expected and detected by the audit in sync.go, never
  silently repaired.
*/
package calendar

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrEventNotFound is returned by clients when the event id is unknown.
	ErrEventNotFound = errors.New("calendar event not found")

	// ErrUnavailable is returned when the calendar backend cannot be reached.
	ErrUnavailable = errors.New("calendar unavailable")
)

// Metadata is the structured private block attached to every mirrored event.
type Metadata struct {
	UserID       string `json:"userID"`
	UserEmail    string `json:"userEmail"`
	Type         string `json:"type"` // "holiday" or "availability"
	Status       string `json:"status,omitempty"`
	Reason       string `json:"reason,omitempty"`
	NumberOfDays string `json:"numberOfDays,omitempty"`
}

// EventInput describes an all-day event to create.
type EventInput struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time // inclusive
	Metadata    Metadata
}

// Event is a mirrored calendar entry as read back from the backend.
type Event struct {
	ID          string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Metadata    Metadata
}

// Client is the minimal surface the synchronizer needs from a calendar
// backend. Implementations wrap the external service; MemoryClient backs
// tests and development.
type Client interface {
	CreateAllDayEvent(ctx context.Context, calendarID string, in EventInput) (string, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
	ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]Event, error)
}
