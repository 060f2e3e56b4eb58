package calendar

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Synchronizer creates and removes mirrored events and audits the drift
// between the request store and the calendar.
type Synchronizer struct {
	client          Client
	holidayCalID    string
	availabilityCal string
}

func NewSynchronizer(client Client, holidayCalendarID, availabilityCalendarID string) *Synchronizer {
	return &Synchronizer{
		client:          client,
		holidayCalID:    holidayCalendarID,
		availabilityCal: availabilityCalendarID,
	}
}

func (s *Synchronizer) HolidayCalendarID() string      { return s.holidayCalID }
func (s *Synchronizer) AvailabilityCalendarID() string { return s.availabilityCal }

// CreateHolidayEvent creates an all-day event on the staff holiday calendar
// and returns its identifier. Failure here is fatal to the caller.
func (s *Synchronizer) CreateHolidayEvent(ctx context.Context, in EventInput) (string, error) {
	in.Metadata.Type = "holiday"
	id, err := s.client.CreateAllDayEvent(ctx, s.holidayCalID, in)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return id, nil
}

// CreateAvailabilityEvent creates an all-day event on the contractor
// availability calendar.
func (s *Synchronizer) CreateAvailabilityEvent(ctx context.Context, in EventInput) (string, error) {
	in.Metadata.Type = "availability"
	id, err := s.client.CreateAllDayEvent(ctx, s.availabilityCal, in)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return id, nil
}

// DeleteHolidayEvent removes a mirrored event, best-effort. Failures are
// logged and swallowed so the enclosing transition still commits.
func (s *Synchronizer) DeleteHolidayEvent(ctx context.Context, eventID string) {
	s.bestEffortDelete(ctx, s.holidayCalID, eventID)
}

// DeleteAvailabilityEvent removes an availability event, best-effort.
func (s *Synchronizer) DeleteAvailabilityEvent(ctx context.Context, eventID string) {
	s.bestEffortDelete(ctx, s.availabilityCal, eventID)
}

func (s *Synchronizer) bestEffortDelete(ctx context.Context, calendarID, eventID string) {
	if eventID == "" {
		return
	}
	if err := s.client.DeleteEvent(ctx, calendarID, eventID); err != nil {
		log.Printf("[Calendar] failed to delete event %s: %v", eventID, err)
	}
}

// =============================================================================
// AUDIT
// =============================================================================

// RecordRef is the store-side view of one row for the audit: its identifier,
// the event it claims to mirror, and whether it is in a state that must have
// a live event.
type RecordRef struct {
	RecordID      string
	EventID       string
	RequiresEvent bool
}

// AuditReport lists the drift found between the store and one calendar.
type AuditReport struct {
	WindowStart    time.Time
	WindowEnd      time.Time
	OrphanedEvents []Event  // events with no backing record
	MissingEvents  []string // record IDs that require an event none exists for
	DeletedOrphans int
}

// Audit cross-references the given records against the events on one
// calendar within [from, to]. Orphaned events are reported and, when
// deleteOrphans is set, removed; records missing their event are reported
// only — there is no automatic repair.
func (s *Synchronizer) Audit(ctx context.Context, calendarID string, refs []RecordRef, from, to time.Time, deleteOrphans bool) (*AuditReport, error) {
	events, err := s.client.ListEvents(ctx, calendarID, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	known := make(map[string]bool, len(refs))
	live := make(map[string]bool, len(events))
	for _, r := range refs {
		if r.EventID != "" {
			known[r.EventID] = true
		}
	}
	for _, ev := range events {
		live[ev.ID] = true
	}

	report := &AuditReport{WindowStart: from, WindowEnd: to}

	for _, ev := range events {
		if known[ev.ID] {
			continue
		}
		report.OrphanedEvents = append(report.OrphanedEvents, ev)
		if deleteOrphans {
			if err := s.client.DeleteEvent(ctx, calendarID, ev.ID); err != nil {
				log.Printf("[Calendar] audit: failed to delete orphan %s: %v", ev.ID, err)
				continue
			}
			report.DeletedOrphans++
		}
	}

	for _, r := range refs {
		if r.RequiresEvent && (r.EventID == "" || !live[r.EventID]) {
			report.MissingEvents = append(report.MissingEvents, r.RecordID)
		}
	}

	return report, nil
}
