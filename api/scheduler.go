/*
scheduler.go - Automated calendar audit scheduler

PURPOSE:
  Periodically cross-references the request store against the two
  mirrored calendars and logs the drift. Holiday orphans are reported
  only; availability orphans are deleted outright since that calendar
  has no other consumers.

DESIGN:
  - Runs a background goroutine with a configurable check interval
  - Detection-first: nothing on the holiday calendar is repaired
  - Findings go to the log; the admin endpoint runs the same audits on
    demand

USAGE:
  scheduler := NewAuditScheduler(holidays, time.Hour)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: Reconcile endpoint (manual audit)
  - calendar/sync.go: Audit implementation
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/opsdesk/staffcentre/calendar"
	"github.com/opsdesk/staffcentre/holiday"
)

// AuditScheduler runs the calendar audits on a fixed interval.
type AuditScheduler struct {
	Holidays      *holiday.Service
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewAuditScheduler creates a new scheduler.
func NewAuditScheduler(holidays *holiday.Service, interval time.Duration) *AuditScheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &AuditScheduler{
		Holidays:      holidays,
		CheckInterval: interval,
		Enabled:       true,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (s *AuditScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	s.ticker = time.NewTicker(s.CheckInterval)
	s.wg.Add(1)
	go s.run()

	log.Printf("[Scheduler] Started with check interval: %v", s.CheckInterval)
}

// Stop stops the scheduler.
func (s *AuditScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		s.ticker.Stop()
		close(s.stop)
		s.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (s *AuditScheduler) run() {
	defer s.wg.Done()

	// Run immediately on start
	s.runAudits()

	for {
		select {
		case <-s.ticker.C:
			s.runAudits()
		case <-s.stop:
			return
		}
	}
}

// RunNow triggers an immediate audit (for testing/admin).
func (s *AuditScheduler) RunNow() {
	s.runAudits()
}

func (s *AuditScheduler) runAudits() {
	ctx := context.Background()
	now := time.Now().UTC()
	from, to := now.AddDate(0, -6, 0), now.AddDate(0, 6, 0)

	if report, err := s.Holidays.AuditHolidays(ctx, from, to); err != nil {
		log.Printf("[Scheduler] Holiday audit failed: %v", err)
	} else {
		logReport("holidays", report)
	}

	if report, err := s.Holidays.AuditAvailability(ctx, from, to); err != nil {
		log.Printf("[Scheduler] Availability audit failed: %v", err)
	} else {
		logReport("availability", report)
	}
}

func logReport(name string, report *calendar.AuditReport) {
	if len(report.OrphanedEvents) == 0 && len(report.MissingEvents) == 0 {
		return
	}
	log.Printf("[Scheduler] %s audit: %d orphaned events (%d deleted), %d records missing events",
		name, len(report.OrphanedEvents), report.DeletedOrphans, len(report.MissingEvents))
	for _, id := range report.MissingEvents {
		log.Printf("[Scheduler] %s: record %s has no live calendar event", name, id)
	}
}
