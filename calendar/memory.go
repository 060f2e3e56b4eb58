package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryClient is an in-memory Client for tests and local development.
type MemoryClient struct {
	mu     sync.RWMutex
	events map[string]map[string]Event // calendarID -> eventID -> event

	// CreateErr, when set, is returned by CreateAllDayEvent. Lets tests
	// exercise the submission failure path.
	CreateErr error
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{events: make(map[string]map[string]Event)}
}

func (m *MemoryClient) CreateAllDayEvent(ctx context.Context, calendarID string, in EventInput) (string, error) {
	if m.CreateErr != nil {
		return "", m.CreateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.events[calendarID] == nil {
		m.events[calendarID] = make(map[string]Event)
	}
	id := uuid.NewString()
	m.events[calendarID][id] = Event{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Start:       in.Start,
		End:         in.End,
		Metadata:    in.Metadata,
	}
	return id, nil
}

func (m *MemoryClient) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cal, ok := m.events[calendarID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	if _, ok := cal[eventID]; !ok {
		return fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	delete(cal, eventID)
	return nil
}

func (m *MemoryClient) ListEvents(ctx context.Context, calendarID string, from, to time.Time) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Event
	for _, ev := range m.events[calendarID] {
		if ev.End.Before(from) || ev.Start.After(to) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

// Get returns a single event, for test assertions.
func (m *MemoryClient) Get(calendarID, eventID string) (Event, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ev, ok := m.events[calendarID][eventID]
	return ev, ok
}
