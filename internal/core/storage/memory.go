package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	v1 "github.com/paytrace-lab/paytrace/internal/api/v1"
)

// MemoryStore is an in-memory TraceStore used by tests and local runs.
// It assigns monotonically increasing ids and stamps CreatedAt from an
// injectable clock, mirroring the postgres adapter's contract.
type MemoryStore struct {
	mu     sync.Mutex
	events []*v1.TraceEvent
	nextID int64
	nowFn  func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// SetClock replaces the CreatedAt clock. Tests use this to produce
// deterministic timestamps.
func (s *MemoryStore) SetClock(fn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = fn
}

// InsertEvent appends a copy of the event, assigning ID and CreatedAt.
// A non-zero CreatedAt on the input is preserved so tests can build
// timelines with explicit clocks.
func (s *MemoryStore) InsertEvent(_ context.Context, event *v1.TraceEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *event
	stored.ID = s.nextID
	s.nextID++
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.nowFn()
	}
	s.events = append(s.events, &stored)

	event.ID = stored.ID
	event.CreatedAt = stored.CreatedAt
	return nil
}

// ListEventsByPayment returns copies of the payment's events ordered by
// (CreatedAt, ID) ascending.
func (s *MemoryStore) ListEventsByPayment(_ context.Context, paymentID string) ([]*v1.TraceEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*v1.TraceEvent
	for _, evt := range s.events {
		if evt.PaymentID == paymentID {
			cp := *evt
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// DeleteEventsOlderThan removes events created before cutoff, at most
// chunkSize per pass, and returns the total removed.
func (s *MemoryStore) DeleteEventsOlderThan(_ context.Context, cutoff time.Time, chunkSize int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if chunkSize <= 0 {
		chunkSize = 500
	}

	var total int64
	for {
		removed := 0
		kept := s.events[:0]
		for _, evt := range s.events {
			if removed < chunkSize && evt.CreatedAt.Before(cutoff) {
				removed++
				continue
			}
			kept = append(kept, evt)
		}
		s.events = kept
		total += int64(removed)
		if removed < chunkSize {
			return total, nil
		}
	}
}

// Len reports the number of stored events. Test helper.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}
