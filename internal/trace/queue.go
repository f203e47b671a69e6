package trace

import (
	"context"
	"log/slog"
	"time"

	v1 "github.com/paytrace-lab/paytrace/internal/api/v1"
	"github.com/paytrace-lab/paytrace/internal/core/storage"
)

const (
	defaultQueueSize = 1024
	persistAttempts  = 3
	persistBackoff   = 250 * time.Millisecond
	drainGracePeriod = 10 * time.Second
)

// Queue hands redacted, normalized events to a background worker for
// out-of-band persistence. Enqueue never blocks and never fails the
// caller: a full queue drops the event and reports it, because trace
// recording must not slow down or break the payment flow it observes.
type Queue struct {
	events  chan *v1.TraceEvent
	store   storage.TraceStore
	backoff time.Duration
}

// NewQueue creates a bounded queue writing to store.
func NewQueue(store storage.TraceStore, size int) *Queue {
	if store == nil {
		panic("trace: queue store must not be nil")
	}
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Queue{
		events:  make(chan *v1.TraceEvent, size),
		store:   store,
		backoff: persistBackoff,
	}
}

// Enqueue submits an event for asynchronous persistence.
// Drops and reports the event when the queue is full.
func (q *Queue) Enqueue(event *v1.TraceEvent) {
	select {
	case q.events <- event:
	default:
		slog.Error("[TraceQueue] Queue full, dropping trace event",
			"payment_id", event.PaymentID,
			"event_kind", event.EventKind,
			"capacity", cap(q.events))
	}
}

// Start runs the persistence worker until ctx is cancelled, then drains
// whatever is still buffered under a bounded grace period.
func (q *Queue) Start(ctx context.Context) error {
	slog.Info("[TraceQueue] Starting persistence worker", "capacity", cap(q.events))

	for {
		select {
		case event := <-q.events:
			q.persist(ctx, event)
		case <-ctx.Done():
			slog.Info("[TraceQueue] Stopping (context cancelled), draining buffered events",
				"buffered", len(q.events))

			drainCtx, cancel := context.WithTimeout(context.Background(), drainGracePeriod)
			defer cancel()
			q.drain(drainCtx)
			return nil
		}
	}
}

func (q *Queue) drain(ctx context.Context) {
	for {
		select {
		case event := <-q.events:
			q.persist(ctx, event)
		default:
			return
		}
		if ctx.Err() != nil {
			slog.Warn("[TraceQueue] Drain grace period expired", "remaining", len(q.events))
			return
		}
	}
}

// persist writes one event with bounded retries and fixed backoff.
// Exhaustion is reported to the log sink, never to the original caller.
func (q *Queue) persist(ctx context.Context, event *v1.TraceEvent) {
	var lastErr error
	for attempt := 1; attempt <= persistAttempts; attempt++ {
		if err := q.store.InsertEvent(ctx, event); err != nil {
			lastErr = err
			if attempt < persistAttempts {
				time.Sleep(q.backoff)
			}
			continue
		}
		return
	}

	slog.Error("[TraceQueue] Failed to persist trace event, giving up",
		"payment_id", event.PaymentID,
		"event_kind", event.EventKind,
		"attempts", persistAttempts,
		"error", lastErr)
}
