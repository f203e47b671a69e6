package storage

import (
	"context"
	"time"

	v1 "github.com/paytrace-lab/paytrace/internal/api/v1"
)

// TraceStore defines the interface for persisting and reading trace events.
// The write side is append-only; no event is ever updated or merged.
type TraceStore interface {
	// InsertEvent persists one event and populates its storage-assigned
	// ID and CreatedAt.
	InsertEvent(ctx context.Context, event *v1.TraceEvent) error

	// ListEventsByPayment fetches every event for one payment, ordered
	// by (created_at, id) ascending.
	ListEventsByPayment(ctx context.Context, paymentID string) ([]*v1.TraceEvent, error)

	// DeleteEventsOlderThan bulk-deletes events created before cutoff,
	// in chunks of at most chunkSize rows to avoid long-held locks.
	// Returns the total number of deleted rows.
	DeleteEventsOlderThan(ctx context.Context, cutoff time.Time, chunkSize int) (int64, error)
}
