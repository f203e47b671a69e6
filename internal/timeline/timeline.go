package timeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	v1 "github.com/paytrace-lab/paytrace/internal/api/v1"
	"github.com/paytrace-lab/paytrace/internal/core/storage"
)

// AnalyzerConfig carries the thresholds the detailed timeline's checks use.
type AnalyzerConfig struct {
	// SlowResponseThresholdMs flags individual responses slower than this.
	SlowResponseThresholdMs int64

	// LatencyThresholdMs flags correlation groups whose request/response
	// delta exceeds this.
	LatencyThresholdMs int64

	// OrphanWindow is how long after an outbound request a matching
	// response may arrive before the request counts as orphaned.
	OrphanWindow time.Duration
}

func (c AnalyzerConfig) normalized() AnalyzerConfig {
	n := c
	if n.SlowResponseThresholdMs <= 0 {
		n.SlowResponseThresholdMs = 5000
	}
	if n.LatencyThresholdMs <= 0 {
		n.LatencyThresholdMs = 5000
	}
	if n.OrphanWindow <= 0 {
		n.OrphanWindow = 60 * time.Second
	}
	return n
}

// Builder constructs read-only timeline views from the event store.
type Builder struct {
	store storage.TraceStore
	cfg   AnalyzerConfig
}

// NewBuilder creates a Builder.
func NewBuilder(store storage.TraceStore, cfg AnalyzerConfig) *Builder {
	if store == nil {
		panic("timeline: builder store must not be nil")
	}
	return &Builder{store: store, cfg: cfg.normalized()}
}

// Build loads every event for a payment in chronological order.
func (b *Builder) Build(ctx context.Context, paymentID string) (*Timeline, error) {
	events, err := b.store.ListEventsByPayment(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("load timeline for %s: %w", paymentID, err)
	}

	// The store already orders by (created_at, id); re-sorting keeps the
	// invariant independent of the store implementation.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].ID < events[j].ID
		}
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})

	return &Timeline{paymentID: paymentID, events: events}, nil
}

// BuildDetailed loads the same ordered timeline with analysis capability.
func (b *Builder) BuildDetailed(ctx context.Context, paymentID string) (*DetailedTimeline, error) {
	tl, err := b.Build(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return &DetailedTimeline{Timeline: tl, cfg: b.cfg}, nil
}

// Timeline is an immutable, totally ordered view over one payment's
// events. It is never persisted and never mutated after construction.
type Timeline struct {
	paymentID string
	events    []*v1.TraceEvent
}

// PaymentID returns the payment this timeline describes.
func (t *Timeline) PaymentID() string {
	return t.paymentID
}

// All returns the full ordered event sequence.
func (t *Timeline) All() []*v1.TraceEvent {
	return t.events
}

// ForProvider returns the events concerning one provider, in order.
func (t *Timeline) ForProvider(provider string) []*v1.TraceEvent {
	var out []*v1.TraceEvent
	for _, evt := range t.events {
		if evt.Provider == provider {
			out = append(out, evt)
		}
	}
	return out
}

// Errors returns the events whose kind is in the error subset.
func (t *Timeline) Errors() []*v1.TraceEvent {
	var out []*v1.TraceEvent
	for _, evt := range t.events {
		if evt.EventKind.IsError() {
			out = append(out, evt)
		}
	}
	return out
}

// Terminal returns the first event that ends the payment's observable
// flow, or nil. A timeline without a terminal event is incomplete, not
// an error.
func (t *Timeline) Terminal() *v1.TraceEvent {
	for _, evt := range t.events {
		if evt.EventKind.IsTerminal() {
			return evt
		}
	}
	return nil
}

// Succeeded reports whether the payment reached the completed terminal kind.
func (t *Timeline) Succeeded() bool {
	term := t.Terminal()
	return term != nil && term.EventKind == v1.KindPaymentCompleted
}

// Failed reports whether the payment reached the failed terminal kind.
func (t *Timeline) Failed() bool {
	term := t.Terminal()
	return term != nil && term.EventKind == v1.KindPaymentFailed
}

// Duration returns the elapsed milliseconds between the first and last
// event, or nil for an empty timeline. Defined even when no terminal
// event exists.
func (t *Timeline) Duration() *int64 {
	if len(t.events) == 0 {
		return nil
	}
	first := t.events[0].CreatedAt
	last := t.events[len(t.events)-1].CreatedAt
	ms := last.Sub(first).Milliseconds()
	return &ms
}

// DetailedTimeline adds issue and anomaly analysis to a Timeline.
type DetailedTimeline struct {
	*Timeline
	cfg AnalyzerConfig
}
