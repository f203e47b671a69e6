package trace

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	v1 "github.com/paytrace-lab/paytrace/internal/api/v1"
	"github.com/paytrace-lab/paytrace/internal/core/storage"
)

// Config carries the recording pipeline's read-only settings.
// It is passed in explicitly so tests stay deterministic and parallel-safe.
type Config struct {
	// Enabled gates the whole pipeline. When false, Record is a no-op
	// checked before any normalization or redaction work.
	Enabled bool

	// Async selects queued persistence over the synchronous write path.
	Async bool

	// SensitiveFields are matched case-insensitively as substrings of
	// payload keys.
	SensitiveFields []string

	// MaxRedactionDepth bounds payload recursion.
	MaxRedactionDepth int
}

// Recorder orchestrates the recording pipeline: normalize, redact the
// payload (metadata is treated as already sanitized), then persist
// synchronously or enqueue for the background worker.
type Recorder struct {
	store storage.TraceStore
	queue *Queue
	cfg   Config
}

// NewRecorder creates a Recorder. queue may be nil when cfg.Async is false.
func NewRecorder(store storage.TraceStore, queue *Queue, cfg Config) *Recorder {
	if store == nil {
		panic("trace: recorder store must not be nil")
	}
	if cfg.Async && queue == nil {
		panic("trace: async recording requires a queue")
	}
	if cfg.MaxRedactionDepth <= 0 {
		cfg.MaxRedactionDepth = 8
	}
	return &Recorder{store: store, queue: queue, cfg: cfg}
}

// Enabled reports whether tracing is turned on.
func (r *Recorder) Enabled() bool {
	return r.cfg.Enabled
}

// Record runs the pipeline for one submission.
//
// Synchronous mode returns the fully materialized event, including the
// storage-assigned id and timestamp. Asynchronous mode enqueues the
// redacted event and returns (nil, nil): the caller cannot observe the
// assigned id, an intentional trade-off for write-path latency.
// Disabled tracing returns (nil, nil) without doing any work.
func (r *Recorder) Record(ctx context.Context, req *v1.RecordRequest) (*v1.TraceEvent, error) {
	if !r.cfg.Enabled {
		return nil, nil
	}

	event, err := Normalize(req)
	if err != nil {
		return nil, err
	}

	// Redaction happens before dispatch in both modes so an unredacted
	// payload can never sit in the queue.
	event.Payload = Redact(event.Payload, r.cfg.SensitiveFields, r.cfg.MaxRedactionDepth)

	if r.cfg.Async {
		r.queue.Enqueue(event)
		return nil, nil
	}

	if err := r.store.InsertEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("persist trace event: %w", err)
	}
	return event, nil
}

// StartCorrelation returns a fresh correlation id with no side effects.
// Callers thread it through a related group of Record calls.
func (r *Recorder) StartCorrelation() string {
	return uuid.NewString()
}

// PaymentInitiated records the start of a payment's lifecycle.
func (r *Recorder) PaymentInitiated(ctx context.Context, paymentID, provider string, amount decimal.Decimal, currency string) (*v1.TraceEvent, error) {
	return r.Record(ctx, &v1.RecordRequest{
		PaymentID: paymentID,
		Event:     string(v1.KindPaymentInitiated),
		Provider:  provider,
		Payload: map[string]interface{}{
			"amount":   amount.String(),
			"currency": currency,
		},
	})
}

// PaymentCompleted records the successful terminal transition.
func (r *Recorder) PaymentCompleted(ctx context.Context, paymentID, provider string) (*v1.TraceEvent, error) {
	return r.Record(ctx, &v1.RecordRequest{
		PaymentID: paymentID,
		Event:     string(v1.KindPaymentCompleted),
		Provider:  provider,
	})
}

// PaymentFailed records the failed terminal transition with a reason.
func (r *Recorder) PaymentFailed(ctx context.Context, paymentID, provider, reason string) (*v1.TraceEvent, error) {
	return r.Record(ctx, &v1.RecordRequest{
		PaymentID: paymentID,
		Event:     string(v1.KindPaymentFailed),
		Provider:  provider,
		Payload: map[string]interface{}{
			"reason": reason,
		},
	})
}

// RetryScheduled records that a retry was queued for a future run.
func (r *Recorder) RetryScheduled(ctx context.Context, paymentID, provider string, attempt int, runAt time.Time) (*v1.TraceEvent, error) {
	return r.Record(ctx, &v1.RecordRequest{
		PaymentID: paymentID,
		Event:     string(v1.KindRetryScheduled),
		Provider:  provider,
		Payload: map[string]interface{}{
			"attempt": attempt,
			"run_at":  runAt.UTC().Format(time.RFC3339),
		},
	})
}

// RetryExecuted records that a scheduled retry ran.
func (r *Recorder) RetryExecuted(ctx context.Context, paymentID, provider string, attempt int) (*v1.TraceEvent, error) {
	return r.Record(ctx, &v1.RecordRequest{
		PaymentID: paymentID,
		Event:     string(v1.KindRetryExecuted),
		Provider:  provider,
		Payload: map[string]interface{}{
			"attempt": attempt,
		},
	})
}
