package retention

import (
	"context"
	"log/slog"
	"time"

	"github.com/paytrace-lab/paytrace/internal/core/storage"
)

// Pruner periodically bulk-deletes trace events older than the
// configured retention age. Deletes run in bounded chunks so no single
// transaction holds locks for long. Pruning is idempotent: a missed or
// interrupted run just leaves work for the next tick.
type Pruner struct {
	store     storage.TraceStore
	maxAge    time.Duration
	interval  time.Duration
	chunkSize int
	nowFn     func() time.Time
}

// New creates a Pruner.
func New(store storage.TraceStore, maxAge, interval time.Duration, chunkSize int) *Pruner {
	if store == nil {
		panic("retention: pruner store must not be nil")
	}
	return &Pruner{
		store:     store,
		maxAge:    maxAge,
		interval:  interval,
		chunkSize: chunkSize,
		nowFn: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Start runs the prune loop until ctx is cancelled.
func (p *Pruner) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	slog.Info("[Pruner] Starting retention pruner",
		"max_age", p.maxAge,
		"interval", p.interval,
		"chunk_size", p.chunkSize,
	)

	// Initial sweep catches backlog accumulated while down.
	p.RunOnce(ctx)

	for {
		select {
		case <-ticker.C:
			p.RunOnce(ctx)
		case <-ctx.Done():
			slog.Info("[Pruner] Stopping (context cancelled)")
			return nil
		}
	}
}

// RunOnce performs a single prune sweep.
func (p *Pruner) RunOnce(ctx context.Context) {
	cutoff := p.nowFn().Add(-p.maxAge)

	deleted, err := p.store.DeleteEventsOlderThan(ctx, cutoff, p.chunkSize)
	if err != nil {
		slog.Error("[Pruner] Prune sweep failed", "error", err, "cutoff", cutoff)
		return
	}

	if deleted > 0 {
		slog.Info("[Pruner] Pruned expired trace events", "deleted", deleted, "cutoff", cutoff)
	} else {
		slog.Debug("[Pruner] Nothing to prune", "cutoff", cutoff)
	}
}
