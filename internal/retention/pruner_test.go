package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	v1 "github.com/paytrace-lab/paytrace/internal/api/v1"
	"github.com/paytrace-lab/paytrace/internal/core/storage"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func newTestPruner(store storage.TraceStore) *Pruner {
	p := New(store, 90*24*time.Hour, time.Hour, 500)
	p.nowFn = func() time.Time { return now }
	return p
}

func TestRunOnce_DeletesOnlyExpiredEvents(t *testing.T) {
	store := storage.NewMemoryStore()
	ctx := context.Background()

	insert := func(at time.Time) {
		require.NoError(t, store.InsertEvent(ctx, &v1.TraceEvent{
			PaymentID: "pay_1",
			EventKind: v1.KindCustom,
			CreatedAt: at,
		}))
	}
	insert(now.Add(-91 * 24 * time.Hour)) // expired
	insert(now.Add(-90*24*time.Hour - time.Minute))
	insert(now.Add(-89 * 24 * time.Hour)) // retained
	insert(now.Add(-time.Hour))

	newTestPruner(store).RunOnce(ctx)

	require.Equal(t, 2, store.Len())
	events, err := store.ListEventsByPayment(ctx, "pay_1")
	require.NoError(t, err)
	for _, evt := range events {
		require.True(t, evt.CreatedAt.After(now.Add(-90*24*time.Hour)))
	}
}

func TestRunOnce_EmptyStoreIsNoOp(t *testing.T) {
	store := storage.NewMemoryStore()
	newTestPruner(store).RunOnce(context.Background())
	require.Equal(t, 0, store.Len())
}

func TestRunOnce_SwallowsStoreErrors(t *testing.T) {
	p := newTestPruner(&erroringStore{})
	// Failures are logged and retried on the next tick, never fatal.
	p.RunOnce(context.Background())
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	store := storage.NewMemoryStore()
	p := newTestPruner(store)
	p.interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Start(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("pruner did not stop after cancellation")
	}
}

type erroringStore struct{}

func (s *erroringStore) InsertEvent(context.Context, *v1.TraceEvent) error {
	return errors.New("insert failed")
}

func (s *erroringStore) ListEventsByPayment(context.Context, string) ([]*v1.TraceEvent, error) {
	return nil, errors.New("list failed")
}

func (s *erroringStore) DeleteEventsOlderThan(context.Context, time.Time, int) (int64, error) {
	return 0, errors.New("delete failed")
}
