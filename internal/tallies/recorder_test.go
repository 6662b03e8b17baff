package tallies

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spacesedan/tonecheck/internal/models"
	"github.com/spacesedan/tonecheck/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	batches [][]models.ToneTally
	err     error
}

func (f *fakeStore) AddTallies(_ context.Context, tallies []models.ToneTally) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, tallies)
	return f.err
}

func (f *fakeStore) stored() [][]models.ToneTally {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]models.ToneTally(nil), f.batches...)
}

func event(category models.Category, at string) models.ToneEvent {
	ts, _ := time.Parse(time.RFC3339, at)
	return models.ToneEvent{Category: category, ClassifiedAt: ts}
}

func TestAggregate(t *testing.T) {
	tallies := Aggregate([]models.ToneEvent{
		event(models.CategoryPositive, "2026-10-19T10:00:00Z"),
		event(models.CategoryNeutral, "2026-10-19T11:00:00Z"),
		event(models.CategoryPositive, "2026-10-19T23:59:59Z"),
		event(models.CategoryNegative, "2026-10-20T00:00:01Z"),
	})

	assert.Equal(t, []models.ToneTally{
		{Day: "2026-10-19", Category: "Neutral", Count: 1},
		{Day: "2026-10-19", Category: "Positive", Count: 2},
		{Day: "2026-10-20", Category: "Negative", Count: 1},
	}, tallies)
}

func TestRecorderFlush(t *testing.T) {
	store := &fakeStore{}
	r := NewRecorder(store)

	require.NoError(t, r.ToneClassified(context.Background(), event(models.CategoryPositive, "2026-10-19T10:00:00Z")))
	require.NoError(t, r.ToneClassified(context.Background(), event(models.CategoryPositive, "2026-10-19T10:05:00Z")))
	r.Flush(context.Background())
	r.Flush(context.Background())

	batches := store.stored()
	require.Len(t, batches, 1)
	assert.Equal(t, []models.ToneTally{{Day: "2026-10-19", Category: "Positive", Count: 2}}, batches[0])
}

func TestRecorderFlushErrorDropsBatch(t *testing.T) {
	store := &fakeStore{err: errors.New("throttled")}
	r := NewRecorder(store)

	_ = r.ToneClassified(context.Background(), event(models.CategoryNegative, "2026-10-19T10:00:00Z"))
	r.Flush(context.Background())

	assert.Equal(t, 0, r.buffer.Size())
	assert.Len(t, store.stored(), 1)
}

func TestRecorderRunFlushesWhenFull(t *testing.T) {
	store := &fakeStore{}
	r := NewRecorder(store)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(stopped)
	}()

	for i := 0; i < utils.BATCH_SIZE; i++ {
		_ = r.ToneClassified(ctx, event(models.CategoryNeutral, "2026-10-19T10:00:00Z"))
	}

	assert.Eventually(t, func() bool { return len(store.stored()) == 1 }, 2*time.Second, 10*time.Millisecond)
	cancel()
	<-stopped
}

func TestRecorderRunFlushesOnShutdown(t *testing.T) {
	store := &fakeStore{}
	r := NewRecorder(store)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(stopped)
	}()

	_ = r.ToneClassified(ctx, event(models.CategoryNeutral, "2026-10-19T10:00:00Z"))
	cancel()
	<-stopped

	batches := store.stored()
	require.Len(t, batches, 1)
	assert.Equal(t, int64(1), batches[0][0].Count)
}
