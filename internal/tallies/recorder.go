package tallies

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/spacesedan/tonecheck/internal/models"
	"github.com/spacesedan/tonecheck/internal/utils"
)

const DAY_FORMAT = "2006-01-02"

type Store interface {
	AddTallies(ctx context.Context, tallies []models.ToneTally) error
}

// Recorder buffers classification events and periodically writes them to the
// Store as per-day, per-category counts.
type Recorder struct {
	store  Store
	buffer *utils.BatchBuffer[models.ToneEvent]
	full   chan struct{}
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{
		store:  store,
		buffer: utils.NewBatchBuffer[models.ToneEvent](),
		full:   make(chan struct{}, 1),
	}
}

func (r *Recorder) ToneClassified(_ context.Context, event models.ToneEvent) error {
	if r.buffer.Add(event) >= utils.BATCH_SIZE {
		select {
		case r.full <- struct{}{}:
		default:
		}
	}
	return nil
}

// Run flushes every BATCH_TIMEOUT or when the buffer fills up, and once more
// when ctx is done.
func (r *Recorder) Run(ctx context.Context) {
	ticker := time.NewTicker(utils.BATCH_TIMEOUT)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			r.Flush(flushCtx)
			cancel()
			slog.Info("[TallyRecorder] Stopped")
			return
		case <-ticker.C:
			r.Flush(ctx)
		case <-r.full:
			r.Flush(ctx)
		}
	}
}

func (r *Recorder) Flush(ctx context.Context) {
	batch := r.buffer.GetAndClear()
	if len(batch) == 0 {
		return
	}

	tallies := Aggregate(batch)
	if err := r.store.AddTallies(ctx, tallies); err != nil {
		slog.Error("[TallyRecorder] Failed to store tallies, dropping batch",
			slog.Int("events", len(batch)),
			slog.String("error", err.Error()))
		return
	}

	slog.Debug("[TallyRecorder] Flushed tallies",
		slog.Int("events", len(batch)),
		slog.Int("tallies", len(tallies)))
}

// Aggregate groups events by UTC day and tone, ordered by day then category.
func Aggregate(events []models.ToneEvent) []models.ToneTally {
	type key struct {
		day      string
		category string
	}

	counts := make(map[key]int64)
	for _, event := range events {
		k := key{
			day:      event.ClassifiedAt.UTC().Format(DAY_FORMAT),
			category: event.Category.String(),
		}
		counts[k]++
	}

	tallies := make([]models.ToneTally, 0, len(counts))
	for k, count := range counts {
		tallies = append(tallies, models.ToneTally{Day: k.day, Category: k.category, Count: count})
	}
	sort.Slice(tallies, func(i, j int) bool {
		if tallies[i].Day != tallies[j].Day {
			return tallies[i].Day < tallies[j].Day
		}
		return tallies[i].Category < tallies[j].Category
	})
	return tallies
}
