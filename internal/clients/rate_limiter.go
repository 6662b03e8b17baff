package clients

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const RATE_LIMIT_WINDOW = time.Minute

type WindowCounter interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimiter allows at most limit submissions per client in each fixed window.
type RateLimiter struct {
	counter WindowCounter
	limit   int
	window  time.Duration
	now     func() time.Time
}

func NewRateLimiter(counter WindowCounter, limit int) *RateLimiter {
	return &RateLimiter{
		counter: counter,
		limit:   limit,
		window:  RATE_LIMIT_WINDOW,
		now:     time.Now,
	}
}

// Allow fails open: if the counter store is unreachable the submission goes through.
func (r *RateLimiter) Allow(ctx context.Context, client string) bool {
	if r.limit <= 0 {
		return true
	}

	count, err := r.counter.IncrementWindow(ctx, r.key(client), r.window)
	if err != nil {
		slog.Warn("[RateLimiter] Counter unavailable, allowing submission",
			slog.String("client", client),
			slog.String("error", err.Error()))
		return true
	}

	if count > int64(r.limit) {
		slog.Info("[RateLimiter] Submission limit reached",
			slog.String("client", client),
			slog.Int64("count", count))
		return false
	}
	return true
}

func (r *RateLimiter) key(client string) string {
	bucket := r.now().Unix() / int64(r.window/time.Second)
	return fmt.Sprintf("tonecheck:ratelimit:%s:%d", client, bucket)
}
