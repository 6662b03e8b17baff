package clients

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeCounter struct {
	counts map[string]int64
	keys   []string
	err    error
}

func (f *fakeCounter) IncrementWindow(_ context.Context, key string, window time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.keys = append(f.keys, key)
	f.counts[key]++
	return f.counts[key], nil
}

func TestRateLimiterAllowsUpToLimit(t *testing.T) {
	counter := &fakeCounter{}
	limiter := NewRateLimiter(counter, 2)
	limiter.now = func() time.Time { return time.Unix(600, 0) }

	assert.True(t, limiter.Allow(context.Background(), "10.0.0.1"))
	assert.True(t, limiter.Allow(context.Background(), "10.0.0.1"))
	assert.False(t, limiter.Allow(context.Background(), "10.0.0.1"))
	assert.True(t, limiter.Allow(context.Background(), "10.0.0.2"))
	assert.Equal(t, "tonecheck:ratelimit:10.0.0.1:10", counter.keys[0])
}

func TestRateLimiterNewWindowResets(t *testing.T) {
	counter := &fakeCounter{}
	limiter := NewRateLimiter(counter, 1)
	now := time.Unix(600, 0)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow(context.Background(), "client"))
	assert.False(t, limiter.Allow(context.Background(), "client"))

	now = now.Add(time.Minute)
	assert.True(t, limiter.Allow(context.Background(), "client"))
}

func TestRateLimiterFailsOpen(t *testing.T) {
	limiter := NewRateLimiter(&fakeCounter{err: errors.New("connection refused")}, 1)
	assert.True(t, limiter.Allow(context.Background(), "client"))
}

func TestRateLimiterDisabledByZeroLimit(t *testing.T) {
	counter := &fakeCounter{}
	limiter := NewRateLimiter(counter, 0)
	assert.True(t, limiter.Allow(context.Background(), "client"))
	assert.Empty(t, counter.keys)
}

func TestIsConnectionError(t *testing.T) {
	assert.False(t, isConnectionError(nil))
	assert.True(t, isConnectionError(errors.New("dial tcp: connection refused")))
	assert.True(t, isConnectionError(errors.New("unexpected EOF")))
	assert.False(t, isConnectionError(errors.New("WRONGTYPE")))
}
