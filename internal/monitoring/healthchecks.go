package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_TIMER = 15

type Pinger interface {
	Ping(ctx context.Context) error
}

// MonitorHealth pings the dependency every HEALTHCHECK_TIMER seconds and
// records the outcome in healthy.
func MonitorHealth(ctx context.Context, name string, pinger Pinger, healthy *atomic.Bool) {
	ticker := time.NewTicker(time.Second * HEALTHCHECK_TIMER)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			healthy.Store(check(ctx, name, pinger))
		}
	}
}

func check(ctx context.Context, name string, pinger Pinger) bool {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := pinger.Ping(ctx); err != nil {
		slog.Warn("[HealthCheck] Dependency is unhealthy",
			slog.String("dependency", name),
			slog.String("error", err.Error()))
		return false
	}
	return true
}
