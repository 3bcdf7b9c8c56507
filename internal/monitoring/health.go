package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_INTERVAL = 15 * time.Second

type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// MonitorBackendHealth probes checker every interval and stores the result
// in healthy until ctx is done.
func MonitorBackendHealth(ctx context.Context, name string, checker HealthChecker, healthy *atomic.Bool, interval time.Duration) {
	if interval <= 0 {
		interval = HEALTHCHECK_INTERVAL
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			isHealthy := checker.HealthCheck(ctx)
			if healthy.Swap(isHealthy) != isHealthy {
				if isHealthy {
					slog.Info("[HealthCheck] Backend recovered", slog.String("backend", name))
				} else {
					slog.Warn("[HealthCheck] Backend is unhealthy", slog.String("backend", name))
				}
			}
		}
	}
}
