package utils

import (
	"context"
	"time"
)

// StartPeriodicFlush launches a background goroutine that calls flush every
// interval until ctx is done. Sessions whose save failed are retried this way
// without waiting for the next award. Failures are logged and retried on the
// next tick.
func StartPeriodicFlush(ctx context.Context, interval time.Duration, flush func(context.Context) error) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if err := flush(ctx); err != nil {
				Sugar.Warnf("periodic flush failed: %v", err)
			}
		}
	}()
}
