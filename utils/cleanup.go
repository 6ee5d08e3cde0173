package utils

import (
	"context"
	"time"
)

// StartSessionSweeper periodically removes expired sessions until ctx is done.
// Expiry is enforced at resolve time; the sweep only keeps the table small.
func StartSessionSweeper(ctx context.Context, interval time.Duration, sweep func(context.Context) (int64, error)) {
	if interval <= 0 {
		interval = 30 * time.Minute
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
			runCtx, cancel := context.WithTimeout(ctx, time.Minute)
			n, err := sweep(runCtx)
			cancel()
			if err != nil {
				Sugar.Warnw("session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				SessionsSweptTotal.Add(float64(n))
				Sugar.Infow("expired sessions removed", "count", n)
			}
		}
	}()
}
