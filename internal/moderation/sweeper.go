package moderation

import (
	"context"
	"time"
)

// StartExpirySweeper periodically rejects reports whose voting period has
// elapsed without a decision. It stops when done is closed.
func StartExpirySweeper(e *Engine, interval time.Duration, done <-chan struct{}) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), interval)
				n, err := e.ExpireStale(ctx)
				cancel()
				if err != nil {
					e.logger.Error("report expiry sweep failed", "action", "expire_reports", "error", err.Error())
				} else if n > 0 {
					e.logger.Info("report expiry sweep completed", "resolved", n)
				}
			case <-done:
				return
			}
		}
	}()
}
