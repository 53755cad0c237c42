package services

import (
	"context"
	"log/slog"
	"time"
)

// Refresher is the part of FileService the sweeper drives.
type Refresher interface {
	RefreshOverdue(ctx context.Context) (int, error)
}

// StartOverdueSweep runs r.RefreshOverdue every interval until ctx is done.
// It returns a channel closed once the loop has exited. A non-positive
// interval disables the sweep.
func StartOverdueSweep(ctx context.Context, r Refresher, interval time.Duration, logger *slog.Logger) <-chan struct{} {
	done := make(chan struct{})
	if interval <= 0 {
		close(done)
		return done
	}
	if logger == nil {
		logger = slog.Default()
	}

	go func() {
		defer close(done)
		logger.Info("overdue sweep started", "interval", interval.String())
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Info("overdue sweep stopped")
				return
			case <-ticker.C:
				n, err := r.RefreshOverdue(ctx)
				if err != nil && ctx.Err() == nil {
					logger.Error("overdue sweep failed", "error", err, "updated", n)
					continue
				}
				if n > 0 {
					logger.Info("overdue sweep", "updated", n)
				}
			}
		}
	}()
	return done
}
