package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/kasongo/elimu/core"
)

// Sweeper reaps group classes past their expiry. Expiry is stored on the
// class itself (expires_at = created_at + duration), so a process restart
// loses nothing: the first sweep after startup catches anything that
// expired while the process was down.
type Sweeper struct {
	classes  ClassRepository
	logger   core.Logger
	interval time.Duration
}

func NewSweeper(classes ClassRepository, logger core.Logger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{classes: classes, logger: logger, interval: interval}
}

// Start runs the sweep loop until ctx is cancelled. The first sweep happens
// immediately, then once per interval.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		s.Sweep(ctx, time.Now().UTC())

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("class expiry sweeper stopped")
				return
			case <-ticker.C:
				s.Sweep(ctx, time.Now().UTC())
			}
		}
	}()
}

// Sweep deletes every class whose expiry is at or before now.
// Failures are logged, not retried; the next tick picks them up.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) {
	ids, err := s.classes.DeleteExpiredClasses(ctx, now)
	if err != nil {
		s.logger.Error(fmt.Sprintf("sweeping expired classes: %v", err), err)
		return
	}
	for _, id := range ids {
		s.logger.Info(fmt.Sprintf("class %s deleted after its duration elapsed", id))
	}
}
