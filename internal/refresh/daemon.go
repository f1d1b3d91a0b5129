package refresh

import (
	"context"
	"time"
)

// DefaultInterval is the gap between scheduled refresh runs.
const DefaultInterval = 5 * time.Minute

// RunEvery executes refresh runs on a fixed interval until ctx is
// cancelled. The first run starts immediately; a failed run is logged
// and the schedule keeps going.
func (r *Refresher) RunEvery(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.Run(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.log.Error().Err(err).Msg("refresh run failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
