package batch

import (
	"context"
	"time"
)

// Sleeper is the delay strategy of the scheduler. Implementations must
// return early with the context error once ctx is cancelled.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// ContextSleeper is the production delay strategy: a real wait that honors
// cancellation.
type ContextSleeper struct{}

// Sleep blocks for d or until ctx is cancelled.
func (ContextSleeper) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// NopSleeper skips every delay while still honoring cancellation. For tests.
type NopSleeper struct{}

// Sleep returns immediately with the context error, if any.
func (NopSleeper) Sleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

var _ Sleeper = ContextSleeper{}
var _ Sleeper = NopSleeper{}
