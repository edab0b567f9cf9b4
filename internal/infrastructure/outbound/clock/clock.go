package clock

import (
	"context"
	"time"

	"github.com/sophialabs/stubwire/internal/infrastructure/ports"
)

var _ ports.Clock = (*SystemClock)(nil)

// SystemClock implements ports.Clock using the system clock.
type SystemClock struct{}

// New creates a new SystemClock.
func New() *SystemClock {
	return &SystemClock{}
}

func (c *SystemClock) Now() time.Time { return time.Now() }

// SleepContext blocks the calling goroutine only; concurrent dispatches each
// sleep on their own timer and are never serialized behind one another.
func (c *SystemClock) SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
