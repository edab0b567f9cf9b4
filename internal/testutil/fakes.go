package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/sophialabs/stubwire/internal/domain/match"
	"github.com/sophialabs/stubwire/internal/infrastructure/ports"
)

var _ ports.Logger = (*NoopLogger)(nil)

// NoopLogger discards all log output.
type NoopLogger struct{}

func (l *NoopLogger) Info(string, ...any)  {}
func (l *NoopLogger) Warn(string, ...any)  {}
func (l *NoopLogger) Error(string, ...any) {}
func (l *NoopLogger) Debug(string, ...any) {}

var _ ports.Clock = (*FixedClock)(nil)

// FixedClock returns a fixed time and never sleeps. It records requested
// sleep durations so tests can assert on simulated latency.
type FixedClock struct {
	T time.Time

	mu     sync.Mutex
	Sleeps []time.Duration
}

func (c *FixedClock) Now() time.Time { return c.T }

func (c *FixedClock) SleepContext(_ context.Context, d time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Sleeps = append(c.Sleeps, d)
	return nil
}

var _ ports.RateLimiter = (*StubRateLimiter)(nil)

// StubRateLimiter returns a configurable Allow result.
type StubRateLimiter struct {
	AllowAll bool
}

func (r *StubRateLimiter) Allow(context.Context, string, float64, int) bool {
	return r.AllowAll
}

var _ match.BodyRenderer = (*StubBodyRenderer)(nil)

// StubBodyRenderer returns a configurable render result.
type StubBodyRenderer struct {
	Result []byte
	Err    error
}

func (r *StubBodyRenderer) Render(*match.RequestContext) ([]byte, error) {
	return r.Result, r.Err
}

var _ match.ConditionProgram = (*StubCondition)(nil)

// StubCondition returns a fixed evaluation result.
type StubCondition struct {
	Result bool
}

func (c *StubCondition) Eval(*match.RequestContext) bool { return c.Result }
