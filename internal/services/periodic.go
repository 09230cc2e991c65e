// Package services – periodic background sync.
//
// PeriodicSync keeps the catalog mirror fresh without operator involvement:
// one run at startup, then one per interval. A failed run shortens the wait
// before the next attempt so a transient upstream outage does not leave the
// mirror stale for a whole interval.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	// defaultSyncInterval paces the steady-state catalog refresh.
	defaultSyncInterval = 24 * time.Hour

	// failureRetryDivisor shortens the wait after a failed run
	// (interval / divisor).
	failureRetryDivisor = 4
)

// PeriodicSync drives the catalog runner on a fixed schedule.
type PeriodicSync struct {
	Runner   SyncRunner
	Logger   zerolog.Logger
	Interval time.Duration
}

// NewPeriodicSync constructs a PeriodicSync with the default interval when
// interval is non-positive.
func NewPeriodicSync(runner SyncRunner, log zerolog.Logger, interval time.Duration) *PeriodicSync {
	if interval <= 0 {
		interval = defaultSyncInterval
	}
	return &PeriodicSync{Runner: runner, Logger: log, Interval: interval}
}

// Run blocks until ctx ends, executing an initial sync immediately and then
// one per interval. It is meant to be launched as a goroutine from main.
func (p *PeriodicSync) Run(ctx context.Context) {
	wait := p.runOnce(ctx)
	for {
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
		wait = p.runOnce(ctx)
	}
}

// runOnce executes a single sync and returns the delay until the next one.
func (p *PeriodicSync) runOnce(ctx context.Context) time.Duration {
	if ctx.Err() != nil {
		return p.Interval
	}
	res, err := p.Runner.SyncAll(ctx)
	if err != nil || (res != nil && !res.IsSuccess) {
		p.Logger.Warn().Err(err).Msg("scheduled sync failed, retrying sooner")
		return p.Interval / failureRetryDivisor
	}
	return p.Interval
}
