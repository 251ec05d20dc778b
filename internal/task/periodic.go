package task

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
)

// Periodic runs fn every period until ctx is canceled. Scheduling is
// absolute-time: the ticker fires at multiples of period from the start,
// so task-switch latency does not accumulate as drift.
//
// fn receives the elapsed time since the previous invocation, which is
// the nominal period under normal scheduling.
func Periodic(ctx context.Context, clk clock.Clock, period time.Duration, fn func(dt time.Duration)) {
	ticker := clk.Ticker(period)
	defer ticker.Stop()

	last := clk.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			if dt <= 0 {
				dt = period
			}
			last = now
			fn(dt)
		}
	}
}
