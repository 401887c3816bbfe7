// Package pacing replays presentation frames at a fixed cadence.
//
// Game outcomes are settled before any frame is shown. The pacer only decides
// when a host renders each frame, so cancelling it can skip ahead but never
// change what the player ends up seeing last.
package pacing

import (
	"context"
	"time"

	"github.com/coder/quartz"
)

// Pacer replays frames on a clock
type Pacer struct {
	clock quartz.Clock
}

// New creates a pacer. A nil clock uses the real one.
func New(clock quartz.Clock) *Pacer {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Pacer{clock: clock}
}

// Replay calls show for frames 0..n-1, the first immediately and the rest one
// interval apart. If ctx is cancelled first, show is called once more with the
// final frame and ctx's error is returned.
func (p *Pacer) Replay(ctx context.Context, n int, interval time.Duration, show func(i int)) error {
	if n <= 0 {
		return nil
	}
	if interval <= 0 {
		for i := 0; i < n; i++ {
			show(i)
		}
		return nil
	}

	// The ticker exists before the first frame is shown so no tick is missed.
	ticker := p.clock.NewTicker(interval, "pacing", "replay")
	defer ticker.Stop()

	show(0)
	for i := 1; i < n; i++ {
		select {
		case <-ctx.Done():
			show(n - 1)
			return ctx.Err()
		case <-ticker.C:
			show(i)
		}
	}
	return nil
}

// Wait blocks for d on the pacer's clock
func (p *Pacer) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	done := make(chan struct{})
	timer := p.clock.AfterFunc(d, func() {
		close(done)
	}, "pacing", "wait")
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
