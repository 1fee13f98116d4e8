package game

import (
	"context"
	"time"
)

// Ticker is anything advanced by the frame loop.
type Ticker interface {
	Tick(dt time.Duration)
}

// Loop is the host frame loop: it measures wall-clock deltas and feeds them to a Ticker.
type Loop struct {
	target   Ticker
	interval time.Duration
	now      func() time.Time
}

func NewLoop(target Ticker, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &Loop{target: target, interval: interval, now: time.Now}
}

// Run ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	last := l.now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			now := l.now()
			dt := now.Sub(last)
			last = now
			if dt > 0 {
				l.target.Tick(dt)
			}
		}
	}
}
