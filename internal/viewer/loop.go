package viewer

import (
	"context"
	"time"
)

// Loop drives a registry once per display refresh.
type Loop struct {
	registry *Registry
	ticks    uint64
	last     time.Time
	frame    time.Duration
}

// NewLoop creates a loop for r.
func NewLoop(r *Registry) *Loop {
	return &Loop{registry: r}
}

// Tick runs one frame: drain results and commands, advance every
// controller, redraw every session.
func (l *Loop) Tick() {
	now := time.Now()
	if !l.last.IsZero() {
		l.frame = now.Sub(l.last)
	}
	l.last = now

	l.registry.Drain()
	l.registry.Update()
	l.registry.Draw()
	l.ticks++
}

// Run ticks on every value from tick until ctx is done, or until maxTicks
// frames have run when maxTicks > 0.
func (l *Loop) Run(ctx context.Context, tick <-chan time.Time, maxTicks uint64) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
			l.Tick()
			if maxTicks > 0 && l.ticks >= maxTicks {
				return nil
			}
		}
	}
}

// Ticks returns the number of frames run.
func (l *Loop) Ticks() uint64 {
	return l.ticks
}

// FrameTime returns the duration of the last frame interval.
func (l *Loop) FrameTime() time.Duration {
	return l.frame
}

// Registry returns the driven registry.
func (l *Loop) Registry() *Registry {
	return l.registry
}
