package world

import (
	"context"
	"log/slog"
	"time"
)

// GameLoop drives Manager.Update on a fixed tick.
type GameLoop struct {
	world    *Manager
	interval time.Duration
}

// NewGameLoop creates a loop ticking the given world.
func NewGameLoop(world *Manager, interval time.Duration) *GameLoop {
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	return &GameLoop{world: world, interval: interval}
}

// Run blocks until the context is canceled, ticking the world with the
// measured (not nominal) delta so slow ticks do not dilate game time.
func (l *GameLoop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	slog.Info("game loop started", "interval", l.interval)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("game loop stopping")
			return ctx.Err()

		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now
			l.world.Update(delta)
		}
	}
}
