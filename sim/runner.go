package sim

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
)

// dtUnit is the wall time that counts as one unit of dt for body motion.
const dtUnit = 10 * time.Millisecond

// Runner paces a world in frames, deriving dt from the clock between frames.
type Runner struct {
	World      *World
	Clock      clock.Clock
	Interval   time.Duration
	StatsEvery int
	Logger     golog.Logger

	// OnFrame, if set, runs after every step. Returning an error stops the run.
	OnFrame func(frame int, dt float64) error
}

// Run steps the world frames times, or until ctx is done. A zero Interval runs frames back to back.
func (r *Runner) Run(ctx context.Context, frames int) error {
	clk := r.Clock
	if clk == nil {
		clk = clock.New()
	}
	last := clk.Now()
	for i := 0; i < frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		now := clk.Now()
		dt := float64(now.Sub(last)) / float64(dtUnit)
		last = now

		dropped := r.World.Step(dt)
		if len(dropped) > 0 {
			r.Logger.Infow("bodies left the world", "frame", r.World.Frame(), "count", len(dropped))
		}
		if r.StatsEvery > 0 && r.World.Frame()%r.StatsEvery == 0 {
			r.logStats()
		}
		if r.OnFrame != nil {
			if err := r.OnFrame(r.World.Frame(), dt); err != nil {
				return err
			}
		}

		if r.Interval <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clk.After(r.Interval):
		}
	}
	return nil
}

func (r *Runner) logStats() {
	s, err := r.World.Stats()
	if err != nil {
		r.Logger.Errorw("failed to compute stats", "error", err)
		return
	}
	r.Logger.Infow("frame stats",
		"frame", s.Frame,
		"bodies", s.Bodies,
		"nodes", s.Nodes,
		"leaves", s.Leaves,
		"max_depth", s.MaxDepth,
		"mean_point_depth", s.MeanPointDepth,
		"p95_point_depth", s.P95PointDepth,
		"mean_occupancy", s.MeanOccupancy,
		"arena_slots", s.ArenaSlots,
		"arena_grows", s.ArenaGrows,
	)
}
