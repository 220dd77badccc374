package sim

import (
	"math/rand"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/spatialindex/quadtree"
)

// Config describes a world and the index backing it.
type Config struct {
	Bounds quadtree.Region
	Index  quadtree.Config
	// Speed is the magnitude of each velocity component given to spawned bodies.
	Speed float64
	Seed  int64
}

// World owns every body and keeps them indexed. It is driven from a single goroutine.
type World struct {
	logger golog.Logger
	index  *quadtree.Index
	bounds quadtree.Region
	speed  float64
	rng    *rand.Rand

	bodies []*Body
	byPt   map[*quadtree.Point]*Body
	frame  int
}

// NewWorld creates an empty world.
func NewWorld(cfg Config, logger golog.Logger) (*World, error) {
	if cfg.Speed < 0 {
		return nil, errors.Errorf("invalid body speed (%.2f)", cfg.Speed)
	}
	index, err := quadtree.New(cfg.Bounds, cfg.Index, logger)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create world index")
	}
	return &World{
		logger: logger,
		index:  index,
		bounds: cfg.Bounds,
		speed:  cfg.Speed,
		rng:    rand.New(rand.NewSource(cfg.Seed)), //nolint:gosec
		byPt:   map[*quadtree.Point]*Body{},
	}, nil
}

// Spawn adds a body at position moving diagonally at the world speed. It returns false if the index
// rejects the position, in which case the body is discarded.
func (w *World) Spawn(position r2.Point) (*Body, bool) {
	b := newBody(position, r2.Point{X: w.speed, Y: w.speed})
	if !w.index.Insert(b.Point) {
		w.logger.Debugw("spawn rejected", "position", position)
		return nil, false
	}
	w.bodies = append(w.bodies, b)
	w.byPt[b.Point] = b
	return b, true
}

// SpawnRandom spawns n bodies uniformly over the world and returns how many were accepted.
func (w *World) SpawnRandom(n int) int {
	rect := w.bounds.Rect()
	origin, size := rect.Lo(), rect.Size()
	spawned := 0
	for i := 0; i < n; i++ {
		pos := r2.Point{X: origin.X + w.rng.Float64()*size.X, Y: origin.Y + w.rng.Float64()*size.Y}
		if _, ok := w.Spawn(pos); ok {
			spawned++
		}
	}
	return spawned
}

// Step advances every body by dt and then re-buckets the index. Bodies the index could no longer
// place are dropped from the world and returned.
func (w *World) Step(dt float64) []*Body {
	rect := w.bounds.Rect()
	for _, b := range w.bodies {
		b.Advance(dt, rect)
	}
	evicted := w.index.Update(dt)
	w.frame++
	if len(evicted) == 0 {
		return nil
	}

	dropped := make([]*Body, 0, len(evicted))
	for _, p := range evicted {
		dropped = append(dropped, w.byPt[p])
		delete(w.byPt, p)
	}
	w.bodies = lo.Filter(w.bodies, func(b *Body, _ int) bool {
		return b.Point.Indexed()
	})
	w.logger.Debugw("bodies dropped", "frame", w.frame, "count", len(dropped))
	return dropped
}

// Select returns the bodies whose position lies in the region centered at center.
func (w *World) Select(center, half r2.Point) []*Body {
	hits := w.index.Query(quadtree.Region{Center: center, Half: half})
	return lo.Map(hits, func(hit quadtree.Hit, _ int) *Body {
		return w.byPt[hit.Point]
	})
}

// DeleteUnder removes every body under the region centered at center and returns how many went.
func (w *World) DeleteUnder(center, half r2.Point) int {
	hits := w.index.Query(quadtree.Region{Center: center, Half: half})
	removed := 0
	for _, hit := range hits {
		if !w.index.RemoveAt(hit.Node, hit.Point) {
			w.logger.Warnw("selected body was not indexed", "position", hit.Point.Position)
			continue
		}
		delete(w.byPt, hit.Point)
		removed++
	}
	if removed > 0 {
		w.bodies = lo.Filter(w.bodies, func(b *Body, _ int) bool {
			return b.Point.Indexed()
		})
	}
	return removed
}

// Bodies returns the live bodies. The slice must not be modified.
func (w *World) Bodies() []*Body {
	return w.bodies
}

// Index returns the index backing the world.
func (w *World) Index() *quadtree.Index {
	return w.index
}

// Frame returns how many steps have run.
func (w *World) Frame() int {
	return w.frame
}
