package sim

import (
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"go.viam.com/test"

	"go.viam.com/spatialindex/quadtree"
)

var screen = quadtree.Region{Center: r2.Point{X: 400, Y: 300}, Half: r2.Point{X: 400, Y: 300}}

func newTestWorld(t *testing.T, cfg Config) *World {
	t.Helper()
	if cfg.Bounds == (quadtree.Region{}) {
		cfg.Bounds = screen
	}
	cfg.Index.Debug = true
	w, err := NewWorld(cfg, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return w
}

func TestNewWorld(t *testing.T) {
	logger := golog.NewTestLogger(t)

	_, err := NewWorld(Config{Bounds: screen, Speed: -1}, logger)
	test.That(t, err, test.ShouldBeError)

	_, err = NewWorld(Config{}, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "failed to create world index")

	w, err := NewWorld(Config{Bounds: screen, Speed: 0.6, Seed: 1}, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, w.Bodies(), test.ShouldBeEmpty)
	test.That(t, w.Frame(), test.ShouldEqual, 0)
}

func TestBodyAdvance(t *testing.T) {
	bounds := screen.Rect()

	b := newBody(r2.Point{X: 100, Y: 100}, r2.Point{X: 0.5, Y: -0.5})
	b.Advance(2, bounds)
	test.That(t, b.Point.Position, test.ShouldResemble, r2.Point{X: 101, Y: 99})

	b = newBody(r2.Point{X: 797, Y: 1}, r2.Point{X: 1, Y: -1})
	b.Advance(5, bounds)
	test.That(t, b.Point.Position, test.ShouldResemble, r2.Point{X: 798, Y: 0})
	test.That(t, b.Point.Velocity, test.ShouldResemble, r2.Point{X: -1, Y: 1})

	b = newBody(r2.Point{X: 1, Y: 597}, r2.Point{X: -1, Y: 1})
	b.Advance(5, bounds)
	test.That(t, b.Point.Position, test.ShouldResemble, r2.Point{X: 0, Y: 598})
	test.That(t, b.Point.Velocity, test.ShouldResemble, r2.Point{X: 1, Y: -1})
	test.That(t, screen.Contains(b.Point.Position), test.ShouldBeTrue)
}

func TestSpawn(t *testing.T) {
	w := newTestWorld(t, Config{Speed: 0.6, Seed: 3})

	b, ok := w.Spawn(r2.Point{X: 10, Y: 10})
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, b.Point.Indexed(), test.ShouldBeTrue)
	test.That(t, b.Point.Velocity, test.ShouldResemble, r2.Point{X: 0.6, Y: 0.6})

	_, ok = w.Spawn(r2.Point{X: 900, Y: 10})
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, w.Bodies(), test.ShouldHaveLength, 1)

	test.That(t, w.SpawnRandom(500), test.ShouldEqual, 500)
	test.That(t, w.Bodies(), test.ShouldHaveLength, 501)
	test.That(t, w.Index().Len(), test.ShouldEqual, 501)
}

func TestStep(t *testing.T) {
	t.Run("bodies stay indexed while moving", func(t *testing.T) {
		w := newTestWorld(t, Config{Speed: 0.6, Seed: 5})
		w.SpawnRandom(1000)
		for i := 0; i < 30; i++ {
			test.That(t, w.Step(1.6), test.ShouldBeEmpty)
		}
		test.That(t, w.Frame(), test.ShouldEqual, 30)
		test.That(t, w.Bodies(), test.ShouldHaveLength, 1000)
		test.That(t, w.Index().Verify(), test.ShouldBeNil)
		for _, b := range w.Bodies() {
			test.That(t, len(w.Select(b.Point.Position, r2.Point{})), test.ShouldBeGreaterThanOrEqualTo, 1)
		}
	})

	t.Run("bodies the index cannot place are dropped", func(t *testing.T) {
		w := newTestWorld(t, Config{Index: quadtree.Config{Capacity: 1, MaxDepth: 1}})
		_, ok := w.Spawn(r2.Point{X: 10, Y: 10})
		test.That(t, ok, test.ShouldBeTrue)
		moving, ok := w.Spawn(r2.Point{X: 20, Y: 20})
		test.That(t, ok, test.ShouldBeTrue)
		_, ok = w.Spawn(r2.Point{X: 700, Y: 100})
		test.That(t, ok, test.ShouldBeTrue)

		moving.Point.Velocity = r2.Point{X: 680, Y: 80}
		dropped := w.Step(1)
		test.That(t, dropped, test.ShouldResemble, []*Body{moving})
		test.That(t, w.Bodies(), test.ShouldHaveLength, 2)
		test.That(t, w.Bodies(), test.ShouldNotContain, moving)
		test.That(t, w.Index().Len(), test.ShouldEqual, 2)
	})
}

func TestSelectAndDelete(t *testing.T) {
	w := newTestWorld(t, Config{})
	var bodies []*Body
	for _, v := range []float64{10, 20, 30, 40, 50} {
		b, ok := w.Spawn(r2.Point{X: v, Y: v})
		test.That(t, ok, test.ShouldBeTrue)
		bodies = append(bodies, b)
	}

	center, half := r2.Point{X: 50, Y: 50}, r2.Point{X: 25, Y: 25}
	selected := w.Select(center, half)
	test.That(t, selected, test.ShouldHaveLength, 3)
	for _, b := range bodies[2:] {
		test.That(t, selected, test.ShouldContain, b)
	}

	test.That(t, w.DeleteUnder(center, half), test.ShouldEqual, 3)
	test.That(t, w.Select(center, half), test.ShouldBeEmpty)
	test.That(t, w.Bodies(), test.ShouldResemble, bodies[:2])
	test.That(t, w.Index().NodeCount(), test.ShouldEqual, 1)
	test.That(t, w.DeleteUnder(center, half), test.ShouldEqual, 0)
}
