package quadtree

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"go.viam.com/test"
)

func TestRegionContains(t *testing.T) {
	r := Region{Center: r2.Point{X: 0, Y: 0}, Half: r2.Point{X: 2, Y: 1}}

	test.That(t, r.Contains(r2.Point{X: 0, Y: 0}), test.ShouldBeTrue)
	test.That(t, r.Contains(r2.Point{X: -2, Y: -1}), test.ShouldBeTrue)
	test.That(t, r.Contains(r2.Point{X: 1.99, Y: 0.99}), test.ShouldBeTrue)
	test.That(t, r.Contains(r2.Point{X: 2, Y: 0}), test.ShouldBeFalse)
	test.That(t, r.Contains(r2.Point{X: 0, Y: 1}), test.ShouldBeFalse)
	test.That(t, r.Contains(r2.Point{X: -2.01, Y: 0}), test.ShouldBeFalse)
	test.That(t, r.Contains(r2.Point{X: 0, Y: -1000}), test.ShouldBeFalse)

	t.Run("zero extent matches the center exactly", func(t *testing.T) {
		p := Region{Center: r2.Point{X: 3, Y: 4}}
		test.That(t, p.Contains(r2.Point{X: 3, Y: 4}), test.ShouldBeTrue)
		test.That(t, p.Contains(r2.Point{X: 3, Y: 4.0001}), test.ShouldBeFalse)

		line := Region{Center: r2.Point{X: 3, Y: 4}, Half: r2.Point{X: 1}}
		test.That(t, line.Contains(r2.Point{X: 2.5, Y: 4}), test.ShouldBeTrue)
		test.That(t, line.Contains(r2.Point{X: 4, Y: 4}), test.ShouldBeFalse)
	})
}

func TestRegionIntersects(t *testing.T) {
	r := Region{Center: r2.Point{X: 0, Y: 0}, Half: r2.Point{X: 1, Y: 1}}

	test.That(t, r.Intersects(r), test.ShouldBeTrue)
	test.That(t, r.Intersects(Region{Center: r2.Point{X: 1.5, Y: 0}, Half: r2.Point{X: 1, Y: 1}}), test.ShouldBeTrue)
	// touching edges count
	test.That(t, r.Intersects(Region{Center: r2.Point{X: 2, Y: 0}, Half: r2.Point{X: 1, Y: 1}}), test.ShouldBeTrue)
	test.That(t, r.Intersects(Region{Center: r2.Point{X: 2.01, Y: 0}, Half: r2.Point{X: 1, Y: 1}}), test.ShouldBeFalse)
	test.That(t, r.Intersects(Region{Center: r2.Point{X: 0, Y: -3}, Half: r2.Point{X: 1, Y: 1}}), test.ShouldBeFalse)
	test.That(t, r.Intersects(Region{Center: r2.Point{X: 0, Y: 0}, Half: r2.Point{X: 10, Y: 10}}), test.ShouldBeTrue)
	test.That(t, r.Intersects(Region{Center: r2.Point{X: 0.5, Y: 0.5}}), test.ShouldBeTrue)
}

func TestRegionQuadrant(t *testing.T) {
	r := Region{Center: r2.Point{X: 400, Y: 300}, Half: r2.Point{X: 400, Y: 300}}
	half := r2.Point{X: 200, Y: 150}

	test.That(t, r.Quadrant(Northeast), test.ShouldResemble, Region{Center: r2.Point{X: 600, Y: 150}, Half: half})
	test.That(t, r.Quadrant(Northwest), test.ShouldResemble, Region{Center: r2.Point{X: 200, Y: 150}, Half: half})
	test.That(t, r.Quadrant(Southeast), test.ShouldResemble, Region{Center: r2.Point{X: 600, Y: 450}, Half: half})
	test.That(t, r.Quadrant(Southwest), test.ShouldResemble, Region{Center: r2.Point{X: 200, Y: 450}, Half: half})
	test.That(t, func() { r.Quadrant(Quadrant(7)) }, test.ShouldPanic)

	// every point of the parent lies in exactly one quadrant
	for _, p := range []r2.Point{{X: 0, Y: 0}, {X: 400, Y: 300}, {X: 399.5, Y: 299.5}, {X: 799, Y: 599}, {X: 400, Y: 0}} {
		count := 0
		for _, q := range insertOrder {
			if r.Quadrant(q).Contains(p) {
				count++
			}
		}
		test.That(t, count, test.ShouldEqual, 1)
	}
}

func TestNewRegion(t *testing.T) {
	r, err := NewRegion(r2.Point{X: 1, Y: 2}, r2.Point{X: 3, Y: 4})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, r.Rect(), test.ShouldResemble, r2.RectFromPoints(r2.Point{X: -2, Y: -2}, r2.Point{X: 4, Y: 6}))
	test.That(t, RegionFromRect(r.Rect()), test.ShouldResemble, r)

	_, err = NewRegion(r2.Point{}, r2.Point{X: -1, Y: 1})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid half extents")

	_, err = NewRegion(r2.Point{X: math.NaN()}, r2.Point{X: 1, Y: 1})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = NewRegion(r2.Point{}, r2.Point{X: math.Inf(1), Y: 1})
	test.That(t, err, test.ShouldNotBeNil)
}
