package quadtree

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// Region is an axis-aligned rectangle described by its center and half-extents.
type Region struct {
	Center r2.Point
	Half   r2.Point
}

// NewRegion creates a region, rejecting negative or non-finite extents.
func NewRegion(center, half r2.Point) (Region, error) {
	for _, v := range []float64{center.X, center.Y, half.X, half.Y} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Region{}, errors.Errorf("invalid region (%v, %v): values must be finite", center, half)
		}
	}
	if half.X < 0 || half.Y < 0 {
		return Region{}, errors.Errorf("invalid half extents (%.2f, %.2f) for region", half.X, half.Y)
	}
	return Region{Center: center, Half: half}, nil
}

// RegionFromRect converts a corner based rectangle into a region.
func RegionFromRect(r r2.Rect) Region {
	return Region{Center: r.Center(), Half: r.Size().Mul(0.5)}
}

// Contains reports whether p lies in the region. The lower bound is inclusive and the upper bound
// exclusive on both axes, so sibling quadrants never share a point. An axis with zero extent
// degenerates to an exact match on the center.
func (r Region) Contains(p r2.Point) bool {
	return containsAxis(p.X, r.Center.X, r.Half.X) && containsAxis(p.Y, r.Center.Y, r.Half.Y)
}

func containsAxis(v, center, half float64) bool {
	if half == 0 {
		return v == center
	}
	return v >= center-half && v < center+half
}

// Intersects reports whether the two regions overlap. Touching edges count as overlap.
func (r Region) Intersects(o Region) bool {
	return !(o.Center.X-o.Half.X > r.Center.X+r.Half.X ||
		o.Center.X+o.Half.X < r.Center.X-r.Half.X ||
		o.Center.Y-o.Half.Y > r.Center.Y+r.Half.Y ||
		o.Center.Y+o.Half.Y < r.Center.Y-r.Half.Y)
}

// Quadrant returns the child region covering quadrant q.
func (r Region) Quadrant(q Quadrant) Region {
	half := r.Half.Mul(0.5)
	c := r.Center
	switch q {
	case Northeast:
		return Region{Center: r2.Point{X: c.X + half.X, Y: c.Y - half.Y}, Half: half}
	case Northwest:
		return Region{Center: r2.Point{X: c.X - half.X, Y: c.Y - half.Y}, Half: half}
	case Southeast:
		return Region{Center: r2.Point{X: c.X + half.X, Y: c.Y + half.Y}, Half: half}
	case Southwest:
		return Region{Center: r2.Point{X: c.X - half.X, Y: c.Y + half.Y}, Half: half}
	}
	panic(fmt.Sprintf("quadtree: invalid quadrant %d", q))
}

// Rect returns the region as a corner based rectangle.
func (r Region) Rect() r2.Rect {
	return r2.RectFromCenterSize(r.Center, r.Half.Mul(2))
}

func (r Region) String() string {
	return fmt.Sprintf("region with center at (%.2f, %.2f) and half extents (%.2f, %.2f)",
		r.Center.X, r.Center.Y, r.Half.X, r.Half.Y)
}
