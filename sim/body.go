// Package sim is a headless host loop for the quadtree: it moves bodies around a bounded world and
// drives insertion, removal, range queries and the per-frame index update.
package sim

import (
	"github.com/golang/geo/r2"
	"github.com/google/uuid"

	"go.viam.com/spatialindex/quadtree"
)

// edgeInset keeps bouncing bodies strictly inside the half-open world bounds.
const edgeInset = 2.0

// Body is a moving entity owned by the world. Its Point is what the index tracks.
type Body struct {
	ID    uuid.UUID
	Point *quadtree.Point
}

func newBody(position, velocity r2.Point) *Body {
	return &Body{
		ID:    uuid.New(),
		Point: quadtree.NewPoint(position, velocity),
	}
}

// Advance integrates the body over dt and reflects it off the edges of bounds.
func (b *Body) Advance(dt float64, bounds r2.Rect) {
	p := b.Point
	p.Position = p.Position.Add(p.Velocity.Mul(dt))

	lo, hi := bounds.Lo(), bounds.Hi()
	if p.Position.X < lo.X {
		p.Position.X = lo.X
		p.Velocity.X *= -1
	} else if p.Position.X > hi.X-edgeInset {
		p.Position.X = hi.X - edgeInset
		p.Velocity.X *= -1
	}
	if p.Position.Y < lo.Y {
		p.Position.Y = lo.Y
		p.Velocity.Y *= -1
	} else if p.Position.Y > hi.Y-edgeInset {
		p.Position.Y = hi.Y - edgeInset
		p.Velocity.Y *= -1
	}
}
