package quadtree

import (
	"fmt"

	"github.com/golang/geo/r2"
)

// Point is an externally owned entity tracked by the index. The index keeps a non-owning reference
// to it and records which node currently holds it. A point must be removed from the index before the
// caller discards it; the index does not detect a point that was dropped while still indexed.
type Point struct {
	Position r2.Point
	Velocity r2.Point

	node    Handle
	indexed bool
}

// NewPoint returns an unindexed point.
func NewPoint(position, velocity r2.Point) *Point {
	return &Point{Position: position, Velocity: velocity, node: NilHandle}
}

// Node returns the handle of the node whose bucket holds the point, or NilHandle if it is not
// indexed. The value is only a hint once the tree has been mutated by someone else.
func (p *Point) Node() Handle {
	if !p.indexed {
		return NilHandle
	}
	return p.node
}

// Indexed reports whether the point is currently held by an index.
func (p *Point) Indexed() bool {
	return p.indexed
}

func (p *Point) attach(h Handle) {
	p.node = h
	p.indexed = true
}

func (p *Point) detach() {
	p.node = NilHandle
	p.indexed = false
}

func (p *Point) String() string {
	return fmt.Sprintf("point at (%.2f, %.2f)", p.Position.X, p.Position.Y)
}
