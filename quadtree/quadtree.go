// Package quadtree implements a mutable region quadtree over 2D points whose nodes live in a
// growable arena and are addressed by stable integer handles.
package quadtree

import (
	"math"
)

// Handle identifies a node in the arena. Handles are slice indices, so they survive arena growth
// while addresses of node records do not.
type Handle uint32

// NilHandle denotes "no node".
const NilHandle = Handle(math.MaxUint32)

// Each node in the quadtree is either an internal node which links to four children, an empty leaf
// with no points, or a filled leaf holding up to the index capacity in its own bucket. Internal nodes
// may also hold points in their own bucket.
const (
	InternalNode = NodeType(iota)
	LeafNodeEmpty
	LeafNodeFilled
)

// NodeType represents the possible types of nodes in a quadtree.
type NodeType uint8

func (t NodeType) String() string {
	switch t {
	case InternalNode:
		return "InternalNode"
	case LeafNodeEmpty:
		return "LeafNodeEmpty"
	case LeafNodeFilled:
		return "LeafNodeFilled"
	}
	return "Unknown"
}

// Quadrant names one of the four children of a divided node. Screen convention: y grows downward,
// so north is the smaller y.
type Quadrant uint8

// The quadrants, in the order children are created and tried on insertion.
const (
	Northeast = Quadrant(iota)
	Northwest
	Southeast
	Southwest
)

func (q Quadrant) String() string {
	switch q {
	case Northeast:
		return "NE"
	case Northwest:
		return "NW"
	case Southeast:
		return "SE"
	case Southwest:
		return "SW"
	}
	return "?"
}

var (
	// insertion, subdivision, update and traversal order.
	insertOrder = [4]Quadrant{Northeast, Northwest, Southeast, Southwest}
	// removal and query order. Only affects which branch short-circuits.
	searchOrder = [4]Quadrant{Northwest, Northeast, Southwest, Southeast}
)

// Hit is a single range query result: the point and the node whose bucket held it when the query ran.
type Hit struct {
	Node  Handle
	Point *Point
}

// NodeView is a read-only snapshot of one live node, handed to traversal visitors.
type NodeView struct {
	Handle  Handle
	Parent  Handle
	Depth   int
	Region  Region
	Divided bool
	// Children is indexed by Quadrant and only meaningful when Divided.
	Children [4]Handle
	Points   []*Point
}

// Type reports how the node would be classified in the tree.
func (v NodeView) Type() NodeType {
	switch {
	case v.Divided:
		return InternalNode
	case len(v.Points) > 0:
		return LeafNodeFilled
	default:
		return LeafNodeEmpty
	}
}

// SpatialIndex is the set of operations a host loop drives each frame.
type SpatialIndex interface {
	// Insert adds p to the index, returning false if no node accepts it.
	Insert(p *Point) bool
	// Remove removes p by identity, returning false if it is not indexed.
	Remove(p *Point) bool
	// RemoveAt removes p starting from a hinted node, falling back to a full search.
	RemoveAt(h Handle, p *Point) bool
	// Query returns every indexed point contained by r.
	Query(r Region) []Hit
	// Update re-buckets points that moved out of their node and returns the ones that could not be
	// reinserted.
	Update(dt float64) []*Point
	// Traverse walks every live node depth first until fn returns false.
	Traverse(fn func(NodeView) bool)
	// Len returns the number of indexed points.
	Len() int
}
