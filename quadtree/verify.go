package quadtree

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Verify walks the whole tree and reports every structural invariant it finds broken. A nil result
// means every node is a leaf or has exactly four live children, no bucket exceeds capacity, every
// point sits in exactly one bucket inside its node's region with a matching back-reference, and the
// arena holds no unreachable live nodes.
func (idx *Index) Verify() error {
	var errs error
	seen := make(map[*Point]Handle, idx.size)
	visited := 0
	points := 0

	var walk func(h, parent Handle, depth int)
	walk = func(h, parent Handle, depth int) {
		if !idx.arena.valid(h) {
			errs = multierr.Append(errs, errors.Errorf("node %d referenced by %d is not live", h, parent))
			return
		}
		visited++
		n := idx.arena.at(h)
		if n.parent != parent {
			errs = multierr.Append(errs, errors.Errorf("node %d has parent %d, expected %d", h, n.parent, parent))
		}
		if n.depth != depth {
			errs = multierr.Append(errs, errors.Errorf("node %d has depth %d, expected %d", h, n.depth, depth))
		}
		if len(n.bucket) > idx.capacity {
			errs = multierr.Append(errs, errors.Errorf("node %d holds %d points, capacity is %d", h, len(n.bucket), idx.capacity))
		}
		for _, p := range n.bucket {
			points++
			if other, dup := seen[p]; dup {
				errs = multierr.Append(errs, errors.Errorf("%v is held by nodes %d and %d", p, other, h))
				continue
			}
			seen[p] = h
			if p.Node() != h {
				errs = multierr.Append(errs, errors.Errorf("%v in node %d has back-reference %d", p, h, p.Node()))
			}
			if !n.region.Contains(p.Position) {
				errs = multierr.Append(errs, errors.Errorf("%v lies outside node %d (%v)", p, h, n.region))
			}
		}
		if !n.divided {
			return
		}
		children := n.children
		for _, q := range insertOrder {
			c := children[q]
			if c == NilHandle {
				errs = multierr.Append(errs, errors.Errorf("divided node %d is missing its %v child", h, q))
				continue
			}
			if idx.arena.valid(c) && idx.arena.at(c).region != n.region.Quadrant(q) {
				errs = multierr.Append(errs, errors.Errorf("%v child %d of node %d has the wrong region", q, c, h))
			}
			walk(c, h, depth+1)
		}
	}
	walk(idx.root, NilHandle, 0)

	if visited != idx.arena.Len() {
		errs = multierr.Append(errs, errors.Errorf("%d nodes reachable but %d live in the arena", visited, idx.arena.Len()))
	}
	if points != idx.size {
		errs = multierr.Append(errs, errors.Errorf("%d points reachable but index size is %d", points, idx.size))
	}
	return errs
}
