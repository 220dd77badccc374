package quadtree

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
)

const (
	// DefaultCapacity is the number of points a node holds in its own bucket.
	DefaultCapacity = 4
	// DefaultInitialNodes is the number of arena slots reserved up front.
	DefaultInitialNodes = 1024
	// DefaultMaxDepth bounds subdivision so coincident points cannot recurse forever.
	DefaultMaxDepth = 24
)

// Config holds the tunables of an Index. Zero values select the defaults.
type Config struct {
	Capacity     int
	InitialNodes int
	MaxDepth     int
	// Debug runs Verify after every mutation and panics on any violation.
	Debug bool
}

func (cfg Config) withDefaults() Config {
	if cfg.Capacity == 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.InitialNodes == 0 {
		cfg.InitialNodes = DefaultInitialNodes
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	return cfg
}

// Index is a region quadtree whose nodes live in an arena. Each node keeps up to capacity points in
// its own bucket; only overflow beyond that goes to its four children, which are created on demand
// and freed again once the whole subtree is empty. An Index is not safe for concurrent use.
type Index struct {
	logger   golog.Logger
	arena    *arena
	root     Handle
	capacity int
	maxDepth int
	debug    bool
	size     int
}

// New creates an index covering region with a single empty root node.
func New(region Region, cfg Config, logger golog.Logger) (*Index, error) {
	if region.Half.X <= 0 || region.Half.Y <= 0 {
		return nil, errors.Errorf("invalid half extents (%.2f, %.2f) for quadtree root", region.Half.X, region.Half.Y)
	}
	cfg = cfg.withDefaults()
	if cfg.Capacity < 1 {
		return nil, errors.Errorf("invalid bucket capacity (%d) for quadtree", cfg.Capacity)
	}
	if cfg.InitialNodes < 1 {
		return nil, errors.Errorf("invalid initial node count (%d) for quadtree", cfg.InitialNodes)
	}
	if cfg.MaxDepth < 1 {
		return nil, errors.Errorf("invalid max depth (%d) for quadtree", cfg.MaxDepth)
	}

	idx := &Index{
		logger:   logger,
		arena:    newArena(cfg.InitialNodes, cfg.Capacity, logger),
		capacity: cfg.Capacity,
		maxDepth: cfg.MaxDepth,
		debug:    cfg.Debug,
	}
	idx.root = idx.arena.allocate(region, NilHandle, 0)
	return idx, nil
}

// Insert places p in the first node, starting at the root, whose region contains it and whose bucket
// has room, subdividing full leaves as needed.
func (idx *Index) Insert(p *Point) bool {
	if p.Indexed() {
		idx.logger.Debugw("point already indexed, skipping insertion", "point", p.Position, "node", p.node)
		return false
	}
	ok := idx.insert(idx.root, p)
	if ok {
		idx.size++
	}
	idx.assert()
	return ok
}

func (idx *Index) insert(h Handle, p *Point) bool {
	n := idx.arena.at(h)
	if !n.region.Contains(p.Position) {
		return false
	}

	if len(n.bucket) < idx.capacity {
		n.bucket = append(n.bucket, p)
		p.attach(h)
		return true
	}

	if !n.divided {
		if n.depth >= idx.maxDepth {
			idx.logger.Debugw("max depth reached, rejecting point", "point", p.Position, "node", h, "depth", n.depth)
			return false
		}
		idx.subdivide(h)
	}

	// subdivide may have grown the arena, so look the children up again
	children := idx.arena.at(h).children
	for _, q := range insertOrder {
		if idx.insert(children[q], p) {
			return true
		}
	}
	return false
}

// subdivide creates the four quadrant children of a leaf. Bucket entries stay where they are.
func (idx *Index) subdivide(h Handle) {
	n := idx.arena.at(h)
	if n.divided {
		panic(errors.Errorf("quadtree: node %d subdivided twice", h))
	}
	region, depth := n.region, n.depth

	var children [4]Handle
	for _, q := range insertOrder {
		children[q] = idx.arena.allocate(region.Quadrant(q), h, depth+1)
	}

	n = idx.arena.at(h)
	n.children = children
	n.divided = true
}

// Remove removes p by identity, searching from the root, and collapses every subtree left empty on
// the way back up.
func (idx *Index) Remove(p *Point) bool {
	ok := idx.remove(idx.root, p)
	if ok {
		idx.size--
	}
	idx.assert()
	return ok
}

func (idx *Index) remove(h Handle, p *Point) bool {
	if idx.removeFromBucket(h, p) {
		return true
	}

	n := idx.arena.at(h)
	if !n.divided {
		return false
	}
	children := n.children
	for _, q := range searchOrder {
		if idx.remove(children[q], p) {
			idx.tryCollapse(h)
			return true
		}
	}
	return false
}

// RemoveAt removes p starting from node h, typically a handle from a query hit or the point's own
// back-reference. If h no longer holds p the whole tree is searched instead.
func (idx *Index) RemoveAt(h Handle, p *Point) bool {
	if !idx.arena.valid(h) || !idx.removeFromBucket(h, p) {
		return idx.Remove(p)
	}
	idx.size--
	for parent := idx.arena.at(h).parent; parent != NilHandle; parent = idx.arena.at(parent).parent {
		idx.tryCollapse(parent)
	}
	idx.assert()
	return true
}

// removeFromBucket swap-removes p from the bucket of h only.
func (idx *Index) removeFromBucket(h Handle, p *Point) bool {
	n := idx.arena.at(h)
	for i, candidate := range n.bucket {
		if candidate != p {
			continue
		}
		last := len(n.bucket) - 1
		n.bucket[i] = n.bucket[last]
		n.bucket[last] = nil
		n.bucket = n.bucket[:last]
		p.detach()
		return true
	}
	return false
}

// tryCollapse frees the four children of h once nothing remains below it.
func (idx *Index) tryCollapse(h Handle) {
	n := idx.arena.at(h)
	if !n.divided {
		return
	}
	children := n.children
	for _, c := range children {
		if !idx.empty(c) {
			return
		}
	}
	for _, q := range insertOrder {
		idx.releaseSubtree(children[q])
	}

	n = idx.arena.at(h)
	n.divided = false
	n.children = [4]Handle{NilHandle, NilHandle, NilHandle, NilHandle}
}

// empty reports whether the subtree rooted at h holds no points.
func (idx *Index) empty(h Handle) bool {
	n := idx.arena.at(h)
	if len(n.bucket) > 0 {
		return false
	}
	if !n.divided {
		return true
	}
	for _, c := range n.children {
		if !idx.empty(c) {
			return false
		}
	}
	return true
}

// releaseSubtree returns h and all of its descendants to the arena, children first.
func (idx *Index) releaseSubtree(h Handle) {
	n := idx.arena.at(h)
	if n.divided {
		children := n.children
		for _, q := range insertOrder {
			idx.releaseSubtree(children[q])
		}
		n = idx.arena.at(h)
		n.divided = false
	}
	idx.arena.release(h)
}

// Update moves every point that left its node's region, reinserting it from the root, and collapses
// subtrees left empty. dt is accepted for symmetry with the host's frame step and is not used.
// Points that could not be reinserted anywhere are no longer indexed and are returned.
func (idx *Index) Update(dt float64) []*Point {
	evicted := idx.update(idx.root, nil)
	idx.size -= len(evicted)
	if len(evicted) > 0 {
		idx.logger.Debugw("points evicted during update", "count", len(evicted), "dt", dt)
	}
	idx.assert()
	return evicted
}

func (idx *Index) update(h Handle, evicted []*Point) []*Point {
	n := idx.arena.at(h)

	// walk backwards so swap-remove only ever moves an entry that was already checked
	var staged []*Point
	for i := len(n.bucket) - 1; i >= 0; i-- {
		p := n.bucket[i]
		if n.region.Contains(p.Position) {
			continue
		}
		last := len(n.bucket) - 1
		n.bucket[i] = n.bucket[last]
		n.bucket[last] = nil
		n.bucket = n.bucket[:last]
		p.detach()
		staged = append(staged, p)
	}

	for _, p := range staged {
		if !idx.insert(idx.root, p) {
			evicted = append(evicted, p)
		}
	}

	n = idx.arena.at(h)
	if !n.divided {
		return evicted
	}
	children := n.children
	for _, q := range insertOrder {
		evicted = idx.update(children[q], evicted)
	}
	idx.tryCollapse(h)
	return evicted
}

// Query returns every indexed point contained by r along with the node that holds it.
func (idx *Index) Query(r Region) []Hit {
	return idx.query(idx.root, r, nil)
}

// QueryInto is like Query but appends to dst.
func (idx *Index) QueryInto(r Region, dst []Hit) []Hit {
	return idx.query(idx.root, r, dst)
}

func (idx *Index) query(h Handle, r Region, hits []Hit) []Hit {
	n := idx.arena.at(h)
	if !n.region.Intersects(r) {
		return hits
	}
	for _, p := range n.bucket {
		if r.Contains(p.Position) {
			hits = append(hits, Hit{Node: h, Point: p})
		}
	}
	if !n.divided {
		return hits
	}
	children := n.children
	for _, q := range searchOrder {
		hits = idx.query(children[q], r, hits)
	}
	return hits
}

// Traverse visits every live node depth first, the root and then its NE, NW, SE and SW subtrees.
// Returning false from fn stops the walk.
func (idx *Index) Traverse(fn func(NodeView) bool) {
	idx.traverse(idx.root, fn)
}

func (idx *Index) traverse(h Handle, fn func(NodeView) bool) bool {
	view := idx.view(h)
	if !fn(view) {
		return false
	}
	if !view.Divided {
		return true
	}
	children := idx.arena.at(h).children
	for _, q := range insertOrder {
		if !idx.traverse(children[q], fn) {
			return false
		}
	}
	return true
}

func (idx *Index) view(h Handle) NodeView {
	n := idx.arena.at(h)
	return NodeView{
		Handle:   h,
		Parent:   n.parent,
		Depth:    n.depth,
		Region:   n.region,
		Divided:  n.divided,
		Children: n.children,
		Points:   append([]*Point(nil), n.bucket...),
	}
}

// Root returns the handle of the root node.
func (idx *Index) Root() Handle {
	return idx.root
}

// Bounds returns the region covered by the root.
func (idx *Index) Bounds() Region {
	return idx.arena.at(idx.root).region
}

// Capacity returns the per-node bucket capacity.
func (idx *Index) Capacity() int {
	return idx.capacity
}

// Len returns the number of indexed points.
func (idx *Index) Len() int {
	return idx.size
}

// NodeCount returns the number of live nodes.
func (idx *Index) NodeCount() int {
	return idx.arena.Len()
}

// ArenaSlots returns the number of slots in the arena, live or free.
func (idx *Index) ArenaSlots() int {
	return idx.arena.Cap()
}

// ArenaGrows returns how many times the arena has been reallocated.
func (idx *Index) ArenaGrows() int {
	return idx.arena.grows
}

// Node returns a snapshot of a live node.
func (idx *Index) Node(h Handle) (NodeView, bool) {
	if !idx.arena.valid(h) {
		return NodeView{}, false
	}
	return idx.view(h), true
}

// Depth returns the depth of the deepest live node; a lone root has depth 0.
func (idx *Index) Depth() int {
	var depth int
	idx.Traverse(func(v NodeView) bool {
		if v.Depth > depth {
			depth = v.Depth
		}
		return true
	})
	return depth
}

func (idx *Index) assert() {
	if !idx.debug {
		return
	}
	if err := idx.Verify(); err != nil {
		panic(err)
	}
}
