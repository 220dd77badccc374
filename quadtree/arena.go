package quadtree

import (
	"fmt"
	"math"

	"github.com/edaniels/golog"
)

// node is a fixed-shape record in the arena. While a slot is free only next is meaningful.
type node struct {
	parent   Handle
	children [4]Handle
	bucket   []*Point
	region   Region
	depth    int
	divided  bool

	live bool
	next Handle
}

// arena is a growable pool of node records with an index based free list. Growing reallocates the
// backing slice, so *node values must never be held across a call that can allocate.
type arena struct {
	logger   golog.Logger
	nodes    []node
	free     Handle
	live     int
	grows    int
	capacity int
}

// maxArenaSlots keeps every slot index below NilHandle.
var maxArenaSlots = int64(math.MaxUint32)

func newArena(slots, bucketCapacity int, logger golog.Logger) *arena {
	if slots < 1 {
		slots = 1
	}
	a := &arena{
		logger:   logger,
		nodes:    make([]node, slots),
		free:     NilHandle,
		capacity: bucketCapacity,
	}
	a.chainFree(0)
	return a
}

// chainFree links slots [from, len) onto the front of the free list.
func (a *arena) chainFree(from int) {
	last := len(a.nodes) - 1
	for i := from; i < last; i++ {
		a.nodes[i].next = Handle(i + 1)
	}
	a.nodes[last].next = a.free
	a.free = Handle(from)
}

// grow doubles the slot table. Existing records are copied in place so every issued handle keeps
// naming the same node.
func (a *arena) grow() {
	oldLen := len(a.nodes)
	newLen := oldLen * 2
	if int64(newLen) > maxArenaSlots {
		if int64(oldLen) == maxArenaSlots {
			panic("quadtree: node arena exhausted")
		}
		newLen = int(maxArenaSlots)
	}
	nodes := make([]node, newLen)
	copy(nodes, a.nodes)
	a.nodes = nodes
	a.grows++
	a.chainFree(oldLen)
	a.logger.Debugw("node arena grown", "slots", newLen, "live", a.live, "grows", a.grows)
}

// allocate pops a slot off the free list, growing first when it is empty, and resets it into an
// empty leaf.
func (a *arena) allocate(region Region, parent Handle, depth int) Handle {
	if a.free == NilHandle {
		a.grow()
	}
	h := a.free
	n := &a.nodes[h]
	a.free = n.next

	bucket := n.bucket
	if cap(bucket) < a.capacity {
		bucket = make([]*Point, 0, a.capacity)
	}
	*n = node{
		parent:   parent,
		children: [4]Handle{NilHandle, NilHandle, NilHandle, NilHandle},
		bucket:   bucket[:0],
		region:   region,
		depth:    depth,
		live:     true,
		next:     NilHandle,
	}
	a.live++
	return h
}

// release pushes h onto the free list. It does not touch children; callers free bottom-up.
func (a *arena) release(h Handle) {
	n := a.at(h)
	if n.divided {
		panic(fmt.Sprintf("quadtree: freeing divided node %d", h))
	}
	clear(n.bucket)
	n.bucket = n.bucket[:0]
	n.live = false
	n.next = a.free
	a.free = h
	a.live--
}

// at resolves a live handle to its current record. The pointer is only valid until the next
// allocation.
func (a *arena) at(h Handle) *node {
	if !a.valid(h) {
		panic(fmt.Sprintf("quadtree: handle %d does not name a live node", h))
	}
	return &a.nodes[h]
}

func (a *arena) valid(h Handle) bool {
	return int64(h) < int64(len(a.nodes)) && a.nodes[h].live
}

// Len returns the number of live nodes.
func (a *arena) Len() int {
	return a.live
}

// Cap returns the number of slots, live or free.
func (a *arena) Cap() int {
	return len(a.nodes)
}
