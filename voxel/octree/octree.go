// Package octree implements a sparse octree over a flat arena of nodes.
//
// Nodes are addressed by dense ids assigned in creation order, so a handle
// can be cached across frames and resolved again in constant time. Space is
// only split where a query actually descends, and split octants are never
// merged back: the arena only ever grows.
package octree

import (
	"fmt"
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// NodeID indexes a node in the tree arena. Ids are never reused and stay
// valid for the lifetime of the tree.
type NodeID int32

// RootID is the id of the root node of every tree.
const RootID NodeID = 0

// Node is one octant of space. Center, size and depth are fixed at creation.
// The payload slot carries a shared reference published by the tree's owner
// and has its own RW lock, so payload readers on worker goroutines never
// contend with traffic on other nodes.
type Node[T any] struct {
	id     NodeID
	center mgl32.Vec3
	size   float32
	depth  int

	mu       sync.RWMutex
	split    bool
	children [8]NodeID
	payload  *T
}

func (n *Node[T]) ID() NodeID         { return n.id }
func (n *Node[T]) Center() mgl32.Vec3 { return n.center }
func (n *Node[T]) Size() float32      { return n.size }
func (n *Node[T]) Depth() int         { return n.depth }

// Children returns the child ids if the node has been subdivided.
func (n *Node[T]) Children() ([8]NodeID, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.children, n.split
}

// Payload returns the published payload reference, if any.
func (n *Node[T]) Payload() (*T, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.payload, n.payload != nil
}

// SetPayload publishes a payload reference on the node. The pointed-to
// value must not be mutated afterwards; readers share it without copying.
func (n *Node[T]) SetPayload(p *T) {
	n.mu.Lock()
	n.payload = p
	n.mu.Unlock()
}

// ClearPayload drops the payload reference. The node stays in the arena.
func (n *Node[T]) ClearPayload() {
	n.mu.Lock()
	n.payload = nil
	n.mu.Unlock()
}

// Tree is a sparse octree rooted at a cube with the given center and edge
// length. maxDepth bounds how far queries descend; the deepest octants have
// edge size/2^maxDepth.
type Tree[T any] struct {
	mu       sync.RWMutex // guards arena growth only
	nodes    []*Node[T]
	maxDepth int
}

// Child octant order: the upper (y+) layer NW, NE, SW, SE, then the lower
// (y-) layer in the same pattern. x flips sign fastest, z flips per pair.
var octantSigns = [8]mgl32.Vec3{
	{-1, 1, -1}, {1, 1, -1}, {-1, 1, 1}, {1, 1, 1},
	{-1, -1, -1}, {1, -1, -1}, {-1, -1, 1}, {1, -1, 1},
}

func New[T any](center mgl32.Vec3, size float32, maxDepth int) *Tree[T] {
	if size <= 0 || maxDepth < 0 {
		panic(fmt.Sprintf("octree: invalid bounds (size %v, max depth %d)", size, maxDepth))
	}
	t := &Tree[T]{maxDepth: maxDepth}
	t.nodes = append(t.nodes, &Node[T]{id: RootID, center: center, size: size})
	return t
}

// Len returns the number of nodes in the arena.
func (t *Tree[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes)
}

func (t *Tree[T]) MaxDepth() int { return t.maxDepth }

// Root returns the root node handle.
func (t *Tree[T]) Root() *Node[T] { return t.Node(RootID) }

// Node resolves an id handed out earlier. Ids never move or expire, so this
// is a slice index. An id the tree never produced is a programming error.
func (t *Tree[T]) Node(id NodeID) *Node[T] {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if id < 0 || int(id) >= len(t.nodes) {
		panic(fmt.Sprintf("octree: unknown node id %d (arena holds %d)", id, len(t.nodes)))
	}
	return t.nodes[id]
}

// Subdivide splits a node into its eight children and returns their ids.
// Children sit at +-size/4 from the parent center per axis, at half the
// parent size, one level deeper. Subdivision is idempotent: an already
// split node returns its existing children, and a node at max depth stays
// a leaf and returns the zero ids. Both checks and the split happen under
// the node's own lock, so two goroutines cannot double-split it.
func (t *Tree[T]) Subdivide(id NodeID) [8]NodeID {
	n := t.Node(id)

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.split || n.depth >= t.maxDepth {
		return n.children
	}

	quarter := n.size / 4
	t.mu.Lock()
	base := NodeID(len(t.nodes))
	for i, sign := range octantSigns {
		child := &Node[T]{
			id:     base + NodeID(i),
			center: n.center.Add(sign.Mul(quarter)),
			size:   n.size / 2,
			depth:  n.depth + 1,
		}
		t.nodes = append(t.nodes, child)
		n.children[i] = child.id
	}
	t.mu.Unlock()

	n.split = true
	return n.children
}

// QueryOctant descends from the root to the deepest octant around a point,
// subdividing on demand. At each level the child whose center is nearest
// the point wins; on an exact tie the earlier octant in the fixed child
// order keeps it.
func (t *Tree[T]) QueryOctant(p mgl32.Vec3) *Node[T] {
	n := t.Root()
	for n.depth < t.maxDepth {
		children := t.Subdivide(n.id)

		best := 0
		bestDist := float32(math.MaxFloat32)
		for i, cid := range children {
			c := t.Node(cid)
			d := c.center.Sub(p)
			if dist := d.Dot(d); dist < bestDist {
				best = i
				bestDist = dist
			}
		}
		n = t.Node(children[best])
	}
	return n
}
