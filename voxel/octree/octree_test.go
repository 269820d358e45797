package octree

import (
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSubdivideChildLayout(t *testing.T) {
	tree := New[int](mgl32.Vec3{0, 0, 0}, 32, 3)

	children := tree.Subdivide(RootID)

	seen := make(map[mgl32.Vec3]bool)
	for _, id := range children {
		n := tree.Node(id)
		if n.Size() != 16 {
			t.Errorf("Expected child size 16, got %f", n.Size())
		}
		if n.Depth() != 1 {
			t.Errorf("Expected child depth 1, got %d", n.Depth())
		}
		c := n.Center()
		// Root size 32, so children sit at +-8 on every axis.
		for axis := 0; axis < 3; axis++ {
			if c[axis] != 8 && c[axis] != -8 {
				t.Errorf("Expected center at +-8 per axis, got %v", c)
			}
		}
		if seen[c] {
			t.Errorf("Duplicate child center %v", c)
		}
		seen[c] = true
	}
	if len(seen) != 8 {
		t.Errorf("Expected 8 distinct child centers, got %d", len(seen))
	}

	// Upper (y+) layer comes first in the fixed child order.
	for i, id := range children {
		y := tree.Node(id).Center().Y()
		if i < 4 && y <= 0 {
			t.Errorf("Child %d should be in the upper layer, center %v", i, tree.Node(id).Center())
		}
		if i >= 4 && y >= 0 {
			t.Errorf("Child %d should be in the lower layer, center %v", i, tree.Node(id).Center())
		}
	}
}

func TestSubdivideIdempotent(t *testing.T) {
	tree := New[int](mgl32.Vec3{}, 16, 2)

	first := tree.Subdivide(RootID)
	lenAfterFirst := tree.Len()
	second := tree.Subdivide(RootID)

	if first != second {
		t.Errorf("Expected same child ids on repeat subdivide, got %v and %v", first, second)
	}
	if tree.Len() != lenAfterFirst {
		t.Errorf("Expected arena len %d after repeat subdivide, got %d", lenAfterFirst, tree.Len())
	}
	if tree.Len() != 9 {
		t.Errorf("Expected 9 nodes (root + 8), got %d", tree.Len())
	}
}

func TestSubdivideAtMaxDepthIsNoOp(t *testing.T) {
	tree := New[int](mgl32.Vec3{}, 16, 0)

	tree.Subdivide(RootID)
	tree.Subdivide(RootID)

	if tree.Len() != 1 {
		t.Errorf("Expected the arena to stay at the root alone, got %d nodes", tree.Len())
	}
	if _, ok := tree.Root().Children(); ok {
		t.Errorf("A node at max depth must stay a leaf")
	}
	// With depth 0 every query lands on the root as well.
	if got := tree.QueryOctant(mgl32.Vec3{5, -3, 2}).ID(); got != RootID {
		t.Errorf("Expected the root for any query at max depth 0, got node %d", got)
	}
}

func TestQueryOctantDescendsToMaxDepth(t *testing.T) {
	tree := New[string](mgl32.Vec3{}, 64, 3)

	p := mgl32.Vec3{5, -3, 12}
	n := tree.QueryOctant(p)

	if n.Depth() != 3 {
		t.Errorf("Expected depth 3, got %d", n.Depth())
	}
	if n.Size() != 8 {
		t.Errorf("Expected deepest size 8, got %f", n.Size())
	}
	// The chosen octant contains the point: within half an edge per axis.
	c := n.Center()
	for axis := 0; axis < 3; axis++ {
		d := c[axis] - p[axis]
		if d < 0 {
			d = -d
		}
		if d > n.Size()/2 {
			t.Errorf("Point %v outside chosen octant (center %v, size %f)", p, c, n.Size())
		}
	}
}

func TestQueryOctantStable(t *testing.T) {
	tree := New[string](mgl32.Vec3{}, 64, 3)

	p := mgl32.Vec3{-20, 7, 31}
	first := tree.QueryOctant(p)
	lenAfterFirst := tree.Len()
	second := tree.QueryOctant(p)

	if first.ID() != second.ID() {
		t.Errorf("Expected stable node id, got %d then %d", first.ID(), second.ID())
	}
	if tree.Len() != lenAfterFirst {
		t.Errorf("Repeat query should not grow the arena: %d -> %d", lenAfterFirst, tree.Len())
	}
}

func TestNodeUnknownIdPanics(t *testing.T) {
	tree := New[int](mgl32.Vec3{}, 16, 1)

	defer func() {
		if recover() == nil {
			t.Errorf("Expected panic for unknown node id")
		}
	}()
	tree.Node(NodeID(99))
}

func TestPayloadLifecycle(t *testing.T) {
	tree := New[int](mgl32.Vec3{}, 16, 1)
	n := tree.QueryOctant(mgl32.Vec3{1, 1, 1})

	if _, ok := n.Payload(); ok {
		t.Errorf("Fresh node should have no payload")
	}

	v := 42
	n.SetPayload(&v)
	got, ok := n.Payload()
	if !ok || *got != 42 {
		t.Errorf("Expected payload 42, got %v ok=%v", got, ok)
	}

	n.ClearPayload()
	if _, ok := n.Payload(); ok {
		t.Errorf("Expected payload gone after clear")
	}
	// The node itself survives.
	if tree.Node(n.ID()).ID() != n.ID() {
		t.Errorf("Node should remain in the arena after payload clear")
	}
}

func TestConcurrentQueryAgreesOnNode(t *testing.T) {
	tree := New[int](mgl32.Vec3{}, 128, 4)
	p := mgl32.Vec3{33, -12, 57}

	const goroutines = 8
	ids := make([]NodeID, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func(g int) {
			defer wg.Done()
			ids[g] = tree.QueryOctant(p).ID()
		}(g)
	}
	wg.Wait()

	for g := 1; g < goroutines; g++ {
		if ids[g] != ids[0] {
			t.Errorf("Goroutine %d got node %d, expected %d", g, ids[g], ids[0])
		}
	}
}

func TestConcurrentPayloadAccess(t *testing.T) {
	tree := New[int](mgl32.Vec3{}, 32, 2)
	n := tree.QueryOctant(mgl32.Vec3{3, 3, 3})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			v := i
			n.SetPayload(&v)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			if p, ok := n.Payload(); ok && *p < 0 {
				t.Errorf("Impossible payload %d", *p)
			}
		}
	}()
	wg.Wait()
}
