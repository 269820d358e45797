// Package stream decides which chunks to load next.
//
// The scheduler walks the chunk grid outward from the viewpoint as a
// prioritized frontier: straight ahead and close beats off-axis and far,
// and chunks behind the viewpoint are never offered at all. The caller
// pops a few chunks per frame and feeds them to generation.
package stream

import (
	"container/heap"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/strata3d/strata/voxel/chunk"
)

// Lookup is the read-only view of chunk state the scheduler consults while
// prioritizing. The chunk store satisfies it.
type Lookup interface {
	KnownEmpty(chunk.Coord) bool
}

const (
	// seedPriority pins the viewpoint chunk above anything the priority
	// formula can produce.
	seedPriority = 1 << 30

	// alignmentReset is the dot product below which the view is considered
	// to have turned off the heading the frontier was built for, roughly
	// 25 degrees.
	alignmentReset = 0.9
)

// Scheduler holds the frontier state between frames. Not safe for
// concurrent use; it belongs to the driving goroutine.
type Scheduler struct {
	queue   frontierQueue
	seen    map[chunk.Coord]struct{}
	origin  chunk.Coord
	forward mgl32.Vec3
	seq     int64
	primed  bool
}

func NewScheduler() *Scheduler {
	return &Scheduler{seen: make(map[chunk.Coord]struct{})}
}

// Update moves the scheduler's viewpoint. Turning off the heading the
// frontier was built for throws the whole frontier out and reseeds it,
// since the old priorities and the old seen set are built for a stale
// direction. An aligned update changes nothing at all: the sweep keeps
// draining toward the origin it was reset at, wherever the viewpoint has
// drifted since.
func (s *Scheduler) Update(view chunk.Coord, forward mgl32.Vec3) {
	f := forward.Normalize()
	if !s.primed || f.Dot(s.forward) < alignmentReset {
		s.Reset(view, f)
	}
}

// Reset rebuilds the frontier from scratch: the seen set ends up holding
// exactly the viewpoint chunk, queued at seed priority.
func (s *Scheduler) Reset(view chunk.Coord, forward mgl32.Vec3) {
	s.origin = view
	s.forward = forward.Normalize()
	s.seen = make(map[chunk.Coord]struct{})
	s.queue = s.queue[:0]
	s.seq = 0
	s.push(view, seedPriority)
	s.primed = true
}

// Visited reports whether a chunk has been queued or popped since the last
// reset.
func (s *Scheduler) Visited(c chunk.Coord) bool {
	_, ok := s.seen[c]
	return ok
}

// Pending returns the number of queued chunks.
func (s *Scheduler) Pending() int { return s.queue.Len() }

// NextChunks pops up to n chunks in priority order and spreads the
// frontier around each one. The boolean is false when the frontier was
// already exhausted. A popped chunk at Chebyshev maxDistance or further
// from the viewpoint chunk is still returned but stops spreading, which
// bounds the walk to the render horizon.
func (s *Scheduler) NextChunks(n, maxDistance int, lookup Lookup) ([]chunk.Coord, bool) {
	if s.queue.Len() == 0 {
		return nil, false
	}

	out := make([]chunk.Coord, 0, n)
	for len(out) < n && s.queue.Len() > 0 {
		c := heap.Pop(&s.queue).(frontierEntry).coord
		s.seen[c] = struct{}{}
		out = append(out, c)

		if c.Chebyshev(s.origin) >= maxDistance {
			continue
		}
		s.spread(c, lookup)
	}
	return out, true
}

// spread queues the unseen forward-hemisphere neighbors of a popped chunk.
// Priority rewards alignment with the view and penalizes distance:
// round(100 * dot / chebyshev). Chunks already generated and known to be
// empty only matter as mesh neighbors, so they drop to priority zero.
func (s *Scheduler) spread(c chunk.Coord, lookup Lookup) {
	for _, off := range neighborOffsets {
		cand := c.Offset(off[0], off[1], off[2])
		if _, ok := s.seen[cand]; ok {
			continue
		}

		dir := cand.Center().Sub(s.origin.Center())
		align := dir.Normalize().Dot(s.forward)
		if align <= 0 {
			// Behind the viewpoint. A later reset picks it up if the view turns.
			continue
		}

		dist := cand.Chebyshev(s.origin)
		prio := int(math.Round(float64(align) * 100 / float64(dist)))
		if lookup != nil && lookup.KnownEmpty(cand) {
			prio = 0
		}
		s.push(cand, prio)
	}
}

func (s *Scheduler) push(c chunk.Coord, prio int) {
	heap.Push(&s.queue, frontierEntry{coord: c, priority: prio, seq: s.seq})
	s.seq++
	s.seen[c] = struct{}{}
}

var neighborOffsets = [6][3]int{
	{0, 0, -1}, {0, 0, 1}, {-1, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, -1, 0},
}

type frontierEntry struct {
	coord    chunk.Coord
	priority int
	seq      int64
}

// frontierQueue is a max-heap on priority; ties pop in insertion order, so
// equal-priority chunks stream in the order they were discovered.
type frontierQueue []frontierEntry

func (q frontierQueue) Len() int { return len(q) }

func (q frontierQueue) Less(i, j int) bool {
	if q[i].priority != q[j].priority {
		return q[i].priority > q[j].priority
	}
	return q[i].seq < q[j].seq
}

func (q frontierQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *frontierQueue) Push(x any) { *q = append(*q, x.(frontierEntry)) }

func (q *frontierQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	*q = old[:n-1]
	return e
}
