package world

import "github.com/zeusync/robosim/internal/core/systems/physics"

// trace is a bounded ring of recent positions; the oldest point is dropped
// once it is full.
type trace struct {
	points []physics.Point
	head   int
	size   int
}

func newTrace(capacity int) *trace {
	return &trace{points: make([]physics.Point, capacity)}
}

func (t *trace) push(p physics.Point) {
	if len(t.points) == 0 {
		return
	}
	t.points[(t.head+t.size)%len(t.points)] = p
	if t.size < len(t.points) {
		t.size++
		return
	}
	t.head = (t.head + 1) % len(t.points)
}

func (t *trace) len() int { return t.size }

// list returns the points oldest first.
func (t *trace) list() []physics.Point {
	out := make([]physics.Point, t.size)
	for i := range out {
		out[i] = t.points[(t.head+i)%len(t.points)]
	}
	return out
}

func (t *trace) reset() {
	t.head, t.size = 0, 0
}
