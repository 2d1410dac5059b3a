package cs

import "github.com/komonad/taie-pointer/internal/queue"

// WorkListEntry is a pending points-to propagation of spec.md §4.5: "the
// set diff delta still needs to flow into pointer".
type WorkListEntry struct {
	Pointer Pointer
	Delta   *PointsToSet
}

// WorkList is the FIFO queue the fixpoint loop in [Solver.Analyze] drains
// until empty (spec.md §4.6, "Termination: the worklist is empty").
type WorkList struct {
	q queue.Queue[WorkListEntry]
}

func (w *WorkList) Push(p Pointer, delta *PointsToSet) {
	if delta.IsEmpty() {
		return
	}
	w.q.Push(WorkListEntry{Pointer: p, Delta: delta})
}

func (w *WorkList) Empty() bool { return w.q.Empty() }

func (w *WorkList) Pop() WorkListEntry { return w.q.Pop() }
