package dataflow

import "github.com/komonad/taie-pointer/ir"

// Analysis is the capability a concrete dataflow analysis (constant
// propagation, live variables, ...) implements: a lattice (via
// NewInitialFact/NewBoundaryFact/MeetInto) plus a transfer function.
// Fact is expected to be a mutable reference type (a pointer to a
// struct wrapping a map, as constprop.Fact and constprop's liveness
// fact are) so
// that MeetInto/TransferNode can update in place, mirroring Tai-e's
// CPFact.update / SetFact mutation style rather than returning copies.
type Analysis[F any] interface {
	IsForward() bool
	NewBoundaryFact(cfg *CFG) F
	NewInitialFact() F
	// MeetInto merges fact into target in place.
	MeetInto(fact F, target F)
	// TransferNode applies the node's transfer function, writing the
	// result into out, and reports whether out changed.
	TransferNode(stmt ir.Stmt, in F, out F) bool
}

// Result is the IN/OUT fact table a solve produces, queryable per node.
type Result[F any] struct {
	in, out map[ir.Stmt]F
}

func newResult[F any]() *Result[F] {
	return &Result[F]{in: make(map[ir.Stmt]F), out: make(map[ir.Stmt]F)}
}

func (r *Result[F]) InFact(n ir.Stmt) F  { return r.in[n] }
func (r *Result[F]) OutFact(n ir.Stmt) F { return r.out[n] }

// SolveWorkList runs the worklist fixpoint algorithm of
// original_source/A3/.../WorkListSolver.java: every node starts on the
// queue; whenever a node's transfer changes its OUT (forward) or IN
// (backward) fact, its successors (forward) / predecessors (backward)
// are re-enqueued. Order-independent at the fixpoint (spec.md §4's
// "monotone lattice" invariant), just faster in practice than the naive
// iterative solver for most CFG shapes.
func SolveWorkList[F any](cfg *CFG, a Analysis[F]) *Result[F] {
	if a.IsForward() {
		return solveForward(cfg, a)
	}
	return solveBackward(cfg, a)
}

func solveForward[F any](cfg *CFG, a Analysis[F]) *Result[F] {
	r := newResult[F]()
	nodes := cfg.Nodes()
	r.in[cfg.Entry] = a.NewBoundaryFact(cfg)
	r.out[cfg.Entry] = a.NewBoundaryFact(cfg)
	for _, n := range nodes {
		r.in[n] = a.NewInitialFact()
		r.out[n] = a.NewInitialFact()
	}

	work := append([]ir.Stmt{}, nodes...)
	queued := make(map[ir.Stmt]bool, len(nodes))
	for _, n := range nodes {
		queued[n] = true
	}
	push := func(n ir.Stmt) {
		if n == cfg.Entry || n == cfg.Exit || queued[n] {
			return
		}
		queued[n] = true
		work = append(work, n)
	}

	for len(work) > 0 {
		cur := work[0]
		work = work[1:]
		queued[cur] = false

		in := a.NewInitialFact()
		for _, pred := range cfg.PredsOf(cur) {
			a.MeetInto(r.outOrBoundary(cfg, pred), in)
		}
		r.in[cur] = in
		out := r.out[cur]
		if a.TransferNode(cur, in, out) {
			for _, succ := range cfg.SuccsOf(cur) {
				push(succ)
			}
		}
	}
	return r
}

func solveBackward[F any](cfg *CFG, a Analysis[F]) *Result[F] {
	r := newResult[F]()
	nodes := cfg.Nodes()
	r.in[cfg.Exit] = a.NewBoundaryFact(cfg)
	r.out[cfg.Exit] = a.NewBoundaryFact(cfg)
	for _, n := range nodes {
		r.in[n] = a.NewInitialFact()
		r.out[n] = a.NewInitialFact()
	}

	work := append([]ir.Stmt{}, nodes...)
	queued := make(map[ir.Stmt]bool, len(nodes))
	for _, n := range nodes {
		queued[n] = true
	}
	push := func(n ir.Stmt) {
		if n == cfg.Exit || n == cfg.Entry || queued[n] {
			return
		}
		queued[n] = true
		work = append(work, n)
	}

	for len(work) > 0 {
		cur := work[0]
		work = work[1:]
		queued[cur] = false

		out := a.NewInitialFact()
		for _, succ := range cfg.SuccsOf(cur) {
			a.MeetInto(r.inOrBoundary(cfg, succ), out)
		}
		r.out[cur] = out
		in := r.in[cur]
		if a.TransferNode(cur, in, out) {
			for _, pred := range cfg.PredsOf(cur) {
				push(pred)
			}
		}
	}
	return r
}

func (r *Result[F]) outOrBoundary(cfg *CFG, n ir.Stmt) F { return r.out[n] }
func (r *Result[F]) inOrBoundary(cfg *CFG, n ir.Stmt) F  { return r.in[n] }

// SolveIterative runs the plain round-robin fixpoint algorithm of
// original_source/A1/.../IterativeSolver.java: repeatedly sweep every CFG
// node in order, recomputing its IN/OUT regardless of whether its
// predecessors actually changed, until a full sweep leaves every node's
// OUT (forward) / IN (backward) unchanged. This revisits stable nodes
// needlessly compared to [SolveWorkList]'s dirty-node tracking, but it's
// the simpler algorithm the worklist solver is an optimization of, and a
// useful cross-check that both reach the same fixpoint.
func SolveIterative[F any](cfg *CFG, a Analysis[F]) *Result[F] {
	if a.IsForward() {
		return iterateForward(cfg, a)
	}
	return iterateBackward(cfg, a)
}

func iterateForward[F any](cfg *CFG, a Analysis[F]) *Result[F] {
	r := newResult[F]()
	nodes := cfg.Nodes()
	r.in[cfg.Entry] = a.NewBoundaryFact(cfg)
	r.out[cfg.Entry] = a.NewBoundaryFact(cfg)
	for _, n := range nodes {
		r.in[n] = a.NewInitialFact()
		r.out[n] = a.NewInitialFact()
	}

	for {
		changed := false
		for _, n := range nodes {
			in := a.NewInitialFact()
			for _, pred := range cfg.PredsOf(n) {
				a.MeetInto(r.outOrBoundary(cfg, pred), in)
			}
			r.in[n] = in
			out := r.out[n]
			if a.TransferNode(n, in, out) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return r
}

func iterateBackward[F any](cfg *CFG, a Analysis[F]) *Result[F] {
	r := newResult[F]()
	nodes := cfg.Nodes()
	r.in[cfg.Exit] = a.NewBoundaryFact(cfg)
	r.out[cfg.Exit] = a.NewBoundaryFact(cfg)
	for _, n := range nodes {
		r.in[n] = a.NewInitialFact()
		r.out[n] = a.NewInitialFact()
	}

	for {
		changed := false
		for _, n := range nodes {
			out := a.NewInitialFact()
			for _, succ := range cfg.SuccsOf(n) {
				a.MeetInto(r.inOrBoundary(cfg, succ), out)
			}
			r.out[n] = out
			in := r.in[n]
			if a.TransferNode(n, in, out) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return r
}
