package cs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komonad/taie-pointer/fixtures"
	"github.com/komonad/taie-pointer/ir"
	"github.com/komonad/taie-pointer/pta/cs"
)

func findVar(m *ir.Method, name string) *ir.Var {
	for _, st := range m.Stmts() {
		switch s := st.(type) {
		case *ir.New:
			if s.LValue.Name == name {
				return s.LValue
			}
		case *ir.Copy:
			if s.LValue.Name == name {
				return s.LValue
			}
			if s.RValue.Name == name {
				return s.RValue
			}
		case *ir.StoreField:
			if s.Base != nil && s.Base.Name == name {
				return s.Base
			}
			if s.RValue.Name == name {
				return s.RValue
			}
		case *ir.LoadField:
			if s.LValue.Name == name {
				return s.LValue
			}
			if s.Base != nil && s.Base.Name == name {
				return s.Base
			}
		case *ir.Invoke:
			if s.LValue != nil && s.LValue.Name == name {
				return s.LValue
			}
		}
	}
	return nil
}

// TestBasicAllocationAndCopy is spec.md §8 scenario S1: after
// `A x = new A(); A y = x;`, x and y must point to exactly the same
// singleton allocation.
func TestBasicAllocationAndCopy(t *testing.T) {
	h, main := fixtures.S1()
	solver := cs.NewSolver(h, main, cs.InsensitiveSelector{}, cs.DefaultHeapModel{})
	solver.Analyze()
	result := cs.NewResult(solver)

	xPts := result.PointsTo(findVar(main, "x"))
	yPts := result.PointsTo(findVar(main, "y"))
	require.Len(t, xPts, 1)
	require.Len(t, yPts, 1)
	assert.Equal(t, xPts[0], yPts[0])
}

// TestVirtualDispatchDiscoversOverride is spec.md §8 scenario S2: with
// `class B extends A` both overriding m(), `A a = new B(); a.m();` must
// produce a call-graph edge to B.m only, and B.m (not A.m) is reachable.
func TestVirtualDispatchDiscoversOverride(t *testing.T) {
	h, main := fixtures.S2()
	solver := cs.NewSolver(h, main, cs.InsensitiveSelector{}, cs.DefaultHeapModel{})
	solver.Analyze()
	result := cs.NewResult(solver)

	reachable := map[string]bool{}
	for _, m := range result.ReachableMethods() {
		reachable[m.String()] = true
	}

	classA := h.Class(fixtures.TypeA)
	classB := h.Class(fixtures.TypeB)
	methodA := classA.Methods["m/0"]
	methodB := classB.Methods["m/0"]

	assert.True(t, reachable[methodB.String()], "B.m must be reachable")
	assert.False(t, reachable[methodA.String()], "A.m must not be reachable")

	var sawCallee []string
	for _, edge := range result.CallGraph().Edges() {
		sawCallee = append(sawCallee, edge.Callee.Method().String())
	}
	assert.ElementsMatch(t, []string{methodB.String()}, sawCallee)
}

// TestInstanceFieldFlow is spec.md §8 scenario S4: `x.f = a; y = x.f;`
// with pts(x) containing an object must yield pts(y) ⊇ pts(a) at
// fixpoint.
func TestInstanceFieldFlow(t *testing.T) {
	h, main := fixtures.S4()
	solver := cs.NewSolver(h, main, cs.InsensitiveSelector{}, cs.DefaultHeapModel{})
	solver.Analyze()
	result := cs.NewResult(solver)

	aPts := result.PointsTo(findVar(main, "a"))
	yPts := result.PointsTo(findVar(main, "y"))
	require.Len(t, aPts, 1)
	require.Len(t, yPts, 1)
	assert.Equal(t, aPts[0], yPts[0])
}

// TestCSManagerInterningIsIdempotent is spec.md §8 property 3: repeated
// lookups of the same (context, entity) pair must return the identical
// value, including its points-to set identity.
func TestCSManagerInterningIsIdempotent(t *testing.T) {
	h, main := fixtures.S1()
	solver := cs.NewSolver(h, main, cs.InsensitiveSelector{}, cs.DefaultHeapModel{})
	ctx := cs.InsensitiveSelector{}.EmptyContext()

	xVar := findVar(main, "x")
	p1 := solver.Manager.GetCSVar(ctx, xVar)
	p2 := solver.Manager.GetCSVar(ctx, xVar)
	assert.Same(t, p1, p2)
	assert.Same(t, p1.PointsTo(), p2.PointsTo())
}

// TestAddReachableIsIdempotent is spec.md §8 property 6: running
// addReachable twice on the same cs-method (here, indirectly, by running
// Analyze to fixpoint and checking the method appears exactly once in
// the reachable set) must not duplicate the reachable-method listing.
func TestAddReachableIsIdempotent(t *testing.T) {
	h, main := fixtures.S2()
	solver := cs.NewSolver(h, main, cs.InsensitiveSelector{}, cs.DefaultHeapModel{})
	solver.Analyze()
	result := cs.NewResult(solver)

	seen := map[string]int{}
	for _, m := range result.ReachableMethods() {
		seen[m.String()]++
	}
	for name, count := range seen {
		assert.Equal(t, 1, count, "method %s listed more than once", name)
	}
}

// TestContextDistinguishesCallSites is spec.md §8 scenario S3: id(p) is
// called from two distinct call sites, each passing a distinct
// allocation. Under InsensitiveSelector the two calls share id's single
// context-insensitive copy, so its parameter (and therefore both callers'
// return values) merge into one points-to set. Under
// CallSiteSensitiveSelector{K:1} each call site selects its own context,
// so id's parameter stays split and each caller only ever sees the object
// it itself passed in — the two contexts must not collide in CSManager's
// interning tables (a regression test for a context-identity bug that
// would otherwise silently re-merge the two copies).
func TestContextDistinguishesCallSites(t *testing.T) {
	h, main := fixtures.S3()

	insensitive := cs.NewSolver(h, main, cs.InsensitiveSelector{}, cs.DefaultHeapModel{})
	insensitive.Analyze()
	insResult := cs.NewResult(insensitive)
	insX := insResult.PointsTo(findVar(main, "x"))
	insY := insResult.PointsTo(findVar(main, "y"))
	assert.Len(t, insX, 2, "insensitive selector must merge both allocations into id's single parameter copy")
	assert.ElementsMatch(t, insX, insY, "insensitive selector gives every caller of id the same merged result")

	h2, main2 := fixtures.S3()
	sensitive := cs.NewSolver(h2, main2, cs.CallSiteSensitiveSelector{K: 1}, cs.DefaultHeapModel{})
	sensitive.Analyze()
	csResult := cs.NewResult(sensitive)
	csX := csResult.PointsTo(findVar(main2, "x"))
	csY := csResult.PointsTo(findVar(main2, "y"))
	require.Len(t, csX, 1, "call-site-sensitive selector must keep x's context-copy of id's parameter precise")
	require.Len(t, csY, 1, "call-site-sensitive selector must keep y's context-copy of id's parameter precise")
	assert.NotEqual(t, csX[0], csY[0], "the two call sites must select distinct, non-colliding contexts")
}

// TestPFGInvariant checks spec.md §8 property 1 directly: for every PFG
// edge s -> t materialized by a copy statement, ptsOf(s) ⊆ ptsOf(t) at
// fixpoint.
func TestPFGInvariant(t *testing.T) {
	h, main := fixtures.S1()
	solver := cs.NewSolver(h, main, cs.InsensitiveSelector{}, cs.DefaultHeapModel{})
	solver.Analyze()
	result := cs.NewResult(solver)

	xPts := result.PointsTo(findVar(main, "x"))
	yPts := result.PointsTo(findVar(main, "y"))
	ySet := map[cs.Obj]bool{}
	for _, o := range yPts {
		ySet[o] = true
	}
	for _, o := range xPts {
		assert.True(t, ySet[o], "pts(x) must be a subset of pts(y) across the copy edge")
	}
}
