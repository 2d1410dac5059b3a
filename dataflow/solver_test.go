package dataflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/komonad/taie-pointer/constprop"
	"github.com/komonad/taie-pointer/dataflow"
	"github.com/komonad/taie-pointer/ir"
)

// reachedFact is a minimal one-bit lattice (false < true, meet = OR)
// used to exercise [dataflow.SolveWorkList] independent of any real
// analysis: after a forward solve, every node on a path from Entry must
// have IN/OUT reached == true.
type reachedFact struct{ reached bool }

type reachedAnalysis struct{ forward bool }

var _ dataflow.Analysis[*reachedFact] = reachedAnalysis{}

func (a reachedAnalysis) IsForward() bool                                { return a.forward }
func (reachedAnalysis) NewBoundaryFact(*dataflow.CFG) *reachedFact       { return &reachedFact{reached: true} }
func (reachedAnalysis) NewInitialFact() *reachedFact                     { return &reachedFact{} }
func (reachedAnalysis) MeetInto(fact, target *reachedFact)               { target.reached = target.reached || fact.reached }
func (reachedAnalysis) TransferNode(_ ir.Stmt, in, out *reachedFact) bool {
	changed := out.reached != in.reached
	out.reached = in.reached
	return changed
}

func straightLineMethod() (*ir.Method, ir.Stmt, ir.Stmt) {
	m := &ir.Method{Ref: &ir.MethodRef{Name: "main"}, Static: true}
	x := &ir.Var{Name: "x", Type: &ir.Type{Name: "int", Kind: ir.KindPrimitive}, Method: m}
	s1 := &ir.AssignConst{LValue: x, Value: 1}
	s2 := &ir.Copy{LValue: x, RValue: x}
	m.Blocks = []*ir.Block{{Stmts: []ir.Stmt{s1, s2, &ir.Return{}}}}
	return m, s1, s2
}

func TestSolveWorkListForwardPropagatesFromEntry(t *testing.T) {
	m, s1, s2 := straightLineMethod()
	cfg := dataflow.Build(m)

	result := dataflow.SolveWorkList[*reachedFact](cfg, reachedAnalysis{forward: true})
	assert.True(t, result.InFact(s1).reached)
	assert.True(t, result.OutFact(s1).reached)
	assert.True(t, result.InFact(s2).reached)
	assert.True(t, result.OutFact(s2).reached)
}

func TestSolveWorkListBackwardPropagatesFromExit(t *testing.T) {
	m, s1, s2 := straightLineMethod()
	cfg := dataflow.Build(m)

	result := dataflow.SolveWorkList[*reachedFact](cfg, reachedAnalysis{forward: false})
	assert.True(t, result.OutFact(s2).reached)
	assert.True(t, result.InFact(s2).reached)
	assert.True(t, result.OutFact(s1).reached)
	assert.True(t, result.InFact(s1).reached)
}

// TestSolveWorkListMergesAtJoinPoint checks the meet operator actually
// runs: a node with two predecessors (one reached, one not, in a
// diamond-shaped CFG) must still come out reached, since OR-meet with a
// true operand is true regardless of the other.
func TestSolveWorkListMergesAtJoinPoint(t *testing.T) {
	m := &ir.Method{Ref: &ir.MethodRef{Name: "main"}, Static: true}
	cond := &ir.Var{Name: "c", Type: &ir.Type{Name: "int", Kind: ir.KindPrimitive}, Method: m}
	join := &ir.Block{Stmts: []ir.Stmt{&ir.Return{}}}
	thenBlock := &ir.Block{Stmts: []ir.Stmt{&ir.Goto{Target: join}}}
	elseBlock := &ir.Block{Stmts: []ir.Stmt{&ir.Goto{Target: join}}}
	ifStmt := &ir.If{Cond: cond, Then: thenBlock, Else: elseBlock}
	m.Blocks = []*ir.Block{{Stmts: []ir.Stmt{ifStmt}}, thenBlock, elseBlock, join}

	cfg := dataflow.Build(m)
	result := dataflow.SolveWorkList[*reachedFact](cfg, reachedAnalysis{forward: true})
	assert.True(t, result.InFact(join.Stmts[0]).reached)
}

// TestSolveIterativeForwardPropagatesFromEntry mirrors
// TestSolveWorkListForwardPropagatesFromEntry against [dataflow.SolveIterative]:
// the round-robin solver must reach the same fixpoint as the worklist one.
func TestSolveIterativeForwardPropagatesFromEntry(t *testing.T) {
	m, s1, s2 := straightLineMethod()
	cfg := dataflow.Build(m)

	result := dataflow.SolveIterative[*reachedFact](cfg, reachedAnalysis{forward: true})
	assert.True(t, result.InFact(s1).reached)
	assert.True(t, result.OutFact(s1).reached)
	assert.True(t, result.InFact(s2).reached)
	assert.True(t, result.OutFact(s2).reached)
}

// TestSolveIterativeBackwardPropagatesFromExit mirrors
// TestSolveWorkListBackwardPropagatesFromExit against [dataflow.SolveIterative].
func TestSolveIterativeBackwardPropagatesFromExit(t *testing.T) {
	m, s1, s2 := straightLineMethod()
	cfg := dataflow.Build(m)

	result := dataflow.SolveIterative[*reachedFact](cfg, reachedAnalysis{forward: false})
	assert.True(t, result.OutFact(s2).reached)
	assert.True(t, result.InFact(s2).reached)
	assert.True(t, result.OutFact(s1).reached)
	assert.True(t, result.InFact(s1).reached)
}

// TestSolveIterativeMergesAtJoinPoint mirrors
// TestSolveWorkListMergesAtJoinPoint against [dataflow.SolveIterative].
func TestSolveIterativeMergesAtJoinPoint(t *testing.T) {
	m := &ir.Method{Ref: &ir.MethodRef{Name: "main"}, Static: true}
	cond := &ir.Var{Name: "c", Type: &ir.Type{Name: "int", Kind: ir.KindPrimitive}, Method: m}
	join := &ir.Block{Stmts: []ir.Stmt{&ir.Return{}}}
	thenBlock := &ir.Block{Stmts: []ir.Stmt{&ir.Goto{Target: join}}}
	elseBlock := &ir.Block{Stmts: []ir.Stmt{&ir.Goto{Target: join}}}
	ifStmt := &ir.If{Cond: cond, Then: thenBlock, Else: elseBlock}
	m.Blocks = []*ir.Block{{Stmts: []ir.Stmt{ifStmt}}, thenBlock, elseBlock, join}

	cfg := dataflow.Build(m)
	result := dataflow.SolveIterative[*reachedFact](cfg, reachedAnalysis{forward: true})
	assert.True(t, result.InFact(join.Stmts[0]).reached)
}

// TestSolveIterativeAndWorkListAgree cross-checks both solvers against a
// real analysis (constant propagation) over a CFG with a join point:
// both must reach byte-for-byte the same IN/OUT fact at every node,
// since they implement the same monotone fixpoint by two different
// iteration orders.
func TestSolveIterativeAndWorkListAgree(t *testing.T) {
	m := &ir.Method{Ref: &ir.MethodRef{Name: "main"}, Static: true}
	intType := &ir.Type{Name: "int", Kind: ir.KindPrimitive}
	x := &ir.Var{Name: "x", Type: intType, Method: m}
	y := &ir.Var{Name: "y", Type: intType, Method: m}

	join := &ir.Block{Stmts: []ir.Stmt{&ir.Copy{LValue: y, RValue: x}, &ir.Return{}}}
	thenBlock := &ir.Block{Stmts: []ir.Stmt{&ir.AssignConst{LValue: x, Value: 1}, &ir.Goto{Target: join}}}
	elseBlock := &ir.Block{Stmts: []ir.Stmt{&ir.AssignConst{LValue: x, Value: 2}, &ir.Goto{Target: join}}}
	ifStmt := &ir.If{Cond: x, Then: thenBlock, Else: elseBlock}
	m.Blocks = []*ir.Block{{Stmts: []ir.Stmt{ifStmt}}, thenBlock, elseBlock, join}
	m.Index()

	cfg := dataflow.Build(m)
	worklist := dataflow.SolveWorkList[*constprop.Fact](cfg, constprop.Analysis{})
	iterative := dataflow.SolveIterative[*constprop.Fact](cfg, constprop.Analysis{})

	for _, n := range cfg.Nodes() {
		assert.True(t, worklist.InFact(n).Equal(iterative.InFact(n)), "IN facts diverge at %v", n)
		assert.True(t, worklist.OutFact(n).Equal(iterative.OutFact(n)), "OUT facts diverge at %v", n)
	}
	assert.True(t, worklist.OutFact(join.Stmts[0]).Equal(iterative.OutFact(join.Stmts[0])))
}
