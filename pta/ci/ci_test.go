package ci_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/komonad/taie-pointer/fixtures"
	"github.com/komonad/taie-pointer/ir"
	"github.com/komonad/taie-pointer/pta/ci"
	"github.com/komonad/taie-pointer/pta/cs"
)

func TestAnalyzeMatchesDirectInsensitiveSolve(t *testing.T) {
	h, main := fixtures.S1()

	facade := ci.Analyze(h, main)

	solver := cs.NewSolver(h, main, cs.InsensitiveSelector{}, cs.DefaultHeapModel{})
	solver.Analyze()
	direct := cs.NewResult(solver)

	var x, y *ir.Var
	for _, st := range main.Stmts() {
		switch s := st.(type) {
		case *ir.New:
			x = s.LValue
		case *ir.Copy:
			y = s.LValue
		}
	}

	assert.ElementsMatch(t, direct.PointsTo(x), facade.PointsTo(x))
	assert.ElementsMatch(t, direct.PointsTo(y), facade.PointsTo(y))
	assert.Equal(t, len(direct.ReachableMethods()), len(facade.ReachableMethods()))
}

func TestAnalyzeDiscoversVirtualDispatchTarget(t *testing.T) {
	h, main := fixtures.S2()
	result := ci.Analyze(h, main)

	var edgeCount int
	for _, e := range result.CallGraph().Edges() {
		edgeCount++
		assert.Equal(t, "m", e.Callee.Method().Ref.Name)
	}
	assert.Equal(t, 1, edgeCount, "S2 dispatches to exactly one override, B.m")
}
