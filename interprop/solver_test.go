package interprop_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komonad/taie-pointer/callgraph"
	"github.com/komonad/taie-pointer/icfg"
	"github.com/komonad/taie-pointer/interprop"
	"github.com/komonad/taie-pointer/ir"
)

// callReturnProgram builds:
//
//	callee(p) { return p; }
//	main() { five = 5; t = callee(five); z = t; }
//
// with the call graph edge already recorded, so a full [interprop.Solve]
// run must thread the constant 5 through the Call edge (into callee's p),
// the Return edge (callee's returned p back into t), and the normal Copy
// at the call site's successor (into z).
func callReturnProgram() (*icfg.ICFG, *ir.AssignConst, *ir.Copy, *ir.Var) {
	calleeType := &ir.Type{Name: "int", Kind: ir.KindPrimitive}
	callee := &ir.Method{Ref: &ir.MethodRef{Name: "callee"}, Static: true}
	p := &ir.Var{Name: "p", Type: calleeType, Method: callee, IsParam: true}
	callee.Params = []*ir.Var{p}
	callee.Blocks = []*ir.Block{{Stmts: []ir.Stmt{&ir.Return{Result: p}}}}

	main := &ir.Method{Ref: &ir.MethodRef{Name: "main"}, Static: true}
	five := &ir.Var{Name: "five", Type: calleeType, Method: main}
	t := &ir.Var{Name: "t", Type: calleeType, Method: main}
	z := &ir.Var{Name: "z", Type: calleeType, Method: main}

	assignFive := &ir.AssignConst{LValue: five, Value: 5}
	invoke := &ir.Invoke{LValue: t, Exp: &ir.InvokeExp{Kind: ir.CallStatic, Ref: callee.Ref, Args: []*ir.Var{five}}}
	copyZ := &ir.Copy{LValue: z, RValue: t}
	main.Blocks = []*ir.Block{{Stmts: []ir.Stmt{assignFive, invoke, copyZ, &ir.Return{}}}}

	cg := callgraph.New(main)
	cg.MarkReachable(main)
	cg.MarkReachable(callee)
	cg.AddEdge(callgraph.Static, main, invoke, callee)

	return icfg.Build(cg), assignFive, copyZ, z
}

func TestSolveThreadsConstantThroughCallAndReturn(t *testing.T) {
	g, _, copyZ, z := callReturnProgram()

	result := interprop.Solve(g, nil)

	zVal := result.OutFact(copyZ).Get(z)
	require.True(t, zVal.IsConstant(), "z must resolve to the constant 5 threaded through the call")
	assert.EqualValues(t, 5, zVal.Int())
}

func TestSolveGivesCalleeParamTheArgumentValue(t *testing.T) {
	g, _, _, _ := callReturnProgram()
	result := interprop.Solve(g, nil)

	var calleeRet *ir.Return
	for _, n := range g.Nodes() {
		if r, ok := n.(*ir.Return); ok && r.Result != nil {
			calleeRet = r
		}
	}
	require.NotNil(t, calleeRet)

	pVal := result.InFact(calleeRet).Get(calleeRet.Result)
	require.True(t, pVal.IsConstant())
	assert.EqualValues(t, 5, pVal.Int())
}
