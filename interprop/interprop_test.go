package interprop_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komonad/taie-pointer/classes"
	"github.com/komonad/taie-pointer/constprop"
	"github.com/komonad/taie-pointer/interprop"
	"github.com/komonad/taie-pointer/ir"
	"github.com/komonad/taie-pointer/pta/cs"
)

var (
	typeA   = &ir.Type{Name: "A", Kind: ir.KindClass}
	typeInt = &ir.Type{Name: "int", Kind: ir.KindPrimitive}
)

// aliasedFieldProgram builds:
//
//	main() { x = new A; b = x; v = 7; x.f = v; y = b.f; }
//
// and runs a real context-insensitive solver over it, so that
// interprop.Analysis.aliasedVars has a genuine points-to oracle to query:
// b and x alias the same allocated A, even though the store and load go
// through different variable names.
func aliasedFieldProgram(t *testing.T) (*cs.Result, *ir.Method, *ir.StoreField, *ir.LoadField, *ir.Var) {
	t.Helper()
	main := &ir.Method{Ref: &ir.MethodRef{Name: "main"}, Static: true}
	x := &ir.Var{Name: "x", Type: typeA, Method: main}
	b := &ir.Var{Name: "b", Type: typeA, Method: main}
	v := &ir.Var{Name: "v", Type: typeInt, Method: main}
	y := &ir.Var{Name: "y", Type: typeInt, Method: main}

	fieldF := &ir.Field{Name: "f", Type: typeInt, Owner: typeA}

	alloc := &ir.New{LValue: x, Type: typeA}
	alias := &ir.Copy{LValue: b, RValue: x}
	assign := &ir.AssignConst{LValue: v, Value: 7}
	store := &ir.StoreField{Base: x, Field: fieldF, RValue: v}
	load := &ir.LoadField{LValue: y, Base: b, Field: fieldF}
	main.Blocks = []*ir.Block{{Stmts: []ir.Stmt{alloc, alias, assign, store, load, &ir.Return{}}}}
	main.Index()

	classA := &classes.Class{Type: typeA, Methods: map[string]*ir.Method{}, Fields: map[string]*ir.Field{fieldF.Name: fieldF}}
	h := classes.NewHierarchy([]*classes.Class{classA})

	solver := cs.NewSolver(h, main, cs.InsensitiveSelector{}, cs.DefaultHeapModel{})
	solver.Analyze()
	result := cs.NewResult(solver)

	require.NotEmpty(t, result.PointsTo(x))
	require.NotEmpty(t, result.PointsTo(b))

	return result, main, store, load, y
}

func TestTransferNodePassesCallFactThrough(t *testing.T) {
	result, main, _, _, _ := aliasedFieldProgram(t)
	a := interprop.New(nil, result)

	invoke := &ir.Invoke{Exp: &ir.InvokeExp{Kind: ir.CallStatic, Ref: &ir.MethodRef{Name: "other"}}}

	in := constprop.NewFact()
	p := &ir.Var{Name: "p", Type: typeInt, Method: main}
	in.Update(p, constprop.Constant(99))
	out := constprop.NewFact()

	changed := a.TransferNode(invoke, in, out)
	assert.True(t, changed)
	assert.True(t, out.Get(p).IsConstant())
	assert.EqualValues(t, 99, out.Get(p).Int())
}

func TestStoreThenLoadThroughAliasedBaseFlowsValue(t *testing.T) {
	result, _, store, load, y := aliasedFieldProgram(t)
	a := interprop.New(nil, result)

	storeIn := constprop.NewFact()
	v := store.RValue
	storeIn.Update(v, constprop.Constant(7))
	storeOut := constprop.NewFact()
	require.True(t, a.TransferNode(store, storeIn, storeOut))

	loadIn := constprop.NewFact()
	loadOut := constprop.NewFact()
	changed := a.TransferNode(load, loadIn, loadOut)
	assert.True(t, changed)

	yVal := loadOut.Get(y)
	assert.True(t, yVal.IsConstant(), "the load must see the value stored through the aliased base")
	assert.EqualValues(t, 7, yVal.Int())
}

func TestLoadBeforeAnyStoreSeesUndef(t *testing.T) {
	result, _, _, load, y := aliasedFieldProgram(t)
	a := interprop.New(nil, result)

	loadIn := constprop.NewFact()
	loadOut := constprop.NewFact()
	a.TransferNode(load, loadIn, loadOut)
	assert.True(t, loadOut.Get(y).IsUndef())
}

func TestNonIntFieldsAreIgnored(t *testing.T) {
	result, main, _, _, _ := aliasedFieldProgram(t)
	a := interprop.New(nil, result)

	refField := &ir.Field{Name: "next", Type: typeA, Owner: typeA}
	base := &ir.Var{Name: "base", Type: typeA, Method: main}
	rvalue := &ir.Var{Name: "rv", Type: typeA, Method: main}
	store := &ir.StoreField{Base: base, Field: refField, RValue: rvalue}

	in := constprop.NewFact()
	out := constprop.NewFact()
	changed := a.TransferNode(store, in, out)
	assert.False(t, changed, "a reference-typed store has nothing for the int lattice to propagate")
}
