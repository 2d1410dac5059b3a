package constprop

import (
	"github.com/komonad/taie-pointer/dataflow"
	"github.com/komonad/taie-pointer/ir"
)

// Analysis is the [dataflow.Analysis] implementation of
// original_source/A2/.../ConstantPropagation.java: forward, with NAC
// boundary facts for every integer-typed parameter.
type Analysis struct{}

var _ dataflow.Analysis[*Fact] = Analysis{}

func (Analysis) IsForward() bool { return true }

func (Analysis) NewBoundaryFact(cfg *dataflow.CFG) *Fact {
	f := NewFact()
	for _, p := range cfg.Method.Params {
		if canHoldInt(p) {
			f.Update(p, NAC())
		}
	}
	return f
}

func (Analysis) NewInitialFact() *Fact { return NewFact() }

func (Analysis) MeetInto(fact *Fact, target *Fact) {
	for _, k := range fact.Keys() {
		target.Update(k, Meet(fact.Get(k), target.Get(k)))
	}
}

// TransferNode is ConstantPropagation.transferNode: out := in, then
// overwrite the assigned variable (if any) with the evaluated RHS value,
// or NAC for any other integer-lvalue-producing statement whose value
// this analysis cannot reason about (loads, calls).
func (Analysis) TransferNode(stmt ir.Stmt, in, out *Fact) bool {
	before := NewFact()
	before.CopyFrom(out)
	out.CopyFrom(in)

	switch st := stmt.(type) {
	case *ir.AssignConst:
		if canHoldInt(st.LValue) {
			out.Update(st.LValue, Constant(st.Value))
		}
	case *ir.Copy:
		if canHoldInt(st.LValue) {
			out.Update(st.LValue, in.Get(st.RValue))
		}
	case *ir.BinOp:
		if canHoldInt(st.LValue) {
			out.Update(st.LValue, Evaluate(st, in))
		}
	case *ir.LoadField:
		if canHoldInt(st.LValue) {
			out.Update(st.LValue, NAC())
		}
	case *ir.LoadArray:
		if canHoldInt(st.LValue) {
			out.Update(st.LValue, NAC())
		}
	case *ir.Invoke:
		if st.LValue != nil && canHoldInt(st.LValue) {
			out.Update(st.LValue, NAC())
		}
	}
	return !before.Equal(out)
}

// canHoldInt reports whether v is an integer-valued variable this
// lattice tracks (spec.md's primitive-typed subset; reference-typed
// variables are NAC-irrelevant and simply never appear as keys).
func canHoldInt(v *ir.Var) bool {
	return v != nil && v.Type != nil && v.Type.Kind == ir.KindPrimitive
}

// Evaluate computes the value of a binary operation given the IN fact,
// mirroring ConstantPropagation.evaluate's short-circuit rules:
// division/remainder by a known zero is Undef (unreachable, not NAC);
// any NAC operand makes the whole expression NAC; two known constants
// fold; otherwise Undef.
func Evaluate(st *ir.BinOp, in *Fact) Value {
	left, right := in.Get(st.X), in.Get(st.Y)
	if right.IsConstant() && right.Int() == 0 && (st.Op == "/" || st.Op == "%") {
		return Undef()
	}
	if left.IsNAC() || right.IsNAC() {
		return NAC()
	}
	if left.IsConstant() && right.IsConstant() {
		return foldBinOp(st.Op, left.Int(), right.Int())
	}
	return Undef()
}

func foldBinOp(op string, x, y int64) Value {
	switch op {
	case "+":
		return Constant(x + y)
	case "-":
		return Constant(x - y)
	case "*":
		return Constant(x * y)
	case "/":
		if y == 0 {
			return Undef()
		}
		return Constant(x / y)
	case "%":
		if y == 0 {
			return Undef()
		}
		return Constant(x % y)
	case "==":
		return boolValue(x == y)
	case "!=":
		return boolValue(x != y)
	case "<":
		return boolValue(x < y)
	case "<=":
		return boolValue(x <= y)
	case ">":
		return boolValue(x > y)
	case ">=":
		return boolValue(x >= y)
	default:
		return NAC()
	}
}

func boolValue(b bool) Value {
	if b {
		return Constant(1)
	}
	return Constant(0)
}

// Run executes constant propagation over m and returns the IN/OUT fact
// table.
func Run(m *ir.Method) *dataflow.Result[*Fact] {
	cfg := dataflow.Build(m)
	return dataflow.SolveWorkList[*Fact](cfg, Analysis{})
}
