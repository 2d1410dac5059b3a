package constprop

import (
	"sort"

	"github.com/komonad/taie-pointer/dataflow"
	"github.com/komonad/taie-pointer/ir"
)

// liveFact is the live-variable-analysis lattice: the set of variables
// whose current value may still be read along some path forward from
// this point. Backward analysis, set union as meet, empty boundary —
// the standard formulation DeadCodeDetection.java consumes as a prior
// result (LiveVariableAnalysis is not itself in spec.md's supplemented
// scope, so it is kept as a private helper here rather than its own
// top-level module).
type liveFact struct{ vars map[*ir.Var]bool }

func newLiveFact() *liveFact { return &liveFact{vars: map[*ir.Var]bool{}} }

func (f *liveFact) Contains(v *ir.Var) bool { return f.vars[v] }

func (f *liveFact) copyFrom(o *liveFact) {
	for k := range f.vars {
		delete(f.vars, k)
	}
	for k := range o.vars {
		f.vars[k] = true
	}
}

func (f *liveFact) equal(o *liveFact) bool {
	if len(f.vars) != len(o.vars) {
		return false
	}
	for k := range f.vars {
		if !o.vars[k] {
			return false
		}
	}
	return true
}

type liveAnalysis struct{}

var _ dataflow.Analysis[*liveFact] = liveAnalysis{}

func (liveAnalysis) IsForward() bool                              { return false }
func (liveAnalysis) NewBoundaryFact(*dataflow.CFG) *liveFact       { return newLiveFact() }
func (liveAnalysis) NewInitialFact() *liveFact                     { return newLiveFact() }
func (liveAnalysis) MeetInto(fact, target *liveFact) {
	for k := range fact.vars {
		target.vars[k] = true
	}
}

func (liveAnalysis) TransferNode(stmt ir.Stmt, in, out *liveFact) bool {
	before := newLiveFact()
	before.copyFrom(in)

	in.copyFrom(out)
	if def := defOf(stmt); def != nil {
		delete(in.vars, def)
	}
	for _, u := range usesOf(stmt) {
		in.vars[u] = true
	}
	return !before.equal(in)
}

// defOf returns the variable a statement assigns, if any.
func defOf(stmt ir.Stmt) *ir.Var {
	switch st := stmt.(type) {
	case *ir.New:
		return st.LValue
	case *ir.Copy:
		return st.LValue
	case *ir.LoadField:
		return st.LValue
	case *ir.LoadArray:
		return st.LValue
	case *ir.AssignConst:
		return st.LValue
	case *ir.BinOp:
		return st.LValue
	case *ir.Invoke:
		return st.LValue
	}
	return nil
}

// usesOf returns every variable a statement reads.
func usesOf(stmt ir.Stmt) []*ir.Var {
	switch st := stmt.(type) {
	case *ir.Copy:
		return []*ir.Var{st.RValue}
	case *ir.StoreField:
		if st.Base != nil {
			return []*ir.Var{st.Base, st.RValue}
		}
		return []*ir.Var{st.RValue}
	case *ir.LoadField:
		if st.Base != nil {
			return []*ir.Var{st.Base}
		}
	case *ir.StoreArray:
		return []*ir.Var{st.Base, st.RValue}
	case *ir.LoadArray:
		return []*ir.Var{st.Base}
	case *ir.BinOp:
		return []*ir.Var{st.X, st.Y}
	case *ir.If:
		return []*ir.Var{st.Cond}
	case *ir.Return:
		if st.Result != nil {
			return []*ir.Var{st.Result}
		}
	case *ir.Invoke:
		var out []*ir.Var
		if st.Exp.Base != nil {
			out = append(out, st.Exp.Base)
		}
		out = append(out, st.Exp.Args...)
		return out
	}
	return nil
}

// hasNoSideEffect mirrors DeadCodeDetection.hasNoSideEffect: New,
// field/array loads, and division/remainder can all observably fault or
// mutate the heap, so only a Copy, AssignConst, or a non-div/rem BinOp
// is safe to drop purely because its result is unused.
func hasNoSideEffect(stmt ir.Stmt) bool {
	switch st := stmt.(type) {
	case *ir.Copy, *ir.AssignConst:
		return true
	case *ir.BinOp:
		return st.Op != "/" && st.Op != "%"
	default:
		return false
	}
}

// DeadCode runs spec.md's dead-code detection over m: statements
// unreachable per the control-flow graph (pruned using cp's branch
// outcomes, original_source/A3/.../DeadCodeDetection.java part 1) union
// useless, side-effect-free assignments to a variable with no live use
// (part 2). The result is sorted by position for deterministic output.
func DeadCode(m *ir.Method, cp *dataflow.Result[*Fact]) []ir.Stmt {
	cfg := dataflow.Build(m)
	live := dataflow.SolveWorkList[*liveFact](cfg, liveAnalysis{})

	reachable := map[ir.Stmt]bool{}
	var stack []ir.Stmt
	stack = append(stack, cfg.Entry)
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if reachable[cur] {
			continue
		}
		reachable[cur] = true

		if ifs, ok := cur.(*ir.If); ok {
			cond := cp.OutFact(cur).Get(ifs.Cond)
			succs := cfg.SuccsOf(cur)
			if cond.IsConstant() && len(succs) == 2 {
				// successors were pushed Then-then-Else in Build (If case
				// appends Then's first stmt, then Else's) — branch on the
				// known value rather than exploring both.
				if cond.Int() != 0 {
					stack = append(stack, succs[0])
				} else {
					stack = append(stack, succs[1])
				}
				continue
			}
			stack = append(stack, succs...)
			continue
		}
		stack = append(stack, cfg.SuccsOf(cur)...)
	}

	var dead []ir.Stmt
	for _, n := range cfg.Nodes() {
		if !reachable[n] {
			dead = append(dead, n)
			continue
		}
		if def := defOf(n); def != nil && hasNoSideEffect(n) && !live.OutFact(n).Contains(def) {
			dead = append(dead, n)
		}
	}

	order := make(map[ir.Stmt]int, len(cfg.Nodes()))
	for i, n := range cfg.Nodes() {
		order[n] = i
	}
	sort.Slice(dead, func(i, j int) bool { return order[dead[i]] < order[dead[j]] })
	return dead
}
