package interprop

import (
	"github.com/komonad/taie-pointer/constprop"
	"github.com/komonad/taie-pointer/icfg"
	"github.com/komonad/taie-pointer/ir"
	"github.com/komonad/taie-pointer/pta/cs"
)

// Result is the whole-ICFG IN/OUT fact table a [Solve] produces.
type Result struct {
	in, out map[ir.Stmt]*constprop.Fact
}

func (r *Result) InFact(n ir.Stmt) *constprop.Fact  { return r.in[n] }
func (r *Result) OutFact(n ir.Stmt) *constprop.Fact { return r.out[n] }

// Solve runs interprocedural constant propagation to a fixpoint over g,
// grounded on original_source/A7/.../InterSolver.java's doSolve: every
// ICFG node starts on the worklist; a node's IN fact is the meet of its
// in-edges' transferred OUT facts (transferEdge below), not a plain
// predecessor OUT as in the intraprocedural solver, since call/return
// edges carry their own projection (args-to-params, return-to-result)
// instead of a straight copy.
func Solve(g *icfg.ICFG, pta *cs.Result) *Result {
	a := New(g, pta)
	nodes := g.Nodes()

	r := &Result{in: map[ir.Stmt]*constprop.Fact{}, out: map[ir.Stmt]*constprop.Fact{}}
	for _, n := range nodes {
		r.in[n] = a.newInitialFact()
		r.out[n] = a.newInitialFact()
	}
	boundary := map[ir.Stmt]*constprop.Fact{}
	for _, m := range g.EntryMethods() {
		cfg := g.CFGOf(m)
		if cfg == nil || len(cfg.Nodes()) == 0 {
			continue
		}
		entry := cfg.Nodes()[0]
		boundary[entry] = a.newBoundaryFact(entry)
	}

	work := append([]ir.Stmt{}, nodes...)
	queued := make(map[ir.Stmt]bool, len(nodes))
	for _, n := range nodes {
		queued[n] = true
	}
	push := func(n ir.Stmt) {
		if queued[n] {
			return
		}
		queued[n] = true
		work = append(work, n)
	}
	a.SetOnFieldChange(func() {
		for _, n := range nodes {
			push(n)
		}
	})

	for len(work) > 0 {
		cur := work[0]
		work = work[1:]
		queued[cur] = false

		in := a.newInitialFact()
		if b, ok := boundary[cur]; ok {
			a.MeetInto(b, in)
		}
		for _, e := range g.InEdgesOf(cur) {
			a.MeetInto(transferEdge(e, r.OutFact(e.Source)), in)
		}
		r.in[cur] = in
		out := r.out[cur]
		if a.TransferNode(cur, in, out) {
			for _, succ := range g.SuccsOf(cur) {
				push(succ)
			}
		}
	}
	return r
}

// transferEdge is Tai-e's transferNormalEdge/transferCallToReturnEdge/
// transferCallEdge/transferReturnEdge split, collapsed into one function
// switching on [icfg.EdgeKind]: a Normal edge is a plain copy of the
// source's OUT fact; a CallToReturn edge kills the call's own LValue (its
// real value only arrives via the matching Return edge); a Call edge
// projects the caller's argument values onto the callee's declared
// parameters; a Return edge projects the callee's returned value onto the
// call's LValue.
func transferEdge(e icfg.Edge, sourceOut *constprop.Fact) *constprop.Fact {
	switch e.Kind {
	case icfg.CallToReturn:
		fact := constprop.NewFact()
		fact.CopyFrom(sourceOut)
		if inv, ok := e.Source.(*ir.Invoke); ok && inv.LValue != nil {
			fact.Update(inv.LValue, constprop.Undef())
		}
		return fact

	case icfg.Call:
		fact := constprop.NewFact()
		args := e.CallSite.Args()
		for i, p := range e.Callee.Params {
			if i < len(args) {
				fact.Update(p, sourceOut.Get(args[i]))
			}
		}
		return fact

	case icfg.Return:
		fact := constprop.NewFact()
		if e.CallSite.LValue != nil {
			if ret, ok := e.Source.(*ir.Return); ok && ret.Result != nil {
				fact.Update(e.CallSite.LValue, sourceOut.Get(ret.Result))
			}
		}
		return fact

	default: // icfg.Normal
		return sourceOut
	}
}
