package cs

import "github.com/komonad/taie-pointer/ir"

// Result is the queryable outcome spec.md §6 "Exposed" names: the call
// graph plus a points-to query collapsed back down to plain (context-free)
// *ir.Var, for callers (constprop/interprop, export) that don't care which
// context copy of a variable produced which object.
type Result struct {
	solver *Solver
}

func NewResult(s *Solver) *Result { return &Result{solver: s} }

func (r *Result) CallGraph() *CSCallGraph { return r.solver.CallGraph() }

// PointsTo merges the points-to sets of every context-sensitive copy of v
// (spec.md §6: "the union over every context" is the context-insensitive
// projection callers outside pta/cs work with).
func (r *Result) PointsTo(v *ir.Var) []Obj {
	seen := map[objIdentity]bool{}
	var out []Obj
	for key, p := range r.solver.Manager.vars {
		if key.v != v {
			continue
		}
		p.PointsTo().Iterate(func(o Obj) {
			id := objIdentity{o.key}
			if !seen[id] {
				seen[id] = true
				out = append(out, o)
			}
		})
	}
	return out
}

type objIdentity struct{ key objKey }

// ReachableMethods returns every method reachable under any context, each
// listed once.
func (r *Result) ReachableMethods() []*ir.Method {
	seen := map[*ir.Method]bool{}
	var out []*ir.Method
	for _, m := range r.solver.CallGraph().ReachableNodes() {
		if !seen[m.Method()] {
			seen[m.Method()] = true
			out = append(out, m.Method())
		}
	}
	return out
}
