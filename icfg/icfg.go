// Package icfg builds the interprocedural control-flow graph
// interprop's solver walks: per-method CFGs (dataflow.Build) stitched
// together at call sites with call/return edges, following
// original_source/A7/.../InterConstantPropagation.java's edge taxonomy
// (normal, call, call-to-return, return).
package icfg

import (
	"github.com/komonad/taie-pointer/callgraph"
	"github.com/komonad/taie-pointer/dataflow"
	"github.com/komonad/taie-pointer/ir"
)

type EdgeKind int

const (
	Normal EdgeKind = iota
	Call
	CallToReturn
	Return
)

// Edge is one interprocedural or intraprocedural link. CallSite is
// populated for Call, Return and CallToReturn edges; Callee only for
// Call and Return edges.
type Edge struct {
	Kind     EdgeKind
	Source   ir.Stmt
	Target   ir.Stmt
	CallSite *ir.Invoke
	Callee   *ir.Method
}

// ICFG is the whole-program interprocedural CFG over every method
// reachable in cg.
type ICFG struct {
	cg       *callgraph.Graph[*ir.Method]
	cfgs     map[*ir.Method]*dataflow.CFG
	methodOf map[ir.Stmt]*ir.Method

	in  map[ir.Stmt][]Edge
	out map[ir.Stmt][]Edge
}

// Build stitches one ICFG out of every method reachable in cg (spec.md
// §4's call-graph-driven interprocedural analysis): call statements get
// a Call edge to each resolved callee's first statement, and each
// callee's Return statements get a Return edge back to the call site's
// normal successor (the statement the existing intra-method CFG already
// links the call to via fallthrough, which doubles as the
// CallToReturnEdge target).
func Build(cg *callgraph.Graph[*ir.Method]) *ICFG {
	g := &ICFG{
		cg:       cg,
		cfgs:     map[*ir.Method]*dataflow.CFG{},
		methodOf: map[ir.Stmt]*ir.Method{},
		in:       map[ir.Stmt][]Edge{},
		out:      map[ir.Stmt][]Edge{},
	}

	methods := cg.ReachableNodes()
	for _, m := range methods {
		cfg := dataflow.Build(m)
		g.cfgs[m] = cfg
		for _, n := range cfg.Nodes() {
			g.methodOf[n] = m
			for _, s := range cfg.SuccsOf(n) {
				g.link(Edge{Kind: Normal, Source: n, Target: s})
			}
		}
	}

	for _, m := range methods {
		cfg := g.cfgs[m]
		for _, n := range cfg.Nodes() {
			inv, ok := n.(*ir.Invoke)
			if !ok {
				continue
			}
			afterCall := cfg.SuccsOf(n)
			for _, edge := range cg.Out(m) {
				if edge.Site != inv {
					continue
				}
				callee := edge.Callee
				calleeCFG := g.cfgs[callee]
				if calleeCFG == nil || len(calleeCFG.Nodes()) == 0 {
					continue
				}
				entry := calleeCFG.Nodes()[0]
				g.link(Edge{Kind: Call, Source: n, Target: entry, CallSite: inv, Callee: callee})
				for _, ret := range calleeCFG.Nodes() {
					if _, isRet := ret.(*ir.Return); !isRet {
						continue
					}
					for _, after := range afterCall {
						g.link(Edge{Kind: Return, Source: ret, Target: after, CallSite: inv, Callee: callee})
					}
				}
				for _, after := range afterCall {
					g.link(Edge{Kind: CallToReturn, Source: n, Target: after, CallSite: inv})
				}
			}
		}
	}
	return g
}

func (g *ICFG) link(e Edge) {
	g.out[e.Source] = append(g.out[e.Source], e)
	g.in[e.Target] = append(g.in[e.Target], e)
}

// Nodes returns every statement across every method in the graph.
func (g *ICFG) Nodes() []ir.Stmt {
	var out []ir.Stmt
	for m := range g.cfgs {
		out = append(out, g.cfgs[m].Nodes()...)
	}
	return out
}

func (g *ICFG) InEdgesOf(n ir.Stmt) []Edge  { return g.in[n] }
func (g *ICFG) OutEdgesOf(n ir.Stmt) []Edge { return g.out[n] }

func (g *ICFG) SuccsOf(n ir.Stmt) []ir.Stmt {
	edges := g.out[n]
	out := make([]ir.Stmt, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.Target)
	}
	return out
}

func (g *ICFG) ContainingMethodOf(n ir.Stmt) *ir.Method { return g.methodOf[n] }

// CFGOf returns the intraprocedural CFG backing m, as built during
// [Build] (exposed so callers can get at m's entry/boundary node).
func (g *ICFG) CFGOf(m *ir.Method) *dataflow.CFG { return g.cfgs[m] }

// IsCall reports whether n is a call statement (spec.md's
// transferCallNode/transferNonCallNode split).
func IsCall(n ir.Stmt) bool {
	_, ok := n.(*ir.Invoke)
	return ok
}

// EntryMethods returns every method with no Call in-edges — i.e. every
// method the underlying call graph marks reachable without itself being
// a resolved callee target (typically just the program's entry point,
// but see spec.md §7's note on unresolvable callees leaving orphaned
// reachable methods).
func (g *ICFG) EntryMethods() []*ir.Method {
	hasCallIn := map[*ir.Method]bool{}
	for n, edges := range g.in {
		for _, e := range edges {
			if e.Kind == Call {
				hasCallIn[g.methodOf[n]] = true
			}
		}
	}
	var out []*ir.Method
	for m := range g.cfgs {
		if !hasCallIn[m] {
			out = append(out, m)
		}
	}
	return out
}
