package taint

import (
	"fmt"
	"sort"

	"github.com/komonad/taie-pointer/ir"
	"github.com/komonad/taie-pointer/pta/cs"
)

// Flow is a single TaintFlow of spec.md §4.9/§6: a source invoke, a sink
// invoke, and the argument index at the sink where the taint was
// observed. Ordering is total: by source, then sink, then index, using
// each invoke's position in a stable serialization rather than pointer
// value (spec.md §6: "Ordering is total (by source-index, then
// sink-index, then argument index)").
type Flow struct {
	Source *ir.Invoke
	Sink   *ir.Invoke
	Index  int
}

func (f Flow) String() string {
	return fmt.Sprintf("%v -> %v#%d", f.Source, f.Sink, f.Index)
}

// CollectFlows runs spec.md §4.9's "on finish" pass: iterate every call
// graph edge, and for each sink rule whose callee matches, inspect the
// sink argument's points-to set for taint. Grounded on
// TaintAnalysiss.collectTaintFlows, but run as a standalone post-pass
// over the finished solver rather than a TreeSet accumulated during
// solving, since the final call graph and points-to sets are already
// complete once [cs.Solver.Analyze] returns.
func (p *Plugin) CollectFlows(s *cs.Solver) []Flow {
	var flows []Flow
	for _, edge := range s.CallGraph().Edges() {
		callSite, ok := edge.Site.(cs.CSCallSite)
		if !ok {
			continue
		}
		invoke := callSite.Invoke()
		method := edge.Callee.Method()
		for _, sink := range p.config.sinksFor(method.Ref.String()) {
			args := invoke.Args()
			if sink.Index < 0 || sink.Index >= len(args) {
				continue
			}
			argVar := s.Manager.GetCSVar(callSite.Context(), args[sink.Index])
			argVar.PointsTo().Iterate(func(o cs.Obj) {
				if o.IsTaint() {
					flows = append(flows, Flow{Source: o.SourceCall(), Sink: invoke, Index: sink.Index})
				}
			})
		}
	}
	return dedupAndSort(flows)
}

// dedupAndSort removes duplicate flows and imposes spec.md §6's total
// order ("by source-index, then sink-index, then argument index"). The
// "index" for an invoke is its rank of first appearance while scanning
// call-graph edges in discovery order — itself fully determined by the
// (deterministic, single-threaded) solve — rather than its pointer
// address, which Go gives no run-to-run stability guarantee over.
func dedupAndSort(flows []Flow) []Flow {
	rank := map[*ir.Invoke]int{}
	rankOf := func(inv *ir.Invoke) int {
		if r, ok := rank[inv]; ok {
			return r
		}
		r := len(rank)
		rank[inv] = r
		return r
	}

	seen := map[Flow]bool{}
	out := make([]Flow, 0, len(flows))
	for _, f := range flows {
		rankOf(f.Source)
		rankOf(f.Sink)
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ra, rb := rankOf(a.Source), rankOf(b.Source); ra != rb {
			return ra < rb
		}
		if ra, rb := rankOf(a.Sink), rankOf(b.Sink); ra != rb {
			return ra < rb
		}
		return a.Index < b.Index
	})
	return out
}
