package cs

import (
	"github.com/komonad/taie-pointer/callgraph"
	"github.com/komonad/taie-pointer/ir"
)

// CSCallGraph is the call graph of spec.md §4.7: nodes are [CSMethod]
// values, edges are keyed by [CSCallSite]. Every CSMethod/CSCallSite
// flowing through this graph must come from the same [CSManager] so that
// equal (context, entity) pairs compare as the identical Go value —
// see CSManager's doc comment.
type CSCallGraph struct {
	*callgraph.Graph[CSMethod]
}

func NewCSCallGraph(entry CSMethod) *CSCallGraph {
	return &CSCallGraph{callgraph.New[CSMethod](entry)}
}

func callGraphKind(k ir.CallKind) callgraph.Kind {
	switch k {
	case ir.CallStatic:
		return callgraph.Static
	case ir.CallSpecial:
		return callgraph.Special
	case ir.CallVirtual:
		return callgraph.Virtual
	case ir.CallInterface:
		return callgraph.Interface
	default:
		return callgraph.Virtual
	}
}

// AddCSEdge records an edge and returns true iff it is new.
func (g *CSCallGraph) AddCSEdge(kind ir.CallKind, caller CSMethod, site CSCallSite, callee CSMethod) bool {
	return g.AddEdge(callGraphKind(kind), caller, site, callee)
}
