// Package callgraph provides a small generic call-graph type shared by the
// CHA builder and the context-insensitive/context-sensitive pointer
// analyses. It generalizes the node/edge shape of the teacher's
// callgraph.go (itself built atop golang.org/x/tools/go/callgraph) with Go
// generics so that CHA can use plain *ir.Method nodes while pta/cs can use
// CSMethod nodes, without duplicating the bookkeeping.
package callgraph

// Kind mirrors spec.md §4.6 step 2's dispatch kinds and the Tai-e CallKind
// this is grounded on (original_source A8 Solver.java getCallKind).
type Kind int

const (
	Static Kind = iota
	Special
	Virtual
	Interface
)

func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case Special:
		return "special"
	case Virtual:
		return "virtual"
	case Interface:
		return "interface"
	default:
		return "unknown"
	}
}

// Edge is a single call-graph edge. Site is opaque to this package; callers
// attach whatever call-site identity fits their node type (an *ir.Invoke
// for CHA, a CSCallSite for pta/cs).
type Edge[N comparable] struct {
	Kind   Kind
	Caller N
	Site   any
	Callee N
}

// Graph is a monotone edge set plus a reachable/discovered node set over
// node type N. Edges are never removed (spec.md §3 invariant 3: "write
// mostly").
type Graph[N comparable] struct {
	Entry N

	out map[N][]Edge[N]
	in  map[N][]Edge[N]
	// seen tracks every node that has appeared as a caller or callee,
	// independent of "reachable" — a node becomes reachable only once its
	// owning analysis calls MarkReachable.
	seen      map[N]bool
	reachable map[N]bool
	order     []N // insertion order of reachable nodes, for deterministic iteration
}

func New[N comparable](entry N) *Graph[N] {
	g := &Graph[N]{
		Entry:     entry,
		out:       make(map[N][]Edge[N]),
		in:        make(map[N][]Edge[N]),
		seen:      make(map[N]bool),
		reachable: make(map[N]bool),
	}
	g.seen[entry] = true
	return g
}

// AddEdge records the edge and returns true iff it is new (spec.md §4.7:
// "addEdge returns true on novelty").
func (g *Graph[N]) AddEdge(kind Kind, caller N, site any, callee N) bool {
	for _, e := range g.out[caller] {
		if e.Callee == callee && e.Site == site && e.Kind == kind {
			return false
		}
	}
	e := Edge[N]{Kind: kind, Caller: caller, Site: site, Callee: callee}
	g.out[caller] = append(g.out[caller], e)
	g.in[callee] = append(g.in[callee], e)
	g.seen[caller] = true
	g.seen[callee] = true
	return true
}

// MarkReachable records n as reachable, returning false if it already was
// (spec.md §3 invariant 3: reachability is monotone).
func (g *Graph[N]) MarkReachable(n N) bool {
	if g.reachable[n] {
		return false
	}
	g.reachable[n] = true
	g.order = append(g.order, n)
	return true
}

func (g *Graph[N]) IsReachable(n N) bool { return g.reachable[n] }

// ReachableNodes returns every reachable node in discovery order.
func (g *Graph[N]) ReachableNodes() []N {
	out := make([]N, len(g.order))
	copy(out, g.order)
	return out
}

// Out returns the outgoing edges of n, in insertion order.
func (g *Graph[N]) Out(n N) []Edge[N] { return g.out[n] }

// In returns the incoming edges of n, in insertion order.
func (g *Graph[N]) In(n N) []Edge[N] { return g.in[n] }

// Edges returns the outgoing edges of every reachable node, grouped by
// caller in the order callers were marked reachable, and by insertion
// order within a caller. Edges whose caller was never marked reachable
// are not included.
func (g *Graph[N]) Edges() []Edge[N] {
	var out []Edge[N]
	for _, n := range g.order {
		out = append(out, g.out[n]...)
	}
	return out
}
