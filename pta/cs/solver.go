// Package cs implements the context-sensitive, Andersen-style,
// inclusion-based pointer analysis of spec.md §4 — the ≈2000-line core
// this repository is built around — plus the taint-tracking extension
// point spec.md §9 describes as a plugin capability.
//
// The algorithm is grounded directly on
// original_source/A8/.../pascal/taie/analysis/pta/cs/Solver.java: a
// worklist of (Pointer, delta points-to set) propagations over a
// Pointer Flow Graph, with call edges discovered lazily as a CSVar's
// points-to set grows.
package cs

import (
	"github.com/komonad/taie-pointer/classes"
	"github.com/komonad/taie-pointer/ir"
)

// Plugin is the extension point spec.md §9 names: a capability notified
// whenever the solver discovers a new call edge or propagates a new
// object into some pointer's points-to set. The taint analysis
// (pta/plugin/taint) is the only implementation in this repository, but
// the hook is generic.
type Plugin interface {
	// OnNewCallEdge fires every time resolveAndLink resolves a call,
	// including repeat resolutions of an already-known (caller, call
	// site, callee) edge driven by the receiver variable gaining another
	// object — not just the first time the edge is discovered. Hook
	// implementations must be safe to call more than once per edge
	// (idempotent re-pushes of already-known points-to facts are cheap:
	// the worklist/PFG machinery dedups them).
	OnNewCallEdge(s *Solver, callSite CSCallSite, callee CSMethod)
	// OnNewPointsToFact fires once per (pointer, newly-added object) pair,
	// immediately after propagate() commits it.
	OnNewPointsToFact(s *Solver, p Pointer, obj Obj)
}

// Solver owns every piece of mutable analysis state: the class hierarchy
// oracle, the interning tables, the Pointer Flow Graph, the call graph,
// and the worklist. Exported methods double as the API the taint plugin
// calls back into (AddPFGEdge, Push, ...), since cs.Plugin implementors
// live in a different package and cannot reach unexported fields.
type Solver struct {
	Hierarchy *classes.Hierarchy
	Selector  Selector
	Manager   *CSManager

	pfg       *PointerFlowGraph
	callGraph *CSCallGraph
	worklist  WorkList
	plugins   []Plugin

	entry *ir.Method
}

// NewSolver wires a fresh solver around the given class hierarchy, entry
// method, context-selection policy, and heap model (spec.md §4.4/§4.8).
func NewSolver(h *classes.Hierarchy, entry *ir.Method, selector Selector, heap HeapModel) *Solver {
	manager := NewCSManager(heap)
	entryCtx := selector.EmptyContext()
	entryCS := manager.GetCSMethod(entryCtx, entry)
	return &Solver{
		Hierarchy: h,
		Selector:  selector,
		Manager:   manager,
		pfg:       NewPointerFlowGraph(),
		callGraph: NewCSCallGraph(entryCS),
		entry:     entry,
	}
}

// AddPlugin registers a plugin; must be called before [Solver.Analyze].
func (s *Solver) AddPlugin(p Plugin) { s.plugins = append(s.plugins, p) }

func (s *Solver) CallGraph() *CSCallGraph { return s.callGraph }

// AddPFGEdge installs a PFG subset edge and, if it is new, seeds the
// worklist with whatever `from` already points to (spec.md §4.2: a new
// edge must immediately propagate the source's current points-to set,
// not just future growth).
func (s *Solver) AddPFGEdge(from, to Pointer) bool {
	if !s.pfg.AddEdge(from, to) {
		return false
	}
	if pts := from.PointsTo(); !pts.IsEmpty() {
		s.Push(to, pts)
	}
	return true
}

// Push enqueues a propagation of delta into p (spec.md §4.5).
func (s *Solver) Push(p Pointer, delta *PointsToSet) { s.worklist.Push(p, delta) }

// Analyze runs the fixpoint loop of spec.md §4.6 to completion.
func (s *Solver) Analyze() {
	entryCtx := s.Selector.EmptyContext()
	s.addReachable(s.Manager.GetCSMethod(entryCtx, s.entry))

	for !s.worklist.Empty() {
		e := s.worklist.Pop()
		diff := s.propagate(e.Pointer, e.Delta)
		if diff.IsEmpty() {
			continue
		}
		csVar, ok := e.Pointer.(*CSVar)
		if !ok {
			continue
		}
		diff.Iterate(func(o Obj) {
			s.processVarPointsToGrowth(csVar, o)
		})
	}
}

// propagate is Tai-e's propagate(): it commits only the true delta
// (objects pointer does not already have) and fans it out along every
// outgoing PFG edge, returning that delta so the caller can react to it
// (spec.md §4.6 "instance field/array/call dispatch only fires on new
// objects, never on already-known ones").
func (s *Solver) propagate(p Pointer, pts *PointsToSet) *PointsToSet {
	diff := p.PointsTo().Diff(pts)
	if diff.IsEmpty() {
		return diff
	}
	p.PointsTo().AddAll(diff)
	for _, plugin := range s.plugins {
		diff.Iterate(func(o Obj) { plugin.OnNewPointsToFact(s, p, o) })
	}
	for _, succ := range s.pfg.SuccessorsOf(p) {
		s.Push(succ, diff)
	}
	return diff
}

// addReachable is Tai-e's addReachable(): marks a CS method reachable at
// most once, then dispatches every statement in its body (spec.md §4.6
// step 1 "Reachable-method discovery").
func (s *Solver) addReachable(m CSMethod) {
	if !s.callGraph.MarkReachable(m) {
		return
	}
	for _, stmt := range m.Method().Stmts() {
		s.processStmt(m, stmt)
	}
}

// processStmt dispatches a single statement under its method's context,
// mirroring Tai-e's StmtProcessor visitor (spec.md §4.6 step 1's
// statement table). Instance-receiver-dependent statements (store/load
// field/array, instance invokes) are NOT handled here — they fire lazily
// from [Solver.processVarPointsToGrowth] once the receiver variable
// actually points to something.
func (s *Solver) processStmt(m CSMethod, stmt ir.Stmt) {
	ctx := m.Context()
	switch st := stmt.(type) {
	case *ir.New:
		heapCtx := s.Selector.SelectHeapContext(m, st)
		obj := s.Manager.GetCSObj(heapCtx, st)
		lv := s.Manager.GetCSVar(ctx, st.LValue)
		s.Push(lv, s.Manager.Singleton(obj))

	case *ir.Copy:
		from := s.Manager.GetCSVar(ctx, st.RValue)
		to := s.Manager.GetCSVar(ctx, st.LValue)
		s.AddPFGEdge(from, to)

	case *ir.StoreField:
		if st.IsStatic() {
			from := s.Manager.GetCSVar(ctx, st.RValue)
			to := s.Manager.GetStaticField(st.Field)
			s.AddPFGEdge(from, to)
		}
		// instance case: see processVarPointsToGrowth.

	case *ir.LoadField:
		if st.IsStatic() {
			from := s.Manager.GetStaticField(st.Field)
			to := s.Manager.GetCSVar(ctx, st.LValue)
			s.AddPFGEdge(from, to)
		}

	case *ir.Invoke:
		if st.IsStatic() {
			s.resolveAndLink(m, ir.CallStatic, st, nil)
		}
	}
}

// processVarPointsToGrowth is Tai-e's per-object dispatch loop (the body
// of analyze()'s `for (Obj obj : diff)`), run once per newly-discovered
// (CSVar, Obj) pair: it wires every instance field/array access and
// instance call site that uses the variable as a base/receiver.
func (s *Solver) processVarPointsToGrowth(csVar *CSVar, obj Obj) {
	v := csVar.Var()
	ctx := csVar.Context()

	for _, st := range v.StoreFields() {
		from := s.Manager.GetCSVar(ctx, st.RValue)
		to := s.Manager.GetInstanceField(obj, st.Field)
		s.AddPFGEdge(from, to)
	}
	for _, ld := range v.LoadFields() {
		from := s.Manager.GetInstanceField(obj, ld.Field)
		to := s.Manager.GetCSVar(ctx, ld.LValue)
		s.AddPFGEdge(from, to)
	}
	for _, st := range v.StoreArrays() {
		from := s.Manager.GetCSVar(ctx, st.RValue)
		to := s.Manager.GetArrayIndex(obj)
		s.AddPFGEdge(from, to)
	}
	for _, ld := range v.LoadArrays() {
		from := s.Manager.GetArrayIndex(obj)
		to := s.Manager.GetCSVar(ctx, ld.LValue)
		s.AddPFGEdge(from, to)
	}
	for _, inv := range v.Invokes() {
		s.resolveAndLink(s.Manager.GetCSMethod(ctx, v.Method), inv.Exp.Kind, inv, &obj)
	}
}

// resolveAndLink is spec.md §4.6 step 2-8: resolve the callee (static
// dispatch for a static call, CHA-style declared-type dispatch for a
// special call, runtime-type dispatch off recvObj otherwise), select the
// callee's context, bind `this` if there is a receiver, notify every
// plugin, and — only on a genuinely new edge — install argument and
// return-value PFG edges and make the callee reachable.
//
// Plugin notification runs on every invocation of this method, not just
// the first one for a given (caller, call site, callee) triple: Tai-e's
// processCallImpl calls taintAnalysis.getSourcesOf/taintTransfer
// unconditionally on every receiver-object dispatch, and only the PFG-edge
// installation and reachability walk are gated on the edge being new.
// Gating the plugin hook the same way as the edge would silently drop any
// BASE-position source/transfer a plugin installs once a receiver var's
// points-to set grows with a second object after the edge already exists.
func (s *Solver) resolveAndLink(callerCSMethod CSMethod, kind ir.CallKind, inv *ir.Invoke, recvObj *Obj) {
	ref := inv.MethodRef()
	var declared *ir.Type
	if recvObj != nil && kind != ir.CallSpecial {
		declared = recvObj.Type()
	}
	callee := s.Hierarchy.Resolve(declared, ref)
	if callee == nil || callee.Abstract {
		return // spec.md §7 "unresolvable callee": skip, don't fail the run.
	}

	callSite := s.Manager.GetCSCallSite(callerCSMethod.Context(), inv)

	var calleeCtx Context
	if recvObj != nil {
		calleeCtx = s.Selector.SelectContextInstance(callSite, *recvObj, callee)
	} else {
		calleeCtx = s.Selector.SelectContextStatic(callSite, callee)
	}
	calleeCS := s.Manager.GetCSMethod(calleeCtx, callee)

	if recvObj != nil && callee.This != nil {
		thisVar := s.Manager.GetCSVar(calleeCtx, callee.This)
		s.Push(thisVar, s.Manager.Singleton(*recvObj))
	}

	for _, plugin := range s.plugins {
		plugin.OnNewCallEdge(s, callSite, calleeCS)
	}

	if !s.callGraph.AddCSEdge(kind, callerCSMethod, callSite, calleeCS) {
		return
	}

	s.linkArgsAndReturns(callerCSMethod.Context(), inv, calleeCtx, callee)
	s.addReachable(calleeCS)
}

// linkArgsAndReturns installs the PFG edges argument->parameter and
// return-value->call-result (spec.md §4.6 step 7-8), skipping any
// primitive-typed operand — only references participate in the PFG.
func (s *Solver) linkArgsAndReturns(callerCtx Context, inv *ir.Invoke, calleeCtx Context, callee *ir.Method) {
	args := inv.Args()
	for i, param := range callee.Params {
		if i >= len(args) || !param.Type.IsReference() {
			continue
		}
		from := s.Manager.GetCSVar(callerCtx, args[i])
		to := s.Manager.GetCSVar(calleeCtx, param)
		s.AddPFGEdge(from, to)
	}
	if inv.LValue == nil || !inv.LValue.Type.IsReference() {
		return
	}
	to := s.Manager.GetCSVar(callerCtx, inv.LValue)
	for _, ret := range callee.Returns {
		from := s.Manager.GetCSVar(calleeCtx, ret)
		s.AddPFGEdge(from, to)
	}
}
