package taint

import (
	"github.com/komonad/taie-pointer/ir"
	"github.com/komonad/taie-pointer/pta/cs"
	"github.com/komonad/taie-pointer/world"
)

// Plugin is the cs.Plugin implementation of spec.md §4.9. It owns no
// points-to state of its own — every taint object it manufactures is
// interned through the solver's own [cs.CSManager], so a taint object's
// identity is exactly the (source invoke, type) pair spec.md §4.9's
// invariants name, regardless of which rule or hook produced it.
type Plugin struct {
	world  *world.World
	config *Config
}

// NewPlugin loads the configuration document at path and binds it to w
// (spec.md §7 "Malformed taint config: fail eagerly at initialization").
func NewPlugin(w *world.World, path string) (*Plugin, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return NewPluginFromConfig(w, cfg), nil
}

// NewPluginFromConfig binds an already-parsed [Config] to w, skipping the
// filesystem read — used by tests driving [ParseConfig] against a literal
// document.
func NewPluginFromConfig(w *world.World, cfg *Config) *Plugin {
	return &Plugin{world: w, config: cfg}
}

var _ cs.Plugin = (*Plugin)(nil)

// OnNewCallEdge implements spec.md §4.9's on-call-resolved hook: sources
// and (base/arg)->(base/result) transfers are installed every time the
// solver resolves this call, mirroring Tai-e's processCallImpl invoking
// getSourcesOf and taintTransfer unconditionally whenever a call is
// processed — including repeat resolutions of an already-linked edge, so
// a BASE-position transfer still fires when the receiver's points-to set
// gains a new object after the edge was first discovered. Re-pushing an
// already-known taint object is a no-op (the worklist/points-to-set diff
// absorbs it), so firing more than once per edge is harmless.
func (p *Plugin) OnNewCallEdge(s *cs.Solver, callSite cs.CSCallSite, callee cs.CSMethod) {
	method := callee.Method()
	invoke := callSite.Invoke()
	methodKey := method.Ref.String()
	callerCtx := callSite.Context()
	calleeCtx := callee.Context()

	if invoke.LValue != nil {
		result := s.Manager.GetCSVar(callerCtx, invoke.LValue)
		for _, src := range p.config.sourcesFor(methodKey) {
			typ := p.world.TypeByName(src.Type)
			if typ == nil {
				continue
			}
			obj := s.Manager.GetTaintObj(invoke, typ)
			s.Push(result, s.Manager.Singleton(obj))
		}
	}

	transfers := p.config.transfersFor(methodKey)
	if len(transfers) == 0 {
		return
	}

	var recv *cs.CSVar
	if invoke.IsInstance() {
		recv = s.Manager.GetCSVar(callerCtx, invoke.Receiver())
	}
	args := invoke.Args()

	for _, tr := range transfers {
		dstVar := p.resolveVar(s, tr.To, callerCtx, calleeCtx, recv, args, invoke)
		if dstVar == nil {
			continue
		}
		switch {
		case tr.From.Kind == PositionBase && recv != nil:
			p.transferFrom(s, recv.PointsTo(), dstVar, tr.Type)
		case tr.From.Kind == PositionArg && tr.From.Arg < len(args):
			src := s.Manager.GetCSVar(callerCtx, args[tr.From.Arg])
			p.transferFrom(s, src.PointsTo(), dstVar, tr.Type)
		}
	}
}

// resolveVar maps a transfer endpoint to the concrete CSVar it names:
// base is the receiver (caller context) and result is the call's LValue
// (caller context); an argument index is not a supported destination and
// yields nil, so such a rule is skipped — matching spec.md §4.9's "BASE ->
// RESULT"/"ARG -> BASE"/"ARG -> RESULT" rule shapes.
func (p *Plugin) resolveVar(s *cs.Solver, pos Position, callerCtx, calleeCtx cs.Context, recv *cs.CSVar, args []*ir.Var, invoke *ir.Invoke) *cs.CSVar {
	switch pos.Kind {
	case PositionBase:
		return recv
	case PositionResult:
		if invoke.LValue == nil {
			return nil
		}
		return s.Manager.GetCSVar(callerCtx, invoke.LValue)
	default:
		return nil
	}
}

// transferFrom scans src for taint objects and, for each, pushes a
// retyped taint (same source invoke, new declared type) into dst
// (spec.md §4.9: "Transfers never create new source invokes; they only
// retype existing taints").
func (p *Plugin) transferFrom(s *cs.Solver, src *cs.PointsToSet, dst *cs.CSVar, newType string) {
	typ := p.world.TypeByName(newType)
	if typ == nil {
		return
	}
	src.Iterate(func(o cs.Obj) {
		if !o.IsTaint() {
			return
		}
		retyped := s.Manager.GetTaintObj(o.SourceCall(), typ)
		s.Push(dst, s.Manager.Singleton(retyped))
	})
}

// OnNewPointsToFact implements spec.md §4.9's on-points-to-grew hook:
// "arg-based transfers when an argument variable receives new taint."
// When a taint object newly lands in a CSVar, re-fire ARG->BASE/RESULT
// transfers for every reachable call site that already uses that
// variable as an argument (mirroring Tai-e's linear scan over
// reachableStmts filtering `invoke.args contains v`).
func (p *Plugin) OnNewPointsToFact(s *cs.Solver, ptr cs.Pointer, obj cs.Obj) {
	if !obj.IsTaint() {
		return
	}
	csVar, ok := ptr.(*cs.CSVar)
	if !ok {
		return
	}
	v := csVar.Var()
	ctx := csVar.Context()

	for _, m := range s.CallGraph().ReachableNodes() {
		for _, stmt := range m.Method().Stmts() {
			inv, ok := stmt.(*ir.Invoke)
			if !ok || m.Context().Key() != ctx.Key() {
				continue
			}
			argIdx := indexOfArg(inv.Args(), v)
			if argIdx < 0 {
				continue
			}
			methodKey := inv.MethodRef().String()
			for _, tr := range p.config.transfersFor(methodKey) {
				if tr.From.Kind != PositionArg || tr.From.Arg != argIdx {
					continue
				}
				typ := p.world.TypeByName(tr.Type)
				if typ == nil {
					continue
				}
				dst := p.resolveVar(s, tr.To, ctx, ctx, func() *cs.CSVar {
					if inv.IsInstance() {
						return s.Manager.GetCSVar(ctx, inv.Receiver())
					}
					return nil
				}(), inv.Args(), inv)
				if dst == nil {
					continue
				}
				retyped := s.Manager.GetTaintObj(obj.SourceCall(), typ)
				s.Push(dst, s.Manager.Singleton(retyped))
			}
		}
	}
}

func indexOfArg(args []*ir.Var, v *ir.Var) int {
	for i, a := range args {
		if a == v {
			return i
		}
	}
	return -1
}
