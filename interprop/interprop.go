// Package interprop implements interprocedural constant propagation
// over an ICFG that consults a points-to oracle (spec.md's third
// subsystem), grounded on
// original_source/A7/.../InterConstantPropagation.java: call nodes pass
// their IN fact through unchanged (the real interprocedural value flow
// happens on call/return edges instead); loads/stores of instance
// fields, static fields, and array elements are modeled as auxiliary
// maps keyed by the points-to oracle's alias sets rather than by exact
// variable identity.
package interprop

import (
	"github.com/komonad/taie-pointer/constprop"
	"github.com/komonad/taie-pointer/icfg"
	"github.com/komonad/taie-pointer/ir"
	"github.com/komonad/taie-pointer/pta/cs"
)

// Analysis is the interprocedural constant-propagation transducer.
// Unlike intraprocedural constprop.Analysis, it is not a
// dataflow.Analysis[F] implementation — call nodes need access to the
// ICFG's edge structure (transferEdge's Call/Return cases), which
// the generic intraprocedural solver has no hook for, matching why
// Tai-e gives InterDataflowAnalysis its own richer interface.
type Analysis struct {
	graph *icfg.ICFG
	pta   *cs.Result

	staticFields   map[*ir.Field]constprop.Value
	instanceFields map[*ir.Var]map[*ir.Field]constprop.Value
	arrayElems     map[*ir.Var]map[int64]constprop.Value

	// onFieldChange is Tai-e's solver.addAll(): a static/instance/array
	// write that changes the summarized value for a field or element must
	// re-trigger every load of that same field anywhere in the program,
	// not just statements reachable from the write by normal ICFG
	// successor edges.
	onFieldChange func()
}

func New(g *icfg.ICFG, pta *cs.Result) *Analysis {
	return &Analysis{
		graph:          g,
		pta:            pta,
		staticFields:   map[*ir.Field]constprop.Value{},
		instanceFields: map[*ir.Var]map[*ir.Field]constprop.Value{},
		arrayElems:     map[*ir.Var]map[int64]constprop.Value{},
	}
}

// SetOnFieldChange installs the callback [Solve] uses to requeue every
// ICFG node when a shared field/array summary changes.
func (a *Analysis) SetOnFieldChange(f func()) { a.onFieldChange = f }

func (a *Analysis) notifyFieldChange() {
	if a.onFieldChange != nil {
		a.onFieldChange()
	}
}

func (a *Analysis) newInitialFact() *constprop.Fact { return constprop.NewFact() }

func (a *Analysis) newBoundaryFact(n ir.Stmt) *constprop.Fact {
	f := constprop.NewFact()
	m := a.graph.ContainingMethodOf(n)
	if m == nil {
		return f
	}
	for _, p := range m.Params {
		if p.Type != nil && p.Type.Kind == ir.KindPrimitive {
			f.Update(p, constprop.NAC())
		}
	}
	return f
}

// aliasedVars returns every variable whose points-to set overlaps
// base's — the "who else might this load/store actually touch" query
// InterConstantPropagation.java runs against pta.getVars()/getPointsToSet.
func (a *Analysis) aliasedVars(base *ir.Var) []*ir.Var {
	basePts := a.pta.PointsTo(base)
	if len(basePts) == 0 {
		return nil
	}
	baseSet := make(map[cs.Obj]bool, len(basePts))
	for _, o := range basePts {
		baseSet[o] = true
	}
	var out []*ir.Var
	// pta.ReachableMethods gives us a deterministic source of vars to
	// scan; a direct Vars() accessor is unnecessary since every variable
	// this analysis cares about is a store/load base already reachable
	// through those methods' statements.
	for _, m := range a.pta.ReachableMethods() {
		for _, st := range m.Stmts() {
			for _, v := range candidateBases(st) {
				for _, o := range a.pta.PointsTo(v) {
					if baseSet[o] {
						out = append(out, v)
						break
					}
				}
			}
		}
	}
	return out
}

func candidateBases(st ir.Stmt) []*ir.Var {
	switch s := st.(type) {
	case *ir.StoreField:
		if s.Base != nil {
			return []*ir.Var{s.Base}
		}
	case *ir.LoadField:
		if s.Base != nil {
			return []*ir.Var{s.Base}
		}
	case *ir.StoreArray:
		return []*ir.Var{s.Base}
	case *ir.LoadArray:
		return []*ir.Var{s.Base}
	}
	return nil
}

// TransferNode is Tai-e's transferCallNode/transferNonCallNode split:
// call nodes are a pure pass-through (their real effect arrives via
// call/return edges); every other statement is either handled by the
// field/array alias logic below or falls back to intraprocedural
// constprop.Evaluate.
func (a *Analysis) TransferNode(stmt ir.Stmt, in, out *constprop.Fact) bool {
	if icfg.IsCall(stmt) {
		before := constprop.NewFact()
		before.CopyFrom(out)
		out.CopyFrom(in)
		return true
	}

	switch st := stmt.(type) {
	case *ir.LoadField:
		if !canHoldInt(st.LValue) {
			break
		}
		before := constprop.NewFact()
		before.CopyFrom(out)
		out.CopyFrom(in)
		if st.IsStatic() {
			out.Update(st.LValue, a.staticFields[st.Field])
		} else {
			value := constprop.Undef()
			for _, v := range a.aliasedVars(st.Base) {
				if fields := a.instanceFields[v]; fields != nil {
					value = constprop.Meet(value, fields[st.Field])
				}
			}
			out.Update(st.LValue, value)
		}
		return !before.Equal(out)

	case *ir.LoadArray:
		if !canHoldInt(st.LValue) {
			break
		}
		before := constprop.NewFact()
		before.CopyFrom(out)
		out.CopyFrom(in)
		value := constprop.Undef()
		for _, v := range a.aliasedVars(st.Base) {
			for _, val := range a.arrayElems[v] {
				value = constprop.Meet(value, val)
			}
		}
		out.Update(st.LValue, value)
		return !before.Equal(out)

	case *ir.StoreField:
		if !canHoldInt(st.RValue) {
			break
		}
		before := constprop.NewFact()
		before.CopyFrom(out)
		out.CopyFrom(in)
		value := in.Get(st.RValue)
		if st.IsStatic() {
			old := a.staticFields[st.Field]
			merged := constprop.Meet(old, value)
			if !merged.Equal(old) {
				a.staticFields[st.Field] = merged
				a.notifyFieldChange()
			}
		} else {
			m := a.instanceFields[st.Base]
			if m == nil {
				m = map[*ir.Field]constprop.Value{}
				a.instanceFields[st.Base] = m
			}
			old := m[st.Field]
			merged := constprop.Meet(old, value)
			if !merged.Equal(old) {
				m[st.Field] = merged
				a.notifyFieldChange()
			}
		}
		return !before.Equal(out)

	case *ir.StoreArray:
		if !canHoldInt(st.RValue) {
			break
		}
		before := constprop.NewFact()
		before.CopyFrom(out)
		out.CopyFrom(in)
		m := a.arrayElems[st.Base]
		if m == nil {
			m = map[int64]constprop.Value{}
			a.arrayElems[st.Base] = m
		}
		// summary key: field-insensitive-in-the-array-dimension already
		// holds at the pointer-analysis layer, so one bucket (index 0)
		// stands for the whole array, matching [*ir.LoadArray]'s
		// already-merged semantics.
		value := in.Get(st.RValue)
		old := m[0]
		merged := constprop.Meet(old, value)
		if !merged.Equal(old) {
			m[0] = merged
			a.notifyFieldChange()
		}
		return !before.Equal(out)
	}

	return (constprop.Analysis{}).TransferNode(stmt, in, out)
}

func canHoldInt(v *ir.Var) bool {
	return v != nil && v.Type != nil && v.Type.Kind == ir.KindPrimitive
}

func (a *Analysis) MeetInto(fact, target *constprop.Fact) {
	(constprop.Analysis{}).MeetInto(fact, target)
}
