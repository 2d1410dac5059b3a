package cs

import (
	"fmt"

	"github.com/komonad/taie-pointer/ir"
)

// CSManager is the family of interning maps of spec.md §4.3: every
// `getXxx` lookup is idempotent and returns the identical pointer value
// (same identity, same points-to set) across repeated calls — the core
// invariant spec.md §8 property 3 tests directly.
type CSManager struct {
	heap HeapModel

	objs *objTable

	vars          map[varKey]*CSVar
	instFields    map[instFieldKey]*InstanceField
	arrayIdx      map[objKey]*ArrayIndex
	staticFields  map[*ir.Field]*StaticField
	methods       map[methodKey]*CSMethod
	callSites     map[callSiteKey]*CSCallSite
}

// ctx in each of these keys is a Context's Key() (not String()): the
// interning identity must collide exactly when equal() would, and Key()
// is the faithful representation that guarantees that (see [Context.Key]).
type varKey struct {
	ctx string
	v   *ir.Var
}

type instFieldKey struct {
	base  objKey
	field *ir.Field
}

type methodKey struct {
	ctx    string
	method *ir.Method
}

type callSiteKey struct {
	ctx    string
	invoke *ir.Invoke
}

func NewCSManager(heap HeapModel) *CSManager {
	return &CSManager{
		heap:         heap,
		objs:         newObjTable(),
		vars:         make(map[varKey]*CSVar),
		instFields:   make(map[instFieldKey]*InstanceField),
		arrayIdx:     make(map[objKey]*ArrayIndex),
		staticFields: make(map[*ir.Field]*StaticField),
		methods:      make(map[methodKey]*CSMethod),
		callSites:    make(map[callSiteKey]*CSCallSite),
	}
}

func (m *CSManager) GetCSVar(ctx Context, v *ir.Var) *CSVar {
	key := varKey{ctx.Key(), v}
	if p, ok := m.vars[key]; ok {
		return p
	}
	p := &CSVar{ctx: ctx, v: v, pts: newPointsToSet(m.objs)}
	m.vars[key] = p
	return p
}

// GetCSObj interns the abstract object for an allocation site under the
// given heap context, routing the site through the configured [HeapModel]
// first (spec.md §4.8).
func (m *CSManager) GetCSObj(heapCtx Context, site *ir.New) Obj {
	merged := m.heap.Merge(site)
	return Obj{key: objKey{site: merged, typ: merged.Type, heapCtx: heapCtx.Key()}}
}

// GetTaintObj interns a taint-flavored object keyed by (invoke, type),
// always under the empty context (spec.md §4.9 "Taint objects are placed
// under the empty context").
func (m *CSManager) GetTaintObj(invoke *ir.Invoke, typ *ir.Type) Obj {
	return Obj{key: objKey{typ: typ, taintSrc: invoke}}
}

func (m *CSManager) GetInstanceField(base Obj, field *ir.Field) *InstanceField {
	key := instFieldKey{base.key, field}
	if p, ok := m.instFields[key]; ok {
		return p
	}
	p := &InstanceField{base: base, field: field, pts: newPointsToSet(m.objs)}
	m.instFields[key] = p
	return p
}

func (m *CSManager) GetArrayIndex(base Obj) *ArrayIndex {
	if p, ok := m.arrayIdx[base.key]; ok {
		return p
	}
	p := &ArrayIndex{base: base, pts: newPointsToSet(m.objs)}
	m.arrayIdx[base.key] = p
	return p
}

func (m *CSManager) GetStaticField(field *ir.Field) *StaticField {
	if p, ok := m.staticFields[field]; ok {
		return p
	}
	p := &StaticField{field: field, pts: newPointsToSet(m.objs)}
	m.staticFields[field] = p
	return p
}

func (m *CSManager) GetCSMethod(ctx Context, method *ir.Method) CSMethod {
	key := methodKey{ctx.Key(), method}
	if cm, ok := m.methods[key]; ok {
		return *cm
	}
	cm := &CSMethod{ctx: ctx, method: method}
	m.methods[key] = cm
	return *cm
}

func (m *CSManager) GetCSCallSite(ctx Context, invoke *ir.Invoke) CSCallSite {
	key := callSiteKey{ctx.Key(), invoke}
	if cc, ok := m.callSites[key]; ok {
		return *cc
	}
	cc := &CSCallSite{ctx: ctx, invoke: invoke}
	m.callSites[key] = cc
	return *cc
}

// Singleton is a convenience used throughout the solver (and by plugins)
// to build a one-element delta points-to set for a freshly interned
// object.
func (m *CSManager) Singleton(o Obj) *PointsToSet { return m.objs.singleton(o) }

func (m *CSManager) String() string {
	return fmt.Sprintf("CSManager{vars=%d objs=%d instFields=%d methods=%d}",
		len(m.vars), len(m.objs.objs), len(m.instFields), len(m.methods))
}
