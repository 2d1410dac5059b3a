package cs

import (
	"fmt"

	"github.com/komonad/taie-pointer/ir"
)

// Obj is the abstract object data-model type of spec.md §3: an
// identity-carrying token for an allocation site, optionally wrapped with
// a heap context, or a taint marker naming its originating call site.
//
// Two taint objects with the same source invoke and declared type are
// equal; two regular objects share identity iff they share allocation
// site and heap context (spec.md §3 invariant 4). Obj values are only
// ever handed out by [CSManager.GetCSObj]/[CSManager.GetTaintObj], which
// enforce that equality.
type Obj struct {
	key objKey
}

type objKey struct {
	site *ir.New
	typ  *ir.Type
	// heapCtx is the Key() of the heap context, not its String(): contexts
	// are compared structurally (spec.md's interning invariant cares about
	// content, not pointer identity of whatever persistent structure a
	// [Selector] built), and Key() — unlike String() — never collides for
	// two contexts that aren't equal() (see [Context.Key]).
	heapCtx string

	// taint marker; zero value (taintSrc == nil) means "not a taint
	// object" (spec.md §3 invariant 4: isTaint is stable and mutually
	// exclusive with carrying a real allocation site).
	taintSrc *ir.Invoke
}

// identity is objKey's own canonical key, used when an Obj appears as a
// context-list element (ObjectSensitiveSelector): built from the
// allocation site's and type's addresses rather than their names, so two
// same-named locals declared in different methods never collide here the
// way they would under Obj.String()'s name-based rendering.
func (k objKey) identity() string {
	if k.taintSrc != nil {
		return fmt.Sprintf("taint:%p:%p", k.taintSrc, k.typ)
	}
	return fmt.Sprintf("obj:%p:%p:%s", k.site, k.typ, k.heapCtx)
}

func (o Obj) Type() *ir.Type { return o.key.typ }

// Site returns the allocation site, or nil for a taint object.
func (o Obj) Site() *ir.New { return o.key.site }

// IsTaint reports whether this object is a taint marker (spec.md §3
// invariant 4, §4.9 "Taint object manufacture").
func (o Obj) IsTaint() bool { return o.key.taintSrc != nil }

// SourceCall returns the invoke that produced this taint object, or nil
// if this is not a taint object.
func (o Obj) SourceCall() *ir.Invoke { return o.key.taintSrc }

func (o Obj) String() string {
	if o.IsTaint() {
		return fmt.Sprintf("taint(%v:%v)", o.key.taintSrc, o.key.typ)
	}
	if o.key.heapCtx != "" && o.key.heapCtx != emptyContext.Key() {
		return fmt.Sprintf("%v@%v[%s]", o.key.typ, o.key.site, o.key.heapCtx)
	}
	return fmt.Sprintf("%v@%v", o.key.typ, o.key.site)
}

// HeapModel maps an allocation site (with context) to an abstract object
// (spec.md §4.8). The core depends only on stability: the same (site,
// heap context) pair always yields the same Obj identity: [CSManager.GetCSObj]
// builds Obj as a comparable value keyed on the merged site and the heap
// context's Key(), so equal inputs give equal Obj values.
//
// Merge returns the canonical *ir.New to key the object on; two sites
// that Merge maps to the same pointer denote the same abstract object.
// The default model summarizes by allocation site (Merge is the
// identity); other policies (e.g. merging by declared type) return a
// shared representative instead.
type HeapModel interface {
	Merge(site *ir.New) *ir.New
}

// DefaultHeapModel summarizes by allocation site: every execution of a
// given `new` statement (under a given heap context) denotes the same
// object.
type DefaultHeapModel struct{}

func (DefaultHeapModel) Merge(site *ir.New) *ir.New { return site }

// TypeSensitiveHeapModel summarizes every allocation of a given type as
// one object, discarding the allocation site entirely. Useful for
// comparing precision/cost trade-offs, mirroring the "other policies"
// spec.md §4.8 allows.
type TypeSensitiveHeapModel struct {
	reps map[*ir.Type]*ir.New
}

func NewTypeSensitiveHeapModel() *TypeSensitiveHeapModel {
	return &TypeSensitiveHeapModel{reps: make(map[*ir.Type]*ir.New)}
}

func (m *TypeSensitiveHeapModel) Merge(site *ir.New) *ir.New {
	if rep, ok := m.reps[site.Type]; ok {
		return rep
	}
	m.reps[site.Type] = site
	return site
}
