package cs

import (
	"fmt"

	"github.com/komonad/taie-pointer/ir"
)

// Pointer is the polymorphic PFG node of spec.md §3: a CSVar, InstanceField,
// ArrayIndex, or StaticField. Every variant owns a monotonically-growing
// points-to set (spec.md §3 "Every pointer owns a points-to set").
type Pointer interface {
	fmt.Stringer
	PointsTo() *PointsToSet
	pointerTag()
}

// CSVar is (context, IR variable) — the context-sensitive copy of a
// program variable.
type CSVar struct {
	ctx Context
	v   *ir.Var
	pts *PointsToSet
}

func (p *CSVar) pointerTag()           {}
func (p *CSVar) PointsTo() *PointsToSet { return p.pts }
func (p *CSVar) Context() Context       { return p.ctx }
func (p *CSVar) Var() *ir.Var           { return p.v }
func (p *CSVar) String() string         { return fmt.Sprintf("%s:%s", p.ctx, p.v) }

// InstanceField is (base object, field) — a field of a specific abstract
// object.
type InstanceField struct {
	base  Obj
	field *ir.Field
	pts   *PointsToSet
}

func (p *InstanceField) pointerTag()           {}
func (p *InstanceField) PointsTo() *PointsToSet { return p.pts }
func (p *InstanceField) Base() Obj              { return p.base }
func (p *InstanceField) Field() *ir.Field        { return p.field }
func (p *InstanceField) String() string          { return fmt.Sprintf("%s.%s", p.base, p.field.Name) }

// ArrayIndex is (base object) — the single summarized index of an array
// object (spec.md §4.6: "Array indexing is field-insensitive in the array
// dimension").
type ArrayIndex struct {
	base Obj
	pts  *PointsToSet
}

func (p *ArrayIndex) pointerTag()            {}
func (p *ArrayIndex) PointsTo() *PointsToSet  { return p.pts }
func (p *ArrayIndex) Base() Obj               { return p.base }
func (p *ArrayIndex) String() string          { return fmt.Sprintf("%s[*]", p.base) }

// StaticField is (field) — a static field has no receiver and is not
// context-sensitive (spec.md §4.3).
type StaticField struct {
	field *ir.Field
	pts   *PointsToSet
}

func (p *StaticField) pointerTag()            {}
func (p *StaticField) PointsTo() *PointsToSet  { return p.pts }
func (p *StaticField) Field() *ir.Field         { return p.field }
func (p *StaticField) String() string           { return p.field.String() }

// CSMethod is (context, method) (spec.md §3).
type CSMethod struct {
	ctx    Context
	method *ir.Method
}

func (m CSMethod) Context() Context  { return m.ctx }
func (m CSMethod) Method() *ir.Method { return m.method }
func (m CSMethod) String() string     { return fmt.Sprintf("%s:%s", m.ctx, m.method) }

// CSCallSite is (context, invoke) (spec.md §3).
type CSCallSite struct {
	ctx    Context
	invoke *ir.Invoke
}

func (c CSCallSite) Context() Context   { return c.ctx }
func (c CSCallSite) Invoke() *ir.Invoke { return c.invoke }
func (c CSCallSite) String() string     { return fmt.Sprintf("%s:%v", c.ctx, c.invoke) }
