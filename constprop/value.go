// Package constprop implements intraprocedural constant propagation and
// dead-code detection (SPEC_FULL.md's "Intraprocedural constant
// propagation + dead code detection" module), grounded on
// original_source/A2/.../ConstantPropagation.java and
// original_source/A3/.../DeadCodeDetection.java.
package constprop

import "fmt"

// Value is a single lattice element: Undef (bottom), a known constant,
// or NAC ("not a constant", top).
type Value struct {
	kind     valueKind
	constant int64
}

type valueKind int

const (
	vUndef valueKind = iota
	vConstant
	vNAC
)

func Undef() Value           { return Value{kind: vUndef} }
func NAC() Value             { return Value{kind: vNAC} }
func Constant(c int64) Value { return Value{kind: vConstant, constant: c} }

func (v Value) IsUndef() bool    { return v.kind == vUndef }
func (v Value) IsNAC() bool      { return v.kind == vNAC }
func (v Value) IsConstant() bool { return v.kind == vConstant }
func (v Value) Int() int64       { return v.constant }

func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && (v.kind != vConstant || v.constant == o.constant)
}

func (v Value) String() string {
	switch v.kind {
	case vUndef:
		return "UNDEF"
	case vNAC:
		return "NAC"
	default:
		return fmt.Sprintf("%d", v.constant)
	}
}

// Meet is the lattice meet (spec.md-style monotone join downward to
// NAC): NAC absorbs everything; Undef is the identity; two distinct
// constants meet to NAC.
func Meet(a, b Value) Value {
	if a.IsNAC() || b.IsNAC() {
		return NAC()
	}
	if a.IsUndef() {
		return b
	}
	if b.IsUndef() {
		return a
	}
	if a.constant != b.constant {
		return NAC()
	}
	return a
}
