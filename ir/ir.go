// Package ir defines the three-address intermediate representation consumed
// by every analysis in this repository. Building this IR from source text,
// bytecode, or any other concrete syntax is outside the scope of this
// repository; programs are constructed directly as [*Method] values (see
// the fixtures package and the analysis packages' tests for examples).
package ir

import "fmt"

// Type is the declared type of a variable, field, or method signature.
// Interning is the caller's responsibility: two types compare equal with
// == iff they denote the same declared type.
type Type struct {
	Name string
	// Kind distinguishes reference types that the pointer analyses treat as
	// distinct allocation shapes.
	Kind TypeKind
}

type TypeKind int

const (
	KindClass TypeKind = iota
	KindInterface
	KindArray
	KindPrimitive
)

func (t *Type) String() string { return t.Name }

// IsReference reports whether a value of this type can be a pointer into
// the heap (and therefore participates in the points-to analyses).
func (t *Type) IsReference() bool {
	return t.Kind == KindClass || t.Kind == KindInterface || t.Kind == KindArray
}

// Var is a local variable or parameter of a [Method]. Vars are only ever
// compared by identity (pointer equality); two Vars with the same name in
// different methods are distinct.
type Var struct {
	Name    string
	Type    *Type
	Method  *Method
	IsParam bool

	// Use-site indices, populated when the IR is assembled (see
	// [Method.Index]). These let the solver ask, in O(1), "which
	// statements use this variable as a store/load base, an array
	// base, or an invocation receiver" — exactly the queries spec.md
	// §6 requires of the IR collaborator.
	storeFields []*StoreField
	loadFields  []*LoadField
	storeArrays []*StoreArray
	loadArrays  []*LoadArray
	invokes     []*Invoke
}

func (v *Var) String() string { return v.Name }

// StoreFields returns every reachable-or-not statement "v.f = y" with v as
// base.
func (v *Var) StoreFields() []*StoreField { return v.storeFields }

// LoadFields returns every statement "y = v.f" with v as base.
func (v *Var) LoadFields() []*LoadField { return v.loadFields }

// StoreArrays returns every statement "v[*] = y" with v as base.
func (v *Var) StoreArrays() []*StoreArray { return v.storeArrays }

// LoadArrays returns every statement "y = v[*]" with v as base.
func (v *Var) LoadArrays() []*LoadArray { return v.loadArrays }

// Invokes returns every invocation statement that uses v as its receiver.
func (v *Var) Invokes() []*Invoke { return v.invokes }

// Field identifies a declared field of a class, shared by every instance
// (InstanceField pointers are keyed on (object, *Field), see pta/cs).
type Field struct {
	Name   string
	Type   *Type
	Owner  *Type
	Static bool
}

func (f *Field) String() string { return fmt.Sprintf("%s.%s", f.Owner, f.Name) }

// MethodRef is an unresolved reference to a method by signature, as it
// appears at a call site before dispatch (spec.md §6 "Class hierarchy").
type MethodRef struct {
	Name   string
	Params []*Type
	Ret    *Type
	// DeclaringClass is the static type through which the call is made
	// (the type of the receiver expression at the call site, or the
	// containing class for a static call).
	DeclaringClass *Type
}

func (r *MethodRef) String() string { return fmt.Sprintf("%s.%s", r.DeclaringClass, r.Name) }

// Signature returns a stable key for grouping refs that describe the same
// method shape, independent of declaring class (used for interface
// dispatch: spec.md's CHA/resolution consult this to match an override by
// name+arity).
func (r *MethodRef) Signature() string {
	return fmt.Sprintf("%s/%d", r.Name, len(r.Params))
}
