// Package world holds an explicit whole-program handle that is passed as
// an argument instead of reached through package-level globals: the class
// hierarchy, the program's entry method, and name indexes over declared
// types and methods. SPEC_FULL.md's design note calls this out directly —
// Tai-e's World is a process-wide singleton (World.get()...), which this
// repository replaces with a *World value passed explicitly to the
// constructors that need it (taint.NewPlugin and
// taint.NewPluginFromConfig); classes.NewHierarchy and cs.NewSolver take
// their inputs directly and do not use a World.
package world

import "github.com/komonad/taie-pointer/classes"
import "github.com/komonad/taie-pointer/ir"

// World is the whole-program context every analysis is built from.
type World struct {
	Hierarchy *classes.Hierarchy
	Main      *ir.Method

	types   map[string]*ir.Type
	methods map[string]*ir.Method // keyed by MethodRef.String()
}

// New indexes allTypes by declared name and allMethods by their fully
// qualified reference string; the classes in h are not scanned.
func New(h *classes.Hierarchy, main *ir.Method, allTypes []*ir.Type, allMethods []*ir.Method) *World {
	w := &World{
		Hierarchy: h,
		Main:      main,
		types:     make(map[string]*ir.Type, len(allTypes)),
		methods:   make(map[string]*ir.Method, len(allMethods)),
	}
	for _, t := range allTypes {
		w.types[t.Name] = t
	}
	for _, m := range allMethods {
		w.methods[m.Ref.String()] = m
	}
	return w
}

// TypeByName looks up a declared type by its source-level name (spec.md
// §6's taint configuration document names taint types this way).
func (w *World) TypeByName(name string) *ir.Type { return w.types[name] }

// MethodByRef looks up a declared method by its fully qualified
// "DeclaringClass.name" signature string (the form the taint
// configuration document's `method` field uses, and the form
// [ir.MethodRef.String] produces).
func (w *World) MethodByRef(ref string) *ir.Method { return w.methods[ref] }
