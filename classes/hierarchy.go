// Package classes implements the class hierarchy collaborator spec.md §6
// describes ("dispatch from (declared type, method reference) → concrete
// callee; subclass/implementor traversal") and the CHA call-graph builder
// SPEC_FULL.md adds as its own module, grounded on
// original_source/A4/.../CHABuilder.java.
package classes

import (
	lru "github.com/hashicorp/golang-lru"
	"github.com/komonad/taie-pointer/ir"
)

// Class is a class or interface declaration.
type Class struct {
	Type       *ir.Type
	Super      *Class
	Interfaces []*Class
	IsInterface bool
	Methods    map[string]*ir.Method // keyed by MethodRef.Signature()
	Fields     map[string]*ir.Field
}

// Hierarchy is the whole-program class hierarchy: every declared class and
// interface, plus the subclass/implementor indexes CHA and dispatch need.
type Hierarchy struct {
	classes map[*ir.Type]*Class

	subclasses   map[*ir.Type][]*Class
	implementors map[*ir.Type][]*Class

	dispatchCache *lru.Cache
}

const dispatchCacheSize = 4096

// NewHierarchy builds the subclass/implementor indexes from a flat class
// list and installs the LRU dispatch cache used by Resolve.
func NewHierarchy(all []*Class) *Hierarchy {
	h := &Hierarchy{
		classes:      make(map[*ir.Type]*Class, len(all)),
		subclasses:   make(map[*ir.Type][]*Class),
		implementors: make(map[*ir.Type][]*Class),
	}
	h.dispatchCache, _ = lru.New(dispatchCacheSize)

	for _, c := range all {
		h.classes[c.Type] = c
	}
	for _, c := range all {
		for s := c.Super; s != nil; s = s.Super {
			h.subclasses[s.Type] = append(h.subclasses[s.Type], c)
		}
		seen := map[*ir.Type]bool{}
		var walk func(*Class)
		walk = func(iface *Class) {
			if iface == nil || seen[iface.Type] {
				return
			}
			seen[iface.Type] = true
			h.implementors[iface.Type] = append(h.implementors[iface.Type], c)
			for _, super := range iface.Interfaces {
				walk(super)
			}
		}
		if c.IsInterface {
			continue
		}
		for _, iface := range c.Interfaces {
			walk(iface)
		}
	}
	return h
}

func (h *Hierarchy) Class(t *ir.Type) *Class { return h.classes[t] }

// Subclasses returns every class that transitively extends t (t's type
// must name a class, not an interface), including t itself.
func (h *Hierarchy) Subclasses(t *ir.Type) []*Class {
	out := []*Class{h.classes[t]}
	return append(out, h.subclasses[t]...)
}

// Implementors returns every concrete class that implements the interface
// t, directly or transitively through a super-interface.
func (h *Hierarchy) Implementors(t *ir.Type) []*Class {
	return h.implementors[t]
}

type dispatchKey struct {
	declared *ir.Type
	sig      string
}

// Resolve implements the dispatch oracle spec.md §4.6 step 2 and §6 rely
// on: given the receiver's declared type and an unresolved method
// reference, return the concrete method invoked. For CallStatic/
// CallSpecial the declared type is the method ref's own declaring class
// (a nil receiver type is "type-free dispatch", spec.md §7). For
// CallVirtual/CallInterface, walk up from declared type to the first
// class in the hierarchy that declares an override matching the ref's
// signature.
//
// Returns nil if no method could be resolved (spec.md §7 "Unresolvable
// callee": the caller must treat this as a skip, not an error).
func (h *Hierarchy) Resolve(declared *ir.Type, ref *ir.MethodRef) *ir.Method {
	key := dispatchKey{declared, ref.Signature()}
	if declared != nil {
		if cached, ok := h.dispatchCache.Get(key); ok {
			return cached.(*ir.Method)
		}
	}

	m := h.resolveUncached(declared, ref)
	if declared != nil {
		h.dispatchCache.Add(key, m)
	}
	return m
}

func (h *Hierarchy) resolveUncached(declared *ir.Type, ref *ir.MethodRef) *ir.Method {
	if declared == nil {
		declared = ref.DeclaringClass
	}
	sig := ref.Signature()
	for c := h.classes[declared]; c != nil; c = c.Super {
		if m, ok := c.Methods[sig]; ok {
			return m
		}
	}
	return nil
}
