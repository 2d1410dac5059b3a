package cs

import (
	"fmt"
	"strings"

	"github.com/benbjohnson/immutable"
	"github.com/komonad/taie-pointer/ir"
)

// Context is the opaque value produced by a [Selector] (spec.md §3). The
// core never inspects context contents — it only compares them for
// interning identity, which is why Context is implemented as a comparable
// interface rather than any concrete struct the solver could peek into.
type Context interface {
	fmt.Stringer
	// equal reports whether two contexts are the same analysis copy. The
	// comparable built-in constraint is not expressive enough here
	// because *callStringContext wraps a persistent list, so equality is
	// defined explicitly instead of relying on ==.
	equal(Context) bool
	// Key returns a string that is equal for two contexts iff equal would
	// report true for them, built from each element's own identity rather
	// than its display text (String() renders *ir.Var/*ir.Type by name for
	// readability, which two distinct allocation sites or call sites can
	// share — CSManager interns on Key, never on String()).
	Key() string
}

// emptyContext is the identity context every non-context-sensitive entity
// is interned under (spec.md §3), including every taint object (spec.md
// §4.9).
var emptyContext Context = callStringContext{}

// callStringContext is a k-limited call-string (or object-string)
// context: an immutable persistent list of "elements" — call sites or
// receiver objects, depending on which [Selector] built it. Using
// immutable.List means that extending a context by one element (every
// call-graph edge discovery does this, spec.md §4.6 step 4) shares the
// unchanged prefix with every other context derived from it, instead of
// copying a slice per extension.
type callStringContext struct {
	elems *immutable.List[any]
}

func (c callStringContext) String() string {
	if c.elems == nil || c.elems.Len() == 0 {
		return "[]"
	}
	var b strings.Builder
	b.WriteByte('[')
	itr := c.elems.Iterator()
	for i := 0; !itr.Done(); i++ {
		_, v := itr.Next()
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, "%v", v)
	}
	b.WriteByte(']')
	return b.String()
}

// Key builds a string from each element's own identity — a pointer
// address for *ir.Invoke/*ir.Type, the recursive canonical key for an Obj
// element — instead of String()'s name-based rendering, so two contexts
// that are equal() always collide here and two that aren't never do.
func (c callStringContext) Key() string {
	if c.elems == nil || c.elems.Len() == 0 {
		return "[]"
	}
	var b strings.Builder
	b.WriteByte('[')
	itr := c.elems.Iterator()
	for i := 0; !itr.Done(); i++ {
		_, v := itr.Next()
		if i > 0 {
			b.WriteByte(',')
		}
		switch e := v.(type) {
		case Obj:
			b.WriteString(e.key.identity())
		case *ir.Invoke:
			fmt.Fprintf(&b, "invoke:%p", e)
		case *ir.Type:
			fmt.Fprintf(&b, "type:%p", e)
		default:
			panic(fmt.Sprintf("cs: context element %T has no canonical key", v))
		}
	}
	b.WriteByte(']')
	return b.String()
}

func (c callStringContext) equal(o Context) bool {
	oc, ok := o.(callStringContext)
	if !ok {
		return false
	}
	if c.elems == nil || oc.elems == nil {
		return (c.elems == nil || c.elems.Len() == 0) == (oc.elems == nil || oc.elems.Len() == 0)
	}
	if c.elems.Len() != oc.elems.Len() {
		return false
	}
	ai, bi := c.elems.Iterator(), oc.elems.Iterator()
	for !ai.Done() {
		_, a := ai.Next()
		_, b := bi.Next()
		if a != b {
			return false
		}
	}
	return true
}

func (c callStringContext) extend(elem any, k int) callStringContext {
	elems := c.elems
	if elems == nil {
		elems = immutable.NewList[any]()
	}
	elems = elems.Append(elem)
	if k >= 0 {
		for elems.Len() > k {
			elems = elems.Slice(1, elems.Len())
		}
	}
	return callStringContext{elems: elems}
}

// Selector is the pluggable context-selection policy of spec.md §4.4. All
// four operations are total; the core treats Selector as opaque.
type Selector interface {
	EmptyContext() Context
	SelectHeapContext(csMethod CSMethod, site *ir.New) Context
	// SelectContextStatic selects the callee context for a static call.
	SelectContextStatic(callSite CSCallSite, callee *ir.Method) Context
	// SelectContextInstance selects the callee context for an instance
	// call, given the receiver object.
	SelectContextInstance(callSite CSCallSite, recvObj Obj, callee *ir.Method) Context
}

// InsensitiveSelector always returns the empty context: this is the
// trivial context-insensitive policy spec.md §4.4 names, and is how
// pta/ci gets a context-insensitive analysis for free out of the
// context-sensitive engine (SPEC_FULL.md "Context-insensitive
// whole-program pointer analysis").
type InsensitiveSelector struct{}

func (InsensitiveSelector) EmptyContext() Context { return emptyContext }
func (InsensitiveSelector) SelectHeapContext(CSMethod, *ir.New) Context { return emptyContext }
func (InsensitiveSelector) SelectContextStatic(CSCallSite, *ir.Method) Context { return emptyContext }
func (InsensitiveSelector) SelectContextInstance(CSCallSite, Obj, *ir.Method) Context {
	return emptyContext
}

// CallSiteSensitiveSelector selects a k-limited call-string context: the
// callee's context is the caller's context extended with the call site.
// Heap contexts are not tracked (always empty), matching Tai-e's
// "1-call-site-sensitive, context-insensitive heap" default.
type CallSiteSensitiveSelector struct{ K int }

func (s CallSiteSensitiveSelector) EmptyContext() Context { return emptyContext }

func (s CallSiteSensitiveSelector) SelectHeapContext(CSMethod, *ir.New) Context {
	return emptyContext
}

func (s CallSiteSensitiveSelector) SelectContextStatic(cs CSCallSite, _ *ir.Method) Context {
	return cs.Context().(callStringContext).extend(cs.Invoke(), s.K)
}

func (s CallSiteSensitiveSelector) SelectContextInstance(cs CSCallSite, _ Obj, _ *ir.Method) Context {
	return cs.Context().(callStringContext).extend(cs.Invoke(), s.K)
}

// ObjectSensitiveSelector selects a k-limited context built from the
// chain of receiver objects at instance calls; static calls inherit the
// caller's context unchanged. Heap contexts use the CS-method's own
// context as the allocation's heap context (a 1-object-sensitive heap
// abstraction), matching the "object-sensitive" family spec.md §4.4
// names.
type ObjectSensitiveSelector struct{ K int }

func (s ObjectSensitiveSelector) EmptyContext() Context { return emptyContext }

func (s ObjectSensitiveSelector) SelectHeapContext(m CSMethod, _ *ir.New) Context {
	return m.Context()
}

func (s ObjectSensitiveSelector) SelectContextStatic(cs CSCallSite, _ *ir.Method) Context {
	return cs.Context()
}

func (s ObjectSensitiveSelector) SelectContextInstance(cs CSCallSite, recvObj Obj, _ *ir.Method) Context {
	return cs.Context().(callStringContext).extend(recvObj, s.K)
}

// TypeSensitiveSelector is like ObjectSensitiveSelector but abstracts the
// receiver object down to its declared type, trading some precision for
// a smaller context space.
type TypeSensitiveSelector struct{ K int }

func (s TypeSensitiveSelector) EmptyContext() Context { return emptyContext }

func (s TypeSensitiveSelector) SelectHeapContext(m CSMethod, _ *ir.New) Context {
	return m.Context()
}

func (s TypeSensitiveSelector) SelectContextStatic(cs CSCallSite, _ *ir.Method) Context {
	return cs.Context()
}

func (s TypeSensitiveSelector) SelectContextInstance(cs CSCallSite, recvObj Obj, _ *ir.Method) Context {
	return cs.Context().(callStringContext).extend(recvObj.Type(), s.K)
}
