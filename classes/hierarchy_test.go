package classes_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komonad/taie-pointer/classes"
	"github.com/komonad/taie-pointer/ir"
)

func method(name string, decl *ir.Type, abstract bool) *ir.Method {
	return &ir.Method{Ref: &ir.MethodRef{Name: name, DeclaringClass: decl}, Class: decl, Abstract: abstract}
}

func TestResolveWalksUpToInheritedMethod(t *testing.T) {
	typeA := &ir.Type{Name: "A", Kind: ir.KindClass}
	typeB := &ir.Type{Name: "B", Kind: ir.KindClass}

	mA := method("m", typeA, false)
	classA := &classes.Class{Type: typeA, Methods: map[string]*ir.Method{"m/0": mA}}
	classB := &classes.Class{Type: typeB, Super: classA, Methods: map[string]*ir.Method{}}

	h := classes.NewHierarchy([]*classes.Class{classA, classB})

	ref := &ir.MethodRef{Name: "m", DeclaringClass: typeA}
	got := h.Resolve(typeB, ref)
	require.NotNil(t, got)
	assert.Same(t, mA, got)
}

func TestResolvePrefersOverrideOverInherited(t *testing.T) {
	typeA := &ir.Type{Name: "A", Kind: ir.KindClass}
	typeB := &ir.Type{Name: "B", Kind: ir.KindClass}

	mA := method("m", typeA, false)
	mB := method("m", typeB, false)
	classA := &classes.Class{Type: typeA, Methods: map[string]*ir.Method{"m/0": mA}}
	classB := &classes.Class{Type: typeB, Super: classA, Methods: map[string]*ir.Method{"m/0": mB}}

	h := classes.NewHierarchy([]*classes.Class{classA, classB})

	ref := &ir.MethodRef{Name: "m", DeclaringClass: typeA}
	assert.Same(t, mB, h.Resolve(typeB, ref))
	assert.Same(t, mA, h.Resolve(typeA, ref))
}

func TestResolveReturnsNilForUnknownMethod(t *testing.T) {
	typeA := &ir.Type{Name: "A", Kind: ir.KindClass}
	classA := &classes.Class{Type: typeA, Methods: map[string]*ir.Method{}}
	h := classes.NewHierarchy([]*classes.Class{classA})

	ref := &ir.MethodRef{Name: "missing", DeclaringClass: typeA}
	assert.Nil(t, h.Resolve(typeA, ref))
}

func TestResolveCachesAcrossRepeatedLookups(t *testing.T) {
	typeA := &ir.Type{Name: "A", Kind: ir.KindClass}
	mA := method("m", typeA, false)
	classA := &classes.Class{Type: typeA, Methods: map[string]*ir.Method{"m/0": mA}}
	h := classes.NewHierarchy([]*classes.Class{classA})

	ref := &ir.MethodRef{Name: "m", DeclaringClass: typeA}
	first := h.Resolve(typeA, ref)
	second := h.Resolve(typeA, ref)
	assert.Same(t, first, second)
}

func TestSubclassesIncludesSelfAndDescendants(t *testing.T) {
	typeA := &ir.Type{Name: "A", Kind: ir.KindClass}
	typeB := &ir.Type{Name: "B", Kind: ir.KindClass}
	typeC := &ir.Type{Name: "C", Kind: ir.KindClass}

	classA := &classes.Class{Type: typeA, Methods: map[string]*ir.Method{}}
	classB := &classes.Class{Type: typeB, Super: classA, Methods: map[string]*ir.Method{}}
	classC := &classes.Class{Type: typeC, Super: classB, Methods: map[string]*ir.Method{}}

	h := classes.NewHierarchy([]*classes.Class{classA, classB, classC})

	subs := h.Subclasses(typeA)
	var names []string
	for _, c := range subs {
		names = append(names, c.Type.Name)
	}
	assert.ElementsMatch(t, []string{"A", "B", "C"}, names)
}

func TestImplementorsWalksSuperInterfaces(t *testing.T) {
	iBase := &ir.Type{Name: "IBase", Kind: ir.KindInterface}
	iSub := &ir.Type{Name: "ISub", Kind: ir.KindInterface}
	typeC := &ir.Type{Name: "C", Kind: ir.KindClass}

	classIBase := &classes.Class{Type: iBase, IsInterface: true, Methods: map[string]*ir.Method{}}
	classISub := &classes.Class{Type: iSub, IsInterface: true, Interfaces: []*classes.Class{classIBase}, Methods: map[string]*ir.Method{}}
	classC := &classes.Class{Type: typeC, Interfaces: []*classes.Class{classISub}, Methods: map[string]*ir.Method{}}

	h := classes.NewHierarchy([]*classes.Class{classIBase, classISub, classC})

	assert.ElementsMatch(t, []*classes.Class{classC}, h.Implementors(iBase))
	assert.ElementsMatch(t, []*classes.Class{classC}, h.Implementors(iSub))
}
