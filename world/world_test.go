package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/komonad/taie-pointer/classes"
	"github.com/komonad/taie-pointer/ir"
	"github.com/komonad/taie-pointer/world"
)

func TestTypeByNameIndexesDeclaredTypes(t *testing.T) {
	typeA := &ir.Type{Name: "A", Kind: ir.KindClass}
	typeTainted := &ir.Type{Name: "tainted", Kind: ir.KindClass}
	h := classes.NewHierarchy(nil)
	main := &ir.Method{Ref: &ir.MethodRef{Name: "main"}, Static: true}

	w := world.New(h, main, []*ir.Type{typeA, typeTainted}, nil)

	assert.Same(t, typeA, w.TypeByName("A"))
	assert.Same(t, typeTainted, w.TypeByName("tainted"))
	assert.Nil(t, w.TypeByName("Unknown"))
}

func TestMethodByRefIndexesByFullyQualifiedSignature(t *testing.T) {
	sourceType := &ir.Type{Name: "Source", Kind: ir.KindClass}
	getMethod := &ir.Method{Ref: &ir.MethodRef{Name: "get", DeclaringClass: sourceType}, Static: true}
	h := classes.NewHierarchy(nil)
	main := &ir.Method{Ref: &ir.MethodRef{Name: "main"}, Static: true}

	w := world.New(h, main, nil, []*ir.Method{getMethod})

	assert.Same(t, getMethod, w.MethodByRef("Source.get"))
	assert.Nil(t, w.MethodByRef("Source.missing"))
}

func TestNewExposesHierarchyAndMain(t *testing.T) {
	h := classes.NewHierarchy(nil)
	main := &ir.Method{Ref: &ir.MethodRef{Name: "main"}, Static: true}

	w := world.New(h, main, nil, nil)
	assert.Same(t, h, w.Hierarchy)
	assert.Same(t, main, w.Main)
}
