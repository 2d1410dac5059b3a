// Package fixtures builds the schematic example programs spec.md §8
// names (S1-S6) as real *ir.Method/*classes.Hierarchy values, shared
// between the taie CLI's -demo flag and the pta/cs and taint package
// tests that exercise those exact scenarios. ir.go's own doc comment
// says IR is meant to be "constructed directly as *Method values"; this
// package is the single place that does that construction so the CLI
// and the tests describe the same six programs once.
package fixtures

import (
	"github.com/komonad/taie-pointer/classes"
	"github.com/komonad/taie-pointer/ir"
)

var (
	TypeA = &ir.Type{Name: "A", Kind: ir.KindClass}
	TypeB = &ir.Type{Name: "B", Kind: ir.KindClass}
	TypeInt = &ir.Type{Name: "int", Kind: ir.KindPrimitive}
)

// newVar allocates a local of m with the given name/type and registers it
// as a parameter if isParam.
func newVar(m *ir.Method, name string, t *ir.Type, isParam bool) *ir.Var {
	v := &ir.Var{Name: name, Type: t, Method: m, IsParam: isParam}
	if isParam {
		m.Params = append(m.Params, v)
	}
	return v
}

func block(stmts ...ir.Stmt) *ir.Block { return &ir.Block{Stmts: stmts} }

func build(m *ir.Method, blocks ...*ir.Block) *ir.Method {
	m.Blocks = blocks
	m.Index()
	return m
}

func ref(name string, decl *ir.Type, params ...*ir.Type) *ir.MethodRef {
	return &ir.MethodRef{Name: name, DeclaringClass: decl, Params: params}
}

func hierarchy(classList ...*classes.Class) *classes.Hierarchy {
	return classes.NewHierarchy(classList)
}

// S1 builds spec.md §8 scenario S1 ("Basic allocation & copy"):
//
//	main() { A x = new A(); A y = x; }
//
// and returns the hierarchy plus the entry method, so pts(main:x) ==
// pts(main:y) == {A@line1} is checkable directly off the solver result.
func S1() (*classes.Hierarchy, *ir.Method) {
	main := &ir.Method{Ref: ref("main", nil), Static: true}
	x := newVar(main, "x", TypeA, false)
	y := newVar(main, "y", TypeA, false)

	alloc := &ir.New{LValue: x, Type: TypeA}
	cp := &ir.Copy{LValue: y, RValue: x}
	ret := &ir.Return{}

	build(main, block(alloc, cp, ret))

	classA := &classes.Class{Type: TypeA, Methods: map[string]*ir.Method{}, Fields: map[string]*ir.Field{}}
	return hierarchy(classA), main
}

// S2 builds spec.md §8 scenario S2 ("Virtual dispatch discovers a
// callee"): class B extends A, both override m(); main() { A a = new
// B(); a.m(); } — the call graph must contain only a.m() -> B.m.
func S2() (*classes.Hierarchy, *ir.Method) {
	main := &ir.Method{Ref: ref("main", nil), Static: true}
	a := newVar(main, "a", TypeA, false)

	methodRef := ref("m", TypeA)
	methodA := &ir.Method{Ref: ref("m", TypeA), Class: TypeA}
	methodA.This = newVar(methodA, "this", TypeA, true)
	build(methodA, block(&ir.Return{}))

	methodB := &ir.Method{Ref: ref("m", TypeB), Class: TypeB}
	methodB.This = newVar(methodB, "this", TypeB, true)
	build(methodB, block(&ir.Return{}))

	alloc := &ir.New{LValue: a, Type: TypeB}
	call := &ir.Invoke{Exp: &ir.InvokeExp{Kind: ir.CallVirtual, Ref: methodRef, Base: a}}
	build(main, block(alloc, call, &ir.Return{}))

	classA := &classes.Class{
		Type:    TypeA,
		Methods: map[string]*ir.Method{methodA.Ref.Signature(): methodA},
		Fields:  map[string]*ir.Field{},
	}
	classB := &classes.Class{
		Type:    TypeB,
		Super:   classA,
		Methods: map[string]*ir.Method{methodB.Ref.Signature(): methodB},
		Fields:  map[string]*ir.Field{},
	}
	return hierarchy(classA, classB), main
}

// S4 builds spec.md §8 scenario S4 ("Instance field flow"):
//
//	x.f = a; y = x.f;
//
// with pts(x) including an allocated A, so pts(y) ends up a superset of
// pts(a) at fixpoint.
func S4() (*classes.Hierarchy, *ir.Method) {
	main := &ir.Method{Ref: ref("main", nil), Static: true}
	x := newVar(main, "x", TypeA, false)
	aVar := newVar(main, "a", TypeA, false)
	y := newVar(main, "y", TypeA, false)

	fieldF := &ir.Field{Name: "f", Type: TypeA, Owner: TypeA}

	allocX := &ir.New{LValue: x, Type: TypeA}
	allocA := &ir.New{LValue: aVar, Type: TypeA}
	store := &ir.StoreField{Base: x, Field: fieldF, RValue: aVar}
	load := &ir.LoadField{LValue: y, Base: x, Field: fieldF}

	build(main, block(allocX, allocA, store, load, &ir.Return{}))

	classA := &classes.Class{
		Type:    TypeA,
		Methods: map[string]*ir.Method{},
		Fields:  map[string]*ir.Field{fieldF.Name: fieldF},
	}
	return hierarchy(classA), main
}

// S3 builds spec.md §8 scenario S3 ("Context distinguishes call sites,
// 2-call-site selector"):
//
//	id(p) { return p; }
//	main() { a = new A(); b = new A(); x = id(a); y = id(b); }
//
// Under InsensitiveSelector, id has a single CSMethod whose parameter
// merges both allocations, so pts(main:x) == pts(main:y) == {a-site,
// b-site}. Under CallSiteSensitiveSelector{K:1} the two calls resolve id
// under distinct call-string contexts, so each copy of id's parameter
// keeps only the object its own call site passed in, and pts(main:x) ==
// {a-site} while pts(main:y) == {b-site} stay disjoint.
func S3() (*classes.Hierarchy, *ir.Method) {
	idMethod := &ir.Method{Ref: ref("id", TypeA, TypeA), Class: TypeA, Static: true}
	p := &ir.Var{Name: "p", Type: TypeA, Method: idMethod, IsParam: true}
	idMethod.Params = []*ir.Var{p}
	build(idMethod, block(&ir.Return{Result: p}))

	main := &ir.Method{Ref: ref("main", nil), Static: true}
	a := newVar(main, "a", TypeA, false)
	b := newVar(main, "b", TypeA, false)
	x := newVar(main, "x", TypeA, false)
	y := newVar(main, "y", TypeA, false)

	allocA := &ir.New{LValue: a, Type: TypeA}
	allocB := &ir.New{LValue: b, Type: TypeA}
	call1 := &ir.Invoke{LValue: x, Exp: &ir.InvokeExp{Kind: ir.CallStatic, Ref: idMethod.Ref, Args: []*ir.Var{a}}}
	call2 := &ir.Invoke{LValue: y, Exp: &ir.InvokeExp{Kind: ir.CallStatic, Ref: idMethod.Ref, Args: []*ir.Var{b}}}
	build(main, block(allocA, allocB, call1, call2, &ir.Return{}))

	classA := &classes.Class{
		Type:    TypeA,
		Methods: map[string]*ir.Method{idMethod.Ref.Signature(): idMethod},
		Fields:  map[string]*ir.Field{},
	}
	return hierarchy(classA), main
}

// TaintConfigYAML is the taint configuration document spec.md §8's S5/S6
// scenarios assume: a source Source.get(): tainted, a sink
// Sink.leak(arg 0), and (for S6 only) a String.concat transfer from arg 0
// to result.
const TaintConfigYAML = `
sources:
  - method: Source.get
    type: tainted
sinks:
  - method: Sink.leak
    index: 0
transfers:
  - method: String.concat
    from: 0
    to: result
    type: tainted
`

// S5 builds spec.md §8 scenario S5 ("Taint end-to-end"):
//
//	t = Source.get(); Sink.leak(t);
//
// Combined with [TaintConfigYAML], this must produce exactly one
// TaintFlow{source=get-call, sink=leak-call, index=0}.
func S5() (*classes.Hierarchy, *ir.Method) {
	sourceType := &ir.Type{Name: "Source", Kind: ir.KindClass}
	sinkType := &ir.Type{Name: "Sink", Kind: ir.KindClass}
	taintedType := &ir.Type{Name: "tainted", Kind: ir.KindClass}

	getMethod := &ir.Method{Ref: ref("get", sourceType), Static: true}
	build(getMethod, block(&ir.Return{}))

	leakMethod := &ir.Method{Ref: ref("leak", sinkType, taintedType), Static: true}
	leakMethod.Params = []*ir.Var{{Name: "arg0", Type: taintedType, Method: leakMethod, IsParam: true}}
	build(leakMethod, block(&ir.Return{}))

	main := &ir.Method{Ref: ref("main", nil), Static: true}
	t := newVar(main, "t", taintedType, false)

	getCall := &ir.Invoke{LValue: t, Exp: &ir.InvokeExp{Kind: ir.CallStatic, Ref: getMethod.Ref}}
	leakCall := &ir.Invoke{Exp: &ir.InvokeExp{Kind: ir.CallStatic, Ref: leakMethod.Ref, Args: []*ir.Var{t}}}
	build(main, block(getCall, leakCall, &ir.Return{}))

	classSource := &classes.Class{Type: sourceType, Methods: map[string]*ir.Method{getMethod.Ref.Signature(): getMethod}, Fields: map[string]*ir.Field{}}
	classSink := &classes.Class{Type: sinkType, Methods: map[string]*ir.Method{leakMethod.Ref.Signature(): leakMethod}, Fields: map[string]*ir.Field{}}
	return hierarchy(classSource, classSink), main
}

// S6 builds spec.md §8 scenario S6 ("Taint transfer through
// arg-to-result"):
//
//	t = Source.get(); u = s.concat(t); Sink.leak(u);
//
// Combined with [TaintConfigYAML]'s String.concat transfer, this must
// produce one flow whose source is the Source.get() call and sink is the
// Sink.leak() call.
func S6() (*classes.Hierarchy, *ir.Method) {
	sourceType := &ir.Type{Name: "Source", Kind: ir.KindClass}
	sinkType := &ir.Type{Name: "Sink", Kind: ir.KindClass}
	stringType := &ir.Type{Name: "String", Kind: ir.KindClass}
	taintedType := &ir.Type{Name: "tainted", Kind: ir.KindClass}

	getMethod := &ir.Method{Ref: ref("get", sourceType), Static: true}
	build(getMethod, block(&ir.Return{}))

	concatMethod := &ir.Method{Ref: ref("concat", stringType, taintedType), Class: stringType}
	concatMethod.This = &ir.Var{Name: "this", Type: stringType, Method: concatMethod, IsParam: true}
	concatMethod.Params = []*ir.Var{{Name: "arg0", Type: taintedType, Method: concatMethod, IsParam: true}}
	concatResult := &ir.Var{Name: "ret", Type: taintedType, Method: concatMethod}
	build(concatMethod, block(&ir.Return{Result: concatResult}))

	leakMethod := &ir.Method{Ref: ref("leak", sinkType, taintedType), Static: true}
	leakMethod.Params = []*ir.Var{{Name: "arg0", Type: taintedType, Method: leakMethod, IsParam: true}}
	build(leakMethod, block(&ir.Return{}))

	main := &ir.Method{Ref: ref("main", nil), Static: true}
	t := newVar(main, "t", taintedType, false)
	s := newVar(main, "s", stringType, false)
	u := newVar(main, "u", taintedType, false)

	getCall := &ir.Invoke{LValue: t, Exp: &ir.InvokeExp{Kind: ir.CallStatic, Ref: getMethod.Ref}}
	allocS := &ir.New{LValue: s, Type: stringType}
	concatCall := &ir.Invoke{LValue: u, Exp: &ir.InvokeExp{Kind: ir.CallVirtual, Ref: concatMethod.Ref, Base: s, Args: []*ir.Var{t}}}
	leakCall := &ir.Invoke{Exp: &ir.InvokeExp{Kind: ir.CallStatic, Ref: leakMethod.Ref, Args: []*ir.Var{u}}}
	build(main, block(getCall, allocS, concatCall, leakCall, &ir.Return{}))

	classSource := &classes.Class{Type: sourceType, Methods: map[string]*ir.Method{getMethod.Ref.Signature(): getMethod}, Fields: map[string]*ir.Field{}}
	classSink := &classes.Class{Type: sinkType, Methods: map[string]*ir.Method{leakMethod.Ref.Signature(): leakMethod}, Fields: map[string]*ir.Field{}}
	classString := &classes.Class{Type: stringType, Methods: map[string]*ir.Method{concatMethod.Ref.Signature(): concatMethod}, Fields: map[string]*ir.Field{}}
	return hierarchy(classSource, classSink, classString), main
}

// BaseTransferThroughGrowingReceiver is a regression fixture for a
// plugin re-fire bug, not one of spec.md §8's S1-S6: box.tag()'s call
// edge is resolved once while box only holds a plain allocation, and
// only afterwards does box also come to point at a Box-typed taint
// object (via a later copy from t). A BASE -> RESULT transfer on
// Box.tag must still retag that taint into y even though the object
// carrying it reached box strictly after the call edge already existed:
//
//	box = new Box();
//	y = box.tag();
//	t = Source.getBox();
//	box = t;
func BaseTransferThroughGrowingReceiver() (*classes.Hierarchy, *ir.Method, *ir.Var) {
	boxType := &ir.Type{Name: "Box", Kind: ir.KindClass}
	taggedType := &ir.Type{Name: "tagged", Kind: ir.KindClass}

	tagMethod := &ir.Method{Ref: ref("tag", boxType), Class: boxType}
	tagMethod.This = &ir.Var{Name: "this", Type: boxType, Method: tagMethod, IsParam: true}
	tagResult := &ir.Var{Name: "ret", Type: taggedType, Method: tagMethod}
	build(tagMethod, block(&ir.Return{Result: tagResult}))

	getBoxMethod := &ir.Method{Ref: ref("getBox", boxType), Static: true}
	build(getBoxMethod, block(&ir.Return{}))

	main := &ir.Method{Ref: ref("main", nil), Static: true}
	box := newVar(main, "box", boxType, false)
	y := newVar(main, "y", taggedType, false)
	t := newVar(main, "t", boxType, false)

	allocBox := &ir.New{LValue: box, Type: boxType}
	tagCall := &ir.Invoke{LValue: y, Exp: &ir.InvokeExp{Kind: ir.CallVirtual, Ref: tagMethod.Ref, Base: box}}
	getBoxCall := &ir.Invoke{LValue: t, Exp: &ir.InvokeExp{Kind: ir.CallStatic, Ref: getBoxMethod.Ref}}
	copyBox := &ir.Copy{LValue: box, RValue: t}
	build(main, block(allocBox, tagCall, getBoxCall, copyBox, &ir.Return{}))

	classBox := &classes.Class{
		Type: boxType,
		Methods: map[string]*ir.Method{
			tagMethod.Ref.Signature():    tagMethod,
			getBoxMethod.Ref.Signature(): getBoxMethod,
		},
		Fields: map[string]*ir.Field{},
	}
	return hierarchy(classBox), main, y
}
