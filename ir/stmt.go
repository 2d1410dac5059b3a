package ir

// Stmt is any of the three-address statement shapes this IR exposes:
// new/copy/load-field/store-field/load-array/store-array/invoke/if/goto/
// return, plus assign-const and binop for constant propagation (there is
// no switch statement). Visitor dispatch mirrors the teacher's own
// switch-on-concrete-type style in analyze.go, rather than an interface
// method per variant — that matches how spec.md §9 "Statement dispatch"
// describes the effect table as "a visitor over a sum type" implemented by
// the solver, not by the statement.
type Stmt interface {
	stmt()
}

type base struct{}

func (base) stmt() {}

// Base is an exported alias of base, letting other packages (e.g.
// dataflow's synthetic entry/exit nodes) embed it to satisfy Stmt.
type Base = base

// New is "x = new T()".
type New struct {
	base
	LValue *Var
	Type   *Type
}

// Copy is "x = y".
type Copy struct {
	base
	LValue *Var
	RValue *Var
}

// LoadField is "y = x.f" (instance) or "y = T.f" (static, Base == nil).
type LoadField struct {
	base
	LValue *Var
	Base   *Var // nil for a static load
	Field  *Field
}

func (s *LoadField) IsStatic() bool { return s.Base == nil }

// StoreField is "x.f = y" (instance) or "T.f = y" (static, Base == nil).
type StoreField struct {
	base
	Base   *Var // nil for a static store
	Field  *Field
	RValue *Var
}

func (s *StoreField) IsStatic() bool { return s.Base == nil }

// LoadArray is "y = x[*]". Array indexing is field-insensitive in the
// index dimension (spec.md §4.6): there is no Index operand to track.
type LoadArray struct {
	base
	LValue *Var
	Base   *Var
}

// StoreArray is "x[*] = y".
type StoreArray struct {
	base
	Base   *Var
	RValue *Var
}

// CallKind distinguishes how a call's callee is determined, mirroring
// spec.md §4.6 "Dispatch" and the Tai-e CallKind enum it is grounded on.
type CallKind int

const (
	CallStatic CallKind = iota
	CallSpecial
	CallVirtual
	CallInterface
)

// InvokeExp is the call expression of an [Invoke] statement.
type InvokeExp struct {
	Kind Kind
	Ref  *MethodRef
	// Base is the receiver variable. nil for CallStatic.
	Base *Var
	Args []*Var
}

type Kind = CallKind

// Invoke is a call statement; LValue is nil when the call's result (if
// any) is discarded.
type Invoke struct {
	base
	LValue *Var
	Exp    *InvokeExp
}

func (i *Invoke) IsStatic() bool    { return i.Exp.Kind == CallStatic }
func (i *Invoke) IsInstance() bool  { return i.Exp.Kind != CallStatic }
func (i *Invoke) Receiver() *Var    { return i.Exp.Base }
func (i *Invoke) Args() []*Var      { return i.Exp.Args }
func (i *Invoke) MethodRef() *MethodRef { return i.Exp.Ref }

// If is a conditional branch; constprop consumes Cond's lattice value to
// decide reachability of the two successor blocks (dead code detection,
// SPEC_FULL "Intraprocedural constant propagation").
type If struct {
	base
	Cond        *Var
	Then, Else *Block
}

// Goto is an unconditional jump.
type Goto struct {
	base
	Target *Block
}

// Return exits the method, optionally producing a value.
type Return struct {
	base
	Result *Var // nil for a void return
}

// AssignConst models a literal/constant assignment "x = <const>", the
// entry point of the constant-propagation lattice (not pointer-like, so
// the pointer analyses' statement dispatch (spec.md §4.6) ignores it —
// spec.md's "other statements" bucket).
type AssignConst struct {
	base
	LValue *Var
	Value  int64
}

// BinOp is a binary arithmetic/comparison statement, consumed only by
// constant propagation.
type BinOp struct {
	base
	LValue      *Var
	Op          string
	X, Y        *Var
}
