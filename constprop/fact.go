package constprop

import "github.com/komonad/taie-pointer/ir"

// Fact is the per-program-point lattice element of spec.md's constant
// propagation: a map from (integer-valued) variables to [Value]. Absent
// keys are implicitly Undef, matching Tai-e's CPFact.get() default.
type Fact struct {
	values map[*ir.Var]Value
}

func NewFact() *Fact { return &Fact{values: make(map[*ir.Var]Value)} }

func (f *Fact) Get(v *ir.Var) Value {
	if val, ok := f.values[v]; ok {
		return val
	}
	return Undef()
}

func (f *Fact) Update(v *ir.Var, val Value) { f.values[v] = val }

func (f *Fact) CopyFrom(other *Fact) {
	for k := range f.values {
		delete(f.values, k)
	}
	for k, v := range other.values {
		f.values[k] = v
	}
}

func (f *Fact) Equal(other *Fact) bool {
	if len(f.values) != len(other.values) {
		return false
	}
	for k, v := range f.values {
		ov, ok := other.values[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

func (f *Fact) Keys() []*ir.Var {
	out := make([]*ir.Var, 0, len(f.values))
	for k := range f.values {
		out = append(out, k)
	}
	return out
}
