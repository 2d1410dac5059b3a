package cs

import "golang.org/x/tools/container/intsets"

// objTable hands out small dense ids for [Obj] values in creation order —
// the same scheme other_examples/yangshenyi-PA4Go__pfg.go uses for its
// "nodeid" abstraction — so that [PointsToSet] can be backed by
// golang.org/x/tools/container/intsets.Sparse (an insertion-checked,
// deterministically-ordered sparse int set) instead of a map[Obj]struct{}.
// Ids are assigned strictly in the order objects are first interned by
// any set, so ascending id order is that global first-interning order,
// not the order objects were added to one particular set.
type objTable struct {
	ids  map[objKey]int
	objs []Obj
}

func newObjTable() *objTable {
	return &objTable{ids: make(map[objKey]int)}
}

func (t *objTable) intern(o Obj) int {
	if id, ok := t.ids[o.key]; ok {
		return id
	}
	id := len(t.objs)
	t.ids[o.key] = id
	t.objs = append(t.objs, o)
	return id
}

func (t *objTable) at(id int) Obj { return t.objs[id] }

// PointsToSet is the set of abstract objects of spec.md §4.1:
// Add/Contains/Iterate/AddAll/IsEmpty, with deterministic iteration in
// ascending-id (first-interned) order rather than this set's own
// insertion order.
type PointsToSet struct {
	table *objTable
	ints  intsets.Sparse
}

func newPointsToSet(table *objTable) *PointsToSet {
	return &PointsToSet{table: table}
}

// Add inserts o, returning true iff it was not already present.
func (s *PointsToSet) Add(o Obj) bool {
	return s.ints.Insert(s.table.intern(o))
}

func (s *PointsToSet) Contains(o Obj) bool {
	return s.ints.Has(s.table.intern(o))
}

func (s *PointsToSet) IsEmpty() bool { return s.ints.IsEmpty() }

func (s *PointsToSet) Len() int { return s.ints.Len() }

// Iterate calls f once per object, in deterministic (creation) order.
func (s *PointsToSet) Iterate(f func(Obj)) {
	var it intsets.Sparse
	it.Copy(&s.ints)
	for i := it.Min(); it.Len() > 0; {
		f(s.table.at(i))
		it.Remove(i)
		if it.IsEmpty() {
			break
		}
		i = it.Min()
	}
}

// Objects materializes the set as a slice, in deterministic order.
func (s *PointsToSet) Objects() []Obj {
	out := make([]Obj, 0, s.Len())
	s.Iterate(func(o Obj) { out = append(out, o) })
	return out
}

// AddAll adds every object of other into s, returning true iff s grew.
func (s *PointsToSet) AddAll(other *PointsToSet) bool {
	return s.ints.UnionWith(&other.ints)
}

// Diff returns a fresh set containing exactly the objects of other that s
// does not already contain (the "true delta" of spec.md §4.6 analyze()).
func (s *PointsToSet) Diff(other *PointsToSet) *PointsToSet {
	d := newPointsToSet(s.table)
	d.ints.Copy(&other.ints)
	d.ints.DifferenceWith(&s.ints)
	return d
}

// singleton builds a fresh one-element delta set, as used throughout
// §4.6 ("push ({CSVar(ctx,x)}, {CSObj(...)})").
func (t *objTable) singleton(o Obj) *PointsToSet {
	s := newPointsToSet(t)
	s.Add(o)
	return s
}
