package export_test

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/komonad/taie-pointer/export"
	"github.com/komonad/taie-pointer/fixtures"
	"github.com/komonad/taie-pointer/pta/cs"
)

// TestCallGraphDOTGolden snapshots the DOT rendering of S2's single
// virtual-dispatch edge (spec.md §8 scenario S2), grounded on
// other_examples/cs-au-dk-goat's goldie.New(t).Assert(t, t.Name(), ...)
// usage for pinning deterministic analysis-result text.
func TestCallGraphDOTGolden(t *testing.T) {
	h, main := fixtures.S2()
	solver := cs.NewSolver(h, main, cs.InsensitiveSelector{}, cs.DefaultHeapModel{})
	solver.Analyze()
	result := cs.NewResult(solver)

	goldie.New(t).Assert(t, t.Name(), export.CallGraphDOT(result))
}
