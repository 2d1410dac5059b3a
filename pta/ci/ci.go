// Package ci implements the context-insensitive whole-program pointer
// analysis SPEC_FULL.md names as its own module. It is a thin facade
// over pta/cs: the context-insensitive analysis is exactly the
// context-sensitive engine run with [cs.InsensitiveSelector], which
// collapses every context to the single empty context (spec.md §4.4).
package ci

import (
	"github.com/komonad/taie-pointer/classes"
	"github.com/komonad/taie-pointer/ir"
	"github.com/komonad/taie-pointer/pta/cs"
)

// Analyze runs the context-insensitive pointer analysis to completion
// and returns its queryable result. cmd/taie's interprop run uses it to
// build the context-free points-to oracle that interprop.Solve consumes
// (interprop itself takes a *cs.Result and imports pta/cs directly).
func Analyze(h *classes.Hierarchy, entry *ir.Method) *cs.Result {
	solver := cs.NewSolver(h, entry, cs.InsensitiveSelector{}, cs.DefaultHeapModel{})
	solver.Analyze()
	return cs.NewResult(solver)
}
