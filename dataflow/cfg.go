// Package dataflow implements the generic iterative dataflow framework
// SPEC_FULL.md's "Generic iterative dataflow framework" module names:
// a node-and-edge control-flow graph over [ir.Stmt], an [Analysis]
// capability describing a lattice and its transfer function, and two
// interchangeable fixpoint solvers (iterative and worklist), grounded on
// original_source/A1/.../IterativeSolver.java and
// original_source/A3/.../WorkListSolver.java.
package dataflow

import "github.com/komonad/taie-pointer/ir"

// entryNode/exitNode are the synthetic boundary nodes every [CFG] gets,
// matching Tai-e's CFG.getEntry()/getExit() pseudo-statements.
type entryNode struct{ ir.Base }
type exitNode struct{ ir.Base }

// CFG is the statement-level control-flow graph of a single method.
// Nodes are individual [ir.Stmt] values (not whole [ir.Block]s) plus the
// two synthetic Entry/Exit nodes, matching the granularity
// ConstantPropagation/DeadCodeDetection are written against in
// original_source/A2-A3.
type CFG struct {
	Method *ir.Method
	Entry  ir.Stmt
	Exit   ir.Stmt

	nodes []ir.Stmt
	succ  map[ir.Stmt][]ir.Stmt
	pred  map[ir.Stmt][]ir.Stmt
}

// Build constructs the per-statement CFG of m: within a block, each
// statement falls through to the next; a block's last statement links
// to its If/Goto targets, or (for a Return, or an ordinary fallthrough
// block with no successor block) to the next block / synthetic Exit.
func Build(m *ir.Method) *CFG {
	g := &CFG{
		Method: m,
		Entry:  entryNode{},
		Exit:   exitNode{},
		succ:   make(map[ir.Stmt][]ir.Stmt),
		pred:   make(map[ir.Stmt][]ir.Stmt),
	}

	blockFirst := make(map[*ir.Block]ir.Stmt, len(m.Blocks))
	for _, b := range m.Blocks {
		if len(b.Stmts) > 0 {
			blockFirst[b] = b.Stmts[0]
		}
	}

	link := func(from, to ir.Stmt) {
		g.succ[from] = append(g.succ[from], to)
		g.pred[to] = append(g.pred[to], from)
	}

	if len(m.Blocks) == 0 || len(m.Blocks[0].Stmts) == 0 {
		link(g.Entry, g.Exit)
		return g
	}
	link(g.Entry, m.Blocks[0].Stmts[0])

	for bi, b := range m.Blocks {
		for i, st := range b.Stmts {
			g.nodes = append(g.nodes, st)
			switch term := st.(type) {
			case *ir.If:
				if first, ok := blockFirst[term.Then]; ok {
					link(st, first)
				}
				if first, ok := blockFirst[term.Else]; ok {
					link(st, first)
				}
			case *ir.Goto:
				if first, ok := blockFirst[term.Target]; ok {
					link(st, first)
				}
			case *ir.Return:
				link(st, g.Exit)
			default:
				if i+1 < len(b.Stmts) {
					link(st, b.Stmts[i+1])
				} else if bi+1 < len(m.Blocks) {
					if first, ok := blockFirst[m.Blocks[bi+1]]; ok {
						link(st, first)
					} else {
						link(st, g.Exit)
					}
				} else {
					link(st, g.Exit)
				}
			}
		}
	}
	return g
}

// Nodes returns every real (non-synthetic) statement, in block order.
func (g *CFG) Nodes() []ir.Stmt { return g.nodes }

func (g *CFG) SuccsOf(n ir.Stmt) []ir.Stmt { return g.succ[n] }
func (g *CFG) PredsOf(n ir.Stmt) []ir.Stmt { return g.pred[n] }
