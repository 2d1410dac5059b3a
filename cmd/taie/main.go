// Command taie drives the analyses in this repository over the six
// schematic fixtures.* programs, matching spec.md §8's scenario table:
// S1 (allocation+copy), S2 (virtual dispatch), S3 (context distinguishes
// call sites), S4 (instance field flow), S5/S6 (taint end-to-end and
// taint transfer). There is no source-level
// frontend — ir.go's own doc comment says the IR is meant to be
// "constructed directly as *Method values" — so -demo selects one of
// the fixtures programs instead of a file path.
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/komonad/taie-pointer/classes"
	"github.com/komonad/taie-pointer/constprop"
	"github.com/komonad/taie-pointer/export"
	"github.com/komonad/taie-pointer/fixtures"
	"github.com/komonad/taie-pointer/icfg"
	"github.com/komonad/taie-pointer/interprop"
	"github.com/komonad/taie-pointer/ir"
	"github.com/komonad/taie-pointer/pta/ci"
	"github.com/komonad/taie-pointer/pta/cs"
	"github.com/komonad/taie-pointer/pta/plugin/taint"
	"github.com/komonad/taie-pointer/world"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05"})

	app := cli.NewApp()
	app.Name = "taie"
	app.Usage = "class hierarchy, constant propagation, and Andersen-style pointer/taint analysis over a schematic IR"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "analysis", Value: "cs", Usage: "cha, constprop, interprop, ci, or cs"},
		cli.StringFlag{Name: "demo", Value: "s1", Usage: "s1, s2, s3, s4, s5, or s6"},
		cli.StringFlag{Name: "pta", Value: "insensitive", Usage: "context selector for -analysis=cs: insensitive, callsite, object, or type"},
		cli.IntFlag{Name: "k", Value: 1, Usage: "context depth for callsite/object/type selectors"},
		cli.StringFlag{Name: "heap", Value: "alloc-site", Usage: "heap model for -analysis=cs: alloc-site or type"},
		cli.StringFlag{Name: "taint-config", Usage: "path to a taint rule document; demos s5/s6 fall back to their built-in rules when unset"},
		cli.StringFlag{Name: "dot", Usage: "if set, render the call graph to this PNG path (cs/ci only)"},
		cli.BoolFlag{Name: "dump-points-to", Usage: "print the points-to table for every local of the demo's reachable methods"},
		cli.BoolFlag{Name: "verbose"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	if c.Bool("verbose") {
		log.SetLevel(log.DebugLevel)
	}

	h, main, err := loadDemo(c.String("demo"))
	if err != nil {
		return err
	}
	log.WithField("demo", c.String("demo")).Info("loaded demo program")

	switch c.String("analysis") {
	case "cha":
		return runCHA(h, main)
	case "constprop":
		return runConstprop(main)
	case "interprop":
		return runInterprop(h, main)
	case "ci":
		return runCI(c, h, main)
	case "cs":
		return runCS(c, h, main)
	default:
		return fmt.Errorf("taie: unknown -analysis %q", c.String("analysis"))
	}
}

// loadDemo maps a -demo name to the fixtures.* constructor it names,
// per spec.md §8's scenario table.
func loadDemo(name string) (*classes.Hierarchy, *ir.Method, error) {
	switch name {
	case "s1":
		h, m := fixtures.S1()
		return h, m, nil
	case "s2":
		h, m := fixtures.S2()
		return h, m, nil
	case "s3":
		h, m := fixtures.S3()
		return h, m, nil
	case "s4":
		h, m := fixtures.S4()
		return h, m, nil
	case "s5":
		h, m := fixtures.S5()
		return h, m, nil
	case "s6":
		h, m := fixtures.S6()
		return h, m, nil
	default:
		return nil, nil, fmt.Errorf("taie: unknown -demo %q (want s1, s2, s3, s4, s5, or s6)", name)
	}
}

func runCHA(h *classes.Hierarchy, main *ir.Method) error {
	g := classes.BuildCHA(h, main)
	log.Infof("cha: %d reachable methods, %d edges", len(g.ReachableNodes()), len(g.Edges()))
	for _, e := range g.Edges() {
		fmt.Printf("%s -[%s]-> %s\n", e.Caller, e.Kind, e.Callee)
	}
	return nil
}

func runConstprop(main *ir.Method) error {
	result := constprop.Run(main)
	dead := constprop.DeadCode(main, result)
	log.Infof("constprop: %d dead statements", len(dead))
	for _, st := range dead {
		fmt.Println(" dead:", st)
	}
	return nil
}

func runInterprop(h *classes.Hierarchy, main *ir.Method) error {
	cg := classes.BuildCHA(h, main)
	g := icfg.Build(cg)

	oracle := ci.Analyze(h, main)
	result := interprop.Solve(g, oracle)

	for _, n := range g.Nodes() {
		fmt.Printf("%v\tIN=%v OUT=%v\n", n, result.InFact(n), result.OutFact(n))
	}
	return nil
}

func runCI(c *cli.Context, h *classes.Hierarchy, main *ir.Method) error {
	result := ci.Analyze(h, main)
	export.Summary(os.Stdout, result, nil)
	return maybeRenderDot(c, result)
}

func runCS(c *cli.Context, h *classes.Hierarchy, main *ir.Method) error {
	selector, err := selectorFor(c.String("pta"), c.Int("k"))
	if err != nil {
		return err
	}
	heap, err := heapModelFor(c.String("heap"))
	if err != nil {
		return err
	}

	solver := cs.NewSolver(h, main, selector, heap)

	plugin, err := installTaintPlugin(c, h, main, solver)
	if err != nil {
		return err
	}

	solver.Analyze()
	result := cs.NewResult(solver)

	var flows []taint.Flow
	if plugin != nil {
		flows = plugin.CollectFlows(solver)
	}
	export.Summary(os.Stdout, result, flows)

	if c.Bool("dump-points-to") {
		fmt.Print(export.PointsToTable(result, localsOf(result.ReachableMethods())))
	}
	return maybeRenderDot(c, result)
}

func maybeRenderDot(c *cli.Context, result *cs.Result) error {
	path := c.String("dot")
	if path == "" {
		return nil
	}
	log.WithField("path", path).Info("rendering call graph")
	return export.RenderCallGraphPNG(result, path)
}

func selectorFor(name string, k int) (cs.Selector, error) {
	switch name {
	case "insensitive":
		return cs.InsensitiveSelector{}, nil
	case "callsite":
		return cs.CallSiteSensitiveSelector{K: k}, nil
	case "object":
		return cs.ObjectSensitiveSelector{K: k}, nil
	case "type":
		return cs.TypeSensitiveSelector{K: k}, nil
	default:
		return nil, fmt.Errorf("taie: unknown -pta %q (want insensitive, callsite, object, or type)", name)
	}
}

func heapModelFor(name string) (cs.HeapModel, error) {
	switch name {
	case "alloc-site":
		return cs.DefaultHeapModel{}, nil
	case "type":
		return cs.NewTypeSensitiveHeapModel(), nil
	default:
		return nil, fmt.Errorf("taie: unknown -heap %q (want alloc-site or type)", name)
	}
}

// demoTypes is the name->*ir.Type table installed on every demo's World,
// so a -taint-config document can name any type that appears across the
// S1-S6 fixtures ("A", "B", "int") or the taint scenarios' own domain
// types ("Source", "Sink", "String", "tainted") regardless of which demo
// actually produced the IR the config is being run against.
func demoTypes() []*ir.Type {
	return []*ir.Type{
		fixtures.TypeA, fixtures.TypeB, fixtures.TypeInt,
		{Name: "Source", Kind: ir.KindClass},
		{Name: "Sink", Kind: ir.KindClass},
		{Name: "String", Kind: ir.KindClass},
		{Name: "tainted", Kind: ir.KindClass},
	}
}

// installTaintPlugin wires pta/plugin/taint into solver when a taint
// configuration is available: either an explicit -taint-config path, or
// (absent that) the s5/s6 demos' own built-in rule document, matching
// spec.md §8's "taint end-to-end" / "taint transfer" scenarios.
func installTaintPlugin(c *cli.Context, h *classes.Hierarchy, main *ir.Method, solver *cs.Solver) (*taint.Plugin, error) {
	w := world.New(h, main, demoTypes(), nil)

	if path := c.String("taint-config"); path != "" {
		p, err := taint.NewPlugin(w, path)
		if err != nil {
			return nil, err
		}
		solver.AddPlugin(p)
		return p, nil
	}

	if c.String("demo") != "s5" && c.String("demo") != "s6" {
		return nil, nil
	}
	cfg, err := taint.ParseConfig([]byte(fixtures.TaintConfigYAML))
	if err != nil {
		return nil, err
	}
	p := taint.NewPluginFromConfig(w, cfg)
	solver.AddPlugin(p)
	return p, nil
}

// localsOf collects every parameter and `this` of ms plus the variables
// the variables their New/Copy/load/store/Invoke statements assign, copy
// from or store, for
// -dump-points-to: spec.md §6 has no "list all variables" query, so the
// CLI reconstructs the set itself from the statements it already has.
func localsOf(ms []*ir.Method) []*ir.Var {
	seen := map[*ir.Var]bool{}
	var out []*ir.Var
	add := func(v *ir.Var) {
		if v != nil && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	for _, m := range ms {
		for _, p := range m.Params {
			add(p)
		}
		add(m.This)
		for _, st := range m.Stmts() {
			switch s := st.(type) {
			case *ir.New:
				add(s.LValue)
			case *ir.Copy:
				add(s.LValue)
				add(s.RValue)
			case *ir.LoadField:
				add(s.LValue)
			case *ir.StoreField:
				add(s.RValue)
			case *ir.LoadArray:
				add(s.LValue)
			case *ir.StoreArray:
				add(s.RValue)
			case *ir.Invoke:
				add(s.LValue)
			}
		}
	}
	return out
}
