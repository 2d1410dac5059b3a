// Package taint implements the taint-tracking solver plugin of spec.md
// §4.9: source/sink/transfer rules loaded from an external document,
// taint-object manufacture, and deterministic taint-flow collection.
// Grounded on
// original_source/A8/.../pascal/taie/analysis/pta/plugin/taint/TaintAnalysiss.java.
package taint

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PositionKind distinguishes the three token forms spec.md §6's taint
// configuration format allows for a transfer's `from`/`to` field: the
// literal tokens "base"/"result", or a non-negative argument index.
type PositionKind int

const (
	PositionArg PositionKind = iota
	PositionBase
	PositionResult
)

// Position is a from/to endpoint of a [Transfer] rule.
type Position struct {
	Kind PositionKind
	Arg  int // only meaningful when Kind == PositionArg
}

func (p Position) String() string {
	switch p.Kind {
	case PositionBase:
		return "base"
	case PositionResult:
		return "result"
	default:
		return fmt.Sprintf("arg%d", p.Arg)
	}
}

// UnmarshalYAML accepts either the literal strings "base"/"result" or a
// non-negative integer argument index, per spec.md §6: "from/to are
// either the literal tokens base, result, or a non-negative integer".
func (p *Position) UnmarshalYAML(value *yaml.Node) error {
	var asString string
	if err := value.Decode(&asString); err == nil {
		switch asString {
		case "base":
			*p = Position{Kind: PositionBase}
			return nil
		case "result":
			*p = Position{Kind: PositionResult}
			return nil
		}
	}
	var asInt int
	if err := value.Decode(&asInt); err != nil {
		return fmt.Errorf("taint config: from/to must be \"base\", \"result\", or a non-negative integer, got %q", value.Value)
	}
	if asInt < 0 {
		return fmt.Errorf("taint config: argument index must be non-negative, got %d", asInt)
	}
	*p = Position{Kind: PositionArg, Arg: asInt}
	return nil
}

// Source is a configured call that introduces a taint object of the
// given declared type into its result variable (spec.md §4.9
// "Sources").
type Source struct {
	Method string `yaml:"method"`
	Type   string `yaml:"type"`
}

// Sink is a configured call whose argument at Index is examined for
// taint on finish (spec.md §4.9 "Sinks & flow collection").
type Sink struct {
	Method string `yaml:"method"`
	Index  int    `yaml:"index"`
}

// Transfer retypes an existing taint as it flows through a configured
// call, from one of {base, an argument, result} to another (spec.md
// §4.9 "Transfers").
type Transfer struct {
	Method string   `yaml:"method"`
	From   Position `yaml:"from"`
	To     Position `yaml:"to"`
	Type   string   `yaml:"type"`
}

// Config is the whole taint rule document (spec.md §6 "Taint
// configuration format"): sources, sinks, and transfers, each keyed by
// fully-qualified method signature.
type Config struct {
	Sources   []Source   `yaml:"sources"`
	Sinks     []Sink     `yaml:"sinks"`
	Transfers []Transfer `yaml:"transfers"`
}

// LoadConfig reads and parses a taint configuration document. Any
// malformed document is a fatal error at solver initialization (spec.md
// §7 "Malformed taint config": "the only fatal path in the core").
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("taint config: %w", err)
	}
	return ParseConfig(raw)
}

// ParseConfig parses an in-memory taint configuration document, the
// byte-slice counterpart of [LoadConfig] package tests use to build a
// [Config] straight from a literal YAML string (e.g.
// fixtures.TaintConfigYAML) without touching the filesystem.
func ParseConfig(raw []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("taint config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) sourcesFor(method string) []Source {
	var out []Source
	for _, s := range c.Sources {
		if s.Method == method {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) sinksFor(method string) []Sink {
	var out []Sink
	for _, s := range c.Sinks {
		if s.Method == method {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) transfersFor(method string) []Transfer {
	var out []Transfer
	for _, t := range c.Transfers {
		if t.Method == method {
			out = append(out, t)
		}
	}
	return out
}
