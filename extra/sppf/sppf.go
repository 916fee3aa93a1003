/*
Package sppf is a simplified Shared Packed Parse Forest, the data
structure extra/earley and extra/glr use to represent every derivation of
an ambiguous parse at once instead of picking (or panicking on) one.

A packed parse forest re-uses parse-tree nodes shared between different
parse trees: for an unambiguous parse it degrades to a single ordinary
tree; an ambiguous grammar instead attaches more than one "packed"
alternative under the same symbol node, one per distinct derivation.

Grounded on gorgo's lr/sppf (forest.go/sppf.go/visit.go): the
SymbolNode/PackedNode split and start/end-position-keyed node identity
are kept; the binarised-node and epsilon/cyclic-SPPF special cases that
package handles (needed for full Earley/GLR generality, see its forest.go
commentary on Scott's paper) are not reproduced, since extra/earley and
extra/glr only need to demonstrate — not industrialize — ambiguity
representation as a non-core extension point.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package sppf

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'copager.extra.sppf'.
func tracer() tracing.Trace {
	return tracing.Select("copager.extra.sppf")
}

// Packed is one derivation of a SymbolNode: the production that produced
// it, and its ordered child symbol nodes (one per RHS element that isn't
// epsilon).
type Packed struct {
	RuleName string
	Children []*SymbolNode
}

// SymbolNode names a span of the input ([Start,End) in token-index
// space) derived as Symbol, together with every alternative derivation
// (Packed) that produces that exact span — more than one Packed entry
// means this span is genuinely ambiguous.
type SymbolNode struct {
	Symbol string
	Start  int
	End    int
	Packed []*Packed
}

// Ambiguous reports whether more than one derivation was recorded for
// this span.
func (n *SymbolNode) Ambiguous() bool { return len(n.Packed) > 1 }

func (n *SymbolNode) String() string {
	return fmt.Sprintf("%s[%d,%d]", n.Symbol, n.Start, n.End)
}

// Forest collects every SymbolNode built during one parse, deduplicating
// by (symbol, start, end) so that two derivations spanning the same
// substring share one node instead of being built twice.
type Forest struct {
	nodes map[string]*SymbolNode
	Root  *SymbolNode
}

// NewForest returns an empty forest.
func NewForest() *Forest {
	return &Forest{nodes: map[string]*SymbolNode{}}
}

func key(symbol string, start, end int) string {
	return fmt.Sprintf("%s:%d:%d", symbol, start, end)
}

// GetOrCreate returns the existing SymbolNode for (symbol, start, end),
// creating one if this is the first time this span/symbol pair is seen.
func (f *Forest) GetOrCreate(symbol string, start, end int) *SymbolNode {
	k := key(symbol, start, end)
	if n, ok := f.nodes[k]; ok {
		return n
	}
	n := &SymbolNode{Symbol: symbol, Start: start, End: end}
	f.nodes[k] = n
	return n
}

// AddPacked attaches one more derivation to sym, skipping an exact
// duplicate (same rule, same child sequence) — packing is what keeps the
// forest from re-growing the same subtree for every equivalent
// derivation path a GLR/Earley run discovers.
func (f *Forest) AddPacked(sym *SymbolNode, ruleName string, children ...*SymbolNode) *Packed {
	for _, p := range sym.Packed {
		if p.RuleName == ruleName && sameChildren(p.Children, children) {
			return p
		}
	}
	p := &Packed{RuleName: ruleName, Children: children}
	sym.Packed = append(sym.Packed, p)
	if sym.Ambiguous() {
		tracer().Debugf("sppf: %s now ambiguous (%d derivations)", sym, len(sym.Packed))
	}
	return p
}

func sameChildren(a, b []*SymbolNode) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Derivations returns every distinct parse tree rooted at n, one
// *Tree per Packed alternative (the cross product over ambiguous
// children), capped at limit trees to keep pathological grammars from
// enumerating exponentially many derivations.
func (n *SymbolNode) Derivations(limit int) []*Tree {
	if n == nil {
		return nil
	}
	var out []*Tree
	for _, p := range n.Packed {
		if len(out) >= limit {
			break
		}
		childSets := [][]*Tree{{}}
		for _, c := range p.Children {
			sub := c.Derivations(limit)
			if len(sub) == 0 {
				sub = []*Tree{{Symbol: c.Symbol}}
			}
			childSets = cross(childSets, sub, limit)
		}
		for _, cs := range childSets {
			if len(out) >= limit {
				break
			}
			out = append(out, &Tree{Symbol: n.Symbol, Rule: p.RuleName, Children: cs})
		}
	}
	return out
}

func cross(acc [][]*Tree, next []*Tree, limit int) [][]*Tree {
	var out [][]*Tree
	for _, a := range acc {
		for _, t := range next {
			if len(out) >= limit {
				return out
			}
			row := make([]*Tree, len(a)+1)
			copy(row, a)
			row[len(a)] = t
			out = append(out, row)
		}
	}
	return out
}

// Tree is one concrete, disambiguated parse tree pulled out of a Forest.
type Tree struct {
	Symbol   string
	Rule     string
	Children []*Tree
}

func (t *Tree) String() string {
	if t == nil {
		return "()"
	}
	if len(t.Children) == 0 {
		return t.Symbol
	}
	s := "(" + t.Symbol
	for _, c := range t.Children {
		s += " " + c.String()
	}
	return s + ")"
}
