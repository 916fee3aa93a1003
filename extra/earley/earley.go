/*
Package earley is an extra, non-core adaptation of gorgo's lr/earley: an
Earley recognizer/parser that accepts any context-free grammar, including
ambiguous ones the core LALR(1) pipeline's table.Compile would reject
with a ConflictError. An automatic GLR/Earley fallback inside the core
is excluded; this package is a manually-selected alternate parser
living entirely outside cfg/table/driver.

Grounded on gorgo's lr/earley/earley.go for the overall Parser shape
(predict/scan/complete over a chart of item sets) and on that package's
own doc comment, which discusses two ways to recover a parse forest from
the chart: Scott's binarised-SPPF construction (what gorgo itself
implements, in lr/sppf), or "an Unger style parser [exploiting] the sets
produced by Earley's recogniser" to extract derivations after the fact.
This package takes the second, simpler route explicitly endorsed by that
comment — acceptable for the demonstrative ambiguous grammars this extra
targets, even though, as gorgo's own comment notes, it is not
polynomially bounded for pathological grammars.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package earley

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/copager"
	"github.com/npillmayer/copager/cfg"
	"github.com/npillmayer/copager/driver"
	"github.com/npillmayer/copager/extra/sppf"
)

// tracer traces with key 'copager.extra.earley'.
func tracer() tracing.Trace {
	return tracing.Select("copager.extra.earley")
}

// item is one Earley item: Prod with the dot before Prod.RHS[Dot],
// recognized starting at input position Origin.
type item struct {
	Prod   *cfg.Production
	Dot    int
	Origin int
}

func (it item) complete() bool { return it.Dot >= len(it.Prod.RHS) }

// Parser recognizes (and, on success, extracts a parse forest for) input
// against rs using Earley's algorithm.
type Parser struct {
	rs    *cfg.RuleSet
	namer driver.TokenNamer
}

// NewParser builds an Earley parser for rs (augmented automatically if
// not already), naming tokens via namer (the same driver.TokenNamer
// lexer.Lexer.Namer() produces).
func NewParser(rs *cfg.RuleSet, namer driver.TokenNamer) *Parser {
	if !rs.Augmented() {
		rs = rs.Augment()
	}
	return &Parser{rs: rs, namer: namer}
}

// Parse runs the recognizer over tokens (with no trailing EOF token
// expected — the chart holds exactly len(tokens)+1 item sets) and, on
// acceptance, extracts a parse forest rooted at the grammar's start
// symbol.
func (p *Parser) Parse(tokens []copager.Token) (bool, *sppf.Forest, error) {
	n := len(tokens)
	states := make([][]item, n+1)

	top := p.rs.Rule(0) // the augmenting production __top_dummy ::= <top>
	states[0] = []item{{Prod: top, Dot: 0, Origin: 0}}

	for i := 0; i <= n; i++ {
		seen := map[item]bool{}
		for _, it := range states[i] {
			seen[it] = true
		}
		for idx := 0; idx < len(states[i]); idx++ {
			it := states[i][idx]
			if it.complete() {
				p.completeItem(it, i, states, seen)
				continue
			}
			sym := it.Prod.RHS[it.Dot]
			if sym.IsNonTerm() {
				p.predict(sym.Name(), i, states, seen)
			} else if i < n && sym.IsTerminal() && !sym.IsEOF() && p.namer(tokens[i]) == sym.Name() {
				adv := item{Prod: it.Prod, Dot: it.Dot + 1, Origin: it.Origin}
				states[i+1] = append(states[i+1], adv)
			}
		}
	}

	accepted := false
	for _, it := range states[n] {
		if it.Prod == top && it.complete() && it.Origin == 0 {
			accepted = true
			break
		}
	}
	if !accepted {
		return false, nil, fmt.Errorf("earley: input rejected (no complete parse spans [0,%d))", n)
	}

	names := make([]string, n)
	for i, tok := range tokens {
		names[i] = p.namer(tok)
	}
	forest := sppf.NewForest()
	root := p.buildSymbol(top.RHS[0].Name(), 0, n, names, forest, map[string]bool{})
	forest.Root = root
	tracer().Infof("earley: accepted, root %s, ambiguous=%v", root, root.Ambiguous())
	return true, forest, nil
}

func (p *Parser) predict(nonterm string, i int, states [][]item, seen map[item]bool) {
	for _, prod := range p.rs.ProductionsFor(nonterm) {
		it := item{Prod: prod, Dot: 0, Origin: i}
		if prod.IsEpsilonRHS() {
			it.Dot = len(prod.RHS) // an epsilon production is immediately complete
		}
		if !seen[it] {
			seen[it] = true
			states[i] = append(states[i], it)
		}
	}
}

func (p *Parser) completeItem(completed item, i int, states [][]item, seen map[item]bool) {
	for _, it := range states[completed.Origin] {
		if it.complete() {
			continue
		}
		sym := it.Prod.RHS[it.Dot]
		if sym.IsNonTerm() && sym.Name() == completed.Prod.LHS.Name() {
			adv := item{Prod: it.Prod, Dot: it.Dot + 1, Origin: it.Origin}
			if !seen[adv] {
				seen[adv] = true
				states[i] = append(states[i], adv)
			}
		}
	}
}

// buildSymbol extracts every derivation of nonterminal/terminal sym
// spanning [start,end) out of the recognizer's chart (Unger-style,
// see package doc), memoized per (sym,start,end) via inflight to break
// left-recursive cycles.
func (p *Parser) buildSymbol(sym string, start, end int, tokenNames []string, forest *sppf.Forest, inflight map[string]bool) *sppf.SymbolNode {
	node := forest.GetOrCreate(sym, start, end)
	k := fmt.Sprintf("%s:%d:%d", sym, start, end)
	if inflight[k] {
		return node
	}
	inflight[k] = true
	defer delete(inflight, k)

	if len(node.Packed) > 0 {
		return node // already built by an earlier reference
	}
	for _, prod := range p.rs.ProductionsFor(sym) {
		if prod.IsEpsilonRHS() {
			if start == end {
				forest.AddPacked(node, prod.String())
			}
			continue
		}
		p.tryDerive(prod, 0, start, end, nil, tokenNames, forest, inflight, node)
	}
	return node
}

// tryDerive enumerates every split of [pos,end) across prod.RHS[idx:],
// recursing into buildSymbol for nonterminal elements and checking a
// direct token-name match for terminals, packing a full match into node.
func (p *Parser) tryDerive(prod *cfg.Production, idx, pos, end int, children []*sppf.SymbolNode, tokenNames []string, forest *sppf.Forest, inflight map[string]bool, node *sppf.SymbolNode) {
	if idx == len(prod.RHS) {
		if pos == end {
			forest.AddPacked(node, prod.String(), children...)
		}
		return
	}
	elem := prod.RHS[idx]
	if elem.IsTerminal() {
		if pos < end && tokenNames[pos] == elem.Name() {
			leaf := forest.GetOrCreate(elem.Name(), pos, pos+1)
			next := append(append([]*sppf.SymbolNode{}, children...), leaf)
			p.tryDerive(prod, idx+1, pos+1, end, next, tokenNames, forest, inflight, node)
		}
		return
	}
	// nonterminal: try every split point [pos, split) for this symbol.
	for split := pos; split <= end; split++ {
		child := p.buildSymbol(elem.Name(), pos, split, tokenNames, forest, inflight)
		if len(child.Packed) == 0 {
			continue // no derivation spans [pos,split), empty or otherwise
		}
		next := append(append([]*sppf.SymbolNode{}, children...), child)
		p.tryDerive(prod, idx+1, split, end, next, tokenNames, forest, inflight, node)
	}
}
