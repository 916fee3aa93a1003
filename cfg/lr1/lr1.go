/*
Package lr1 implements LR(1) items (items carrying a single lookahead
symbol) and the corresponding characteristic finite-state machine
construction.

Grounded on the same closure/goto/buildCFSM shape as package lr0 (itself
grounded on gorgo's lr.TableGenerator), generalized to item identity
including a lookahead.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lr1

import (
	"fmt"
	"sort"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"

	"github.com/npillmayer/copager/cfg"
	"github.com/npillmayer/copager/cfg/lr0"
	"github.com/npillmayer/copager/cfg/sets"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'copager.cfg'.
func tracer() tracing.Trace {
	return tracing.Select("copager.cfg")
}

// Item is an LR(1) item: a production, a dot position, and a lookahead
// symbol (always a Term or EOF). Equality uses all three fields.
type Item struct {
	Rule      *cfg.Production
	Dot       int
	Lookahead cfg.Elem
}

// StartItem builds the initial item for a production with the given
// lookahead, applying the same ε-collapse as lr0.StartItem.
func StartItem(p *cfg.Production, lookahead cfg.Elem) Item {
	base := lr0.StartItem(p)
	return Item{Rule: base.Rule, Dot: base.Dot, Lookahead: lookahead}
}

func (i Item) AtEnd() bool { return i.Dot >= len(i.Rule.RHS) }

func (i Item) PeekSymbol() *cfg.Elem {
	if i.AtEnd() {
		return nil
	}
	e := i.Rule.RHS[i.Dot]
	return &e
}

func (i Item) Advance() Item {
	if i.AtEnd() {
		panic("lr1: Advance() called on an item already at end of RHS")
	}
	return Item{Rule: i.Rule, Dot: i.Dot + 1, Lookahead: i.Lookahead}
}

func (i Item) Prefix() []cfg.Elem { return i.Rule.RHS[:i.Dot] }

// Core returns the (rule id, dot) pair identifying this item's LR(0) core,
// ignoring the lookahead — used by package lalr1 for core-equality.
func (i Item) Core() [2]int { return [2]int{i.Rule.ID, i.Dot} }

func (i Item) key() [3]string {
	return [3]string{fmt.Sprint(i.Rule.ID), fmt.Sprint(i.Dot), i.Lookahead.Name()}
}

func (i Item) String() string {
	var s string
	for idx, e := range i.Rule.RHS {
		if idx == i.Dot {
			s += "•"
		}
		s += e.String()
	}
	if i.Dot == len(i.Rule.RHS) {
		s += "•"
	}
	return fmt.Sprintf("[%s ::= %s, %s]", i.Rule.LHS, s, i.Lookahead)
}

// ItemSet is an unordered collection of LR(1) items, equal iff they contain
// the same (rule, dot, lookahead) triples.
type ItemSet struct {
	items map[[3]string]Item
}

func NewItemSet() *ItemSet { return &ItemSet{items: map[[3]string]Item{}} }

func (s *ItemSet) Add(i Item) bool {
	k := i.key()
	if _, ok := s.items[k]; ok {
		return false
	}
	s.items[k] = i
	return true
}

func (s *ItemSet) Has(i Item) bool {
	_, ok := s.items[i.key()]
	return ok
}

func (s *ItemSet) Size() int { return len(s.items) }

func (s *ItemSet) Items() []Item {
	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Rule.ID != out[b].Rule.ID {
			return out[a].Rule.ID < out[b].Rule.ID
		}
		if out[a].Dot != out[b].Dot {
			return out[a].Dot < out[b].Dot
		}
		return out[a].Lookahead.Name() < out[b].Lookahead.Name()
	})
	return out
}

func (s *ItemSet) Equal(other *ItemSet) bool {
	if len(s.items) != len(other.items) {
		return false
	}
	for k := range s.items {
		if _, ok := other.items[k]; !ok {
			return false
		}
	}
	return true
}

// Cores returns the distinct (rule id, dot) pairs of the items in s,
// ignoring lookaheads — this is the LR0 "core" of the state, consulted by
// package lalr1 for core-equality partitioning.
func (s *ItemSet) Cores() map[[2]int]bool {
	cores := map[[2]int]bool{}
	for _, i := range s.Items() {
		cores[i.Core()] = true
	}
	return cores
}

func (s *ItemSet) String() string {
	str := "{ "
	for i, it := range s.Items() {
		if i > 0 {
			str += ", "
		}
		str += it.String()
	}
	return str + " }"
}

// Closure computes the LR(1) closure of a seed item set: for
// [A -> α • B β, a] and production B -> γ, add [B -> • γ, b] for every
// b ∈ FIRST(β a).
func Closure(rs *cfg.RuleSet, first *sets.FirstSets, seed *ItemSet) *ItemSet {
	closure := NewItemSet()
	for _, i := range seed.Items() {
		closure.Add(i)
	}
	worklist := seed.Items()
	for len(worklist) > 0 {
		i := worklist[0]
		worklist = worklist[1:]
		sym := i.PeekSymbol()
		if sym == nil || !sym.IsNonTerm() {
			continue
		}
		beta := i.Rule.RHS[i.Dot+1:]
		betaA := append(append([]cfg.Elem{}, beta...), i.Lookahead)
		lookaheads := first.OfSeq(betaA)
		for _, p := range rs.ProductionsFor(sym.NonTermName()) {
			for _, la := range lookaheads.Terminals() {
				ni := StartItem(p, la)
				if closure.Add(ni) {
					worklist = append(worklist, ni)
				}
			}
		}
	}
	return closure
}

// Goto computes GOTO(I, X) as in lr0, but preserving lookaheads.
func Goto(rs *cfg.RuleSet, first *sets.FirstSets, I *ItemSet, X cfg.Elem) *ItemSet {
	advanced := NewItemSet()
	for _, i := range I.Items() {
		sym := i.PeekSymbol()
		if sym != nil && sym.Equal(X) {
			advanced.Add(i.Advance())
		}
	}
	return Closure(rs, first, advanced)
}

// Node and Edge mirror lr0's DFA node/edge types, carrying LR(1) item sets.
type Node struct {
	ID    int
	Items *ItemSet
}

type Edge struct {
	From, To int
	Label    cfg.Elem
}

// DFA is the LR(1) automaton for an augmented rule set.
type DFA struct {
	RuleSet *cfg.RuleSet
	Nodes   []*Node
	Edges   []Edge
	Start   int
}

func (d *DFA) NodeByID(id int) *Node { return d.Nodes[id] }

func (d *DFA) OutEdges(stateID int) []Edge {
	var out []Edge
	for _, e := range d.Edges {
		if e.From == stateID {
			out = append(out, e)
		}
	}
	return out
}

func symbolAlphabet(rs *cfg.RuleSet) []cfg.Elem {
	var alphabet []cfg.Elem
	for _, t := range rs.Terminals() {
		alphabet = append(alphabet, cfg.TermElem(t))
	}
	alphabet = append(alphabet, cfg.EOFElem)
	for _, n := range rs.Nonterminals() {
		alphabet = append(alphabet, cfg.NonTerm(n))
	}
	return alphabet
}

// BuildDFA constructs the LR(1) CFSM for an augmented rule set, seeded with
// [__top_dummy -> • <top>, EOF].
func BuildDFA(rs *cfg.RuleSet, first *sets.FirstSets) (*DFA, error) {
	if !rs.Augmented() {
		return nil, fmt.Errorf("lr1: BuildDFA requires an augmented rule set (call RuleSet.Augment() first)")
	}
	startProd := rs.ProductionsFor(rs.Top())
	if len(startProd) != 1 {
		return nil, fmt.Errorf("lr1: augmented rule set must have exactly one production for %q", rs.Top())
	}
	seed := NewItemSet()
	seed.Add(StartItem(startProd[0], cfg.EOFElem))
	startItems := Closure(rs, first, seed)

	states := treeset.NewWith(nodeComparator)
	edges := arraylist.New()
	nextID := 0

	addState := func(items *ItemSet) (*Node, bool) {
		it := states.Iterator()
		for it.Next() {
			n := it.Value().(*Node)
			if n.Items.Equal(items) {
				return n, false
			}
		}
		n := &Node{ID: nextID, Items: items}
		nextID++
		states.Add(n)
		return n, true
	}

	start, _ := addState(startItems)
	worklist := []*Node{start}
	alphabet := symbolAlphabet(rs)
	for len(worklist) > 0 {
		s := worklist[0]
		worklist = worklist[1:]
		for _, X := range alphabet {
			gotoSet := Goto(rs, first, s.Items, X)
			if gotoSet.Size() == 0 {
				continue
			}
			next, isNew := addState(gotoSet)
			if isNew {
				worklist = append(worklist, next)
			}
			edges.Add(Edge{From: s.ID, To: next.ID, Label: X})
		}
	}

	nodes := make([]*Node, states.Size())
	it := states.Iterator()
	for it.Next() {
		n := it.Value().(*Node)
		nodes[n.ID] = n
	}
	edgeSlice := make([]Edge, edges.Size())
	eit := edges.Iterator()
	for eit.Next() {
		edgeSlice[eit.Index()] = eit.Value().(Edge)
	}
	tracer().Infof("built LR1 DFA with %d states, %d edges", len(nodes), len(edgeSlice))
	return &DFA{RuleSet: rs, Nodes: nodes, Edges: edgeSlice, Start: start.ID}, nil
}

func nodeComparator(a, b interface{}) int {
	return utils.IntComparator(a.(*Node).ID, b.(*Node).ID)
}
