/*
Package lr0 implements LR(0) items, item sets and the characteristic
finite-state machine (CFSM) construction.

Grounded on the closure/goto/buildCFSM shape of gorgo's
lr.TableGenerator (lr/tables.go): a worklist over undiscovered states,
deduplicated by structural item-set equality, with states and edges kept
in gods collections for stable, ID-ordered iteration.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lr0

import (
	"fmt"
	"sort"

	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"

	"github.com/npillmayer/copager/cfg"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'copager.cfg'.
func tracer() tracing.Trace {
	return tracing.Select("copager.cfg")
}

// Item is an LR(0) item: a production plus a dot position, 0 ≤ Dot ≤
// len(RHS). If RHS == [Epsilon], the initial dot collapses directly to 1
// ("ε-collapse").
type Item struct {
	Rule *cfg.Production
	Dot  int
}

// StartItem builds the initial (dot-at-0, or dot-at-1 for an ε-production)
// item for a production.
func StartItem(p *cfg.Production) Item {
	dot := 0
	if p.IsEpsilonRHS() {
		dot = 1
	}
	return Item{Rule: p, Dot: dot}
}

// AtEnd reports whether the dot has advanced past the whole (non-epsilon)
// RHS, i.e. this item is reducible.
func (i Item) AtEnd() bool {
	return i.Dot >= len(i.Rule.RHS)
}

// PeekSymbol returns the symbol immediately after the dot, or nil if the
// item is at the end of its RHS.
func (i Item) PeekSymbol() *cfg.Elem {
	if i.AtEnd() {
		return nil
	}
	e := i.Rule.RHS[i.Dot]
	return &e
}

// Advance returns the item with the dot moved one position to the right.
// Panics if already AtEnd(); callers must check PeekSymbol() != nil first.
func (i Item) Advance() Item {
	if i.AtEnd() {
		panic("lr0: Advance() called on an item already at end of RHS")
	}
	return Item{Rule: i.Rule, Dot: i.Dot + 1}
}

// Prefix returns the RHS symbols already consumed by the dot (rule.RHS[:Dot]).
func (i Item) Prefix() []cfg.Elem {
	return i.Rule.RHS[:i.Dot]
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
	return fmt.Sprintf("[%s ::= %s]", i.Rule.LHS, s)
}

// key returns a hashable, comparable identity for an item: (rule id, dot).
// Equality and hashing of LR0 items are defined over (rule, dot) alone.
func (i Item) key() [2]int { return [2]int{i.Rule.ID, i.Dot} }

// ItemSet is an unordered collection of items, equal iff they contain the
// same items.
type ItemSet struct {
	items map[[2]int]Item
}

// NewItemSet creates an empty item set.
func NewItemSet() *ItemSet {
	return &ItemSet{items: map[[2]int]Item{}}
}

// Add inserts an item, returning true if the set changed.
func (s *ItemSet) Add(i Item) bool {
	k := i.key()
	if _, ok := s.items[k]; ok {
		return false
	}
	s.items[k] = i
	return true
}

// Has reports whether i is a member of s.
func (s *ItemSet) Has(i Item) bool {
	_, ok := s.items[i.key()]
	return ok
}

// Items returns the members of s in an arbitrary but stable (sorted by
// (rule id, dot)) order, for deterministic iteration and debugging.
func (s *ItemSet) Items() []Item {
	out := make([]Item, 0, len(s.items))
	for _, it := range s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Rule.ID != out[b].Rule.ID {
			return out[a].Rule.ID < out[b].Rule.ID
		}
		return out[a].Dot < out[b].Dot
	})
	return out
}

// Size returns the number of items in s.
func (s *ItemSet) Size() int { return len(s.items) }

// Equal reports whether s and other contain exactly the same items.
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

// Closure computes the closure of a seed item set: repeat, for
// every item [A -> α • B β] with B a nonterminal, for every production
// B -> γ, add [B -> • γ] (with ε-collapse), until fixed point.
func Closure(rs *cfg.RuleSet, seed *ItemSet) *ItemSet {
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
		for _, p := range rs.ProductionsFor(sym.NonTermName()) {
			ni := StartItem(p)
			if closure.Add(ni) {
				worklist = append(worklist, ni)
			}
		}
	}
	return closure
}

// Goto computes GOTO(I, X) = closure({ [A -> α X • β] | [A -> α • X β] ∈ I }).
func Goto(rs *cfg.RuleSet, I *ItemSet, X cfg.Elem) *ItemSet {
	advanced := NewItemSet()
	for _, i := range I.Items() {
		sym := i.PeekSymbol()
		if sym != nil && sym.Equal(X) {
			advanced.Add(i.Advance())
		}
	}
	return Closure(rs, advanced)
}

// Node is a DFA state: an item set with a numeric identity, laid out in a
// dense vector indexed by ID ("DFA node"). Its outgoing edges are kept in
// DFA.Edges, not on the node (see DFA.OutEdges).
type Node struct {
	ID    int
	Items *ItemSet
}

// Edge is a labeled transition between two DFA states.
type Edge struct {
	From, To int
	Label    cfg.Elem
}

// DFA is the LR(0) automaton for a (augmented) rule set.
type DFA struct {
	RuleSet *cfg.RuleSet
	Nodes   []*Node
	Edges   []Edge
	Start   int
}

// NodeByID returns the node with the given id.
func (d *DFA) NodeByID(id int) *Node { return d.Nodes[id] }

// OutEdges returns the edges leaving the given state id, in the order they
// were discovered.
func (d *DFA) OutEdges(stateID int) []Edge {
	var out []Edge
	for _, e := range d.Edges {
		if e.From == stateID {
			out = append(out, e)
		}
	}
	return out
}

// symbolAlphabet returns every grammar symbol (terminals, EOF, nonterminals)
// that could label an edge, in a stable order.
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

// BuildDFA constructs the LR(0) CFSM for an augmented rule set: start from
// closure({[__top_dummy -> • <top>]}), then BFS over GOTO-transitions,
// deduplicating states by structural item-set equality.
func BuildDFA(rs *cfg.RuleSet) (*DFA, error) {
	if !rs.Augmented() {
		return nil, fmt.Errorf("lr0: BuildDFA requires an augmented rule set (call RuleSet.Augment() first)")
	}
	startProd := rs.ProductionsFor(rs.Top())
	if len(startProd) != 1 {
		return nil, fmt.Errorf("lr0: augmented rule set must have exactly one production for %q", rs.Top())
	}
	seed := NewItemSet()
	seed.Add(StartItem(startProd[0]))
	startItems := Closure(rs, seed)

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
			gotoSet := Goto(rs, s.Items, X)
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
	tracer().Infof("built LR0 DFA with %d states, %d edges", len(nodes), len(edgeSlice))
	return &DFA{RuleSet: rs, Nodes: nodes, Edges: edgeSlice, Start: start.ID}, nil
}

func nodeComparator(a, b interface{}) int {
	return utils.IntComparator(a.(*Node).ID, b.(*Node).ID)
}
