/*
Package lalr1 constructs an LALR(1) automaton by merging the states of a
previously built LR(1) automaton that share the same LR(0) core: two
LR(1) states are core-equal if, ignoring lookaheads, their sets of
(rule, dot) pairs coincide.

Grounded on lr/earley/earley.go's hash(i lr.Item, stateno uint64) string,
which hashes an anonymous struct via github.com/cnf/structhash; here the
same technique hashes the sorted (rule id, dot) multiset of an entire LR1
state, giving a stable partition key: a hash on the sorted (rule_id, dot)
multiset.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lalr1

import (
	"fmt"
	"sort"

	"golang.org/x/exp/slices"

	"github.com/cnf/structhash"

	"github.com/npillmayer/copager/cfg"
	"github.com/npillmayer/copager/cfg/lr1"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'copager.cfg'.
func tracer() tracing.Trace {
	return tracing.Select("copager.cfg")
}

// Item is an LALR(1) item: a production, a dot position, and a *set* of
// lookaheads, formed by merging all LR(1) items with identical (rule, dot)
// across a group of states being collapsed.
type Item struct {
	Rule       *cfg.Production
	Dot        int
	Lookaheads map[string]cfg.Elem
}

func (i *Item) addLookahead(e cfg.Elem) {
	if i.Lookaheads == nil {
		i.Lookaheads = map[string]cfg.Elem{}
	}
	i.Lookaheads[e.Name()] = e
}

// LookaheadElems returns the lookahead set as a slice, in a stable
// (name-sorted) order.
func (i *Item) LookaheadElems() []cfg.Elem {
	names := make([]string, 0, len(i.Lookaheads))
	for n := range i.Lookaheads {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]cfg.Elem, len(names))
	for idx, n := range names {
		out[idx] = i.Lookaheads[n]
	}
	return out
}

func (i *Item) AtEnd() bool { return i.Dot >= len(i.Rule.RHS) }

func (i *Item) PeekSymbol() *cfg.Elem {
	if i.AtEnd() {
		return nil
	}
	e := i.Rule.RHS[i.Dot]
	return &e
}

func (i *Item) String() string {
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
	return fmt.Sprintf("[%s ::= %s, %v]", i.Rule.LHS, s, i.LookaheadElems())
}

// Node is an LALR(1) DFA state: a set of merged items. Its outgoing edges,
// inherited (and deduplicated) from the source LR(1) states, are kept in
// DFA.Edges, not on the node.
type Node struct {
	ID    int
	Items []*Item
}

// ItemFor returns the merged item with the given (rule, dot), or nil.
func (n *Node) ItemFor(ruleID, dot int) *Item {
	for _, it := range n.Items {
		if it.Rule.ID == ruleID && it.Dot == dot {
			return it
		}
	}
	return nil
}

type Edge struct {
	From, To int
	Label    cfg.Elem
}

// DFA is the LALR(1) automaton obtained by merging an LR(1) automaton.
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

// coreHash hashes the sorted (rule id, dot) multiset of an LR(1) item set,
// giving a partition key independent of lookaheads and of map iteration
// order.
func coreHash(items *lr1.ItemSet) string {
	type pair struct{ RuleID, Dot int }
	cores := items.Cores()
	pairs := make([]pair, 0, len(cores))
	for c := range cores {
		pairs = append(pairs, pair{RuleID: c[0], Dot: c[1]})
	}
	slices.SortFunc(pairs, func(a, b pair) bool {
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		return a.Dot < b.Dot
	})
	h, err := structhash.Hash(pairs, 1)
	if err != nil {
		// structhash.Hash only fails on unsupported types; pairs is a plain
		// slice of a plain struct, so this cannot happen in practice.
		panic(fmt.Sprintf("lalr1: unexpected hashing failure: %v", err))
	}
	return h
}

// Merge builds the LALR(1) automaton for lr1dfa by partitioning its states
// by core equality (step 1), forming one merged state per partition with
// unioned lookaheads (step 2), and rewriting edges through the partition
// representative map (step 3).
func Merge(lr1dfa *lr1.DFA) (*DFA, error) {
	// Step 1: partition by core equality, preserving first-appearance order.
	order := []string{}
	groups := map[string][]int{}
	for _, n := range lr1dfa.Nodes {
		h := coreHash(n.Items)
		if _, seen := groups[h]; !seen {
			order = append(order, h)
		}
		groups[h] = append(groups[h], n.ID)
	}

	repOf := map[int]int{} // lr1 state id -> lalr1 node id
	nodes := make([]*Node, 0, len(order))
	for newID, h := range order {
		memberIDs := groups[h]
		merged := map[[2]int]*Item{}
		var order2 [][2]int
		for _, id := range memberIDs {
			repOf[id] = newID
			state := lr1dfa.NodeByID(id)
			for _, it := range state.Items.Items() {
				key := [2]int{it.Rule.ID, it.Dot}
				mi, ok := merged[key]
				if !ok {
					mi = &Item{Rule: it.Rule, Dot: it.Dot}
					merged[key] = mi
					order2 = append(order2, key)
				}
				mi.addLookahead(it.Lookahead)
			}
		}
		items := make([]*Item, 0, len(order2))
		for _, k := range order2 {
			items = append(items, merged[k])
		}
		nodes = append(nodes, &Node{ID: newID, Items: items})
	}

	// Step 3: rewrite edges through repOf, collapsing duplicates.
	seen := map[[3]interface{}]bool{}
	var edges []Edge
	for _, e := range lr1dfa.Edges {
		from, to := repOf[e.From], repOf[e.To]
		k := [3]interface{}{from, to, e.Label.Name()}
		if seen[k] {
			continue
		}
		seen[k] = true
		edges = append(edges, Edge{From: from, To: to, Label: e.Label})
	}

	tracer().Infof("merged LR1 DFA (%d states) into LALR1 DFA (%d states)", len(lr1dfa.Nodes), len(nodes))
	return &DFA{
		RuleSet: lr1dfa.RuleSet,
		Nodes:   nodes,
		Edges:   edges,
		Start:   repOf[lr1dfa.Start],
	}, nil
}
