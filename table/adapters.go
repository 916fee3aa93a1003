/*
Adapters wrapping each automaton package's concrete *DFA type behind the
AnyDFA interface, so Compile can be written once against an abstraction
instead of once per variant.
*/
package table

import (
	"github.com/npillmayer/copager/cfg"
	"github.com/npillmayer/copager/cfg/lalr1"
	"github.com/npillmayer/copager/cfg/lr0"
	"github.com/npillmayer/copager/cfg/lr1"
	"github.com/npillmayer/copager/cfg/sets"
)

// LR0Adapter adapts *lr0.DFA to AnyDFA. Its items carry no lookahead, so
// ReduceItems returns a nil Lookaheads slice for every reducible item,
// signalling Compile to expand per Variant (LR0 fills every terminal
// plus EOF).
type LR0Adapter struct{ DFA *lr0.DFA }

func (a LR0Adapter) RuleSet() *cfg.RuleSet { return a.DFA.RuleSet }
func (a LR0Adapter) States() int           { return len(a.DFA.Nodes) }

func (a LR0Adapter) Edges() []DFAEdge {
	out := make([]DFAEdge, len(a.DFA.Edges))
	for i, e := range a.DFA.Edges {
		out[i] = DFAEdge{From: e.From, To: e.To, Label: e.Label}
	}
	return out
}

func (a LR0Adapter) ReduceItems(state int) []ReduceItem {
	var out []ReduceItem
	for _, it := range a.DFA.NodeByID(state).Items.Items() {
		if it.AtEnd() {
			out = append(out, ReduceItem{Rule: it.Rule})
		}
	}
	return out
}

// LR1Adapter adapts *lr1.DFA to AnyDFA. Each reducible item already carries
// its single lookahead, so ReduceItems reports it verbatim.
type LR1Adapter struct{ DFA *lr1.DFA }

func (a LR1Adapter) RuleSet() *cfg.RuleSet { return a.DFA.RuleSet }
func (a LR1Adapter) States() int           { return len(a.DFA.Nodes) }

func (a LR1Adapter) Edges() []DFAEdge {
	out := make([]DFAEdge, len(a.DFA.Edges))
	for i, e := range a.DFA.Edges {
		out[i] = DFAEdge{From: e.From, To: e.To, Label: e.Label}
	}
	return out
}

func (a LR1Adapter) ReduceItems(state int) []ReduceItem {
	var out []ReduceItem
	for _, it := range a.DFA.NodeByID(state).Items.Items() {
		if it.AtEnd() {
			out = append(out, ReduceItem{Rule: it.Rule, Lookaheads: []cfg.Elem{it.Lookahead}})
		}
	}
	return out
}

// LALR1Adapter adapts *lalr1.DFA to AnyDFA. Each merged item already carries
// its unioned lookahead set.
type LALR1Adapter struct{ DFA *lalr1.DFA }

func (a LALR1Adapter) RuleSet() *cfg.RuleSet { return a.DFA.RuleSet }
func (a LALR1Adapter) States() int           { return len(a.DFA.Nodes) }

func (a LALR1Adapter) Edges() []DFAEdge {
	out := make([]DFAEdge, len(a.DFA.Edges))
	for i, e := range a.DFA.Edges {
		out[i] = DFAEdge{From: e.From, To: e.To, Label: e.Label}
	}
	return out
}

func (a LALR1Adapter) ReduceItems(state int) []ReduceItem {
	var out []ReduceItem
	for _, it := range a.DFA.NodeByID(state).Items {
		if it.AtEnd() {
			out = append(out, ReduceItem{Rule: it.Rule, Lookaheads: it.LookaheadElems()})
		}
	}
	return out
}

// CompileLR0 is a convenience wrapper: Compile(LR0Adapter{dfa}, LR0, nil).
func CompileLR0(dfa *lr0.DFA) (*Table, error) {
	return Compile(LR0Adapter{DFA: dfa}, LR0, nil)
}

// CompileSLR1 is a convenience wrapper: the same LR(0) automaton, decided by
// FOLLOW sets instead of the full terminal alphabet.
func CompileSLR1(dfa *lr0.DFA, follow *sets.FollowSets) (*Table, error) {
	return Compile(LR0Adapter{DFA: dfa}, SLR1, follow)
}

// CompileLR1 is a convenience wrapper: Compile(LR1Adapter{dfa}, LR1, nil).
func CompileLR1(dfa *lr1.DFA) (*Table, error) {
	return Compile(LR1Adapter{DFA: dfa}, LR1, nil)
}

// CompileLALR1 is a convenience wrapper: Compile(LALR1Adapter{dfa}, LALR1, nil).
func CompileLALR1(dfa *lalr1.DFA) (*Table, error) {
	return Compile(LALR1Adapter{DFA: dfa}, LALR1, nil)
}
