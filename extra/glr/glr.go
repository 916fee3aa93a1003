/*
Package glr is an extra, non-core adaptation of gorgo's lr/glr: a
small-scale GLR parser driving an ambiguous LR0 action table over
extra/dss's graph-structured stack, producing every accepting derivation
instead of failing at the first shift/reduce or reduce/reduce conflict.
GLR is excluded as an automatic conflict fallback inside the core
pipeline (package table's Compile reports such conflicts as a fatal
*ConflictError); this package is a manually-selected alternative a
caller reaches for explicitly, never wired into processor/driver/table.

Grounded on gorgo's lr/glr/glr.go for the overall shape (a parser holding
an LR action/goto table plus a dss-backed multi-stack frontier, stepping
token by token, forking on conflict) and on package table's own
AnyDFA/DFAEdge/ReduceItem (reused directly, instead of going through
table.Compile, precisely because Compile's conflict policy is unsuitable
here) to build a *multi*-valued action table: every Shift/Reduce/Accept
licensed in a state/terminal cell is kept, not just the first.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package glr

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"

	"github.com/npillmayer/copager"
	"github.com/npillmayer/copager/cfg"
	"github.com/npillmayer/copager/driver"
	"github.com/npillmayer/copager/extra/dss"
	"github.com/npillmayer/copager/extra/sppf"
	"github.com/npillmayer/copager/table"
)

// tracer traces with key 'copager.extra.glr'.
func tracer() tracing.Trace {
	return tracing.Select("copager.extra.glr")
}

type actionKind int

const (
	actShift actionKind = iota
	actReduce
	actAccept
)

type action struct {
	kind    actionKind
	toState int
	prod    *cfg.Production
}

// Parser drives a multi-valued LR0 action/goto table over a GSS
// frontier, forking on every state/terminal cell that licenses more
// than one action.
type Parser struct {
	rs      *cfg.RuleSet
	actions []map[string][]action
	gotoTbl []map[string]int
}

// NewParser builds a GLR parser from any compiled automaton (typically
// an LR0 DFA, the variant most prone to conflicts and therefore the one
// GLR exists to rescue).
func NewParser(dfa table.AnyDFA) *Parser {
	rs := dfa.RuleSet()
	n := dfa.States()
	p := &Parser{
		rs:      rs,
		actions: make([]map[string][]action, n),
		gotoTbl: make([]map[string]int, n),
	}
	for s := 0; s < n; s++ {
		p.actions[s] = map[string][]action{}
		p.gotoTbl[s] = map[string]int{}
	}
	for _, e := range dfa.Edges() {
		if e.Label.IsTerminal() {
			p.actions[e.From][e.Label.Name()] = append(p.actions[e.From][e.Label.Name()], action{kind: actShift, toState: e.To})
		} else {
			p.gotoTbl[e.From][e.Label.Name()] = e.To
		}
	}
	terms := rs.Terminals()
	termNames := make([]string, 0, len(terms)+1)
	for _, t := range terms {
		termNames = append(termNames, t.Name())
	}
	termNames = append(termNames, cfg.EOFElem.Name())
	for s := 0; s < n; s++ {
		for _, ri := range dfa.ReduceItems(s) {
			for _, name := range termNames {
				if ri.Rule.IsAugmentingProduction() {
					if name == cfg.EOFElem.Name() {
						p.actions[s][name] = append(p.actions[s][name], action{kind: actAccept})
					}
					continue
				}
				p.actions[s][name] = append(p.actions[s][name], action{kind: actReduce, prod: ri.Rule})
			}
		}
	}
	tracer().Infof("glr: built ambiguous action table, %d states", n)
	return p
}

// path is one frontier position: a GSS stack for control state, and a
// parallel (unshared, copy-on-fork) value stack building an extra/sppf
// derivation tree.
type path struct {
	stack  *dss.Stack
	values []*sppf.Tree
}

func (p *path) fork() *path {
	values := make([]*sppf.Tree, len(p.values))
	copy(values, p.values)
	return &path{stack: p.stack.Fork(), values: values}
}

// maxReduceSteps bounds the reduce-fixpoint loop per lookahead, guarding
// against a cyclic unit-reduce grammar looping forever (a price of the
// simplified dss this package builds on, which doesn't dedupe converging
// paths the way a full Tomita GSS would).
const maxReduceSteps = 10000

// Parse runs the GLR frontier over tokens, returning one *sppf.Tree per
// distinct accepting derivation (more than one means the grammar is
// genuinely ambiguous on this input).
func (p *Parser) Parse(tokens []copager.Token, namer driver.TokenNamer) ([]*sppf.Tree, error) {
	root := dss.NewRoot("glr", 0)
	active := []*path{{stack: dss.NewStack(root)}}
	var results []*sppf.Tree

	for i := 0; i <= len(tokens); i++ {
		lookahead := cfg.EOFElem.Name()
		if i < len(tokens) {
			lookahead = namer(tokens[i])
		}

		type shiftCandidate struct {
			branch  *path
			toState int
		}
		var shiftReady []shiftCandidate
		queue := active
		steps := 0
		for len(queue) > 0 {
			steps++
			if steps > maxReduceSteps {
				return nil, fmt.Errorf("glr: exceeded reduce-step budget at input position %d; grammar likely has a unit-reduce cycle", i)
			}
			cur := queue[0]
			queue = queue[1:]
			state, _ := cur.stack.Peek()
			acts := p.actions[state][lookahead]
			for ai, a := range acts {
				branch := cur
				if ai > 0 {
					branch = cur.fork()
				}
				switch a.kind {
				case actShift:
					shiftReady = append(shiftReady, shiftCandidate{branch: branch, toState: a.toState})
				case actReduce:
					if err := branch.reduce(a.prod, p.gotoTbl); err != nil {
						return nil, err
					}
					queue = append(queue, branch)
				case actAccept:
					if len(branch.values) == 0 {
						return nil, fmt.Errorf("glr: accept with an empty value stack")
					}
					results = append(results, branch.values[len(branch.values)-1])
				}
			}
		}

		if i == len(tokens) {
			break
		}
		tokName := lookahead
		active = active[:0]
		for _, sc := range shiftReady {
			sc.branch.stack.Push(sc.toState, tokName)
			sc.branch.values = append(sc.branch.values, &sppf.Tree{Symbol: tokName})
			active = append(active, sc.branch)
		}
		if len(active) == 0 {
			return nil, fmt.Errorf("glr: no viable stack survives token %d (%q)", i, tokName)
		}
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("glr: input rejected, no accepting derivation found")
	}
	tracer().Infof("glr: %d accepting derivation(s)", len(results))
	return results, nil
}

// reduce pops len(prod.RHS) frames (0 for an epsilon production), builds
// a derivation-tree node for prod.LHS from the popped values, and pushes
// the goto frame.
func (p *path) reduce(prod *cfg.Production, gotoTbl []map[string]int) error {
	n := len(prod.RHS)
	if prod.IsEpsilonRHS() {
		n = 0
	}
	if _, ok := p.stack.PopN(n); !ok {
		return fmt.Errorf("glr: stack underflow reducing %s", prod)
	}
	children := p.values[len(p.values)-n:]
	rest := make([]*sppf.Tree, len(p.values)-n)
	copy(rest, p.values[:len(p.values)-n])
	node := &sppf.Tree{Symbol: prod.LHS.Name(), Rule: prod.String(), Children: append([]*sppf.Tree{}, children...)}

	state, _ := p.stack.Peek()
	toState, ok := gotoTbl[state][prod.LHS.Name()]
	if !ok {
		return fmt.Errorf("glr: no goto from state %d on %s", state, prod.LHS.Name())
	}
	p.stack.Push(toState, prod.LHS.Name())
	p.values = append(rest, node)
	return nil
}
