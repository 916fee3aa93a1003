/*
Package sets computes the FIRST, FOLLOW and DIRECTOR sets of a rule set
by fixed-point iteration. These are pure derivatives of
a cfg.RuleSet: callers compute them once and reuse them for the lifetime
of the rule set.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package sets

import (
	"golang.org/x/exp/maps"

	"github.com/npillmayer/copager/cfg"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'copager.cfg'.
func tracer() tracing.Trace {
	return tracing.Select("copager.cfg")
}

// Set is a set of cfg.Elem values, keyed by their stable Name().
type Set map[string]cfg.Elem

func newSet() Set { return Set{} }

// Has reports whether e is a member of s.
func (s Set) Has(e cfg.Elem) bool {
	_, ok := s[e.Name()]
	return ok
}

// Add inserts e into s, returning true if s was changed.
func (s Set) Add(e cfg.Elem) bool {
	if s.Has(e) {
		return false
	}
	s[e.Name()] = e
	return true
}

// AddAll inserts every element of other into s, returning true if s changed.
func (s Set) AddAll(other Set) bool {
	changed := false
	for _, e := range other {
		if s.Add(e) {
			changed = true
		}
	}
	return changed
}

// AddAllExcept inserts every element of other into s except excl, returning
// true if s changed.
func (s Set) AddAllExcept(other Set, excl cfg.Elem) bool {
	changed := false
	for _, e := range other {
		if e.Equal(excl) {
			continue
		}
		if s.Add(e) {
			changed = true
		}
	}
	return changed
}

// Terminals returns the terminal (and EOF) members of s, dropping Epsilon.
func (s Set) Terminals() []cfg.Elem {
	var out []cfg.Elem
	for _, e := range s {
		if e.IsTerminal() {
			out = append(out, e)
		}
	}
	return out
}

// Elements returns all members of s in unspecified order.
func (s Set) Elements() []cfg.Elem {
	return maps.Values(s)
}

// FirstSets holds the computed FIRST(X) for every symbol X (terminal or
// nonterminal) reachable in a rule set.
type FirstSets struct {
	rs  *cfg.RuleSet
	tbl map[string]Set // keyed by symbol Name()
}

// First returns FIRST(name) for a nonterminal or terminal name, or an empty
// set if name is unknown.
func (fs *FirstSets) First(name string) Set {
	if s, ok := fs.tbl[name]; ok {
		return s
	}
	return newSet()
}

// First computes FIRST(X) for every symbol of rs by fixed-point iteration.
func First(rs *cfg.RuleSet) *FirstSets {
	tbl := map[string]Set{}

	// FIRST(T) = {T} for every terminal, FIRST(EOF) = {EOF}, FIRST(ε) = {ε}.
	for _, t := range rs.Terminals() {
		e := cfg.TermElem(t)
		tbl[e.Name()] = Set{e.Name(): e}
	}
	tbl[cfg.EOFElem.Name()] = Set{cfg.EOFElem.Name(): cfg.EOFElem}
	tbl[cfg.EpsilonElem.Name()] = Set{cfg.EpsilonElem.Name(): cfg.EpsilonElem}

	// FIRST(N) = ∅ initially for every nonterminal.
	for _, n := range rs.Nonterminals() {
		if _, ok := tbl[n]; !ok {
			tbl[n] = newSet()
		}
	}

	get := func(name string) Set {
		s, ok := tbl[name]
		if !ok {
			s = newSet()
			tbl[name] = s
		}
		return s
	}

	changed := true
	for changed {
		changed = false
		for _, p := range rs.Productions() {
			lhs := get(p.LHS.Name())
			if p.IsEpsilonRHS() {
				if lhs.Add(cfg.EpsilonElem) {
					changed = true
				}
				continue
			}
			// FIRST(X1 X2 ... Xn): walk symbols while each is nullable.
			allNullable := true
			for _, sym := range p.RHS {
				first := get(sym.Name())
				if lhs.AddAllExcept(first, cfg.EpsilonElem) {
					changed = true
				}
				if !first.Has(cfg.EpsilonElem) {
					allNullable = false
					break
				}
			}
			if allNullable {
				if lhs.Add(cfg.EpsilonElem) {
					changed = true
				}
			}
		}
	}
	tracer().Infof("computed FIRST sets for %d symbols", len(tbl))
	return &FirstSets{rs: rs, tbl: tbl}
}

// OfSeq computes FIRST(β) for a sequence of symbols β: take FIRST(s1)
// minus Epsilon; if Epsilon ∈ FIRST(s1) continue with s2,
// etc.; if every si is nullable, include EOF. An empty sequence returns
// {EOF}.
func (fs *FirstSets) OfSeq(seq []cfg.Elem) Set {
	result := newSet()
	if len(seq) == 0 {
		result.Add(cfg.EOFElem)
		return result
	}
	allNullable := true
	for _, sym := range seq {
		first := fs.First(sym.Name())
		result.AddAllExcept(first, cfg.EpsilonElem)
		if !first.Has(cfg.EpsilonElem) {
			allNullable = false
			break
		}
	}
	if allNullable {
		result.Add(cfg.EOFElem)
	}
	return result
}

// FollowSets holds the computed FOLLOW(N) for every nonterminal N.
type FollowSets struct {
	tbl map[string]Set
}

// Follow returns FOLLOW(name), or an empty set if name is not a known
// nonterminal.
func (fo *FollowSets) Follow(name string) Set {
	if s, ok := fo.tbl[name]; ok {
		return s
	}
	return newSet()
}

// Follow computes FOLLOW(N) for every nonterminal of rs by fixed-point
// iteration. first must have been computed for the same rs.
func Follow(rs *cfg.RuleSet, first *FirstSets) *FollowSets {
	tbl := map[string]Set{}
	for _, n := range rs.Nonterminals() {
		tbl[n] = newSet()
	}
	tbl[rs.Top()].Add(cfg.EOFElem)

	changed := true
	for changed {
		changed = false
		for _, p := range rs.Productions() {
			rhs := p.RHS
			for i, sym := range rhs {
				if !sym.IsNonTerm() {
					continue
				}
				beta := rhs[i+1:]
				firstBeta := first.OfSeq(beta)
				followB := tbl[sym.NonTermName()]
				if followB.AddAllExcept(firstBeta, cfg.EpsilonElem) {
					changed = true
				}
				if firstOfSeqIsNullable(first, beta) {
					if followB.AddAll(tbl[p.LHS.Name()]) {
						changed = true
					}
				}
			}
		}
	}
	tracer().Infof("computed FOLLOW sets for %d nonterminals", len(tbl))
	return &FollowSets{tbl: tbl}
}

// firstOfSeqIsNullable reports whether every symbol of seq is nullable
// (i.e. FIRST(seq) would include Epsilon were Epsilon tracked per-sequence;
// since OfSeq folds Epsilon into an EOF marker for empty continuations, this
// helper re-derives the same all-nullable predicate directly from the
// per-symbol FIRST sets).
func firstOfSeqIsNullable(first *FirstSets, seq []cfg.Elem) bool {
	for _, sym := range seq {
		if !first.First(sym.Name()).Has(cfg.EpsilonElem) {
			return false
		}
	}
	return true
}

// DirectorSets holds the computed DIRECTOR set for every production,
// indexed by production ID (used by SLR-style reference checks and by
// tests, not by the core table compiler).
type DirectorSets struct {
	byProdID map[int]Set
}

// Director returns the DIRECTOR set for the production with the given ID.
func (d *DirectorSets) Director(prodID int) Set {
	if s, ok := d.byProdID[prodID]; ok {
		return s
	}
	return newSet()
}

// Director computes DIRECTOR(A -> α) for every production of rs:
// if Epsilon ∉ FIRST(α), DIRECTOR = FIRST(α); otherwise DIRECTOR =
// (FIRST(α) \ {Epsilon}) ∪ FOLLOW(A).
func Director(rs *cfg.RuleSet, first *FirstSets, follow *FollowSets) *DirectorSets {
	byProdID := map[int]Set{}
	for _, p := range rs.Productions() {
		var alpha []cfg.Elem
		if !p.IsEpsilonRHS() {
			alpha = p.RHS
		}
		firstAlpha := first.OfSeq(alpha)
		d := newSet()
		if !firstOfSeqIsNullable(first, alpha) {
			d.AddAll(firstAlpha)
		} else {
			d.AddAllExcept(firstAlpha, cfg.EpsilonElem)
			d.AddAll(follow.Follow(p.LHS.Name()))
		}
		byProdID[p.ID] = d
	}
	return &DirectorSets{byProdID: byProdID}
}
