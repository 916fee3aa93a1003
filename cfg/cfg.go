/*
Package cfg implements the grammar data model: terminal tags, rule tags,
productions and rule sets.

Terminal tags and rule tags are treated as opaque, capability-bearing
identities: clients provide a finite, hashable, totally comparable set of
values, plus a function expanding a rule tag to its productions and, for
terminals, a function returning surface patterns and option strings
("Polymorphism over grammar types").

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package cfg

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'copager.cfg'.
func tracer() tracing.Trace {
	return tracing.Select("copager.cfg")
}

// Term is a terminal tag: an opaque identity carrying a non-empty ordered
// list of surface patterns (the lexer's concern) and an ordered list of
// string options (e.g. "trivia", "ir_omit").
type Term interface {
	Name() string
	Patterns() []string
	Options() []string
}

// Rule is a rule tag: an opaque identity for a group of productions sharing
// a left-hand-side nonterminal role.
type Rule interface {
	Name() string
}

// StaticTerm is a ready-made Term implementation for terminals known up
// front (the common case: a fixed token set declared once).
type StaticTerm struct {
	TermName     string
	TermPatterns []string
	TermOptions  []string
}

func (t StaticTerm) Name() string       { return t.TermName }
func (t StaticTerm) Patterns() []string { return t.TermPatterns }
func (t StaticTerm) Options() []string  { return t.TermOptions }

// HasOption reports whether t carries the given option string. "trivia" and
// "ignored" are treated as synonyms.
func (t StaticTerm) HasOption(opt string) bool {
	for _, o := range t.TermOptions {
		if o == opt {
			return true
		}
		if opt == "trivia" && o == "ignored" {
			return true
		}
		if opt == "ignored" && o == "trivia" {
			return true
		}
	}
	return false
}

// StaticRule is a ready-made Rule implementation, tagging a group of
// productions by name.
type StaticRule struct {
	RuleName string
}

func (r StaticRule) Name() string { return r.RuleName }

// eofTerm is the (non-exported) terminal stand-in carried by the EOF
// sentinel Elem below; it is never user-visible.
var (
	eofTerm = StaticTerm{TermName: "$"}
)

// ElemKind distinguishes the four RuleElem variants.
type ElemKind int

const (
	// KindNonTerm marks an Elem naming a nonterminal (by its LHS name).
	KindNonTerm ElemKind = iota
	// KindTerm marks an Elem wrapping a terminal tag.
	KindTerm
	// KindEpsilon marks the empty-RHS marker.
	KindEpsilon
	// KindEOF marks the end-of-input sentinel, distinct from every Term.
	KindEOF
)

// Elem is a tagged union of NonTerm(name)/Term(T)/Epsilon/EOF. Go has no
// native sum types; Elem is a small closed struct playing that role,
// following the shape of gorgo's own Symbol type.
type Elem struct {
	kind ElemKind
	name string // valid when kind == KindNonTerm
	term Term   // valid when kind == KindTerm
}

// NonTerm constructs a nonterminal reference Elem.
func NonTerm(name string) Elem { return Elem{kind: KindNonTerm, name: name} }

// TermElem constructs a terminal reference Elem.
func TermElem(t Term) Elem { return Elem{kind: KindTerm, term: t} }

// EpsilonElem is the singleton empty-RHS marker.
var EpsilonElem = Elem{kind: KindEpsilon}

// EOFElem is the singleton end-of-input sentinel, distinct from every Term.
var EOFElem = Elem{kind: KindEOF, term: eofTerm}

func (e Elem) Kind() ElemKind   { return e.kind }
func (e Elem) IsNonTerm() bool  { return e.kind == KindNonTerm }
func (e Elem) IsTerm() bool     { return e.kind == KindTerm }
func (e Elem) IsEpsilon() bool  { return e.kind == KindEpsilon }
func (e Elem) IsEOF() bool      { return e.kind == KindEOF }
func (e Elem) IsTerminal() bool { return e.kind == KindTerm || e.kind == KindEOF }

// NonTermName returns the nonterminal name; only valid when IsNonTerm().
func (e Elem) NonTermName() string { return e.name }

// Term returns the wrapped terminal tag; only valid when IsTerm().
func (e Elem) Term() Term { return e.term }

// Name returns a stable, comparable name for e suitable as a table/goto key:
// the nonterminal name, the terminal's Name(), "ε", or "$".
func (e Elem) Name() string {
	switch e.kind {
	case KindNonTerm:
		return e.name
	case KindTerm:
		return e.term.Name()
	case KindEpsilon:
		return "ε"
	case KindEOF:
		return "$"
	}
	return "?"
}

// Equal compares two Elems structurally: same kind, and (for NonTerm) same
// name, or (for Term) same terminal Name().
func (e Elem) Equal(other Elem) bool {
	if e.kind != other.kind {
		return false
	}
	switch e.kind {
	case KindNonTerm:
		return e.name == other.name
	case KindTerm:
		return e.term.Name() == other.term.Name()
	default:
		return true
	}
}

func (e Elem) String() string {
	switch e.kind {
	case KindNonTerm:
		return fmt.Sprintf("<%s>", e.name)
	default:
		return e.Name()
	}
}

// Production is a single grammar rule: { id, tag, lhs, rhs }. id is assigned
// when collected into a RuleSet and is used only for debugging; structural
// equality compares (tag, lhs, rhs), never id.
type Production struct {
	ID  int
	Tag Rule // nil for the synthetic augmenting production
	LHS Elem // always a NonTerm
	RHS []Elem
}

// Equal compares two productions structurally: equality-as-identity is
// not relied upon, structural equality compares (tag, lhs, rhs).
func (p *Production) Equal(other *Production) bool {
	if p == other {
		return true
	}
	if p == nil || other == nil {
		return false
	}
	if !tagsEqual(p.Tag, other.Tag) || !p.LHS.Equal(other.LHS) {
		return false
	}
	if len(p.RHS) != len(other.RHS) {
		return false
	}
	for i, e := range p.RHS {
		if !e.Equal(other.RHS[i]) {
			return false
		}
	}
	return true
}

func tagsEqual(a, b Rule) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Name() == b.Name()
}

// IsEpsilonRHS reports whether p's RHS is the empty production (the RHS
// collapses to a single Epsilon element).
func (p *Production) IsEpsilonRHS() bool {
	return len(p.RHS) == 1 && p.RHS[0].IsEpsilon()
}

func (p *Production) String() string {
	if p.IsEpsilonRHS() {
		return fmt.Sprintf("%s ::= ε", p.LHS)
	}
	parts := make([]string, len(p.RHS))
	for i, e := range p.RHS {
		parts[i] = e.String()
	}
	s := p.LHS.String() + " ::="
	for _, part := range parts {
		s += " " + part
	}
	return s
}

// RuleSet is an ordered sequence of productions plus a Top field naming the
// start nonterminal.
type RuleSet struct {
	productions []*Production
	top         string
	augmented   bool
}

// Top returns the start nonterminal's name (the LHS of the first production,
// or "__top_dummy" after Augment()).
func (rs *RuleSet) Top() string { return rs.top }

// Productions returns the ordered sequence of all productions.
func (rs *RuleSet) Productions() []*Production { return rs.productions }

// ProductionsFor returns all productions whose LHS name equals lhs.
func (rs *RuleSet) ProductionsFor(lhs string) []*Production {
	var out []*Production
	for _, p := range rs.productions {
		if p.LHS.Name() == lhs {
			out = append(out, p)
		}
	}
	return out
}

// Nonterminals returns the set of all nonterminal names referenced anywhere
// in the rule set (as an LHS or within a RHS).
func (rs *RuleSet) Nonterminals() []string {
	seen := map[string]bool{}
	var out []string
	add := func(n string) {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for _, p := range rs.productions {
		add(p.LHS.Name())
		for _, e := range p.RHS {
			if e.IsNonTerm() {
				add(e.NonTermName())
			}
		}
	}
	return out
}

// Terminals returns the set of all terminal tags referenced in any RHS (not
// including the synthetic EOF sentinel).
func (rs *RuleSet) Terminals() []Term {
	seen := map[string]bool{}
	var out []Term
	for _, p := range rs.productions {
		for _, e := range p.RHS {
			if e.IsTerm() {
				t := e.Term()
				if !seen[t.Name()] {
					seen[t.Name()] = true
					out = append(out, t)
				}
			}
		}
	}
	return out
}

// Rule looks up the production with the given id. id is a debugging handle
// assigned at RuleSet construction time, stable for the lifetime of rs.
func (rs *RuleSet) Rule(id int) *Production {
	if id < 0 || id >= len(rs.productions) {
		return nil
	}
	return rs.productions[id]
}

// augmentedTop is the synthetic start nonterminal name introduced by
// Augment().
const augmentedTop = "__top_dummy"

// Augment returns a new RuleSet with a synthetic production
// __top_dummy ::= <top> prepended, carrying Tag == nil. It is a
// precondition of table construction. Calling Augment twice is a
// no-op (returns rs unchanged) since the augmenting production is only ever
// needed once.
func (rs *RuleSet) Augment() *RuleSet {
	if rs.augmented {
		return rs
	}
	dummy := &Production{
		ID:  0,
		Tag: nil,
		LHS: NonTerm(augmentedTop),
		RHS: []Elem{NonTerm(rs.top)},
	}
	prods := make([]*Production, 0, len(rs.productions)+1)
	prods = append(prods, dummy)
	for _, p := range rs.productions {
		prods = append(prods, &Production{ID: p.ID + 1, Tag: p.Tag, LHS: p.LHS, RHS: p.RHS})
	}
	return &RuleSet{productions: prods, top: augmentedTop, augmented: true}
}

// Augmented reports whether rs already carries the synthetic start rule.
func (rs *RuleSet) Augmented() bool { return rs.augmented }

// IsAugmentingProduction reports whether p is the synthetic
// __top_dummy ::= <top> production introduced by Augment() — the table
// compiler's Accept target.
func (p *Production) IsAugmentingProduction() bool {
	return p.Tag == nil && p.LHS.Name() == augmentedTop
}

// RuleSetBuilder builds a RuleSet from a sequence of (tag, LHS, RHS)
// additions, assigning production ids in collection order, following the
// fluent builder idiom of gorgo's own grammar builder
// (b.LHS("S").N("A").T("a", tok).End()).
type RuleSetBuilder struct {
	name string
	prod []*Production
	cur  *productionDraft
	err  error
}

type productionDraft struct {
	tag Rule
	lhs string
	rhs []Elem
}

// NewRuleSetBuilder creates a builder for a rule set named name (used only
// for diagnostics).
func NewRuleSetBuilder(name string) *RuleSetBuilder {
	return &RuleSetBuilder{name: name}
}

// LHS starts a new production for the given nonterminal, tagged by tag
// (tag may repeat across productions: each tag expands to one or more
// productions).
func (b *RuleSetBuilder) LHS(tag Rule, lhs string) *RuleSetBuilder {
	b.flush()
	b.cur = &productionDraft{tag: tag, lhs: lhs}
	return b
}

func (b *RuleSetBuilder) flush() {
	if b.cur != nil {
		b.prod = append(b.prod, &Production{
			ID:  len(b.prod),
			Tag: b.cur.tag,
			LHS: NonTerm(b.cur.lhs),
			RHS: b.cur.rhs,
		})
		b.cur = nil
	}
}

// Add appends an already-complete production (LHS, RHS and tag fully
// formed elsewhere — e.g. parsed from a BNF declaration string by package
// bnf) to the builder, assigning it a fresh ID in collection order. Any
// production started via LHS but not yet closed is flushed first.
func (b *RuleSetBuilder) Add(tag Rule, lhs string, rhs []Elem) *RuleSetBuilder {
	b.flush()
	b.prod = append(b.prod, &Production{ID: len(b.prod), Tag: tag, LHS: NonTerm(lhs), RHS: rhs})
	return b
}

// N appends a nonterminal reference to the RHS under construction.
func (b *RuleSetBuilder) N(name string) *RuleSetBuilder {
	if b.cur == nil {
		b.err = fmt.Errorf("cfg: N(%q) called without a preceding LHS(...)", name)
		return b
	}
	b.cur.rhs = append(b.cur.rhs, NonTerm(name))
	return b
}

// T appends a terminal reference to the RHS under construction.
func (b *RuleSetBuilder) T(t Term) *RuleSetBuilder {
	if b.cur == nil {
		b.err = fmt.Errorf("cfg: T(%q) called without a preceding LHS(...)", t.Name())
		return b
	}
	b.cur.rhs = append(b.cur.rhs, TermElem(t))
	return b
}

// Epsilon marks the RHS under construction as empty. An RHS containing
// Epsilon must contain exactly that one element.
func (b *RuleSetBuilder) Epsilon() *RuleSetBuilder {
	if b.cur == nil {
		b.err = fmt.Errorf("cfg: Epsilon() called without a preceding LHS(...)")
		return b
	}
	if len(b.cur.rhs) != 0 {
		b.err = fmt.Errorf("cfg: Epsilon() on a non-empty RHS for %q", b.cur.lhs)
		return b
	}
	b.cur.rhs = []Elem{EpsilonElem}
	return b
}

// RuleSet finalizes the builder into a RuleSet. The first production added
// determines Top (invariant).
func (b *RuleSetBuilder) RuleSet() (*RuleSet, error) {
	b.flush()
	if b.err != nil {
		return nil, b.err
	}
	if len(b.prod) == 0 {
		return nil, fmt.Errorf("cfg: rule set %q has no productions", b.name)
	}
	for _, p := range b.prod {
		if len(p.RHS) == 0 {
			return nil, fmt.Errorf("cfg: production %s has an empty RHS; use Epsilon()", p)
		}
	}
	tracer().Infof("built rule set %q with %d productions, top=%q", b.name, len(b.prod), b.prod[0].LHS.Name())
	return &RuleSet{productions: b.prod, top: b.prod[0].LHS.Name()}, nil
}
