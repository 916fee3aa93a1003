/*
Package bnf is a small declaration-language front end: it parses
BNF-ish strings of the shape

	<LHS> ::= <A> ident '+' <B>

into the module's cfg.Production data model. This is the Go analogue of
the original system's "derive macro" front end (Copager's cfl_derive /
core_derive crates, see original_source/crates/cfl_derive/src/impl/rule.rs):
Go has no attribute macros, so the same grammar is parsed by a plain
hand-written recursive-descent parser instead of at compile time, driven
by whatever code builds a RuleSet (generated or hand-written).

An RHS that parses to no elements at all collapses to Epsilon, mirroring
the original's "if rhs.is_empty() { rhs.push(Epsilon) }".

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package bnf

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/npillmayer/copager/cfg"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'copager.bnf'.
func tracer() tracing.Trace {
	return tracing.Select("copager.bnf")
}

// ParseTerm constructs a terminal tag from a name, its ordered surface
// patterns (regular expressions, consumed by package lexer) and option
// strings ("trivia"/"ignored" marking it as skip-on-match).
func ParseTerm(name string, patterns []string, options []string) cfg.Term {
	return cfg.StaticTerm{TermName: name, TermPatterns: patterns, TermOptions: options}
}

// ParseRules parses each of productions as one "<LHS> ::= rhs" declaration,
// tagging every resulting production with tag (spec: "each tag expands to
// one or more productions"). Bare (non-angle-bracketed) RHS identifiers are
// resolved against terms by name; an identifier with no entry in terms is
// a parse error, since package bnf has no other way to learn which
// terminal tag a bare name refers to.
func ParseRules(tag cfg.Rule, terms map[string]cfg.Term, productions []string) ([]*cfg.Production, error) {
	var out []*cfg.Production
	for i, src := range productions {
		p := newParser(src)
		lhs, rhs, err := p.parseRule(terms)
		if err != nil {
			return nil, fmt.Errorf("bnf: production %d (%q): %w", i, src, err)
		}
		out = append(out, &cfg.Production{ID: i, Tag: tag, LHS: cfg.NonTerm(lhs), RHS: rhs})
	}
	tracer().Infof("bnf: parsed %d productions for tag %q", len(out), tag.Name())
	return out, nil
}

type parser struct {
	src    string
	cursor int
	row    int
	col    int
}

func newParser(src string) *parser {
	return &parser{src: src, row: 1, col: 1}
}

func (p *parser) rest() string { return p.src[p.cursor:] }

func (p *parser) errf(format string, args ...interface{}) error {
	return fmt.Errorf("at %d:%d: %s", p.row, p.col, fmt.Sprintf(format, args...))
}

func (p *parser) advance(n int) {
	for i := 0; i < n; i++ {
		if p.cursor >= len(p.src) {
			return
		}
		if p.src[p.cursor] == '\n' {
			p.row++
			p.col = 1
		} else {
			p.col++
		}
		p.cursor++
	}
}

func (p *parser) skipSpaces() {
	for p.cursor < len(p.src) && unicode.IsSpace(rune(p.src[p.cursor])) {
		p.advance(1)
	}
}

func (p *parser) consume(tok string) error {
	p.skipSpaces()
	if !strings.HasPrefix(p.rest(), tok) {
		return p.errf("expected %q, got %q", tok, peek(p.rest()))
	}
	p.advance(len(tok))
	return nil
}

func peek(s string) string {
	if len(s) > 12 {
		return s[:12] + "..."
	}
	return s
}

// parseRule parses "<lhs> ::= rhs" and returns (lhs name, rhs elements).
func (p *parser) parseRule(terms map[string]cfg.Term) (string, []cfg.Elem, error) {
	lhs, err := p.parseNonterm()
	if err != nil {
		return "", nil, err
	}
	if err := p.consume("::="); err != nil {
		return "", nil, err
	}
	rhs, err := p.parseRHS(terms)
	if err != nil {
		return "", nil, err
	}
	return lhs, rhs, nil
}

// parseRHS parses a (possibly empty) sequence of <nonterm> and bare-ident
// terminal references. An empty sequence is reported as [Epsilon].
func (p *parser) parseRHS(terms map[string]cfg.Term) ([]cfg.Elem, error) {
	var rhs []cfg.Elem
	for {
		p.skipSpaces()
		if p.rest() == "" {
			break
		}
		if strings.HasPrefix(p.rest(), "<") {
			name, err := p.parseNonterm()
			if err != nil {
				return nil, err
			}
			rhs = append(rhs, cfg.NonTerm(name))
			continue
		}
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		t, ok := terms[name]
		if !ok {
			return nil, p.errf("unknown terminal %q (not registered in the terms map)", name)
		}
		rhs = append(rhs, cfg.TermElem(t))
	}
	if len(rhs) == 0 {
		rhs = []cfg.Elem{cfg.EpsilonElem}
	}
	return rhs, nil
}

// parseNonterm parses "<ident>".
func (p *parser) parseNonterm() (string, error) {
	if err := p.consume("<"); err != nil {
		return "", err
	}
	name, err := p.parseIdent()
	if err != nil {
		return "", err
	}
	if err := p.consume(">"); err != nil {
		return "", err
	}
	return name, nil
}

// parseIdent parses a run of non-space, non-angle-bracket characters,
// treating a single-quoted literal ('+', '::=', ...) as one identifier
// including its quotes stripped (the original system's literal-token
// convention).
func (p *parser) parseIdent() (string, error) {
	p.skipSpaces()
	if p.rest() == "" {
		return "", p.errf("expected an identifier, got end of input")
	}
	if p.src[p.cursor] == '\'' {
		end := strings.IndexByte(p.rest()[1:], '\'')
		if end < 0 {
			return "", p.errf("unterminated quoted literal")
		}
		lit := p.rest()[1 : 1+end]
		p.advance(end + 2)
		return lit, nil
	}
	start := p.cursor
	for p.cursor < len(p.src) {
		c := p.src[p.cursor]
		if unicode.IsSpace(rune(c)) || c == '<' || c == '>' {
			break
		}
		p.advance(1)
	}
	if p.cursor == start {
		return "", p.errf("expected an identifier, got %q", peek(p.rest()))
	}
	return p.src[start:p.cursor], nil
}
