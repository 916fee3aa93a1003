/*
Package lexer turns a cfg.RuleSet's terminal tags into a running scanner,
built from each Term's declared surface patterns. It wraps
github.com/timtadh/lexmachine the way gorgo's lr/scanner/lexmach package
wraps it for its own token type, generalized to copager.Token and to an
arbitrary caller-supplied terminal alphabet instead of a fixed
literal/keyword list.

Matching is longest match, ties broken by the terminal's declaration
order in the RuleSet (lexmachine's own match-and-tie-break policy,
simply inherited instead of reimplemented). Trivia and ignored
terminals are unified: both option strings mark a terminal as
skip-on-match, exactly as StaticTerm.HasOption treats them as synonyms.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package lexer

import (
	"fmt"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"

	"github.com/npillmayer/copager"
	"github.com/npillmayer/copager/cfg"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'copager.lexer'.
func tracer() tracing.Trace {
	return tracing.Select("copager.lexer")
}

// Option configures a Lexer at construction time, following the same
// functional-options shape as gorgo's scanner.Option.
type Option func(*Lexer)

// SkipTrivia controls whether terminals tagged "trivia" or "ignored" are
// silently dropped (true, the default) or surfaced as ordinary tokens
// (false).
func SkipTrivia(b bool) Option {
	return func(l *Lexer) { l.skipTrivia = b }
}

// Lexer scans an input string into a stream of copager.Token values, one
// per non-trivia terminal match (or, with SkipTrivia(false), one per match
// including trivia).
type Lexer struct {
	lmLexer     *lexmachine.Lexer
	terms       []cfg.Term // terms[i] has TokType i+1 (0 reserved for EOF)
	nameByID    map[int]string
	idByName    map[string]int
	triviaByID  map[int]bool
	skipTrivia  bool
}

// EOFTokType is the TokType reported for the synthetic end-of-input token.
const EOFTokType copager.TokType = 0

// New builds a Lexer from every terminal referenced in rs, adding one
// lexmachine rule per declared surface pattern, in RuleSet.Terminals()
// order. The lexer is always built from the grammar's declared
// terminals, never configured separately.
func New(rs *cfg.RuleSet, opts ...Option) (*Lexer, error) {
	l := &Lexer{
		nameByID:   map[int]string{},
		idByName:   map[string]int{},
		triviaByID: map[int]bool{},
		skipTrivia: true,
	}
	for _, opt := range opts {
		opt(l)
	}

	l.lmLexer = lexmachine.NewLexer()
	for i, t := range rs.Terminals() {
		id := i + 1 // 0 is reserved for EOF
		l.terms = append(l.terms, t)
		l.nameByID[id] = t.Name()
		l.idByName[t.Name()] = id
		isTrivia := hasTriviaOption(t)
		l.triviaByID[id] = isTrivia
		for _, pat := range t.Patterns() {
			tokID, trivia := id, isTrivia
			l.lmLexer.Add([]byte(pat), func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
				if trivia && l.skipTrivia {
					return nil, nil
				}
				return s.Token(tokID, string(m.Bytes), m), nil
			})
		}
	}
	if err := l.lmLexer.Compile(); err != nil {
		tracer().Errorf("lexer: compiling DFA: %v", err)
		return nil, fmt.Errorf("lexer: compiling DFA: %w", err)
	}
	tracer().Infof("built lexer for %d terminals", len(l.terms))
	return l, nil
}

// hasTriviaOption reports whether t carries "trivia" or "ignored" (synonyms).
func hasTriviaOption(t cfg.Term) bool {
	for _, o := range t.Options() {
		if o == "trivia" || o == "ignored" {
			return true
		}
	}
	return false
}

// NameFor returns the terminal name for a TokType produced by this lexer
// (driver.TokenNamer glue), or "$" for EOFTokType, or "" if unknown.
func (l *Lexer) NameFor(tt copager.TokType) string {
	if tt == EOFTokType {
		return cfg.EOFElem.Name()
	}
	return l.nameByID[int(tt)]
}

// Namer returns a function mapping a copager.Token to its terminal name,
// suitable as a driver.TokenNamer (kept untyped here to avoid lexer
// depending on package driver; see processor.Process for the glue).
func (l *Lexer) Namer() func(copager.Token) string {
	return func(tok copager.Token) string { return l.NameFor(tok.TokType()) }
}

// token adapts a *lexmachine.Token into copager.Token.
type token struct {
	tokID copager.TokType
	lex   string
	span  copager.Span
}

func (t token) TokType() copager.TokType { return t.tokID }
func (t token) Lexeme() string           { return t.lex }
func (t token) Value() interface{}       { return t.lex }
func (t token) Span() copager.Span       { return t.span }

// Scanner is a running lexmachine scan over one input string.
type Scanner struct {
	inner *lexmachine.Scanner
	err   func(error)
}

// logError is the default scanner error handler.
func logError(e error) {
	tracer().Errorf("lexer: scan error: %v", e)
}

// Scanner starts scanning src.
func (l *Lexer) Scanner(src string) (*Scanner, error) {
	s, err := l.lmLexer.Scanner([]byte(src))
	if err != nil {
		return nil, fmt.Errorf("lexer: creating scanner: %w", err)
	}
	return &Scanner{inner: s, err: logError}, nil
}

// SetErrorHandler overrides the default (log-and-continue) scan error
// handler.
func (s *Scanner) SetErrorHandler(h func(error)) {
	if h == nil {
		s.err = logError
		return
	}
	s.err = h
}

// Next returns the next non-trivia token (unless SkipTrivia(false) was
// given), or the EOF sentinel token once input is exhausted. Malformed
// input spans are skipped via lexmachine's fail-and-resync recovery,
// reported through the scanner's error handler ("the lexer does
// not abort the whole parse on one bad span").
func (s *Scanner) Next() (copager.Token, error) {
	for {
		raw, err, eof := s.inner.Next()
		if err != nil {
			s.err(err)
			if ui, ok := err.(*machines.UnconsumedInput); ok {
				s.inner.TC = ui.FailTC
				continue
			}
			return nil, err
		}
		if eof {
			return token{tokID: EOFTokType, lex: "", span: copager.Span{}}, nil
		}
		if raw == nil {
			// a trivia match that SkipTrivia(true) turned into a nil action
			// result: keep scanning.
			continue
		}
		lmTok := raw.(*lexmachine.Token)
		// lmTok.TC is the scanner's byte cursor at the end of the match (the
		// same byte-offset cursor resync uses on UnconsumedInput, above);
		// StartColumn/EndColumn reset every line and so cannot feed
		// copager.DecodePosition, which expects a byte offset into src.
		end := uint64(lmTok.TC)
		start := end - uint64(len(lmTok.Lexeme))
		span := copager.Span{start, end}
		return token{tokID: copager.TokType(lmTok.Type), lex: string(lmTok.Lexeme), span: span}, nil
	}
}
