package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/npillmayer/copager/cfg"
	"github.com/npillmayer/copager/lexer"
)

func setupTest(t *testing.T) func() {
	gtrace.SyntaxTracer = gotestingadapter.New()
	teardown := gotestingadapter.RedirectTracing(t)
	gtrace.SyntaxTracer.SetTraceLevel(tracing.LevelInfo)
	return teardown
}

func wsTinyGrammar(t *testing.T) *cfg.RuleSet {
	id := cfg.StaticTerm{TermName: "id", TermPatterns: []string{"[a-z]+"}}
	plus := cfg.StaticTerm{TermName: "plus", TermPatterns: []string{"\\+"}}
	ws := cfg.StaticTerm{TermName: "ws", TermPatterns: []string{"( |\t|\n)"}, TermOptions: []string{"trivia"}}
	sRule := cfg.StaticRule{RuleName: "S"}

	bld := cfg.NewRuleSetBuilder("tiny-lex")
	bld.LHS(sRule, "S").T(id).T(plus).T(id).T(ws)
	rs, err := bld.RuleSet()
	require.NoError(t, err)
	return rs
}

func TestLexerSkipsTrivia(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	rs := wsTinyGrammar(t)
	lx, err := lexer.New(rs)
	require.NoError(t, err)

	sc, err := lx.Scanner("a + b")
	require.NoError(t, err)

	var names []string
	for {
		tok, err := sc.Next()
		require.NoError(t, err)
		if tok.TokType() == lexer.EOFTokType {
			break
		}
		names = append(names, lx.NameFor(tok.TokType()))
	}
	require.Equal(t, []string{"id", "plus", "id"}, names)
}

func TestLexerKeepsTriviaWhenConfigured(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	rs := wsTinyGrammar(t)
	lx, err := lexer.New(rs, lexer.SkipTrivia(false))
	require.NoError(t, err)

	sc, err := lx.Scanner("a b")
	require.NoError(t, err)

	var names []string
	for {
		tok, err := sc.Next()
		require.NoError(t, err)
		if tok.TokType() == lexer.EOFTokType {
			break
		}
		names = append(names, lx.NameFor(tok.TokType()))
	}
	require.Equal(t, []string{"id", "ws", "id"}, names)
}

func TestLexerNamer(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	rs := wsTinyGrammar(t)
	lx, err := lexer.New(rs)
	require.NoError(t, err)

	sc, err := lx.Scanner("a")
	require.NoError(t, err)
	tok, err := sc.Next()
	require.NoError(t, err)

	namer := lx.Namer()
	require.Equal(t, "id", namer(tok))
}
