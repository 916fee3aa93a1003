package earley_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/npillmayer/copager"
	"github.com/npillmayer/copager/cfg"
	"github.com/npillmayer/copager/extra/earley"
)

func setupTest(t *testing.T) func() {
	gtrace.SyntaxTracer = gotestingadapter.New()
	teardown := gotestingadapter.RedirectTracing(t)
	gtrace.SyntaxTracer.SetTraceLevel(tracing.LevelInfo)
	return teardown
}

type simpleToken struct {
	tt  copager.TokType
	lex string
}

func (t simpleToken) TokType() copager.TokType { return t.tt }
func (t simpleToken) Lexeme() string           { return t.lex }
func (t simpleToken) Value() interface{}       { return t.lex }
func (t simpleToken) Span() copager.Span       { return copager.Span{} }

func namer(tok copager.Token) string {
	switch tok.TokType() {
	case 1:
		return "id"
	case 2:
		return "plus"
	}
	return "?"
}

func ambiguousSumGrammar(t *testing.T) *cfg.RuleSet {
	plus := cfg.StaticTerm{TermName: "plus"}
	id := cfg.StaticTerm{TermName: "id"}
	eRule := cfg.StaticRule{RuleName: "E"}

	bld := cfg.NewRuleSetBuilder("ambiguous-sum")
	bld.LHS(eRule, "E").N("E").T(plus).N("E")
	bld.LHS(eRule, "E").T(id)
	rs, err := bld.RuleSet()
	require.NoError(t, err)
	return rs
}

func TestEarleyAcceptsAmbiguousGrammar(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	rs := ambiguousSumGrammar(t)
	p := earley.NewParser(rs, namer)

	tokens := []copager.Token{
		simpleToken{1, "a"}, simpleToken{2, "+"}, simpleToken{1, "b"},
		simpleToken{2, "+"}, simpleToken{1, "c"},
	}
	ok, forest, err := p.Parse(tokens)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, forest.Root)
	require.True(t, forest.Root.Ambiguous())

	trees := forest.Root.Derivations(10)
	require.GreaterOrEqual(t, len(trees), 2)
}

func TestEarleyRejectsBadInput(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	rs := ambiguousSumGrammar(t)
	p := earley.NewParser(rs, namer)

	tokens := []copager.Token{simpleToken{2, "+"}}
	ok, _, err := p.Parse(tokens)
	require.False(t, ok)
	require.Error(t, err)
}

func TestEarleyAcceptsSingleToken(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	rs := ambiguousSumGrammar(t)
	p := earley.NewParser(rs, namer)

	tokens := []copager.Token{simpleToken{1, "a"}}
	ok, forest, err := p.Parse(tokens)
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, forest.Root.Ambiguous())
}
