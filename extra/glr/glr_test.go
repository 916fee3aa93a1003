package glr_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/npillmayer/copager"
	"github.com/npillmayer/copager/cfg"
	"github.com/npillmayer/copager/cfg/lr0"
	"github.com/npillmayer/copager/extra/glr"
	"github.com/npillmayer/copager/table"
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
	return rs.Augment()
}

func buildDFA(t *testing.T, rs *cfg.RuleSet) *lr0.DFA {
	dfa, err := lr0.BuildDFA(rs)
	require.NoError(t, err)
	return dfa
}

func TestGLRFindsMultipleDerivations(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	rs := ambiguousSumGrammar(t)
	dfa := buildDFA(t, rs)
	p := glr.NewParser(table.LR0Adapter{DFA: dfa})

	tokens := []copager.Token{
		simpleToken{1, "a"}, simpleToken{2, "+"}, simpleToken{1, "b"},
		simpleToken{2, "+"}, simpleToken{1, "c"},
	}
	trees, err := p.Parse(tokens, namer)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(trees), 2)
}

func TestGLRRejectsBadInput(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	rs := ambiguousSumGrammar(t)
	dfa := buildDFA(t, rs)
	p := glr.NewParser(table.LR0Adapter{DFA: dfa})

	tokens := []copager.Token{simpleToken{2, "+"}}
	_, err := p.Parse(tokens, namer)
	require.Error(t, err)
}

func TestGLRAcceptsSingleToken(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	rs := ambiguousSumGrammar(t)
	dfa := buildDFA(t, rs)
	p := glr.NewParser(table.LR0Adapter{DFA: dfa})

	tokens := []copager.Token{simpleToken{1, "a"}}
	trees, err := p.Parse(tokens, namer)
	require.NoError(t, err)
	require.Len(t, trees, 1)
	require.Equal(t, "E", trees[0].Symbol)
}
