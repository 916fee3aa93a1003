package driver_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/npillmayer/copager"
	"github.com/npillmayer/copager/cfg"
	"github.com/npillmayer/copager/cfg/lalr1"
	"github.com/npillmayer/copager/cfg/lr1"
	"github.com/npillmayer/copager/cfg/sets"
	"github.com/npillmayer/copager/driver"
	"github.com/npillmayer/copager/table"
)

func setupTest(t *testing.T) func() {
	gtrace.SyntaxTracer = gotestingadapter.New()
	teardown := gotestingadapter.RedirectTracing(t)
	gtrace.SyntaxTracer.SetTraceLevel(tracing.LevelInfo)
	return teardown
}

// simpleToken is a minimal copager.Token for tests.
type simpleToken struct {
	tt   copager.TokType
	lex  string
	span copager.Span
}

func (s simpleToken) TokType() copager.TokType { return s.tt }
func (s simpleToken) Lexeme() string           { return s.lex }
func (s simpleToken) Value() interface{}       { return s.lex }
func (s simpleToken) Span() copager.Span       { return s.span }

// sumGrammar builds E -> E plus T | T, T -> id, matching the canonical
// left-recursive expression shape used throughout the LR literature.
func sumGrammar(t *testing.T) (*cfg.RuleSet, cfg.Term, cfg.Term) {
	plus := cfg.StaticTerm{TermName: "plus", TermPatterns: []string{"\\+"}}
	id := cfg.StaticTerm{TermName: "id", TermPatterns: []string{"[a-z]+"}}
	eRule := cfg.StaticRule{RuleName: "E"}
	tRule := cfg.StaticRule{RuleName: "T"}

	bld := cfg.NewRuleSetBuilder("sum")
	bld.LHS(eRule, "E").N("E").T(plus).N("T")
	bld.LHS(eRule, "E").N("T")
	bld.LHS(tRule, "T").T(id)
	rs, err := bld.RuleSet()
	require.NoError(t, err)
	return rs.Augment(), plus, id
}

func namer(tok copager.Token) string {
	switch tok.TokType() {
	case 1:
		return "plus"
	case 2:
		return "id"
	}
	return "?"
}

func buildLALR1Table(t *testing.T, rs *cfg.RuleSet) *table.Table {
	first := sets.First(rs)
	lr1dfa, err := lr1.BuildDFA(rs, first)
	require.NoError(t, err)
	dfa, err := lalr1.Merge(lr1dfa)
	require.NoError(t, err)
	tbl, err := table.CompileLALR1(dfa)
	require.NoError(t, err)
	return tbl
}

func TestDriverAcceptsSimpleSum(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	rs, _, _ := sumGrammar(t)
	tbl := buildLALR1Table(t, rs)

	d := driver.NewDriver(tbl, namer, "a+b")
	toks := []copager.Token{
		simpleToken{tt: 2, lex: "a", span: copager.Span{0, 1}},
		simpleToken{tt: 1, lex: "+", span: copager.Span{1, 2}},
		simpleToken{tt: 2, lex: "b", span: copager.Span{2, 3}},
	}
	var sawReduce bool
	for _, tok := range toks {
		for _, ev := range d.Consume(tok) {
			if _, ok := ev.(driver.Parse); ok {
				sawReduce = true
			}
			if errEv, ok := ev.(driver.Err); ok {
				t.Fatalf("unexpected error event: %v", errEv.Err)
			}
		}
	}
	for _, ev := range d.ConsumeEOF() {
		if errEv, ok := ev.(driver.Err); ok {
			t.Fatalf("unexpected error event: %v", errEv.Err)
		}
	}
	require.True(t, sawReduce)
	require.True(t, d.Accepted())
}

func TestDriverRejectsBadInput(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	rs, _, _ := sumGrammar(t)
	tbl := buildLALR1Table(t, rs)

	d := driver.NewDriver(tbl, namer, "+a")
	tok := simpleToken{tt: 1, lex: "+", span: copager.Span{0, 1}}
	var gotErr bool
	for _, ev := range d.Consume(tok) {
		if _, ok := ev.(driver.Err); ok {
			gotErr = true
		}
	}
	require.True(t, gotErr)
	require.True(t, d.Done())
	require.False(t, d.Accepted())
}

func TestDriverReset(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	rs, _, _ := sumGrammar(t)
	tbl := buildLALR1Table(t, rs)

	d := driver.NewDriver(tbl, namer, "a")
	d.Consume(simpleToken{tt: 2, lex: "a", span: copager.Span{0, 1}})
	d.ConsumeEOF()
	require.True(t, d.Accepted())

	d.Reset()
	require.False(t, d.Accepted())
	require.False(t, d.Done())
}
