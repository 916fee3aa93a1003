package processor_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/npillmayer/copager/cfg"
	"github.com/npillmayer/copager/ir"
	"github.com/npillmayer/copager/processor"
	"github.com/npillmayer/copager/table"
)

func setupTest(t *testing.T) func() {
	gtrace.SyntaxTracer = gotestingadapter.New()
	teardown := gotestingadapter.RedirectTracing(t)
	gtrace.SyntaxTracer.SetTraceLevel(tracing.LevelInfo)
	return teardown
}

func sumGrammar(t *testing.T) *cfg.RuleSet {
	plus := cfg.StaticTerm{TermName: "plus", TermPatterns: []string{"\\+"}}
	id := cfg.StaticTerm{TermName: "id", TermPatterns: []string{"[a-z]+"}}
	ws := cfg.StaticTerm{TermName: "ws", TermPatterns: []string{"( |\t)"}, TermOptions: []string{"trivia"}}
	eRule := cfg.StaticRule{RuleName: "E"}
	tRule := cfg.StaticRule{RuleName: "T"}

	bld := cfg.NewRuleSetBuilder("sum")
	bld.LHS(eRule, "E").N("E").T(plus).N("T")
	bld.LHS(eRule, "E").N("T")
	bld.LHS(tRule, "T").T(id)
	bld.LHS(tRule, "T").T(ws) // ws never appears as a real symbol reference, just registers the terminal
	rs, err := bld.RuleSet()
	require.NoError(t, err)
	return rs
}

func TestProcessorBuildAndProcess(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	rs := sumGrammar(t)
	p, err := processor.Build(rs)
	require.NoError(t, err)

	result, err := p.Process("a + b")
	require.NoError(t, err)
	node, ok := result.(*ir.Node)
	require.True(t, ok)
	require.Equal(t, "E", node.Symbol)
}

func TestProcessorPrebuildAndRestore(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	rs := sumGrammar(t)
	p, err := processor.Build(rs, processor.WithVariant(table.LALR1))
	require.NoError(t, err)

	blob, err := p.PrebuildParser()
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	restored, err := processor.RestoreParserByCache(rs, blob)
	require.NoError(t, err)

	result, err := restored.Process("a")
	require.NoError(t, err)
	require.NotNil(t, result)
}

func TestProcessorRejectsBadInput(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	rs := sumGrammar(t)
	p, err := processor.Build(rs)
	require.NoError(t, err)

	_, err = p.Process("+")
	require.Error(t, err)
}

func TestProcessorWithSExprBuilder(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	rs := sumGrammar(t)
	p, err := processor.Build(rs, processor.WithBuilder(func() ir.Builder { return ir.NewSExprBuilder() }))
	require.NoError(t, err)

	result, err := p.Process("a")
	require.NoError(t, err)
	sexpr, ok := result.(ir.SExpr)
	require.True(t, ok)
	require.Contains(t, sexpr.String(), "E")
}
