package table_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"

	"github.com/npillmayer/copager/cfg"
	"github.com/npillmayer/copager/cfg/lalr1"
	"github.com/npillmayer/copager/cfg/lr0"
	"github.com/npillmayer/copager/cfg/lr1"
	"github.com/npillmayer/copager/cfg/sets"
	"github.com/npillmayer/copager/table"
)

func setupTest(t *testing.T) func() {
	gtrace.SyntaxTracer = gotestingadapter.New()
	teardown := gotestingadapter.RedirectTracing(t)
	gtrace.SyntaxTracer.SetTraceLevel(tracing.LevelInfo)
	return teardown
}

// tinyGrammar builds S -> A a | b, A -> b | ε.
func tinyGrammar(t *testing.T) *cfg.RuleSet {
	a := cfg.StaticTerm{TermName: "a", TermPatterns: []string{"a"}}
	b := cfg.StaticTerm{TermName: "b", TermPatterns: []string{"b"}}
	sRule := cfg.StaticRule{RuleName: "S"}
	aRule := cfg.StaticRule{RuleName: "A"}

	bld := cfg.NewRuleSetBuilder("tiny")
	bld.LHS(sRule, "S").N("A").T(a)
	bld.LHS(sRule, "S").T(b)
	bld.LHS(aRule, "A").T(b)
	bld.LHS(aRule, "A").Epsilon()
	rs, err := bld.RuleSet()
	require.NoError(t, err)
	return rs.Augment()
}

// lr0Grammar builds S -> a S | b, whose LR(0) automaton is conflict-free
// (tinyGrammar is not LR(0): its A -> ε reduce, written on every terminal,
// collides with the shift on b out of the start state).
func lr0Grammar(t *testing.T) *cfg.RuleSet {
	a := cfg.StaticTerm{TermName: "a", TermPatterns: []string{"a"}}
	b := cfg.StaticTerm{TermName: "b", TermPatterns: []string{"b"}}
	sRule := cfg.StaticRule{RuleName: "S"}

	bld := cfg.NewRuleSetBuilder("lr0")
	bld.LHS(sRule, "S").T(a).N("S")
	bld.LHS(sRule, "S").T(b)
	rs, err := bld.RuleSet()
	require.NoError(t, err)
	return rs.Augment()
}

func TestCompileLR0(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	rs := lr0Grammar(t)
	dfa, err := lr0.BuildDFA(rs)
	require.NoError(t, err)

	tbl, err := table.CompileLR0(dfa)
	require.NoError(t, err)
	require.NotNil(t, tbl)
	require.Len(t, tbl.Action, len(dfa.Nodes))
}

func TestCompileSLR1NoConflicts(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	rs := tinyGrammar(t)
	dfa, err := lr0.BuildDFA(rs)
	require.NoError(t, err)
	first := sets.First(rs)
	follow := sets.Follow(rs, first)

	tbl, err := table.CompileSLR1(dfa, follow)
	require.NoError(t, err)
	require.NotNil(t, tbl)
}

func TestCompileLR1(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	rs := tinyGrammar(t)
	first := sets.First(rs)
	dfa, err := lr1.BuildDFA(rs, first)
	require.NoError(t, err)

	tbl, err := table.CompileLR1(dfa)
	require.NoError(t, err)
	require.NotNil(t, tbl)
}

func TestCompileLALR1(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	rs := tinyGrammar(t)
	first := sets.First(rs)
	lr1dfa, err := lr1.BuildDFA(rs, first)
	require.NoError(t, err)
	dfa, err := lalr1.Merge(lr1dfa)
	require.NoError(t, err)

	tbl, err := table.CompileLALR1(dfa)
	require.NoError(t, err)
	require.NotNil(t, tbl)
	require.LessOrEqual(t, len(dfa.Nodes), len(lr1dfa.Nodes))
}

func TestSLR1RequiresFollowSets(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	rs := tinyGrammar(t)
	dfa, err := lr0.BuildDFA(rs)
	require.NoError(t, err)

	_, err = table.Compile(table.LR0Adapter{DFA: dfa}, table.SLR1, nil)
	require.Error(t, err)
}

func TestSerializeRoundTrip(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	rs := lr0Grammar(t)
	dfa, err := lr0.BuildDFA(rs)
	require.NoError(t, err)
	tbl, err := table.CompileLR0(dfa)
	require.NoError(t, err)

	blob, err := table.Serialize(tbl)
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	restored, err := table.Deserialize(rs, blob)
	require.NoError(t, err)
	require.Equal(t, len(tbl.Action), len(restored.Action))
	require.Equal(t, len(tbl.EOFAction), len(restored.EOFAction))
}

func TestConflictDetection(t *testing.T) {
	teardown := setupTest(t)
	defer teardown()

	// S -> A a, A -> a, A -> ε: LR0's blanket "reduce on every terminal"
	// policy collides with the shift on 'a' out of the same state — a
	// textbook shift/reduce conflict LR0 cannot resolve.
	a := cfg.StaticTerm{TermName: "a", TermPatterns: []string{"a"}}
	sRule := cfg.StaticRule{RuleName: "S"}
	aRule := cfg.StaticRule{RuleName: "A"}

	bld := cfg.NewRuleSetBuilder("ambiguous")
	bld.LHS(sRule, "S").N("A").T(a)
	bld.LHS(aRule, "A").T(a)
	bld.LHS(aRule, "A").Epsilon()
	rs, err := bld.RuleSet()
	require.NoError(t, err)
	rs = rs.Augment()

	dfa, err := lr0.BuildDFA(rs)
	require.NoError(t, err)
	_, err = table.CompileLR0(dfa)
	require.Error(t, err)
	var ce *table.ConflictError
	require.ErrorAs(t, err, &ce)
}
