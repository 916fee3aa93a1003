package bnf_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/npillmayer/copager/bnf"
	"github.com/npillmayer/copager/cfg"
)

func TestParseTerm(t *testing.T) {
	tm := bnf.ParseTerm("plus", []string{"\\+"}, nil)
	require.Equal(t, "plus", tm.Name())
	require.Equal(t, []string{"\\+"}, tm.Patterns())
}

func TestParseRulesSimple(t *testing.T) {
	plus := bnf.ParseTerm("plus", []string{"\\+"}, nil)
	id := bnf.ParseTerm("id", []string{"[a-z]+"}, nil)
	terms := map[string]cfg.Term{"plus": plus, "id": id}

	eRule := cfg.StaticRule{RuleName: "E"}
	prods, err := bnf.ParseRules(eRule, terms, []string{
		"<E> ::= <E> plus <T>",
		"<E> ::= <T>",
	})
	require.NoError(t, err)
	require.Len(t, prods, 2)

	require.Equal(t, "E", prods[0].LHS.NonTermName())
	require.Len(t, prods[0].RHS, 3)
	require.Equal(t, cfg.KindNonTerm, prods[0].RHS[0].Kind())
	require.Equal(t, cfg.KindTerm, prods[0].RHS[1].Kind())
	require.Equal(t, "plus", prods[0].RHS[1].Name())
	require.Equal(t, cfg.KindNonTerm, prods[0].RHS[2].Kind())

	require.Len(t, prods[1].RHS, 1)
}

func TestParseRulesEpsilon(t *testing.T) {
	tRule := cfg.StaticRule{RuleName: "T"}
	prods, err := bnf.ParseRules(tRule, nil, []string{"<T> ::= "})
	require.NoError(t, err)
	require.Len(t, prods, 1)
	require.Len(t, prods[0].RHS, 1)
	require.Equal(t, cfg.KindEpsilon, prods[0].RHS[0].Kind())
}

func TestParseRulesQuotedLiteral(t *testing.T) {
	plus := bnf.ParseTerm("plus", []string{"\\+"}, nil)
	terms := map[string]cfg.Term{"plus": plus}
	eRule := cfg.StaticRule{RuleName: "E"}

	prods, err := bnf.ParseRules(eRule, terms, []string{"<E> ::= <E> 'plus' <E>"})
	require.NoError(t, err)
	require.Len(t, prods, 1)
	require.Equal(t, "plus", prods[0].RHS[1].Name())
}

func TestParseRulesUnknownTerminal(t *testing.T) {
	eRule := cfg.StaticRule{RuleName: "E"}
	_, err := bnf.ParseRules(eRule, nil, []string{"<E> ::= mystery"})
	require.Error(t, err)
}

func TestParseRulesMalformed(t *testing.T) {
	eRule := cfg.StaticRule{RuleName: "E"}
	_, err := bnf.ParseRules(eRule, nil, []string{"E ::= foo"})
	require.Error(t, err)
}

func TestParseRulesIntoBuilder(t *testing.T) {
	id := bnf.ParseTerm("id", []string{"[a-z]+"}, nil)
	terms := map[string]cfg.Term{"id": id}
	tRule := cfg.StaticRule{RuleName: "T"}

	prods, err := bnf.ParseRules(tRule, terms, []string{"<T> ::= id"})
	require.NoError(t, err)

	bld := cfg.NewRuleSetBuilder("bnf-test")
	for _, p := range prods {
		bld.Add(p.Tag, p.LHS.NonTermName(), p.RHS)
	}
	rs, err := bld.RuleSet()
	require.NoError(t, err)
	require.NotNil(t, rs)
}
