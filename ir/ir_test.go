package ir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/npillmayer/copager"
	"github.com/npillmayer/copager/cfg"
	"github.com/npillmayer/copager/driver"
	"github.com/npillmayer/copager/ir"
)

type tok struct {
	lex  string
	span copager.Span
}

func (t tok) TokType() copager.TokType { return 0 }
func (t tok) Lexeme() string           { return t.lex }
func (t tok) Value() interface{}       { return t.lex }
func (t tok) Span() copager.Span       { return t.span }

func TestTreeBuilder(t *testing.T) {
	tRule := cfg.StaticRule{RuleName: "T"}
	id := cfg.StaticTerm{TermName: "id"}
	prod := &cfg.Production{ID: 0, Tag: tRule, LHS: cfg.NonTerm("T"), RHS: []cfg.Elem{cfg.TermElem(id)}}

	events := []driver.Event{
		driver.Read{Tok: tok{lex: "a"}},
		driver.Parse{Rule: prod, Len: 1},
	}
	res, err := ir.Apply(ir.NewTreeBuilder(), events)
	require.NoError(t, err)
	root := res.(*ir.Node)
	require.Equal(t, "T", root.Symbol)
	require.Len(t, root.Children, 1)
	require.Equal(t, "a", root.Children[0].Tok.Lexeme())
}

func TestSExprBuilder(t *testing.T) {
	tRule := cfg.StaticRule{RuleName: "T"}
	id := cfg.StaticTerm{TermName: "id"}
	prod := &cfg.Production{ID: 0, Tag: tRule, LHS: cfg.NonTerm("T"), RHS: []cfg.Elem{cfg.TermElem(id)}}

	events := []driver.Event{
		driver.Read{Tok: tok{lex: "a"}},
		driver.Parse{Rule: prod, Len: 1},
	}
	res, err := ir.Apply(ir.NewSExprBuilder(), events)
	require.NoError(t, err)
	require.Equal(t, "(T a)", res.(ir.SExpr).String())
}

func TestApplyStopsOnError(t *testing.T) {
	events := []driver.Event{
		driver.Err{Err: require.AnError},
	}
	_, err := ir.Apply(ir.NewTreeBuilder(), events)
	require.Error(t, err)
}
