/*
Package ir turns the driver's event stream into an intermediate
representation: either a parse tree (TreeBuilder) or an s-expression
(SExprBuilder). Both are folds over the same Read/Parse event sequence,
which is a valid post-order traversal of the parse tree, so a
Builder never needs to look ahead or backtrack.

Grounded on lr/sppf/forest.go's node shape for TreeBuilder, and
terex/terex.go's Atom/cons-cell model for SExprBuilder — both
reimplemented against this module's cfg.Production/copager.Token types
rather than imported, since terex's own machinery targets gorgo's parser
internals, not an external event stream (see DESIGN.md).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package ir

import (
	"fmt"
	"strings"

	"github.com/npillmayer/copager"
	"github.com/npillmayer/copager/cfg"
	"github.com/npillmayer/copager/driver"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'copager.ir'.
func tracer() tracing.Trace {
	return tracing.Select("copager.ir")
}

// Builder consumes the driver's event stream incrementally — OnRead for
// each Read event, OnParse for each Parse event — and finally yields a
// built value from Build.
type Builder interface {
	OnRead(tok copager.Token) error
	OnParse(rule *cfg.Production, n int) error
	Build() (interface{}, error)
}

// ApplyEvents feeds events into b in order, stopping at the first error
// returned by a builder callback or carried by an Err event. Unlike Apply,
// it does not call b.Build() — callers driving the parse incrementally,
// batch by batch, must call Build() themselves exactly once, after the
// final batch.
//
// A Read event whose Omit flag is set (the matched terminal carries the
// "ir_omit" option) is dropped here rather than passed to b.OnRead: the
// token was still shifted by the driver, it just never enters the built
// tree/value.
func ApplyEvents(b Builder, events []driver.Event) error {
	for _, ev := range events {
		switch e := ev.(type) {
		case driver.Read:
			if e.Omit {
				continue
			}
			if err := b.OnRead(e.Tok); err != nil {
				return err
			}
		case driver.Parse:
			if err := b.OnParse(e.Rule, e.Len); err != nil {
				return err
			}
		case driver.Err:
			return e.Err
		}
	}
	return nil
}

// Apply feeds the complete event stream into b in order, then calls
// b.Build(). Suited to callers already holding every event (e.g. tests);
// a driver consuming tokens in batches should use ApplyEvents instead and
// call Build() once after the last batch.
func Apply(b Builder, events []driver.Event) (interface{}, error) {
	if err := ApplyEvents(b, events); err != nil {
		return nil, err
	}
	return b.Build()
}

// --- TreeBuilder --------------------------------------------------------

// Node is a parse-tree node: either a leaf carrying the matched token, or
// an interior node carrying the production it was reduced by.
type Node struct {
	Symbol   string
	Tok      copager.Token   // non-nil for leaves
	Rule     *cfg.Production // non-nil for interior nodes
	Children []*Node
}

func (n *Node) String() string {
	if n.Tok != nil {
		return fmt.Sprintf("%s(%q)", n.Symbol, n.Tok.Lexeme())
	}
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%s(%s)", n.Symbol, strings.Join(parts, " "))
}

// TreeBuilder accumulates a single parse tree from a Read/Parse stream.
type TreeBuilder struct {
	stack []*Node
}

// NewTreeBuilder creates an empty TreeBuilder.
func NewTreeBuilder() *TreeBuilder { return &TreeBuilder{} }

func (b *TreeBuilder) OnRead(tok copager.Token) error {
	b.stack = append(b.stack, &Node{Symbol: "$tok", Tok: tok})
	return nil
}

func (b *TreeBuilder) OnParse(rule *cfg.Production, n int) error {
	var children []*Node
	if n > 0 {
		if n > len(b.stack) {
			return fmt.Errorf("ir: reduce of %s needs %d symbols, only %d on stack", rule, n, len(b.stack))
		}
		children = append(children, b.stack[len(b.stack)-n:]...)
		b.stack = b.stack[:len(b.stack)-n]
	}
	node := &Node{Symbol: rule.LHS.Name(), Rule: rule, Children: children}
	b.stack = append(b.stack, node)
	tracer().Debugf("ir: reduced node %s with %d children", node.Symbol, len(children))
	return nil
}

// Build returns the completed tree's root. An error is returned if the
// event stream did not leave exactly one node on the stack (an incomplete
// or malformed parse).
func (b *TreeBuilder) Build() (interface{}, error) {
	if len(b.stack) != 1 {
		return nil, fmt.Errorf("ir: tree builder ended with %d roots, expected 1", len(b.stack))
	}
	return b.stack[0], nil
}

// --- SExprBuilder --------------------------------------------------------

// SExpr is a minimal s-expression value: either an Atom (a token's lexeme)
// or a List (a reduced production, printed as "(lhs child...)").
type SExpr interface {
	String() string
}

// Atom is a leaf s-expression wrapping a token's lexeme.
type Atom struct {
	Value string
}

func (a Atom) String() string { return a.Value }

// List is an interior s-expression: the reducing production's LHS name
// followed by its children, Lisp-style.
type List struct {
	Head     string
	Elements []SExpr
}

func (l List) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	if len(parts) == 0 {
		return fmt.Sprintf("(%s)", l.Head)
	}
	return fmt.Sprintf("(%s %s)", l.Head, strings.Join(parts, " "))
}

// SExprBuilder accumulates a single s-expression from a Read/Parse stream.
type SExprBuilder struct {
	stack []SExpr
}

// NewSExprBuilder creates an empty SExprBuilder.
func NewSExprBuilder() *SExprBuilder { return &SExprBuilder{} }

func (b *SExprBuilder) OnRead(tok copager.Token) error {
	b.stack = append(b.stack, Atom{Value: tok.Lexeme()})
	return nil
}

func (b *SExprBuilder) OnParse(rule *cfg.Production, n int) error {
	if n > len(b.stack) {
		return fmt.Errorf("ir: reduce of %s needs %d symbols, only %d on stack", rule, n, len(b.stack))
	}
	var elems []SExpr
	if n > 0 {
		elems = append(elems, b.stack[len(b.stack)-n:]...)
		b.stack = b.stack[:len(b.stack)-n]
	}
	b.stack = append(b.stack, List{Head: rule.LHS.Name(), Elements: elems})
	return nil
}

// Build returns the completed s-expression, or an error if the stream did
// not resolve to exactly one value.
func (b *SExprBuilder) Build() (interface{}, error) {
	if len(b.stack) != 1 {
		return nil, fmt.Errorf("ir: sexpr builder ended with %d roots, expected 1", len(b.stack))
	}
	return b.stack[0], nil
}
