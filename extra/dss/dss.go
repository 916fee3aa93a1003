/*
Package dss is an extra, non-core adaptation of gorgo's lr/dss package: a
graph-structured stack (GSS) for driving a GLR parser over ambiguous
grammars. GLR is excluded as an automatic conflict fallback inside the
core pipeline (see package table and package driver); this package, and
its sibling extra/glr, exist purely as an optional, separately rooted
extension point, never imported by the core.

Gorgo's own lr/dss ships only lr/dss/stack_test.go, with no stack.go
implementation to port line for line. This package is grounded on what
that test observes (NewRoot/NewStack/Push/Pop/Peek, a stack fork shares
its predecessor node rather than copying it) and reimplements the
defining GSS property — structural sharing of common suffixes via a
persistent, immutable linked list of nodes — without porting Tomita's
full multi-predecessor merge/join/path-enumeration machinery, which the
test alone does not provide enough detail to reconstruct faithfully.
Forking (ambiguous shift/reduce choices) is supported; merging two
stacks back into one shared node at equal (state, symbol) is not, so
this is a simplified GSS suited to the small demonstrative grammars
extra/glr and extra/earley exercise, not to production-scale ambiguous
grammars.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package dss

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'copager.extra.dss'.
func tracer() tracing.Trace {
	return tracing.Select("copager.extra.dss")
}

// Node is one frame of a graph-structured stack: an LR state paired with
// the grammar symbol that was shifted or goto'd to reach it, and a
// pointer to its predecessor frame (nil at the stack's root).
type Node struct {
	State  int
	Symbol string
	Pred   *Node
}

func (n *Node) String() string {
	if n == nil {
		return "<root>"
	}
	return fmt.Sprintf("(%d:%s)", n.State, n.Symbol)
}

// Root names a GSS instance, remembers the initial LR state every fresh
// stack starts from, and counts how many stacks have been created from it
// (by NewStack or Fork), for diagnostics; the count is never decremented.
type Root struct {
	Name         string
	InitialState int
	forks        int
}

// NewRoot creates a named GSS root with the given initial LR state.
func NewRoot(name string, initialState int) *Root {
	return &Root{Name: name, InitialState: initialState}
}

// Stack is one frontier position (one of possibly several active
// derivations) into a shared GSS rooted at Root.
type Stack struct {
	root *Root
	top  *Node
}

// NewStack creates a fresh stack rooted at r, seeded with one frame at
// r's initial state.
func NewStack(r *Root) *Stack {
	r.forks++
	return &Stack{root: r, top: &Node{State: r.InitialState}}
}

// Fork returns a new stack sharing s's current top node — the defining
// GSS operation: the two stacks diverge from here on, but share every
// frame pushed before the fork.
func (s *Stack) Fork() *Stack {
	s.root.forks++
	return &Stack{root: s.root, top: s.top}
}

// Push appends a new frame on top of s, returning s for chaining.
func (s *Stack) Push(state int, symbol string) *Stack {
	s.top = &Node{State: state, Symbol: symbol, Pred: s.top}
	tracer().Debugf("dss %s: pushed %v", s.root.Name, s.top)
	return s
}

// Pop removes and returns the top frame's (state, symbol), or ok=false on
// an empty stack.
func (s *Stack) Pop() (state int, symbol string, ok bool) {
	if s.top == nil {
		return 0, "", false
	}
	n := s.top
	s.top = n.Pred
	return n.State, n.Symbol, true
}

// PopN removes the top n frames in one call, returning their symbols in
// bottom-to-top (original push) order. Used by a GLR reduce step, which
// pops |RHS| frames before pushing the goto frame for the reduced
// nonterminal.
func (s *Stack) PopN(n int) ([]string, bool) {
	syms := make([]string, n)
	for i := n - 1; i >= 0; i-- {
		_, sym, ok := s.Pop()
		if !ok {
			return nil, false
		}
		syms[i] = sym
	}
	return syms, true
}

// Peek returns the top frame's (state, symbol) without removing it.
func (s *Stack) Peek() (state int, symbol string) {
	if s.top == nil {
		return 0, ""
	}
	return s.top.State, s.top.Symbol
}

// Empty reports whether s has no frames.
func (s *Stack) Empty() bool { return s.top == nil }

// Depth counts frames from top to root (O(depth); diagnostic use only).
func (s *Stack) Depth() int {
	d := 0
	for n := s.top; n != nil; n = n.Pred {
		d++
	}
	return d
}
