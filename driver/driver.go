/*
Package driver implements a table-driven shift/reduce parser:
a stack of DFA states, fed one token at a time, emitting a stream of
parse events rather than a single accept/reject verdict.

Grounded on lr/slr/slr.go's Parser.Parse/reduce: the TOS-state /
action-lookup / shift-or-reduce loop is kept, but restructured around
Consume(tok) returning a []Event instead of looping to exhaustion over
an internal scanner — this driver is fed, it does not own or pull from
the token source.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package driver

import (
	"fmt"

	"github.com/npillmayer/copager"
	"github.com/npillmayer/copager/cfg"
	"github.com/npillmayer/copager/table"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'copager.driver'.
func tracer() tracing.Trace {
	return tracing.Select("copager.driver")
}

// TokenNamer maps an input token to the terminal name the table was built
// with (cfg.Term.Name()). This indirection exists because copager.Token
// identifies its category by an application-defined TokType, while the
// table is keyed by the grammar's terminal names ("Polymorphism
// over grammar types").
type TokenNamer func(copager.Token) string

// Event is the closed set of parse events a Driver emits: Read (a token
// was consumed), Parse (a reduce completed), or Err (the input was
// rejected).
type Event interface {
	isEvent()
}

// Read reports that tok was pulled from the input and shifted onto the
// stack; it is emitted only on a shift, after any reduces the token
// triggered. Omit is true when tok's terminal carries the "ir_omit"
// option, meaning an IR builder should drop the token from its tree/value
// rather than record it.
type Read struct {
	Tok  copager.Token
	Omit bool
}

func (Read) isEvent() {}

// Parse reports that a reduce completed: Rule was applied, consuming Len
// symbols off the stack.
type Parse struct {
	Rule *cfg.Production
	Len  int
}

func (Parse) isEvent() {}

// Err wraps a driver-detected error (ErrUnexpectedToken / ErrUnexpectedEOF).
type Err struct {
	Err error
}

func (Err) isEvent() {}

// ErrUnexpectedToken reports a token with no action in the current state.
type ErrUnexpectedToken struct {
	Actual string
	Pos    copager.Position
}

func (e *ErrUnexpectedToken) Error() string {
	return fmt.Sprintf("unexpected token %q at %s", e.Actual, e.Pos)
}

// ErrUnexpectedEOF reports end-of-input with no eof-action in the current
// state.
type ErrUnexpectedEOF struct {
	Pos copager.Position
}

func (e *ErrUnexpectedEOF) Error() string {
	return fmt.Sprintf("unexpected end of input at %s", e.Pos)
}

// stackItem pairs a DFA state with the grammar symbol (name) that carried
// the parser into it, plus the input span that symbol covers — mirroring
// slr.stackitem.
type stackItem struct {
	state int
	name  string
	span  copager.Span
}

// Driver is a stack-based LR driver over a compiled table.Table. It is fed
// one token at a time via Consume and does not own a scanner.
type Driver struct {
	tbl      *table.Table
	namer    TokenNamer
	src      string // full source text, for Position decoding on error
	omit     map[string]bool
	stack    []stackItem
	accepted bool
	done     bool
}

// NewDriver creates a Driver over a compiled table, starting in DFA state 0
// (the convention every automaton package in this module uses for its start
// state id — lr0/lr1/lalr1's BuildDFA/Merge always number the start state
// first). src is the original source text, used only to decode Position on
// error; it may be empty if error positions are not needed.
func NewDriver(tbl *table.Table, namer TokenNamer, src string) *Driver {
	d := &Driver{tbl: tbl, namer: namer, src: src, omit: omitNames(tbl.Terminals)}
	d.Reset()
	return d
}

// omitNames indexes, by terminal name, every terminal carrying the
// "ir_omit" option — tokens a driven IR builder should drop rather than
// record.
func omitNames(terms []cfg.Term) map[string]bool {
	m := make(map[string]bool, len(terms))
	for _, t := range terms {
		for _, o := range t.Options() {
			if o == "ir_omit" {
				m[t.Name()] = true
				break
			}
		}
	}
	return m
}

// Reset clears the driver back to its initial state, ready to parse a new
// input from scratch.
func (d *Driver) Reset() {
	d.stack = []stackItem{{state: 0}}
	d.accepted = false
	d.done = false
}

// Accepted reports whether the driver has reached an Accept action.
func (d *Driver) Accepted() bool { return d.accepted }

// Done reports whether the driver will no longer process tokens (either
// accepted, or halted on error).
func (d *Driver) Done() bool { return d.done }

// Consume feeds a single token to the driver, running the shift/reduce
// loop until it shifts that token (possibly after a chain of reduces), or
// until it accepts or errors without consuming it. The returned slice
// holds zero or more Parse events, optionally followed by exactly one
// Read, Err, or terminal Parse/Accept-triggering event.
func (d *Driver) Consume(tok copager.Token) []Event {
	if d.done {
		return nil
	}
	var events []Event
	name := d.namer(tok)
	for {
		tos := d.stack[len(d.stack)-1]
		act := d.tbl.ActionAt(tos.state, name)
		if act == nil {
			d.done = true
			events = append(events, Err{Err: &ErrUnexpectedToken{
				Actual: name,
				Pos:    copager.DecodePosition(d.src, tok.Span().From()),
			}})
			return events
		}
		switch a := act.(type) {
		case table.Shift:
			d.stack = append(d.stack, stackItem{state: a.State, name: name, span: tok.Span()})
			events = append(events, Read{Tok: tok, Omit: d.omit[name]})
			return events
		case table.Reduce:
			d.reduce(a.Prod)
			events = append(events, Parse{Rule: a.Prod, Len: reduceLen(a.Prod)})
			// loop again: the reduced-to state may itself shift or further reduce
		case table.Accept:
			d.accepted = true
			d.done = true
			return events
		}
	}
}

// ConsumeEOF signals end-of-input, running any trailing reduce chain and
// checking for Accept.
func (d *Driver) ConsumeEOF() []Event {
	if d.done {
		return nil
	}
	var events []Event
	for {
		tos := d.stack[len(d.stack)-1]
		act := d.tbl.EOFActionAt(tos.state)
		if act == nil {
			d.done = true
			events = append(events, Err{Err: &ErrUnexpectedEOF{
				Pos: copager.DecodePosition(d.src, uint64(len(d.src))),
			}})
			return events
		}
		switch a := act.(type) {
		case table.Reduce:
			d.reduce(a.Prod)
			events = append(events, Parse{Rule: a.Prod, Len: reduceLen(a.Prod)})
		case table.Accept:
			d.accepted = true
			d.done = true
			return events
		case table.Shift:
			// A shift on EOF cannot occur for a well-formed table (EOF never
			// labels an edge); treat as a builder invariant violation.
			tracer().Errorf("driver: EOF action table holds a Shift in state %d", tos.state)
			d.done = true
			events = append(events, Err{Err: fmt.Errorf("driver: malformed table: shift on EOF in state %d", tos.state)})
			return events
		}
	}
}

// reduceLen reports how many symbols a reduce of rule pops: len(rule.RHS),
// or 0 for an epsilon-only RHS, which is never counted as a popped child.
func reduceLen(rule *cfg.Production) int {
	if rule.IsEpsilonRHS() {
		return 0
	}
	return len(rule.RHS)
}

// reduce pops reduceLen(rule) symbols off the stack (mirroring slr.Parser.reduce),
// computes the resulting span, and pushes the new state reached via Goto on
// rule.LHS.
func (d *Driver) reduce(rule *cfg.Production) {
	n := reduceLen(rule)
	var span copager.Span
	if n > 0 {
		handle := d.stack[len(d.stack)-n:]
		for _, h := range handle {
			span = span.Extend(h.span)
		}
		d.stack = d.stack[:len(d.stack)-n]
	}
	tos := d.stack[len(d.stack)-1]
	next, ok := d.tbl.GotoAt(tos.state, rule.LHS.Name())
	if !ok {
		tracer().Errorf("driver: no goto(%d, %s); malformed table", tos.state, rule.LHS.Name())
		next = tos.state
	}
	d.stack = append(d.stack, stackItem{state: next, name: rule.LHS.Name(), span: span})
	tracer().Debugf("reduced %s, next state = %d", rule, next)
}
