/*
Package table compiles an LR automaton (LR0, SLR1, LR1 or LALR1) into a
shift/reduce decision table: an action table, an end-of-input action
column, and a goto table. Conflicts — two different actions written to
the same cell — are reported as build errors; this is the core's "hard
engineering" piece, generalized over all four variants via the AnyDFA
interface so that one compiler serves them all.

Grounded on lr.TableGenerator.buildActionTable/BuildGotoTable/
BuildSLR1ActionTable/BuildLR0ActionTable in gorgo's lr/tables.go: the
per-state, per-item walk ("shift if a terminal follows the dot; reduce
for every terminal of {whole alphabet | FOLLOW(LHS) | lookahead |
lookahead-set} if the dot is at the end") is kept, generalized into one
function parameterized by Variant. Conflict policy is upgraded from
gorgo's "encode two values, report HasConflicts" to a fatal
*ConflictError, since this module's Non-goals exclude a GLR/Earley
fallback for ambiguous grammars.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package table

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/pterm/pterm"

	"github.com/npillmayer/copager/cfg"
	"github.com/npillmayer/copager/cfg/sets"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'copager.table'.
func tracer() tracing.Trace {
	return tracing.Select("copager.table")
}

// Variant selects which flavor of LR table to compile.
type Variant int

const (
	LR0 Variant = iota
	SLR1
	LR1
	LALR1
)

func (v Variant) String() string {
	switch v {
	case LR0:
		return "LR0"
	case SLR1:
		return "SLR1"
	case LR1:
		return "LR1"
	case LALR1:
		return "LALR1"
	}
	return "unknown"
}

// DFAEdge is a transition (from, to, label) as emitted by any of the
// automaton packages (lr0/lr1/lalr1 all share this shape).
type DFAEdge struct {
	From, To int
	Label    cfg.Elem
}

// ReduceItem describes one reducible item in a DFA state: the production
// to reduce by, and (for LR1/LALR1) the lookahead(s) that license the
// reduce. A nil Lookaheads slice means "expand per Variant" (used by the
// LR0/SLR1 adapter, since those items carry no lookahead of their own).
type ReduceItem struct {
	Rule       *cfg.Production
	Lookaheads []cfg.Elem
}

// AnyDFA is the interface the table compiler builds against, satisfied by
// lr0.DFA, lr1.DFA and lalr1.DFA via the adapters below.
type AnyDFA interface {
	RuleSet() *cfg.RuleSet
	States() int
	Edges() []DFAEdge
	ReduceItems(state int) []ReduceItem
}

// Action is the closed set of decision-table actions ("Action is
// one of: Shift(state), Reduce(production), Accept, None").
type Action interface {
	isAction()
	String() string
}

type Shift struct{ State int }

func (Shift) isAction()         {}
func (s Shift) String() string  { return fmt.Sprintf("shift %d", s.State) }

type Reduce struct{ Prod *cfg.Production }

func (Reduce) isAction()        {}
func (r Reduce) String() string { return fmt.Sprintf("reduce %s", r.Prod) }

type Accept struct{}

func (Accept) isAction()        {}
func (Accept) String() string   { return "accept" }

// actionsEqual compares two Action values structurally (used to detect a
// harmless duplicate write vs. a genuine conflict).
func actionsEqual(a, b Action) bool {
	switch av := a.(type) {
	case Shift:
		bv, ok := b.(Shift)
		return ok && av.State == bv.State
	case Reduce:
		bv, ok := b.(Reduce)
		return ok && av.Prod.Equal(bv.Prod)
	case Accept:
		_, ok := b.(Accept)
		return ok
	}
	return false
}

// ConflictError reports a build-time grammar conflict: two
// different actions would be written to the same (state, terminal) cell.
type ConflictError struct {
	State      int
	Terminal   string
	Existing   Action
	Attempted  Action
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("table: conflict in state %d on %q: %s vs %s",
		e.State, e.Terminal, e.Existing, e.Attempted)
}

// Table is the compiled decision table: action[state][terminal],
// eof_action[state], and goto[state][nonterminal].
type Table struct {
	Action    []map[string]Action
	EOFAction []Action
	Goto      []map[string]int
	// Terminals is retained for Dump() and for the driver's "ir_omit"
	// lookup; Nonterminals records the grammar's nonterminal names. Neither
	// is used to check the shape of the action rows.
	Terminals    []cfg.Term
	Nonterminals []string
}

// ActionAt returns the action for (state, terminal-name), or nil if none is
// set.
func (t *Table) ActionAt(state int, terminalName string) Action {
	return t.Action[state][terminalName]
}

// EOFActionAt returns the eof-column action for state, or nil.
func (t *Table) EOFActionAt(state int) Action {
	if state < 0 || state >= len(t.EOFAction) {
		return nil
	}
	return t.EOFAction[state]
}

// GotoAt returns the goto target for (state, nonterminal), and whether one
// is present.
func (t *Table) GotoAt(state int, nonterminal string) (int, bool) {
	s, ok := t.Goto[state][nonterminal]
	return s, ok
}

// Compile builds the action/goto table for dfa under the given variant.
// follow is required (non-nil) only for Variant == SLR1; it may be nil
// for LR0/LR1/LALR1.
func Compile(dfa AnyDFA, variant Variant, follow *sets.FollowSets) (*Table, error) {
	rs := dfa.RuleSet()
	n := dfa.States()
	terms := rs.Terminals()
	nonterms := rs.Nonterminals()

	tbl := &Table{
		Action:       make([]map[string]Action, n),
		EOFAction:    make([]Action, n),
		Goto:         make([]map[string]int, n),
		Terminals:    terms,
		Nonterminals: nonterms,
	}
	for s := 0; s < n; s++ {
		tbl.Action[s] = map[string]Action{}
		tbl.Goto[s] = map[string]int{}
	}

	trySet := func(state int, terminalName string, act Action) error {
		if terminalName == cfg.EOFElem.Name() {
			existing := tbl.EOFAction[state]
			if existing == nil {
				tbl.EOFAction[state] = act
				return nil
			}
			if actionsEqual(existing, act) {
				return nil
			}
			return &ConflictError{State: state, Terminal: terminalName, Existing: existing, Attempted: act}
		}
		existing, ok := tbl.Action[state][terminalName]
		if !ok {
			tbl.Action[state][terminalName] = act
			return nil
		}
		if actionsEqual(existing, act) {
			return nil
		}
		return &ConflictError{State: state, Terminal: terminalName, Existing: existing, Attempted: act}
	}

	// Shift / goto from edges.
	for _, e := range dfa.Edges() {
		if e.Label.IsTerminal() {
			if err := trySet(e.From, e.Label.Name(), Shift{State: e.To}); err != nil {
				return nil, err
			}
		} else {
			tbl.Goto[e.From][e.Label.Name()] = e.To
		}
	}

	// Reduces from final items.
	for s := 0; s < n; s++ {
		for _, ri := range dfa.ReduceItems(s) {
			terminalsToFill, err := reduceTerminals(variant, ri, terms, follow)
			if err != nil {
				return nil, err
			}
			for _, tname := range terminalsToFill {
				var act Action = Reduce{Prod: ri.Rule}
				if ri.Rule.IsAugmentingProduction() && tname == cfg.EOFElem.Name() {
					act = Accept{}
				}
				if err := trySet(s, tname, act); err != nil {
					return nil, err
				}
			}
		}
	}

	tracer().Infof("compiled %s table: %d states, %d terminals, %d nonterminals", variant, n, len(terms), len(nonterms))
	return tbl, nil
}

// reduceTerminals computes the set of terminal names (as
// strings, "$" denoting EOF) for which a reduce of ri.Rule should be
// written.
func reduceTerminals(variant Variant, ri ReduceItem, allTerms []cfg.Term, follow *sets.FollowSets) ([]string, error) {
	switch variant {
	case LR0:
		names := make([]string, 0, len(allTerms)+1)
		for _, t := range allTerms {
			names = append(names, t.Name())
		}
		names = append(names, cfg.EOFElem.Name())
		return names, nil
	case SLR1:
		if follow == nil {
			return nil, fmt.Errorf("table: SLR1 compilation requires a non-nil FollowSets")
		}
		f := follow.Follow(ri.Rule.LHS.Name())
		var names []string
		for _, e := range f.Terminals() {
			names = append(names, e.Name())
		}
		return names, nil
	case LR1, LALR1:
		names := make([]string, 0, len(ri.Lookaheads))
		for _, la := range ri.Lookaheads {
			names = append(names, la.Name())
		}
		return names, nil
	}
	return nil, fmt.Errorf("table: unknown variant %v", variant)
}

// Dump pretty-prints a compiled table's shape to stdout via pterm, useful
// for debugging conflicts during grammar development.
func Dump(rs *cfg.RuleSet, t *Table) {
	header := []string{"state"}
	for _, term := range t.Terminals {
		header = append(header, term.Name())
	}
	header = append(header, "$")
	rows := [][]string{header}
	for s := range t.Action {
		row := []string{fmt.Sprintf("%d", s)}
		for _, term := range t.Terminals {
			if a, ok := t.Action[s][term.Name()]; ok {
				row = append(row, a.String())
			} else {
				row = append(row, "")
			}
		}
		if a := t.EOFAction[s]; a != nil {
			row = append(row, a.String())
		} else {
			row = append(row, "")
		}
		rows = append(rows, row)
	}
	pt, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	if err != nil {
		tracer().Errorf("table.Dump: %v", err)
		return
	}
	pterm.Println(pt)
}

// --- Serialization ----------------------------------------------------

func init() {
	gob.Register(Shift{})
	gob.Register(Reduce{})
	gob.Register(Accept{})
}

// blob is the gob-serializable shape of a Table. cfg.Production pointers
// cannot be sent directly across a gob boundary meaningfully (identity is
// lost on decode), so Reduce actions are encoded by production ID and
// re-resolved against the caller-supplied RuleSet on Deserialize.
type blob struct {
	ActionTerminals [][]string
	ActionKinds     [][]string // "shift"/"reduce"/"accept" parallel to ActionTerminals
	ActionShiftTo   [][]int
	ActionReduceID  [][]int
	EOFKind         []string
	EOFShiftTo      []int
	EOFReduceID     []int
	GotoNonterms    [][]string
	GotoTo          [][]int
	NumTerminals    []string
	Nonterminals    []string
}

// Serialize encodes t as an opaque byte blob ("Cached table blob"),
// using encoding/gob. The grammar identity is not embedded (// "Serialization versioning" — callers wanting mismatch protection should
// embed their own grammar digest alongside the blob).
func Serialize(t *Table) ([]byte, error) {
	b := blob{
		EOFKind:      make([]string, len(t.EOFAction)),
		EOFShiftTo:   make([]int, len(t.EOFAction)),
		EOFReduceID:  make([]int, len(t.EOFAction)),
		Nonterminals: t.Nonterminals,
	}
	for _, term := range t.Terminals {
		b.NumTerminals = append(b.NumTerminals, term.Name())
	}
	for s := range t.Action {
		var terms, kinds []string
		var shiftTo, reduceID []int
		for name, act := range t.Action[s] {
			terms = append(terms, name)
			switch a := act.(type) {
			case Shift:
				kinds = append(kinds, "shift")
				shiftTo = append(shiftTo, a.State)
				reduceID = append(reduceID, -1)
			case Reduce:
				kinds = append(kinds, "reduce")
				shiftTo = append(shiftTo, -1)
				reduceID = append(reduceID, a.Prod.ID)
			case Accept:
				kinds = append(kinds, "accept")
				shiftTo = append(shiftTo, -1)
				reduceID = append(reduceID, -1)
			}
		}
		b.ActionTerminals = append(b.ActionTerminals, terms)
		b.ActionKinds = append(b.ActionKinds, kinds)
		b.ActionShiftTo = append(b.ActionShiftTo, shiftTo)
		b.ActionReduceID = append(b.ActionReduceID, reduceID)

		switch a := t.EOFAction[s].(type) {
		case Shift:
			b.EOFKind[s], b.EOFShiftTo[s], b.EOFReduceID[s] = "shift", a.State, -1
		case Reduce:
			b.EOFKind[s], b.EOFShiftTo[s], b.EOFReduceID[s] = "reduce", -1, a.Prod.ID
		case Accept:
			b.EOFKind[s], b.EOFShiftTo[s], b.EOFReduceID[s] = "accept", -1, -1
		default:
			b.EOFKind[s], b.EOFShiftTo[s], b.EOFReduceID[s] = "none", -1, -1
		}

		var gn []string
		var gt []int
		for name, to := range t.Goto[s] {
			gn = append(gn, name)
			gt = append(gt, to)
		}
		b.GotoNonterms = append(b.GotoNonterms, gn)
		b.GotoTo = append(b.GotoTo, gt)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&b); err != nil {
		return nil, fmt.Errorf("table: serialize: %w", err)
	}
	return buf.Bytes(), nil
}

// Deserialize decodes a blob produced by Serialize back into a Table,
// resolving Reduce actions' production references against rs (which must
// be the same, or a structurally identical, rule set the table was built
// from: a blob computed against one grammar must not be loadable against
// another; gob's strict typed decoding together with the explicit shape
// check below rejects shape-mismatched blobs.
func Deserialize(rs *cfg.RuleSet, data []byte) (*Table, error) {
	var b blob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&b); err != nil {
		return nil, fmt.Errorf("table: deserialize: %w", err)
	}
	n := len(b.ActionTerminals)
	if len(b.EOFKind) != n || len(b.GotoNonterms) != n {
		return nil, fmt.Errorf("table: deserialize: malformed blob (inconsistent state count)")
	}

	prodByID := map[int]*cfg.Production{}
	for _, p := range rs.Productions() {
		prodByID[p.ID] = p
	}
	resolveProd := func(id int) (*cfg.Production, error) {
		p, ok := prodByID[id]
		if !ok {
			return nil, fmt.Errorf("table: deserialize: production id %d not found in rule set; blob does not match this grammar", id)
		}
		return p, nil
	}

	t := &Table{
		Action:       make([]map[string]Action, n),
		EOFAction:    make([]Action, n),
		Goto:         make([]map[string]int, n),
		Nonterminals: b.Nonterminals,
	}
	nameToTerm := map[string]cfg.Term{}
	for _, term := range rs.Terminals() {
		nameToTerm[term.Name()] = term
	}
	for _, name := range b.NumTerminals {
		if tm, ok := nameToTerm[name]; ok {
			t.Terminals = append(t.Terminals, tm)
		}
	}

	for s := 0; s < n; s++ {
		t.Action[s] = map[string]Action{}
		for i, name := range b.ActionTerminals[s] {
			switch b.ActionKinds[s][i] {
			case "shift":
				t.Action[s][name] = Shift{State: b.ActionShiftTo[s][i]}
			case "reduce":
				p, err := resolveProd(b.ActionReduceID[s][i])
				if err != nil {
					return nil, err
				}
				t.Action[s][name] = Reduce{Prod: p}
			case "accept":
				t.Action[s][name] = Accept{}
			}
		}
		switch b.EOFKind[s] {
		case "shift":
			t.EOFAction[s] = Shift{State: b.EOFShiftTo[s]}
		case "reduce":
			p, err := resolveProd(b.EOFReduceID[s])
			if err != nil {
				return nil, err
			}
			t.EOFAction[s] = Reduce{Prod: p}
		case "accept":
			t.EOFAction[s] = Accept{}
		}
		t.Goto[s] = map[string]int{}
		for i, name := range b.GotoNonterms[s] {
			t.Goto[s][name] = b.GotoTo[s][i]
		}
	}
	return t, nil
}
