/*
Package processor is the orchestration façade: it folds
grammar analysis, automaton construction, table compilation, lexing,
driving and IR building into a single Build/Process pipeline, and
supports caching a compiled table as an opaque blob so that repeated
processes of the same grammar skip automaton construction entirely.

Grounded on the composition implied by lr/slr/slr_test.go's parse()
helper (Analysis → NewTableGenerator → CreateTables → NewParser →
Parse), folded into one type instead of four free functions the caller
must sequence by hand.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package processor

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/npillmayer/copager/cfg"
	"github.com/npillmayer/copager/cfg/lalr1"
	"github.com/npillmayer/copager/cfg/lr0"
	"github.com/npillmayer/copager/cfg/lr1"
	"github.com/npillmayer/copager/cfg/sets"
	"github.com/npillmayer/copager/driver"
	"github.com/npillmayer/copager/ir"
	"github.com/npillmayer/copager/lexer"
	"github.com/npillmayer/copager/table"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'copager.processor'.
func tracer() tracing.Trace {
	return tracing.Select("copager.processor")
}

// Option configures a Processor at Build/RestoreParserByCache time,
// following the same functional-options idiom as lexer.Option and
// gorgo's scanner.Option.
type Option func(*config)

type config struct {
	variant       table.Variant
	lexerOpts     []lexer.Option
	builderFor    func() ir.Builder
}

func defaultConfig() *config {
	return &config{
		variant:    table.LALR1,
		builderFor: func() ir.Builder { return ir.NewTreeBuilder() },
	}
}

// WithVariant selects which LR table variant to compile (default LALR1,
// the common "most languages, fewest states" choice).
func WithVariant(v table.Variant) Option {
	return func(c *config) { c.variant = v }
}

// WithLexerOptions passes options through to the underlying lexer.New.
func WithLexerOptions(opts ...lexer.Option) Option {
	return func(c *config) { c.lexerOpts = append(c.lexerOpts, opts...) }
}

// WithBuilder selects the ir.Builder constructor used by Process (default
// ir.NewTreeBuilder).
func WithBuilder(f func() ir.Builder) Option {
	return func(c *config) { c.builderFor = f }
}

// Processor bundles a compiled table, a grammar-derived lexer, and an IR
// builder factory into a single reusable, safely-shareable-by-reference
// object: multiple drivers may share one compiled table.
type Processor struct {
	id         uuid.UUID
	rs         *cfg.RuleSet
	tbl        *table.Table
	lx         *lexer.Lexer
	builderFor func() ir.Builder
}

// ID returns a stable per-Processor identifier, useful in trace lines when
// several processors are alive concurrently.
func (p *Processor) ID() uuid.UUID { return p.id }

// Table exposes the compiled table, e.g. for Processor.PrebuildParser or
// for driving a custom driver.Driver directly.
func (p *Processor) Table() *table.Table { return p.tbl }

// Build performs full grammar analysis and table compilation for rs: FIRST/
// FOLLOW, the requested automaton (LR0/SLR1/LR1/LALR1), and the resulting
// decision table, then wraps it with a lexer built from rs's terminals.
func Build(rs *cfg.RuleSet, opts ...Option) (*Processor, error) {
	cfgOpts := defaultConfig()
	for _, o := range opts {
		o(cfgOpts)
	}
	if !rs.Augmented() {
		rs = rs.Augment()
	}

	tbl, err := compileVariant(rs, cfgOpts.variant)
	if err != nil {
		return nil, err
	}

	lx, err := lexer.New(rs, cfgOpts.lexerOpts...)
	if err != nil {
		return nil, err
	}

	p := &Processor{
		id:         uuid.New(),
		rs:         rs,
		tbl:        tbl,
		lx:         lx,
		builderFor: cfgOpts.builderFor,
	}
	tracer().Infof("processor %s built (%s, %d states)", p.id, cfgOpts.variant, len(tbl.Action))
	return p, nil
}

// compileVariant runs the grammar analysis and automaton construction
// appropriate to variant, returning the compiled table.
func compileVariant(rs *cfg.RuleSet, variant table.Variant) (*table.Table, error) {
	switch variant {
	case table.LR0:
		dfa, err := lr0.BuildDFA(rs)
		if err != nil {
			return nil, err
		}
		return table.CompileLR0(dfa)
	case table.SLR1:
		dfa, err := lr0.BuildDFA(rs)
		if err != nil {
			return nil, err
		}
		first := sets.First(rs)
		follow := sets.Follow(rs, first)
		return table.CompileSLR1(dfa, follow)
	case table.LR1:
		first := sets.First(rs)
		dfa, err := lr1.BuildDFA(rs, first)
		if err != nil {
			return nil, err
		}
		return table.CompileLR1(dfa)
	case table.LALR1:
		first := sets.First(rs)
		lr1dfa, err := lr1.BuildDFA(rs, first)
		if err != nil {
			return nil, err
		}
		dfa, err := lalr1.Merge(lr1dfa)
		if err != nil {
			return nil, err
		}
		return table.CompileLALR1(dfa)
	}
	return nil, fmt.Errorf("processor: unknown variant %v", variant)
}

// PrebuildParser serializes the compiled table to an opaque blob, for
// callers who want to persist analysis results across runs.
func (p *Processor) PrebuildParser() ([]byte, error) {
	return table.Serialize(p.tbl)
}

// RestoreParserByCache builds a Processor directly from a previously
// serialized table blob, skipping FIRST/FOLLOW and automaton construction
// entirely. rs must be the same (or structurally identical) rule set the
// blob was built from.
func RestoreParserByCache(rs *cfg.RuleSet, blob []byte, opts ...Option) (*Processor, error) {
	cfgOpts := defaultConfig()
	for _, o := range opts {
		o(cfgOpts)
	}
	if !rs.Augmented() {
		rs = rs.Augment()
	}

	tbl, err := table.Deserialize(rs, blob)
	if err != nil {
		return nil, err
	}
	lx, err := lexer.New(rs, cfgOpts.lexerOpts...)
	if err != nil {
		return nil, err
	}
	p := &Processor{
		id:         uuid.New(),
		rs:         rs,
		tbl:        tbl,
		lx:         lx,
		builderFor: cfgOpts.builderFor,
	}
	tracer().Infof("processor %s restored from cache (%d states)", p.id, len(tbl.Action))
	return p, nil
}

// Process runs lex → drive → build over input, aborting at the first
// error event. It returns whatever the configured ir.Builder's
// Build() produces (an *ir.Node by default).
func (p *Processor) Process(input string) (interface{}, error) {
	sc, err := p.lx.Scanner(input)
	if err != nil {
		return nil, err
	}
	d := driver.NewDriver(p.tbl, p.lx.Namer(), input)
	b := p.builderFor()

	for {
		tok, err := sc.Next()
		if err != nil {
			return nil, err
		}
		if tok.TokType() == lexer.EOFTokType {
			events := d.ConsumeEOF()
			if err := ir.ApplyEvents(b, events); err != nil {
				return nil, err
			}
			break
		}
		events := d.Consume(tok)
		if err := ir.ApplyEvents(b, events); err != nil {
			return nil, err
		}
		if d.Done() {
			break
		}
	}
	if !d.Accepted() {
		return nil, fmt.Errorf("processor: input rejected")
	}
	return b.Build()
}
