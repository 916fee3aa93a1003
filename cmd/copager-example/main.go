/*
Copager-example exercises the copager toolkit end to end over the
canonical expression grammar

	E ::= E plus T | T
	T ::= T star F | F
	F ::= id | lparen E rparen

plus one production F ::= ws that registers the whitespace terminal ws
with the grammar (ws is trivia, so the lexer drops it before it reaches
the parser), built with package bnf, compiled to an LALR(1) table, and run through
package processor. Given -e it evaluates one expression and exits;
otherwise it drops into a readline-based REPL, printing (with -tree)
the built parse tree for every line.

Usage:

	copager-example [flags]

The flags are:

	-e, --expr STRING
		Evaluate STRING and exit instead of starting the REPL.

	-t, --tree
		Print the built IR tree alongside the parse result.

	--trace LEVEL
		Trace level (Debug|Info|Error), default Error.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/spf13/pflag"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"

	"github.com/npillmayer/copager/bnf"
	"github.com/npillmayer/copager/cfg"
	"github.com/npillmayer/copager/ir"
	"github.com/npillmayer/copager/processor"
	"github.com/npillmayer/copager/table"
)

var (
	exprFlag  = pflag.StringP("expr", "e", "", "Evaluate the given expression and exit")
	treeFlag  = pflag.BoolP("tree", "t", false, "Print the built IR tree alongside the result")
	traceFlag = pflag.String("trace", "Error", "Trace level [Debug|Info|Error]")
)

func main() {
	pflag.Parse()

	gtrace.SyntaxTracer = gologadapter.New()
	level := tracing.LevelError
	switch strings.ToLower(*traceFlag) {
	case "debug":
		level = tracing.LevelDebug
	case "info":
		level = tracing.LevelInfo
	}
	gtrace.SyntaxTracer.SetTraceLevel(level)

	p, err := buildProcessor()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
		os.Exit(1)
	}

	if *exprFlag != "" {
		runOne(p, *exprFlag)
		return
	}
	repl(p)
}

// buildProcessor parses the canonical expression grammar via bnf and
// compiles it into an LALR(1) processor.
func buildProcessor() (*processor.Processor, error) {
	plus := bnf.ParseTerm("plus", []string{`\+`}, nil)
	star := bnf.ParseTerm("star", []string{`\*`}, nil)
	lparen := bnf.ParseTerm("lparen", []string{`\(`}, nil)
	rparen := bnf.ParseTerm("rparen", []string{`\)`}, nil)
	id := bnf.ParseTerm("id", []string{`[a-zA-Z_][a-zA-Z0-9_]*`}, nil)
	ws := bnf.ParseTerm("ws", []string{`[ \t]+`}, []string{"trivia"})

	terms := map[string]cfg.Term{
		"plus": plus, "star": star, "lparen": lparen, "rparen": rparen,
		"id": id, "ws": ws,
	}

	eRule := cfg.StaticRule{RuleName: "E"}
	tRule := cfg.StaticRule{RuleName: "T"}
	fRule := cfg.StaticRule{RuleName: "F"}

	eProds, err := bnf.ParseRules(eRule, terms, []string{
		"<E> ::= <E> plus <T>",
		"<E> ::= <T>",
	})
	if err != nil {
		return nil, err
	}
	tProds, err := bnf.ParseRules(tRule, terms, []string{
		"<T> ::= <T> star <F>",
		"<T> ::= <F>",
	})
	if err != nil {
		return nil, err
	}
	fProds, err := bnf.ParseRules(fRule, terms, []string{
		"<F> ::= id",
		"<F> ::= lparen <E> rparen",
		"<F> ::= ws", // registers the trivia terminal with the grammar
	})
	if err != nil {
		return nil, err
	}

	bld := cfg.NewRuleSetBuilder("expr")
	for _, p := range eProds {
		bld.Add(p.Tag, p.LHS.NonTermName(), p.RHS)
	}
	for _, p := range tProds {
		bld.Add(p.Tag, p.LHS.NonTermName(), p.RHS)
	}
	for _, p := range fProds {
		bld.Add(p.Tag, p.LHS.NonTermName(), p.RHS)
	}
	rs, err := bld.RuleSet()
	if err != nil {
		return nil, err
	}

	return processor.Build(rs, processor.WithVariant(table.LALR1))
}

func runOne(p *processor.Processor, input string) {
	result, err := p.Process(input)
	if err != nil {
		pterm.Error.Printfln("%s: %s", input, err.Error())
		return
	}
	printResult(input, result)
}

func printResult(input string, result interface{}) {
	if *treeFlag {
		if node, ok := result.(*ir.Node); ok {
			pterm.Info.Println(node.String())
		}
	}
	pterm.Success.Printfln("%s => %v", input, result)
}

func repl(p *processor.Processor) {
	rl, err := readline.New("copager> ")
	if err != nil {
		runPlainREPL(p)
		return
	}
	defer rl.Close()
	pterm.Info.Println("Quit with <ctrl>D")
	for {
		line, err := rl.Readline()
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		runOne(p, line)
	}
}

// runPlainREPL falls back to a bufio.Scanner loop when readline can't
// attach to the terminal (e.g. piped stdin in CI).
func runPlainREPL(p *processor.Processor) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		runOne(p, line)
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err.Error())
	}
}
