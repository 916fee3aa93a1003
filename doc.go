/*
Package copager is a compile-time-style parser-generator toolkit for
context-free languages.

Given a declared token set (regex-tagged terminals) and a declared rule
set (BNF-tagged productions), copager derives FIRST/FOLLOW/DIRECTOR
sets, constructs an LR item-set automaton (LR0, SLR1, LR1 or LALR1),
compiles it into a shift/reduce decision table, and drives that table
against a token stream, emitting a sequence of parse events for an
intermediate-representation builder to consume.

Package structure is as follows:

■ cfg: the grammar data model (terminals, rules, productions) and the
derived FIRST/FOLLOW/DIRECTOR sets (package cfg/sets).

■ cfg/lr0, cfg/lr1, cfg/lalr1: the three item-set automaton flavors.

■ table: compiles an automaton into an action/goto table, detecting
conflicts as build errors; also (de)serializes a built table.

■ driver: the stack-based table-driven parser, emitting parse events.

■ lexer, ir, bnf: peripheral collaborators (a regex-tagged lexer, IR
builder adapters, and a BNF declaration-string parser), specified only
at their interface to the core.

■ processor: ties a lexer, a driver/table and an IR builder together
for a given language.

■ internal/config: small module-wide default values (trivia handling,
trace key prefix); the above packages set their own defaults and do
not read it.

■ extra/dss, extra/sppf, extra/earley, extra/glr: non-core, manually
selected alternatives to the LALR(1) core (a graph-structured stack, a
shared packed parse forest, an Earley parser, and a GLR parser) for
grammars the core's conflict-rejecting table.Compile won't accept.
Never imported by the core packages above.

■ cmd/copager-example: a CLI/REPL exercising the core over a small
arithmetic-expression grammar.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package copager
