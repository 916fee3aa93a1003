/*
Package config holds a small set of module-wide default values (trivia
skipping, the trace key prefix). No other package of this module reads
them: lexer.New and processor set their own defaults inline (lexer
skips trivia by default, matching SkipTrivia here), and every package
selects its trace key ("copager.lexer", ...) directly.

Grounded on gorgo's lr/scanner Option pattern (SkipComments,
UnifyStrings): a plain struct of settings with a New() constructor,
generalized here to the handful of settings shared across packages
instead of being local to one scanner.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package config

// Default holds the module-wide default values; it is not consulted by
// table, lexer or processor.
type Default struct {
	// SkipTrivia controls whether lexer.Lexer drops tokens tagged
	// "trivia"/"ignored" instead of handing them to the driver.
	SkipTrivia bool
	// TraceKeyPrefix names the schuko/tracing key family this module's
	// packages register under ("copager.cfg", "copager.table", ...).
	TraceKeyPrefix string
}

// New returns the module's baseline defaults.
func New() *Default {
	return &Default{
		SkipTrivia:     true,
		TraceKeyPrefix: "copager",
	}
}

// TraceKey builds the dotted trace key for a given package name, e.g.
// TraceKey("lexer") -> "copager.lexer".
func (d *Default) TraceKey(pkg string) string {
	if d == nil || d.TraceKeyPrefix == "" {
		return pkg
	}
	return d.TraceKeyPrefix + "." + pkg
}
