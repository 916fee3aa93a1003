package config_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/npillmayer/copager/internal/config"
)

func TestNewDefaults(t *testing.T) {
	d := config.New()
	require.True(t, d.SkipTrivia)
	require.Equal(t, "copager.lexer", d.TraceKey("lexer"))
}

func TestTraceKeyNilSafe(t *testing.T) {
	var d *config.Default
	require.Equal(t, "lexer", d.TraceKey("lexer"))
}
