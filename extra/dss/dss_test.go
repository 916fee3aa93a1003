package dss_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/npillmayer/copager/extra/dss"
)

func TestNewStackSeeded(t *testing.T) {
	r := dss.NewRoot("G", 0)
	s := dss.NewStack(r)
	state, sym := s.Peek()
	require.Equal(t, 0, state)
	require.Equal(t, "", sym)
}

func TestPushPop(t *testing.T) {
	r := dss.NewRoot("G", 0)
	s := dss.NewStack(r)
	s.Push(1, "a")
	state, sym := s.Peek()
	require.Equal(t, 1, state)
	require.Equal(t, "a", sym)

	gotState, gotSym, ok := s.Pop()
	require.True(t, ok)
	require.Equal(t, 1, gotState)
	require.Equal(t, "a", gotSym)

	state, _ = s.Peek()
	require.Equal(t, 0, state)
}

func TestForkSharesTop(t *testing.T) {
	r := dss.NewRoot("G", 0)
	s1 := dss.NewStack(r)
	s1.Push(1, "a")
	s2 := s1.Fork()
	s1.Push(2, "b")
	s2.Push(3, "c")

	st1, sym1 := s1.Peek()
	require.Equal(t, 2, st1)
	require.Equal(t, "b", sym1)
	st2, sym2 := s2.Peek()
	require.Equal(t, 3, st2)
	require.Equal(t, "c", sym2)
	require.Equal(t, 3, s1.Depth())
	require.Equal(t, 3, s2.Depth())
}

func TestPopN(t *testing.T) {
	r := dss.NewRoot("G", 0)
	s := dss.NewStack(r)
	s.Push(1, "a").Push(2, "b").Push(3, "c")

	syms, ok := s.PopN(3)
	require.True(t, ok)
	require.Equal(t, []string{"a", "b", "c"}, syms)
	require.False(t, s.Empty()) // root frame remains
}
