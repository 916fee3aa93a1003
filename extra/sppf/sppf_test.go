package sppf_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/npillmayer/copager/extra/sppf"
)

func TestGetOrCreateDedups(t *testing.T) {
	f := sppf.NewForest()
	n1 := f.GetOrCreate("E", 0, 3)
	n2 := f.GetOrCreate("E", 0, 3)
	require.Same(t, n1, n2)
}

func TestAddPackedAmbiguous(t *testing.T) {
	f := sppf.NewForest()
	a := f.GetOrCreate("A", 0, 1)
	root := f.GetOrCreate("E", 0, 1)
	f.AddPacked(root, "E -> A", a)
	f.AddPacked(root, "E -> A", a) // duplicate, should not double-count
	require.False(t, root.Ambiguous())

	b := f.GetOrCreate("B", 0, 1)
	f.AddPacked(root, "E -> B", b)
	require.True(t, root.Ambiguous())
}

func TestDerivations(t *testing.T) {
	f := sppf.NewForest()
	a := f.GetOrCreate("a", 0, 1)
	root := f.GetOrCreate("E", 0, 1)
	f.AddPacked(root, "E -> a", a)
	f.AddPacked(root, "E -> E -> a", a)

	trees := root.Derivations(10)
	require.Len(t, trees, 2)
	require.Equal(t, "(E a)", trees[0].String())
}
