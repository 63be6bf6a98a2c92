package octree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewNodeStartsUnused(t *testing.T) {
	before := LiveNodes()

	n := newNode(-1, 1, -1, 1, -1, 1)
	require.EqualValues(t, before+1, LiveNodes())
	require.True(t, n.IsUnused())
	require.False(t, n.IsExternal())
	require.False(t, n.IsInternal())
	require.InDelta(t, 2, n.Side(), 1e-15)
	require.InDelta(t, 0, n.XMean, 1e-15)

	n.Release()
	require.EqualValues(t, before, LiveNodes())
}

func TestNodeStatusTransitions(t *testing.T) {
	n := newNode(0, 1, 0, 1, 0, 1)
	defer n.Release()

	n.particleIndex = 3
	require.True(t, n.IsExternal())
	require.Equal(t, 3, n.ParticleIndex())

	n.particleIndex = statusInternal
	require.True(t, n.IsInternal())
	require.False(t, n.IsExternal())
	require.False(t, n.IsUnused())
}

func TestReleaseOnNilIsNoop(t *testing.T) {
	var n *Node
	require.NotPanics(t, func() { n.Release() })
}
