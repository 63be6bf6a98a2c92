package octree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stellarforge/nbody-sim/pkg/body"
)

// countingVisitor counts how many nodes Visit is called on and records
// the order Depart fires, to check Walk's depth-first left-to-right
// contract (spec §4.2 "Traversal").
type countingVisitor struct {
	visited []int // particle index, or -1 for non-external nodes
	departs int
}

func (c *countingVisitor) Visit(n *Node) Status {
	if n.IsExternal() {
		c.visited = append(c.visited, n.ParticleIndex())
	} else {
		c.visited = append(c.visited, -1)
	}
	return Continue
}

func (c *countingVisitor) Propagate(node, child *Node) {}

func (c *countingVisitor) Depart(node *Node) bool {
	c.departs++
	return true
}

func TestWalkVisitsEveryLiveNode(t *testing.T) {
	particles := []*body.Particle{
		body.New(-1, -1, -1, 0, 0, 0, 1),
		body.New(1, 1, 1, 0, 0, 0, 1),
	}
	body.IndexAll(particles)

	tree := mustBuild(t, particles)
	defer tree.Release()

	v := &countingVisitor{}
	ok := tree.Walk(v)
	require.True(t, ok)

	require.EqualValues(t, LiveNodes(), len(v.visited))
	require.EqualValues(t, LiveNodes(), v.departs)

	seen := map[int]bool{}
	for _, idx := range v.visited {
		if idx >= 0 {
			seen[idx] = true
		}
	}
	require.True(t, seen[0])
	require.True(t, seen[1])
}

// stopVisitor returns Stop on the first node visited.
type stopVisitor struct{ calls int }

func (s *stopVisitor) Visit(n *Node) Status {
	s.calls++
	return Stop
}
func (s *stopVisitor) Propagate(node, child *Node) {}
func (s *stopVisitor) Depart(node *Node) bool      { return true }

func TestWalkStopEndsTraversalImmediately(t *testing.T) {
	particles := []*body.Particle{
		body.New(-1, -1, -1, 0, 0, 0, 1),
		body.New(1, 1, 1, 0, 0, 0, 1),
	}
	body.IndexAll(particles)

	tree := mustBuild(t, particles)
	defer tree.Release()

	v := &stopVisitor{}
	ok := tree.Walk(v)
	require.False(t, ok)
	require.Equal(t, 1, v.calls)
}

// sidewaysVisitor returns Sideways at every node, so Depart should
// still fire for each visited node but none of their children get a
// Visit call.
type sidewaysVisitor struct {
	visits, departs int
}

func (s *sidewaysVisitor) Visit(n *Node) Status {
	s.visits++
	return Sideways
}
func (s *sidewaysVisitor) Propagate(node, child *Node) {}
func (s *sidewaysVisitor) Depart(node *Node) bool {
	s.departs++
	return true
}

func TestWalkSidewaysSkipsChildren(t *testing.T) {
	particles := []*body.Particle{
		body.New(-1, -1, -1, 0, 0, 0, 1),
		body.New(1, 1, 1, 0, 0, 0, 1),
	}
	body.IndexAll(particles)

	tree := mustBuild(t, particles)
	defer tree.Release()

	v := &sidewaysVisitor{}
	tree.Walk(v)
	require.Equal(t, 1, v.visits)
	require.Equal(t, 1, v.departs)
}
