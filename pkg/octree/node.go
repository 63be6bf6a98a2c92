// Package octree implements the adaptive Barnes–Hut spatial partition
// over a particle set: construction, mass/centroid aggregation,
// depth-first traversal and the Barnes–Hut force evaluator.
package octree

import "sync/atomic"

// status sentinels for Node.particleIndex. Any non-negative value
// means the node is external and holds that particle index — the same
// encoding the reference treecode.h uses (Internal=-2, Unused=-1).
const (
	statusUnused   = -1
	statusInternal = -2
)

var liveNodes int64

// LiveNodes returns the number of *Node values currently allocated and
// not yet Released. Tests use this to verify the tree's node-count
// invariant (spec testable property 1).
func LiveNodes() int64 {
	return atomic.LoadInt64(&liveNodes)
}

// Node is one cell of the octree: an axis-aligned cubic bounding box,
// aggregated mass/centroid, and up to eight owned children.
type Node struct {
	XMin, XMax float64
	YMin, YMax float64
	ZMin, ZMax float64

	// XMean/YMean/ZMean are the box's midpoint — the common corner of
	// its eight child octants.
	XMean, YMean, ZMean float64

	particleIndex int
	children      [8]*Node

	// Mass and X/Y/Z are set during post-order aggregation: for an
	// external node they equal the held particle's mass and position;
	// for an internal node they are the children's mass-weighted sum.
	Mass    float64
	X, Y, Z float64
}

func newNode(xmin, xmax, ymin, ymax, zmin, zmax float64) *Node {
	atomic.AddInt64(&liveNodes, 1)
	return &Node{
		XMin: xmin, XMax: xmax,
		YMin: ymin, YMax: ymax,
		ZMin: zmin, ZMax: zmax,
		XMean:         (xmin + xmax) / 2,
		YMean:         (ymin + ymax) / 2,
		ZMean:         (zmin + zmax) / 2,
		particleIndex: statusUnused,
	}
}

// Side returns the node's cubic side length.
func (n *Node) Side() float64 { return n.XMax - n.XMin }

// IsExternal reports whether the node holds exactly one particle.
func (n *Node) IsExternal() bool { return n.particleIndex >= 0 }

// IsInternal reports whether the node has been split into children.
func (n *Node) IsInternal() bool { return n.particleIndex == statusInternal }

// IsUnused reports whether the node is a freshly constructed empty cell.
func (n *Node) IsUnused() bool { return n.particleIndex == statusUnused }

// ParticleIndex returns the index of the particle held by an external
// node. It is only meaningful when IsExternal reports true.
func (n *Node) ParticleIndex() int { return n.particleIndex }

// Children returns the node's child slots. They are all nil for an
// Unused or External node; once a node becomes Internal all eight are
// allocated, though an individual child may itself still be Unused.
func (n *Node) Children() [8]*Node { return n.children }

// Release recursively decrements the live-node counter for this node
// and every descendant. Call it exactly once per tree, before the next
// rebuild — the root is exclusively owned by whoever built it.
func (n *Node) Release() {
	if n == nil {
		return
	}
	for _, c := range n.children {
		c.Release()
	}
	atomic.AddInt64(&liveNodes, -1)
}
