package octree

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/stellarforge/nbody-sim/pkg/body"
	"github.com/stellarforge/nbody-sim/pkg/vector"
)

// boundsEpsilon pads the computed bounding box so no particle ever
// lands exactly on a boundary (spec invariant 1).
const boundsEpsilon = 1e-4

// minSideFactor bounds the insert recursion: once a node's side falls
// below minSideFactor times the root's side, or its box can no longer
// be halved in float64 on any axis, two particles trying to share it
// are treated as coincident rather than split forever.
const minSideFactor = 1e-12

// CoincidentParticlesError is returned when two particles are close
// enough that the insert recursion would never terminate (spec §4.2
// edge case, §9).
type CoincidentParticlesError struct {
	I, J int
}

func (e *CoincidentParticlesError) Error() string {
	return fmt.Sprintf("octree: particles %d and %d are coincident past the recursion depth limit", e.I, e.J)
}

// Build constructs an octree over particles in three phases: compute
// a cubic, epsilon-padded bounding box; insert each particle index in
// order; post-order aggregate mass and centroid. The returned tree
// owns its nodes; the caller must call Release on it before the next
// rebuild. particles must outlive the tree.
func Build(particles []*body.Particle) (*Node, error) {
	if len(particles) == 0 {
		return nil, nil
	}

	xmin, xmax, ymin, ymax, zmin, zmax := bounds(particles)
	root := newNode(xmin, xmax, ymin, ymax, zmin, zmax)
	minSide := root.Side() * minSideFactor

	for _, p := range particles {
		if err := root.insert(p.Index(), particles, minSide); err != nil {
			root.Release()
			return nil, err
		}
	}

	root.aggregate(particles)
	return root, nil
}

// bounds computes the cubic, epsilon-padded bounding box over all
// particle positions (spec §4.2 phase 1).
func bounds(particles []*body.Particle) (xmin, xmax, ymin, ymax, zmin, zmax float64) {
	first := particles[0].Pos()
	xmin, xmax = first.X, first.X
	ymin, ymax = first.Y, first.Y
	zmin, zmax = first.Z, first.Z

	for _, p := range particles[1:] {
		pos := p.Pos()
		xmin = math.Min(xmin, pos.X)
		xmax = math.Max(xmax, pos.X)
		ymin = math.Min(ymin, pos.Y)
		ymax = math.Max(ymax, pos.Y)
		zmin = math.Min(zmin, pos.Z)
		zmax = math.Max(zmax, pos.Z)
	}

	xmin -= boundsEpsilon
	xmax += boundsEpsilon
	ymin -= boundsEpsilon
	ymax += boundsEpsilon
	zmin -= boundsEpsilon
	zmax += boundsEpsilon

	side := math.Max(xmax-xmin, math.Max(ymax-ymin, zmax-zmin))
	half := side / 2

	cx, cy, cz := (xmin+xmax)/2, (ymin+ymax)/2, (zmin+zmax)/2
	return cx - half, cx + half, cy - half, cy + half, cz - half, cz + half
}

// insert runs the state machine of spec §4.2: an Unused node becomes
// External; an External node splits into Internal, eagerly allocating
// all eight child octants (mirroring the reference's _split_node, which
// is why a single split of a 2-particle tree costs 8 new nodes even
// though only one or two octants end up occupied), then re-inserts both
// the incumbent and the new particle into their child octants; an
// Internal node routes the new particle into its existing child.
func (n *Node) insert(i int, particles []*body.Particle, minSide float64) error {
	switch {
	case n.IsUnused():
		n.particleIndex = i
		return nil

	case n.IsExternal():
		j := n.particleIndex
		// A midpoint that rounds onto its own box edge on every axis
		// means a child octant would be no smaller than this node.
		atFloor := (n.XMean == n.XMin || n.XMean == n.XMax) &&
			(n.YMean == n.YMin || n.YMean == n.YMax) &&
			(n.ZMean == n.ZMin || n.ZMean == n.ZMax)
		if n.Side() < minSide || atFloor {
			return &CoincidentParticlesError{I: i, J: j}
		}
		n.particleIndex = statusInternal
		n.split()
		if err := n.insertIntoChild(j, particles, minSide); err != nil {
			return err
		}
		return n.insertIntoChild(i, particles, minSide)

	default: // Internal
		return n.insertIntoChild(i, particles, minSide)
	}
}

// split allocates all eight child octants for a node that has just
// converted from External to Internal.
func (n *Node) split() {
	for idx := 0; idx < 8; idx++ {
		n.children[idx] = n.newChild(idx)
	}
}

func (n *Node) insertIntoChild(i int, particles []*body.Particle, minSide float64) error {
	idx := n.childIndex(particles[i].Pos())
	return n.children[idx].insert(i, particles, minSide)
}

// childIndex maps a position to the 3-bit child key 4*cx+2*cy+cz,
// where cx/cy/cz select the low (0) or high (1) half of this node's
// box on the x/y/z axis.
func (n *Node) childIndex(pos vector.Vector3) int {
	var cx, cy, cz int
	if pos.X >= n.XMean {
		cx = 1
	}
	if pos.Y >= n.YMean {
		cy = 1
	}
	if pos.Z >= n.ZMean {
		cz = 1
	}
	return 4*cx + 2*cy + cz
}

// newChild allocates the child node for octant idx, halving this
// node's box on each axis per the high/low bit of idx.
func (n *Node) newChild(idx int) *Node {
	xmin, xmax := n.XMin, n.XMean
	if idx&4 != 0 {
		xmin, xmax = n.XMean, n.XMax
	}
	ymin, ymax := n.YMin, n.YMean
	if idx&2 != 0 {
		ymin, ymax = n.YMean, n.YMax
	}
	zmin, zmax := n.ZMin, n.ZMean
	if idx&1 != 0 {
		zmin, zmax = n.ZMean, n.ZMax
	}
	return newNode(xmin, xmax, ymin, ymax, zmin, zmax)
}

// aggregate performs the post-order mass/centroid pass of spec §4.2
// phase 3: an external node's physics are its particle's; an internal
// node's are the mass-weighted sum of its non-empty children's.
func (n *Node) aggregate(particles []*body.Particle) {
	switch {
	case n.IsExternal():
		p := particles[n.particleIndex]
		pos := p.Pos()
		n.Mass = p.Mass()
		n.X, n.Y, n.Z = pos.X, pos.Y, pos.Z

	case n.IsInternal():
		var masses, mx, my, mz []float64
		for _, c := range n.children {
			if c == nil {
				continue
			}
			c.aggregate(particles)
			masses = append(masses, c.Mass)
			mx = append(mx, c.Mass*c.X)
			my = append(my, c.Mass*c.Y)
			mz = append(mz, c.Mass*c.Z)
		}
		n.Mass = floats.Sum(masses)
		if n.Mass > 0 {
			n.X = floats.Sum(mx) / n.Mass
			n.Y = floats.Sum(my) / n.Mass
			n.Z = floats.Sum(mz) / n.Mass
		}
	}
}
