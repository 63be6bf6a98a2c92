package octree

import (
	"fmt"
	"math"

	"github.com/stellarforge/nbody-sim/pkg/body"
)

// MassMismatchError reports a node whose aggregated mass or centroid
// disagrees with its children beyond tolerance — the optional
// verifier of spec §7 "Structural invariant violation".
type MassMismatchError struct {
	NodeMass, ChildrenMass float64
}

func (e *MassMismatchError) Error() string {
	return fmt.Sprintf("octree: node mass %v disagrees with children's summed mass %v", e.NodeMass, e.ChildrenMass)
}

// VerifyAggregation walks the tree checking spec invariants 3 and 5:
// every internal node's mass/centroid equals the sum over its
// children, and every external node's particle lies inside its box.
// The tolerance is 1e-9 * totalMass, or 1e-9 when totalMass is below 1.
// It is not called by Build; callers opt in when they want the
// stronger check.
func VerifyAggregation(n *Node, particles []*body.Particle, totalMass float64) error {
	if n == nil {
		return nil
	}
	tol := 1e-9 * math.Max(totalMass, 1)

	switch {
	case n.IsExternal():
		p := particles[n.ParticleIndex()]
		pos := p.Pos()
		if pos.X < n.XMin || pos.X >= n.XMax ||
			pos.Y < n.YMin || pos.Y >= n.YMax ||
			pos.Z < n.ZMin || pos.Z >= n.ZMax {
			return fmt.Errorf("octree: particle %d at %+v lies outside its node's box", n.ParticleIndex(), pos)
		}
		return nil

	case n.IsInternal():
		var sumMass, sumMX, sumMY, sumMZ float64
		for _, c := range n.children {
			if c == nil {
				continue
			}
			if err := VerifyAggregation(c, particles, totalMass); err != nil {
				return err
			}
			sumMass += c.Mass
			sumMX += c.Mass * c.X
			sumMY += c.Mass * c.Y
			sumMZ += c.Mass * c.Z
		}
		if math.Abs(n.Mass-sumMass) > tol {
			return &MassMismatchError{NodeMass: n.Mass, ChildrenMass: sumMass}
		}
		if n.Mass > 0 {
			if math.Abs(n.Mass*n.X-sumMX) > tol ||
				math.Abs(n.Mass*n.Y-sumMY) > tol ||
				math.Abs(n.Mass*n.Z-sumMZ) > tol {
				return &MassMismatchError{NodeMass: n.Mass, ChildrenMass: sumMass}
			}
		}
		return nil
	}

	return nil
}
