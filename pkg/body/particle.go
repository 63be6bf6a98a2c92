// Package body defines the point-mass particle the octree and force
// evaluator operate over.
package body

import "github.com/stellarforge/nbody-sim/pkg/vector"

// Particle is a point mass carrying position, velocity and a stable
// index into the simulation's particle slice. The octree never copies
// a Particle; it only ever holds its index.
type Particle struct {
	index int
	pos   vector.Vector3
	vel   vector.Vector3
	mass  float64
}

// New constructs a particle with the given position, velocity and
// mass. Mass must be non-negative; callers are responsible for that
// invariant, the constructor does not check it (see spec error policy:
// configuration-shaped checks belong to the caller, not the core).
func New(x, y, z, vx, vy, vz, mass float64) *Particle {
	return &Particle{
		pos:  vector.Vector3{X: x, Y: y, Z: z},
		vel:  vector.Vector3{X: vx, Y: vy, Z: vz},
		mass: mass,
	}
}

// Index returns the particle's stable index into its owning slice.
func (p *Particle) Index() int { return p.index }

// SetIndex is called once by the owning container when the particle is
// placed into a slice; the octree relies on this index staying fixed
// across tree rebuilds.
func (p *Particle) SetIndex(i int) { p.index = i }

// Pos returns the particle's position.
func (p *Particle) Pos() vector.Vector3 { return p.pos }

// SetPos updates the particle's position.
func (p *Particle) SetPos(pos vector.Vector3) { p.pos = pos }

// Vel returns the particle's velocity.
func (p *Particle) Vel() vector.Vector3 { return p.vel }

// SetVel updates the particle's velocity.
func (p *Particle) SetVel(vel vector.Vector3) { p.vel = vel }

// Mass returns the particle's mass.
func (p *Particle) Mass() float64 { return p.mass }

// IndexAll assigns each particle its stable index, matching slice
// order. Call this once after generating or loading a particle set,
// before building a tree over it.
func IndexAll(particles []*Particle) {
	for i, p := range particles {
		p.SetIndex(i)
	}
}
