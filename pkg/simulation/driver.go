// Package simulation wires the octree and initcond packages into the
// leapfrog step loop spec.md treats as an external collaborator of the
// core: it is specified only by the boundary contracts of spec §6, and
// is supplemented here from original_source/configs.cpp and utils.cpp.
package simulation

import (
	"log"

	"github.com/stellarforge/nbody-sim/pkg/body"
	"github.com/stellarforge/nbody-sim/pkg/config"
	"github.com/stellarforge/nbody-sim/pkg/initcond"
	"github.com/stellarforge/nbody-sim/pkg/octree"
	"github.com/stellarforge/nbody-sim/pkg/vector"
)

// Driver owns the particle set and advances it through leapfrog steps,
// building a fresh octree each iteration the way spec §2's data flow
// describes: InitialConditions produces particles, the octree is
// rebuilt over current positions, the force evaluator queries it, the
// driver applies the resulting accelerations, and the loop repeats.
type Driver struct {
	cfg       *config.Config
	particles []*body.Particle
	iter      int
}

// New constructs a Driver over an already-generated or loaded particle
// set starting at iter.
func New(cfg *config.Config, particles []*body.Particle, iter int) *Driver {
	return &Driver{cfg: cfg, particles: particles, iter: iter}
}

// Particles returns the driver's current particle set; callers must
// not mutate it while Step is running.
func (d *Driver) Particles() []*body.Particle { return d.particles }

// Iteration returns the current step count.
func (d *Driver) Iteration() int { return d.iter }

// Step advances the system by one leapfrog integration step: kick by
// half a timestep, drift by a full timestep, rebuild the tree at the
// new positions, kick by the remaining half timestep. This generalizes
// the teacher's System.LeapfrogStep, which loops over an O(N^2) direct
// sum (pkg/astronomy/nbody/integrator.go's calculateAccelerations), to
// instead query a freshly built Barnes-Hut tree each half-step.
func (d *Driver) Step() error {
	accs, err := d.accelerations()
	if err != nil {
		return err
	}
	d.kick(accs, 0.5*d.cfg.Dt)
	d.drift(d.cfg.Dt)

	accs, err = d.accelerations()
	if err != nil {
		return err
	}
	d.kick(accs, 0.5*d.cfg.Dt)

	d.iter++
	if d.cfg.NeedToZero >= 2 {
		initcond.Center(d.particles, d.cfg.NeedToZero, d.iter)
	}
	return nil
}

// accelerations builds a tree over the current positions, evaluates
// the Barnes-Hut force on every particle, and releases the tree before
// returning — each tree is released before the next rebuild, which
// Step does twice per iteration (spec §3 "Ownership / lifecycle").
func (d *Driver) accelerations() ([]vector.Vector3, error) {
	tree, err := octree.Build(d.particles)
	if err != nil {
		return nil, err
	}
	defer tree.Release()

	workers := d.cfg.Workers
	var accs []vector.Vector3
	if workers > 1 {
		accs = octree.ComputeAccelerationsParallel(tree, d.particles, d.cfg.G, d.cfg.Theta, d.cfg.Softening, workers)
	} else {
		accs = octree.ComputeAccelerations(tree, d.particles, d.cfg.G, d.cfg.Theta, d.cfg.Softening)
	}
	return accs, nil
}

func (d *Driver) kick(accs []vector.Vector3, dt float64) {
	for _, p := range d.particles {
		vel := p.Vel()
		a := accs[p.Index()]
		vel.X += a.X * dt
		vel.Y += a.Y * dt
		vel.Z += a.Z * dt
		p.SetVel(vel)
	}
}

func (d *Driver) drift(dt float64) {
	for _, p := range d.particles {
		pos := p.Pos()
		vel := p.Vel()
		pos.X += vel.X * dt
		pos.Y += vel.Y * dt
		pos.Z += vel.Z * dt
		p.SetPos(pos)
	}
}

// Checkpoint saves the driver's current state to the configured
// checkpoint path.
func (d *Driver) Checkpoint() error {
	cp := &initcond.Checkpoint{
		Iteration: d.iter,
		Theta:     d.cfg.Theta,
		G:         d.cfg.G,
		Dt:        d.cfg.Dt,
		Particles: d.particles,
	}
	path := d.cfg.CheckpointPath()
	if err := initcond.Save(cp, path, d.cfg.BackupSuffix); err != nil {
		return err
	}
	log.Printf("simulation: checkpoint written at iteration %d to %s", d.iter, path)
	return nil
}

// Resume loads particles and scalars from a checkpoint and builds a
// Driver positioned to continue from where it left off.
func Resume(cfg *config.Config) (*Driver, error) {
	cp, err := initcond.Load(cfg.CheckpointPath())
	if err != nil {
		return nil, err
	}
	cfg.Theta = cp.Theta
	cfg.G = cp.G
	cfg.Dt = cp.Dt
	return New(cfg, cp.Particles, cp.Iteration), nil
}
