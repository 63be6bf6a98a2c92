package octree

import (
	"math"
	"runtime"
	"sync"

	"github.com/stellarforge/nbody-sim/pkg/body"
	"github.com/stellarforge/nbody-sim/pkg/vector"
)

// forceVisitor implements the Barnes–Hut opening-angle criterion of
// spec §4.2 "Force evaluation" as a Visitor.
type forceVisitor struct {
	particles  []*body.Particle
	queryIndex int
	queryPos   vector.Vector3

	g, theta, softening float64

	acc vector.Vector3
}

func (f *forceVisitor) Visit(n *Node) Status {
	if n.IsExternal() && n.ParticleIndex() == f.queryIndex {
		return Sideways
	}
	if n.Mass == 0 {
		return Sideways
	}

	dx := n.X - f.queryPos.X
	dy := n.Y - f.queryPos.Y
	dz := n.Z - f.queryPos.Z
	d2 := dx*dx + dy*dy + dz*dz
	d := math.Sqrt(d2)

	if n.IsExternal() || n.Side()/d < f.theta {
		if d == 0 {
			return Sideways
		}
		factor := f.g * n.Mass / (d2 + f.softening*f.softening)
		f.acc.X += factor * dx / d
		f.acc.Y += factor * dy / d
		f.acc.Z += factor * dz / d
		return Sideways
	}

	return Continue
}

func (f *forceVisitor) Propagate(node, child *Node) {}

func (f *forceVisitor) Depart(node *Node) bool { return true }

// ComputeAccelerations evaluates the Barnes–Hut gravitational
// acceleration on every particle against a fully built tree. It is a
// pure function: it mutates neither tree nor particles (spec §6
// contract).
func ComputeAccelerations(tree *Node, particles []*body.Particle, g, theta, softening float64) []vector.Vector3 {
	accs := make([]vector.Vector3, len(particles))
	for _, p := range particles {
		accs[p.Index()] = accelerationOn(tree, particles, p, g, theta, softening)
	}
	return accs
}

// ComputeAccelerationsParallel is the concurrent form of
// ComputeAccelerations: each worker queries the same read-only tree
// and writes to a disjoint slot of accs, satisfying spec §5's
// parallel-evaluation precondition (tree fully built, no shared
// mutable particle state touched during the parallel region).
func ComputeAccelerationsParallel(tree *Node, particles []*body.Particle, g, theta, softening float64, workers int) []vector.Vector3 {
	if workers <= 1 {
		return ComputeAccelerations(tree, particles, g, theta, softening)
	}
	if workers > len(particles) {
		workers = len(particles)
	}
	if workers < 1 {
		workers = 1
	}

	accs := make([]vector.Vector3, len(particles))
	jobs := make(chan *body.Particle, len(particles))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				accs[p.Index()] = accelerationOn(tree, particles, p, g, theta, softening)
			}
		}()
	}

	for _, p := range particles {
		jobs <- p
	}
	close(jobs)
	wg.Wait()

	return accs
}

func accelerationOn(tree *Node, particles []*body.Particle, p *body.Particle, g, theta, softening float64) vector.Vector3 {
	v := &forceVisitor{
		particles:  particles,
		queryIndex: p.Index(),
		queryPos:   p.Pos(),
		g:          g,
		theta:      theta,
		softening:  softening,
	}
	tree.Walk(v)
	return v.acc
}

// DefaultWorkers returns a reasonable worker count for
// ComputeAccelerationsParallel on the current machine.
func DefaultWorkers() int {
	return runtime.GOMAXPROCS(0)
}
