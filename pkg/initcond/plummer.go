// Package initcond builds Plummer-model initial conditions and
// (de)serializes simulation checkpoints, grounded on the reference
// Configuration class in original_source/configs.cpp and utils.cpp.
package initcond

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/stellarforge/nbody-sim/pkg/body"
	"github.com/stellarforge/nbody-sim/pkg/config"
)

// sampler bundles the independent uniform generators the Plummer
// distribution draws from, mirroring configs.cpp's five
// uniform_distribution_* members: a single underlying source keeps the
// draw order deterministic for a fixed seed (spec §5 "Ordering
// guarantees").
type sampler struct {
	cosTheta distuv.Uniform // [-1, 1): isotropic polar angle cosine
	phi      distuv.Uniform // [0, 2*pi): isotropic azimuth
	radiusU  distuv.Uniform // (0.02, 1): inverse-CDF input for radius
	speedX   distuv.Uniform // [0, 1): rejection-sample trial speed
	speedY   distuv.Uniform // [0, 0.1): rejection-sample trial density
}

func newSampler(src rand.Source) *sampler {
	return &sampler{
		cosTheta: distuv.Uniform{Min: -1, Max: 1, Src: src},
		phi:      distuv.Uniform{Min: 0, Max: 2 * math.Pi, Src: src},
		radiusU:  distuv.Uniform{Min: 0.02, Max: 1, Src: src},
		speedX:   distuv.Uniform{Min: 0, Max: 1, Src: src},
		speedY:   distuv.Uniform{Min: 0, Max: 0.1, Src: src},
	}
}

// radius draws one sample from the Plummer radial distribution using
// the canonical inverse-CDF (spec §4.3 step 1, §9 "Plummer sampling
// discrepancies"): r = r0 * (u^(-2/3) - 1)^(-1/2). The reference's
// r0/sqrt(u^(-2/3)) form — equivalent to r0*u^(1/3) — is documented in
// SPEC_FULL.md as a rejected alternative, not used here.
func (s *sampler) radius(r0 float64) float64 {
	u := s.radiusU.Rand()
	return r0 / math.Sqrt(math.Pow(u, -2.0/3.0)-1)
}

// isotropicPoint converts a scalar length into a uniformly-random
// direction on the sphere of that radius (spec §4.3 step 2), following
// configs.cpp's randomize_theta_phi but drawing phi on the full
// [0, 2*pi) circle rather than the reference's [0, pi).
func (s *sampler) isotropicPoint(r float64) (x, y, z float64) {
	cosTheta := s.cosTheta.Rand()
	theta := math.Acos(cosTheta)
	phi := s.phi.Rand()
	sinTheta := math.Sin(theta)
	x = r * sinTheta * math.Cos(phi)
	y = r * sinTheta * math.Sin(phi)
	z = r * cosTheta
	return
}

// escapeVelocity is v_esc(r) = sqrt(2) * (1+r^2)^(-1/4) in Plummer
// units (spec GLOSSARY).
func escapeVelocity(r float64) float64 {
	return math.Sqrt2 * math.Pow(1+r*r, -0.25)
}

// speed rejection-samples the dimensionless speed q from density
// proportional to q^2*(1-q^2)^(7/2) and scales it by the local escape
// velocity (spec §4.3 step 3), following configs.cpp's sample_velocity.
func (s *sampler) speed(r float64) float64 {
	x, y := 0.0, 0.1
	for y > x*x*math.Pow(1-x*x, 3.5) {
		x = s.speedX.Rand()
		y = s.speedY.Rand()
	}
	return x * escapeVelocity(r)
}

// GeneratePlummer builds n particles of equal mass mass/n sampled from
// the Plummer model, then applies the centering policy for a fresh
// (iteration 0) generation (spec §4.3). cfg.Seed selects the RNG
// stream; a zero seed is replaced by one derived from the current time,
// so the output is not reproducible.
func GeneratePlummer(cfg *config.Config) []*body.Particle {
	src := newRandSource(cfg.Seed)
	s := newSampler(src)

	particles := make([]*body.Particle, cfg.NumBodies)
	perBodyMass := cfg.Mass / float64(cfg.NumBodies)

	for i := 0; i < cfg.NumBodies; i++ {
		r := s.radius(cfg.IniRadius)
		x, y, z := s.isotropicPoint(r)
		v := s.speed(r)
		vx, vy, vz := s.isotropicPoint(v)

		particles[i] = body.New(x, y, z, vx, vy, vz, perBodyMass)
	}
	body.IndexAll(particles)

	Center(particles, cfg.NeedToZero, 0)
	return particles
}
