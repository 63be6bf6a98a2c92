package initcond

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat"

	"github.com/stellarforge/nbody-sim/pkg/config"
)

func plummerConfig(n int, seed int64) *config.Config {
	cfg := config.DefaultConfig()
	cfg.NumBodies = n
	cfg.Seed = seed
	return cfg
}

// TestGeneratePlummerCount checks the sampler produces exactly N
// particles of equal mass (spec §4.3 step 5).
func TestGeneratePlummerCount(t *testing.T) {
	cfg := plummerConfig(500, 1)
	particles := GeneratePlummer(cfg)
	require.Len(t, particles, 500)

	perBody := cfg.Mass / float64(cfg.NumBodies)
	for _, p := range particles {
		require.InDelta(t, perBody, p.Mass(), 1e-15)
	}
}

// TestGeneratePlummerDeterministic is spec testable property 8: a
// fixed seed reproduces identical output.
func TestGeneratePlummerDeterministic(t *testing.T) {
	a := GeneratePlummer(plummerConfig(200, 12345))
	b := GeneratePlummer(plummerConfig(200, 12345))

	require.Len(t, a, len(b))
	for i := range a {
		pa, pb := a[i].Pos(), b[i].Pos()
		va, vb := a[i].Vel(), b[i].Vel()
		require.Equal(t, pa, pb)
		require.Equal(t, va, vb)
	}
}

// TestGeneratePlummerDifferentSeedsDiffer sanity-checks the RNG is
// actually being seeded rather than silently ignored.
func TestGeneratePlummerDifferentSeedsDiffer(t *testing.T) {
	a := GeneratePlummer(plummerConfig(50, 1))
	b := GeneratePlummer(plummerConfig(50, 2))

	same := true
	for i := range a {
		if a[i].Pos() != b[i].Pos() {
			same = false
			break
		}
	}
	require.False(t, same)
}

// TestGeneratePlummerIsCentered checks the default config's
// needToZero>=2 policy takes effect during generation.
func TestGeneratePlummerIsCentered(t *testing.T) {
	cfg := plummerConfig(300, 7)
	cfg.NeedToZero = 2
	particles := GeneratePlummer(cfg)

	var mx, my, mz, totalMass float64
	for _, p := range particles {
		pos := p.Pos()
		m := p.Mass()
		totalMass += m
		mx += m * pos.X
		my += m * pos.Y
		mz += m * pos.Z
	}
	norm := math.Sqrt(mx*mx + my*my + mz*mz)
	require.Less(t, norm, 1e-9*totalMass)
}

// TestEscapeVelocityMonotonicDecreasing checks the GLOSSARY formula
// v_esc(r) = sqrt(2)*(1+r^2)^(-1/4) decreases with radius.
func TestEscapeVelocityMonotonicDecreasing(t *testing.T) {
	require.Greater(t, escapeVelocity(0), escapeVelocity(1))
	require.Greater(t, escapeVelocity(1), escapeVelocity(10))
	require.InDelta(t, math.Sqrt2, escapeVelocity(0), 1e-12)
}

// TestSampledSpeedNeverExceedsEscapeVelocity checks the rejection
// sampler's output is always within [0, v_esc(r)] (spec §4.3 step 3).
func TestSampledSpeedNeverExceedsEscapeVelocity(t *testing.T) {
	src := newRandSource(42)
	s := newSampler(src)

	for i := 0; i < 500; i++ {
		r := float64(i) * 0.05
		v := s.speed(r)
		require.GreaterOrEqual(t, v, 0.0)
		require.LessOrEqual(t, v, escapeVelocity(r)+1e-12)
	}
}

// TestIsotropicPointPreservesRadius checks that isotropicPoint always
// returns a vector of exactly the requested length.
func TestIsotropicPointPreservesRadius(t *testing.T) {
	src := newRandSource(17)
	s := newSampler(src)

	for i := 0; i < 200; i++ {
		r := 1.0 + float64(i)*0.01
		x, y, z := s.isotropicPoint(r)
		got := math.Sqrt(x*x + y*y + z*z)
		require.InDelta(t, r, got, 1e-9)
	}
}

// TestRadiusDistributionIsPositiveAndGrowsWithScale is a property test
// against the radial sampler: increasing r0 should scale the mean
// sampled radius by roughly the same factor (spec §9 "property-test
// the resulting radial density").
func TestRadiusDistributionIsPositiveAndGrowsWithScale(t *testing.T) {
	sample := func(r0 float64, seed int64) []float64 {
		src := newRandSource(seed)
		s := newSampler(src)
		out := make([]float64, 2000)
		for i := range out {
			out[i] = s.radius(r0)
		}
		return out
	}

	small := sample(1.0, 5)
	large := sample(3.0, 5)

	for _, r := range small {
		require.Greater(t, r, 0.0)
	}

	meanSmall := stat.Mean(small, nil)
	meanLarge := stat.Mean(large, nil)
	require.Greater(t, meanLarge, meanSmall)
	require.InDelta(t, 3.0, meanLarge/meanSmall, 0.5)
}
