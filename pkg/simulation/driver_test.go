package simulation

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stellarforge/nbody-sim/pkg/config"
	"github.com/stellarforge/nbody-sim/pkg/initcond"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	cfg.NumBodies = 40
	cfg.Seed = 3
	cfg.Path = t.TempDir()
	return cfg
}

func TestStepAdvancesIterationAndConservesMass(t *testing.T) {
	cfg := testConfig(t)
	particles := initcond.GeneratePlummer(cfg)
	d := New(cfg, particles, 0)

	var totalMassBefore float64
	for _, p := range d.Particles() {
		totalMassBefore += p.Mass()
	}

	require.NoError(t, d.Step())
	require.Equal(t, 1, d.Iteration())

	var totalMassAfter float64
	for _, p := range d.Particles() {
		totalMassAfter += p.Mass()
	}
	require.Equal(t, totalMassBefore, totalMassAfter)
}

func TestStepMultipleTimes(t *testing.T) {
	cfg := testConfig(t)
	particles := initcond.GeneratePlummer(cfg)
	d := New(cfg, particles, 0)

	for i := 0; i < 5; i++ {
		require.NoError(t, d.Step())
	}
	require.Equal(t, 5, d.Iteration())
}

func TestCheckpointAndResume(t *testing.T) {
	cfg := testConfig(t)
	cfg.ConfigFileName = "state.cfg"
	particles := initcond.GeneratePlummer(cfg)
	d := New(cfg, particles, 0)

	require.NoError(t, d.Step())
	require.NoError(t, d.Checkpoint())

	require.FileExists(t, filepath.Join(cfg.Path, cfg.ConfigFileName))

	resumed, err := Resume(cfg)
	require.NoError(t, err)
	require.Equal(t, d.Iteration(), resumed.Iteration())
	require.Len(t, resumed.Particles(), len(d.Particles()))
}
