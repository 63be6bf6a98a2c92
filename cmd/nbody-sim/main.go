// Command nbody-sim drives the Barnes-Hut N-body core through a
// cobra CLI, following the teacher's cmd/medasdigital-client/main.go
// tree of init/run-shaped subcommands.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/stellarforge/nbody-sim/pkg/config"
	"github.com/stellarforge/nbody-sim/pkg/initcond"
	"github.com/stellarforge/nbody-sim/pkg/simulation"
)

const appName = "nbody-sim"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Barnes-Hut N-body gravitational simulator",
	Long: `nbody-sim advances a self-gravitating N-body system under the
Barnes-Hut approximation: a Plummer-model initial condition is
generated or loaded from a checkpoint, an adaptive octree is rebuilt
each step to accelerate gravity, and state is periodically
checkpointed for restart.`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		dest := cfgFile
		if dest == "" {
			dest = "nbody.yaml"
		}
		cfg := config.DefaultConfig()
		if err := config.Save(cfg, dest); err != nil {
			return err
		}
		fmt.Printf("wrote default configuration to %s\n", dest)
		return nil
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a fresh Plummer initial condition and checkpoint it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		particles := initcond.GeneratePlummer(cfg)
		d := simulation.New(cfg, particles, 0)
		if err := d.Checkpoint(); err != nil {
			return err
		}
		log.Printf("generated %d particles, checkpoint at %s", cfg.NumBodies, cfg.CheckpointPath())
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the simulation from its checkpoint, or generate one first",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		d, err := simulation.Resume(cfg)
		if err != nil {
			particles := initcond.GeneratePlummer(cfg)
			d = simulation.New(cfg, particles, 0)
			log.Printf("no checkpoint found at %s, starting fresh with %d particles", cfg.CheckpointPath(), cfg.NumBodies)
		}

		for d.Iteration() < cfg.MaxIter {
			if simulation.Killed(cfg.KillFile) {
				log.Printf("killfile detected, stopping at iteration %d", d.Iteration())
				break
			}
			if err := d.Step(); err != nil {
				return fmt.Errorf("step %d: %w", d.Iteration(), err)
			}
			if d.Iteration()%cfg.ImgIter == 0 {
				if err := d.Checkpoint(); err != nil {
					return fmt.Errorf("checkpoint at iteration %d: %w", d.Iteration(), err)
				}
			}
		}
		log.Printf("run complete at iteration %d", d.Iteration())
		return nil
	},
}

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Inspect a checkpoint file",
}

var checkpointInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print a checkpoint's scalar fields and particle count",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		cp, err := initcond.Load(cfg.CheckpointPath())
		if err != nil {
			return err
		}
		fmt.Printf("iteration=%d theta=%v G=%v dt=%v particles=%d\n",
			cp.Iteration, cp.Theta, cp.G, cp.Dt, len(cp.Particles))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: search ./ and ./configs)")

	checkpointCmd.AddCommand(checkpointInspectCmd)
	rootCmd.AddCommand(initCmd, generateCmd, runCmd, checkpointCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
