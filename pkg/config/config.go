// Package config loads and validates the simulation's run parameters,
// following the teacher's viper + yaml.v3 pattern from pkg/utils/config.go.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Model selects the initial-condition generator (spec §6 "model").
type Model string

// Plummer is the only supported model; the core's error handling
// design (spec §7) treats any other value as a configuration error.
const Plummer Model = "plummer"

// Config holds every parameter the core and its driver recognize
// (spec §6 "Configuration parameters").
type Config struct {
	Model     Model   `yaml:"model" mapstructure:"model"`
	NumBodies int     `yaml:"numbodies" mapstructure:"numbodies"`
	Mass      float64 `yaml:"mass" mapstructure:"mass"`
	IniRadius float64 `yaml:"ini_radius" mapstructure:"ini_radius"`

	// NeedToZero is the centering policy of spec §4.3: 0 never
	// centers, 1 centers only on the initial generation, >=2 centers
	// on every invocation.
	NeedToZero int `yaml:"need_to_zero" mapstructure:"need_to_zero"`

	Theta float64 `yaml:"theta" mapstructure:"theta"`
	G     float64 `yaml:"g" mapstructure:"g"`
	Dt    float64 `yaml:"dt" mapstructure:"dt"`

	// Softening is the core's process-wide constant `a` in the
	// reference (spec §6 "Process-wide constants"), made configurable.
	Softening float64 `yaml:"softening" mapstructure:"softening"`

	Path           string `yaml:"path" mapstructure:"path"`
	ConfigFileName string `yaml:"config_file_name" mapstructure:"config_file_name"`

	// BackupSuffix is appended to the checkpoint path to form the
	// backup-before-overwrite path (spec §4.4).
	BackupSuffix string `yaml:"backup_suffix" mapstructure:"backup_suffix"`

	MaxIter int `yaml:"max_iter" mapstructure:"max_iter"`
	ImgIter int `yaml:"img_iter" mapstructure:"img_iter"`

	// Seed, when non-zero, seeds the Plummer sampler's random
	// generator for reproducible runs (spec §6 "seed").
	Seed int64 `yaml:"seed" mapstructure:"seed"`

	// Workers bounds the worker pool used for parallel force
	// evaluation (spec §5); 0 or 1 means sequential.
	Workers int `yaml:"workers" mapstructure:"workers"`

	// KillFile, when present on disk, tells the driver to stop
	// cleanly between steps (spec §1, §5 "Cancellation / timeouts").
	KillFile string `yaml:"kill_file" mapstructure:"kill_file"`
}

// DefaultConfig returns the reference's process-wide constants (spec
// §6: softening a=0.01, mass scale M=1) plus reasonable defaults for
// everything else.
func DefaultConfig() *Config {
	return &Config{
		Model:          Plummer,
		NumBodies:      1000,
		Mass:           1.0,
		IniRadius:      1.0,
		NeedToZero:     2,
		Theta:          0.5,
		G:              1.0,
		Dt:             0.001,
		Softening:      0.01,
		Path:           "./",
		ConfigFileName: "checkpoint.cfg",
		BackupSuffix:   "~",
		MaxIter:        1000,
		ImgIter:        10,
		Workers:        0,
		KillFile:       "kill",
	}
}

// Load reads configuration from configPath (if non-empty) or the
// conventional search locations, falling back to DefaultConfig when no
// file is found in the search locations; an explicit configPath that
// does not exist is an error. Environment variables prefixed NBODY_
// override file values, following the teacher's LoadConfig.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("nbody")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".nbody-sim"))
		}
	}

	v.SetEnvPrefix("NBODY")
	v.AutomaticEnv()

	cfg := DefaultConfig()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: reading %s: %w", configPath, err)
		}
		// No file found: the defaults stand unchanged.
	} else if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshalling: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg as YAML to dest, creating parent directories as
// needed, mirroring the teacher's SaveConfig.
func Save(cfg *Config, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("config: creating directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshalling: %w", err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("config: writing %s: %w", dest, err)
	}
	return nil
}

// Validate checks the configuration-error class of spec §7: unknown
// model, non-positive numbodies, theta outside [0,1], missing path.
func Validate(cfg *Config) error {
	if cfg.Model != Plummer {
		return fmt.Errorf("unknown model %q", cfg.Model)
	}
	if cfg.NumBodies <= 0 {
		return fmt.Errorf("numbodies must be positive, got %d", cfg.NumBodies)
	}
	if cfg.Mass <= 0 {
		return fmt.Errorf("mass must be positive, got %v", cfg.Mass)
	}
	if cfg.IniRadius <= 0 {
		return fmt.Errorf("ini_radius must be positive, got %v", cfg.IniRadius)
	}
	if cfg.Theta < 0 || cfg.Theta > 1 {
		return fmt.Errorf("theta must be in [0,1], got %v", cfg.Theta)
	}
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %v", cfg.Dt)
	}
	if cfg.Path == "" {
		return fmt.Errorf("path must not be empty")
	}
	if cfg.ConfigFileName == "" {
		return fmt.Errorf("config_file_name must not be empty")
	}
	if cfg.MaxIter <= 0 {
		return fmt.Errorf("max_iter must be positive, got %d", cfg.MaxIter)
	}
	if cfg.ImgIter <= 0 {
		return fmt.Errorf("img_iter must be positive, got %d", cfg.ImgIter)
	}
	return nil
}

// CheckpointPath returns the full path to the checkpoint file.
func (c *Config) CheckpointPath() string {
	return filepath.Join(c.Path, c.ConfigFileName)
}
