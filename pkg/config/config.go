// Package config provides configuration loading and management for stentsim.
// It handles loading configuration from YAML files, environment overrides
// and default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"stentsim/pkg/geometry"
	"stentsim/pkg/simulation"
)

// Environment variables that override values from the config file
const (
	EnvVesselDiameter = "STENTSIM_VESSEL_DIAMETER"
	EnvStentLength    = "STENTSIM_STENT_LENGTH"
	EnvStartDiameter  = "STENTSIM_START_DIAMETER"
	EnvPolicy         = "STENTSIM_POLICY"
	EnvSteps          = "STENTSIM_STEPS"
	EnvOutputDir      = "STENTSIM_OUTPUT_DIR"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Simulation dimensions in mm
	Simulation struct {
		// VesselDiameter is the inner diameter of the vessel
		VesselDiameter float64 `yaml:"vesselDiameter"`

		// StentLength is the axial length of the stent
		StentLength float64 `yaml:"stentLength"`

		// StartingStentDiameter is the stent diameter before expansion
		StartingStentDiameter float64 `yaml:"startingStentDiameter"`
	} `yaml:"simulation"`

	// Expansion schedule
	Schedule struct {
		// Policy is either "three-point" or "linear"
		Policy string `yaml:"policy"`

		// Steps is the interval count of the linear policy
		Steps int `yaml:"steps"`
	} `yaml:"schedule"`

	// Mesh sampling parameters
	Mesh struct {
		AngularResolution int     `yaml:"angularResolution"`
		AxialResolution   int     `yaml:"axialResolution"`
		VesselOverhang    float64 `yaml:"vesselOverhang"`
	} `yaml:"mesh"`

	// Output parameters
	Output struct {
		// Dir is where rendered frames and exported meshes are written
		Dir string `yaml:"dir"`

		// PNG enables rendering each frame to an image
		PNG bool `yaml:"png"`

		// STL enables exporting vessel and stent meshes per frame
		STL bool `yaml:"stl"`

		// Report is the path of a PDF summary; empty disables it
		Report string `yaml:"report"`

		// ImageSize is the width and height of rendered frames in pixels
		ImageSize int `yaml:"imageSize"`

		// FontFile optionally captions rendered frames
		FontFile string `yaml:"fontFile"`

		// Verbose enables debug logging
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Simulation.VesselDiameter = 10.0
	cfg.Simulation.StentLength = 20.0
	cfg.Simulation.StartingStentDiameter = 6.0

	cfg.Schedule.Policy = "three-point"
	cfg.Schedule.Steps = simulation.DefaultLinearSteps

	cfg.Mesh.AngularResolution = geometry.DefaultResolution
	cfg.Mesh.AxialResolution = geometry.DefaultResolution
	cfg.Mesh.VesselOverhang = geometry.DefaultVesselOverhang

	cfg.Output.Dir = "stent_frames"
	cfg.Output.PNG = true
	cfg.Output.STL = false
	cfg.Output.Report = ""
	cfg.Output.ImageSize = 800
	cfg.Output.Verbose = false

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// LoadEnv applies environment overrides. Variables from the given .env
// files are loaded first without replacing variables that are already set;
// missing .env files are ignored.
func (c *Config) LoadEnv(envFiles ...string) error {
	for _, f := range envFiles {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("error loading env file %s: %w", f, err)
		}
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{EnvVesselDiameter, &c.Simulation.VesselDiameter},
		{EnvStentLength, &c.Simulation.StentLength},
		{EnvStartDiameter, &c.Simulation.StartingStentDiameter},
	}
	for _, f := range floats {
		raw, ok := os.LookupEnv(f.key)
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("error parsing %s: %w", f.key, err)
		}
		*f.dst = v
	}

	if raw, ok := os.LookupEnv(EnvSteps); ok {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("error parsing %s: %w", EnvSteps, err)
		}
		c.Schedule.Steps = v
	}
	if raw, ok := os.LookupEnv(EnvPolicy); ok {
		c.Schedule.Policy = raw
	}
	if raw, ok := os.LookupEnv(EnvOutputDir); ok {
		c.Output.Dir = raw
	}

	return nil
}

// Validate checks the settings that are not covered by simulator
// construction
func (c *Config) Validate() error {
	var errs []error
	if _, err := simulation.ParseSchedule(c.Schedule.Policy, c.Schedule.Steps); err != nil {
		errs = append(errs, err)
	}
	if c.Mesh.AngularResolution < geometry.MinResolution || c.Mesh.AxialResolution < geometry.MinResolution {
		errs = append(errs, fmt.Errorf("mesh resolution must be at least %d, got %dx%d",
			geometry.MinResolution, c.Mesh.AngularResolution, c.Mesh.AxialResolution))
	}
	if c.Mesh.VesselOverhang < 0 {
		errs = append(errs, fmt.Errorf("vessel overhang must be non-negative, got %v", c.Mesh.VesselOverhang))
	}
	if (c.Output.PNG || c.Output.STL) && c.Output.Dir == "" {
		errs = append(errs, errors.New("output directory is required when png or stl output is enabled"))
	}
	return errors.Join(errs...)
}

// SimulatorOptions converts the schedule and mesh settings into simulator
// options
func (c *Config) SimulatorOptions() ([]simulation.Option, error) {
	schedule, err := simulation.ParseSchedule(c.Schedule.Policy, c.Schedule.Steps)
	if err != nil {
		return nil, err
	}
	return []simulation.Option{
		simulation.WithSchedule(schedule),
		simulation.WithMeshResolution(c.Mesh.AngularResolution, c.Mesh.AxialResolution),
		simulation.WithVesselOverhang(c.Mesh.VesselOverhang),
	}, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
