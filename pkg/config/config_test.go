package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stentsim/pkg/simulation"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 10.0, cfg.Simulation.VesselDiameter)
	assert.Equal(t, 20.0, cfg.Simulation.StentLength)
	assert.Equal(t, 6.0, cfg.Simulation.StartingStentDiameter)
	assert.Equal(t, "three-point", cfg.Schedule.Policy)
	assert.Equal(t, 30, cfg.Mesh.AngularResolution)
	assert.Equal(t, 5.0, cfg.Mesh.VesselOverhang)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigPartial(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stentsim.yaml")
	data := []byte("simulation:\n  vesselDiameter: 12.5\nschedule:\n  policy: linear\n  steps: 8\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 12.5, cfg.Simulation.VesselDiameter)
	// Unset keys keep their defaults
	assert.Equal(t, 20.0, cfg.Simulation.StentLength)
	assert.Equal(t, "linear", cfg.Schedule.Policy)
	assert.Equal(t, 8, cfg.Schedule.Steps)

	opts, err := cfg.SimulatorOptions()
	require.NoError(t, err)

	sim, err := simulation.New(cfg.Simulation.VesselDiameter, cfg.Simulation.StentLength,
		cfg.Simulation.StartingStentDiameter, opts...)
	require.NoError(t, err)
	assert.Len(t, sim.ComputeExpansionSteps(), 9)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation: [unclosed"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "stentsim.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv(EnvVesselDiameter, "14")
	t.Setenv(EnvPolicy, "linear")
	t.Setenv(EnvSteps, "3")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(EnvStentLength+"=25\n"+EnvVesselDiameter+"=99\n"), 0644))
	// godotenv does not override variables that are already set; register
	// the key so t.Setenv restores it after the test
	t.Setenv(EnvStentLength, "")
	os.Unsetenv(EnvStentLength)

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadEnv(envFile, filepath.Join(t.TempDir(), "absent.env")))

	assert.Equal(t, 14.0, cfg.Simulation.VesselDiameter)
	assert.Equal(t, 25.0, cfg.Simulation.StentLength)
	assert.Equal(t, 6.0, cfg.Simulation.StartingStentDiameter)
	assert.Equal(t, "linear", cfg.Schedule.Policy)
	assert.Equal(t, 3, cfg.Schedule.Steps)
}

func TestLoadEnvInvalid(t *testing.T) {
	t.Setenv(EnvStartDiameter, "six")

	cfg := DefaultConfig()
	err := cfg.LoadEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvStartDiameter)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Schedule.Policy = "spiral"
	cfg.Mesh.AxialResolution = 1
	cfg.Mesh.VesselOverhang = -1
	cfg.Output.Dir = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, simulation.ErrInvalidSchedule)
	assert.Contains(t, err.Error(), "mesh resolution")
	assert.Contains(t, err.Error(), "overhang")
	assert.Contains(t, err.Error(), "output directory")
}
