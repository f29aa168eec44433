package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jfa.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_EmptyPathIsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 240, cfg.GA.PopulationSize)
}

func TestLoad_EmptyFileIsDefault(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverridesKeepOtherDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
seed: 42
max_expansions: 500000
solvers: [greedy, ga]
ga:
  population_size: 50
generator:
  selectable_rate: 0.9
`))
	require.NoError(t, err)

	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, 500000, cfg.MaxExpansions)
	assert.Equal(t, []string{"greedy", "ga"}, cfg.Solvers)
	assert.Equal(t, 50, cfg.GA.PopulationSize)
	assert.Equal(t, Default().GA.Generations, cfg.GA.Generations)
	assert.Equal(t, 0.9, cfg.Generator.SelectableRate)
	assert.Equal(t, Default().Generator.MaxValue, cfg.Generator.MaxValue)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	_, err := Load(writeConfig(t, "seeed: 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seeed")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative quota", func(c *Config) { c.MaxExpansions = -1 }, "max_expansions must be at least 0"},
		{"unknown solver", func(c *Config) { c.Solvers = []string{"astar", "simplex"} }, "solvers[1] must be one of"},
		{"tiny population", func(c *Config) { c.GA.PopulationSize = 1 }, "ga.population_size must be at least 2"},
		{"elite too large", func(c *Config) { c.GA.Elite = 500 }, "ga.elite must be <= PopulationSize"},
		{"mutation rate", func(c *Config) { c.GA.MutationRate = 1.5 }, "ga.mutation_rate must be at most 1"},
		{"inverted capacity", func(c *Config) { c.Generator.MaxCapacity = 0 }, "generator.max_capacity must be >= MinCapacity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestSolverConfig(t *testing.T) {
	cfg := Default()
	cfg.Seed = 9
	cfg.MaxExpansions = 77

	sc := cfg.SolverConfig(nil)
	assert.Equal(t, uint64(9), sc.Seed)
	assert.Equal(t, 77, sc.MaxExpansions)
	assert.Equal(t, cfg.GA, sc.GA)
}
