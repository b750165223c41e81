package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/emergentmind/patternevo/pkg/errors"
	"github.com/emergentmind/patternevo/pkg/evolution"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	app := Default()
	require.NoError(t, app.Validate())
	assert.Equal(t, "INFO", app.Logging.Level)
	assert.Equal(t, evolution.DefaultConfig(), app.Evolution)
	assert.Equal(t, evolution.DefaultStrategy(), app.Strategy)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	app, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), app)
}

func TestLoadLayersFileOverDefaults(t *testing.T) {
	path := writeConfig(t, `
logging:
  level: DEBUG
database:
  path: /tmp/evo.db
evolution:
  population_size: 50
strategy:
  selection: roulette
`)

	app, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", app.Logging.Level)
	assert.Equal(t, "/tmp/evo.db", app.Database.Path)
	assert.Equal(t, 50, app.Evolution.PopulationSize)
	assert.Equal(t, evolution.SelectionRoulette, app.Strategy.Selection)
	// Untouched fields keep their defaults.
	assert.Equal(t, evolution.DefaultConfig().MaxGenerations, app.Evolution.MaxGenerations)
	assert.Equal(t, evolution.DefaultStrategy().Mutation, app.Strategy.Mutation)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	app, err := Load("/nonexistent/config.yaml")
	assert.Nil(t, app)
	assert.Equal(t, errors.InvalidInput, errors.CodeOf(err))
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := writeConfig(t, "logging: [not a mapping")

	app, err := Load(path)
	assert.Nil(t, app)
	assert.Equal(t, errors.InvalidInput, errors.CodeOf(err))
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "unknown log level",
			content: "logging:\n  level: VERBOSE\n",
		},
		{
			name:    "zero population",
			content: "evolution:\n  population_size: 0\n",
		},
		{
			name:    "unknown selection",
			content: "strategy:\n  selection: lottery\n",
		},
		{
			name:    "out of range probability",
			content: "strategy:\n  mutation_probability: 1.5\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := Load(writeConfig(t, tt.content))
			assert.Nil(t, app)
			assert.Equal(t, errors.ValidationFailed, errors.CodeOf(err))
		})
	}
}
