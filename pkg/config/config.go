// Package config loads and validates the application configuration from a
// YAML file, layering file values over defaults.
package config

import (
	"os"

	"github.com/emergentmind/patternevo/pkg/errors"
	"github.com/emergentmind/patternevo/pkg/evolution"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// LoggingConfig configures the application logger.
type LoggingConfig struct {
	// Level is one of DEBUG, INFO, WARN, ERROR, FATAL.
	Level string `yaml:"level" validate:"oneof=DEBUG INFO WARN ERROR FATAL"`
	// File, when set, duplicates log output to the given path.
	File string `yaml:"file"`
}

// DatabaseConfig configures the SQLite pattern store.
type DatabaseConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// App is the top-level application configuration.
type App struct {
	Logging   LoggingConfig      `yaml:"logging"`
	Database  DatabaseConfig     `yaml:"database"`
	Evolution evolution.Config   `yaml:"evolution"`
	Strategy  evolution.Strategy `yaml:"strategy"`
}

var validate = validator.New()

// Default returns the configuration used when no file is provided.
func Default() *App {
	return &App{
		Logging: LoggingConfig{
			Level: "INFO",
		},
		Database: DatabaseConfig{
			Path: "patternevo.db",
		},
		Evolution: evolution.DefaultConfig(),
		Strategy:  evolution.DefaultStrategy(),
	}
}

// Load reads a YAML config file, layers it over the defaults, and validates
// the result. An empty path returns the defaults unchanged.
func Load(path string) (*App, error) {
	app := Default()
	if path == "" {
		return app, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to read config file"),
			errors.Fields{"path": path},
		)
	}

	if err := yaml.Unmarshal(data, app); err != nil {
		return nil, errors.WithFields(
			errors.Wrap(err, errors.InvalidInput, "failed to parse config file"),
			errors.Fields{"path": path},
		)
	}

	if err := app.Validate(); err != nil {
		return nil, err
	}
	return app, nil
}

// Validate checks the whole configuration; the validator descends into the
// embedded evolution config and strategy.
func (a *App) Validate() error {
	if err := validate.Struct(a); err != nil {
		return errors.Wrap(err, errors.ValidationFailed, "invalid application config")
	}
	return nil
}
