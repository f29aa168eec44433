// Package config loads solver and batch tuning from a YAML file.
//
// Missing fields keep their Default values. Unknown fields are rejected so
// typos surface as errors instead of silently falling back.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/roach88/jfa/internal/generator"
	"github.com/roach88/jfa/internal/search"
	"github.com/roach88/jfa/internal/solver"
)

// Config is the tuning file.
type Config struct {
	Seed          uint64 `yaml:"seed"`
	ProgressEvery int    `yaml:"progress_every" validate:"gte=0"`
	MaxExpansions int    `yaml:"max_expansions" validate:"gte=0"`

	// Solvers is the default solver list for batch and solve.
	Solvers []string `yaml:"solvers" validate:"omitempty,dive,oneof=random greedy astar ucs bnb ga"`

	Generator generator.Options    `yaml:"generator"`
	GA        solver.GeneticConfig `yaml:"ga"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Seed:          1,
		ProgressEvery: search.DefaultProgressEvery,
		Solvers:       []string{"bnb", "astar"},
		Generator:     generator.DefaultOptions(),
		GA:            solver.DefaultGeneticConfig(),
	}
}

// Load reads a config file over Default and validates the result.
// An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field ranges.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validation error: %w", err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func formatFieldError(e validator.FieldError) string {
	// Namespace is "Config.ga.population_size"; drop the type name.
	path := e.Namespace()
	if _, rest, ok := strings.Cut(path, "."); ok {
		path = rest
	}
	switch e.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got: %v)", path, e.Param(), e.Value())
	case "gtefield", "ltefield":
		return fmt.Sprintf("%s must be %s %s (got: %v)", path, comparison(e.Tag()), e.Param(), e.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s (got: %v)", path, e.Param(), e.Value())
	case "lte":
		return fmt.Sprintf("%s must be at most %s (got: %v)", path, e.Param(), e.Value())
	default:
		return fmt.Sprintf("%s failed validation '%s' (got: %v)", path, e.Tag(), e.Value())
	}
}

func comparison(tag string) string {
	if tag == "gtefield" {
		return ">="
	}
	return "<="
}

// SolverConfig converts the file into solver tuning.
func (c Config) SolverConfig(logger *slog.Logger) solver.Config {
	return solver.Config{
		Seed:          c.Seed,
		ProgressEvery: c.ProgressEvery,
		MaxExpansions: c.MaxExpansions,
		GA:            c.GA,
		Logger:        logger,
	}
}
