// Package evolution implements the pattern evolution engine: a
// population-based evolutionary search over a pattern's continuous traits,
// with pluggable mutation, selection, and crossover strategies, lineage
// tracking, and externally controllable pause/resume semantics.
package evolution

import (
	"github.com/emergentmind/patternevo/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// MutationType selects the mutation strategy for a run.
type MutationType string

const (
	MutationRandom MutationType = "random"
	MutationGuided MutationType = "guided"
	MutationHybrid MutationType = "hybrid"
)

// SelectionType selects the parent selection strategy for a run.
type SelectionType string

const (
	SelectionTournament SelectionType = "tournament"
	SelectionRoulette   SelectionType = "roulette"
	SelectionRank       SelectionType = "rank"
)

// CrossoverType selects the crossover strategy for a run.
type CrossoverType string

const (
	CrossoverSinglePoint CrossoverType = "single_point"
	CrossoverMultiPoint  CrossoverType = "multi_point"
	CrossoverUniform     CrossoverType = "uniform"
)

// Weights are the per-objective optimization weights. They conventionally
// sum to 1 but are not required to.
type Weights struct {
	Efficiency  float64 `yaml:"efficiency" json:"efficiency" validate:"gte=0"`
	Reliability float64 `yaml:"reliability" json:"reliability" validate:"gte=0"`
	Complexity  float64 `yaml:"complexity" json:"complexity" validate:"gte=0"`
}

// Config holds the run-level evolution parameters.
type Config struct {
	PopulationSize       int     `yaml:"population_size" json:"population_size" validate:"gt=0"`
	MaxGenerations       int     `yaml:"max_generations" json:"max_generations" validate:"gt=0"`
	ConvergenceThreshold float64 `yaml:"convergence_threshold" json:"convergence_threshold" validate:"gte=0"`
	ElitismCount         int     `yaml:"elitism_count" json:"elitism_count" validate:"gte=0"`

	// RetainUnmutated controls what happens to offspring whose mutation roll
	// is skipped: true keeps them unmutated, false drops them and lets the
	// population shrink for that generation.
	RetainUnmutated bool `yaml:"retain_unmutated" json:"retain_unmutated"`
}

// Strategy holds the operator choices and probabilities for a run.
type Strategy struct {
	Mutation             MutationType  `yaml:"mutation" json:"mutation" validate:"oneof=random guided hybrid"`
	Selection            SelectionType `yaml:"selection" json:"selection" validate:"oneof=tournament roulette rank"`
	Crossover            CrossoverType `yaml:"crossover" json:"crossover" validate:"oneof=single_point multi_point uniform"`
	MutationProbability  float64       `yaml:"mutation_probability" json:"mutation_probability" validate:"gte=0,lte=1"`
	CrossoverProbability float64       `yaml:"crossover_probability" json:"crossover_probability" validate:"gte=0,lte=1"`
	TournamentSize       int           `yaml:"tournament_size" json:"tournament_size" validate:"gt=0"`
	Weights              Weights       `yaml:"weights" json:"weights"`
}

// DefaultConfig returns the default run configuration.
func DefaultConfig() Config {
	return Config{
		PopulationSize:       20,
		MaxGenerations:       10,
		ConvergenceThreshold: 0.001,
		ElitismCount:         2,
		RetainUnmutated:      true,
	}
}

// DefaultStrategy returns the default operator strategy.
func DefaultStrategy() Strategy {
	return Strategy{
		Mutation:             MutationHybrid,
		Selection:            SelectionTournament,
		Crossover:            CrossoverSinglePoint,
		MutationProbability:  0.3,
		CrossoverProbability: 0.7,
		TournamentSize:       3,
		Weights: Weights{
			Efficiency:  0.4,
			Reliability: 0.4,
			Complexity:  0.2,
		},
	}
}

var validate = validator.New()

// Validate rejects configurations that would produce a degenerate or
// non-terminating run.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, errors.ValidationFailed, "invalid evolution config")
	}
	return nil
}

// Validate rejects strategies with unknown operators or out-of-range
// probabilities.
func (s Strategy) Validate() error {
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(err, errors.ValidationFailed, "invalid evolution strategy")
	}
	return nil
}

// ConfigPatch is a partial Config; nil fields are left unchanged on merge.
type ConfigPatch struct {
	PopulationSize       *int
	MaxGenerations       *int
	ConvergenceThreshold *float64
	ElitismCount         *int
	RetainUnmutated      *bool
}

// Apply merges the patch into a copy of the config.
func (c Config) Apply(p ConfigPatch) Config {
	if p.PopulationSize != nil {
		c.PopulationSize = *p.PopulationSize
	}
	if p.MaxGenerations != nil {
		c.MaxGenerations = *p.MaxGenerations
	}
	if p.ConvergenceThreshold != nil {
		c.ConvergenceThreshold = *p.ConvergenceThreshold
	}
	if p.ElitismCount != nil {
		c.ElitismCount = *p.ElitismCount
	}
	if p.RetainUnmutated != nil {
		c.RetainUnmutated = *p.RetainUnmutated
	}
	return c
}

// StrategyPatch is a partial Strategy; nil fields are left unchanged on
// merge.
type StrategyPatch struct {
	Mutation             *MutationType
	Selection            *SelectionType
	Crossover            *CrossoverType
	MutationProbability  *float64
	CrossoverProbability *float64
	TournamentSize       *int
	Weights              *Weights
}

// Apply merges the patch into a copy of the strategy.
func (s Strategy) Apply(p StrategyPatch) Strategy {
	if p.Mutation != nil {
		s.Mutation = *p.Mutation
	}
	if p.Selection != nil {
		s.Selection = *p.Selection
	}
	if p.Crossover != nil {
		s.Crossover = *p.Crossover
	}
	if p.MutationProbability != nil {
		s.MutationProbability = *p.MutationProbability
	}
	if p.CrossoverProbability != nil {
		s.CrossoverProbability = *p.CrossoverProbability
	}
	if p.TournamentSize != nil {
		s.TournamentSize = *p.TournamentSize
	}
	if p.Weights != nil {
		s.Weights = *p.Weights
	}
	return s
}
