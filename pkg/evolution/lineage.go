package evolution

import (
	"math"
	"time"

	"github.com/emergentmind/patternevo/pkg/patterns"
	"github.com/google/uuid"
)

// GenerationStats summarizes one generation's population.
type GenerationStats struct {
	Number            int     `json:"number"`
	AverageConfidence float64 `json:"average_confidence"`
	BestConfidence    float64 `json:"best_confidence"`
	Diversity         float64 `json:"diversity"` // stddev of confidence
}

// Generation is an immutable snapshot of one evolutionary step: the full
// population at that point, the mutation log that produced it, and summary
// statistics. Never edited after creation.
type Generation struct {
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	Population []patterns.Pattern `json:"population"`
	Mutations  []Mutation         `json:"mutations"`
	Stats      GenerationStats    `json:"stats"`
}

// ObjectiveImprovement accumulates per-objective fitness gains across a run.
type ObjectiveImprovement struct {
	Efficiency  float64 `json:"efficiency"`
	Reliability float64 `json:"reliability"`
	Complexity  float64 `json:"complexity"`
}

// Lineage is the full ancestry of generations descending from one seed
// pattern across one run. Generations are append-only and
// len(Generations) == CurrentGeneration at all times.
type Lineage struct {
	RootPattern       patterns.Pattern     `json:"root_pattern"`
	Generations       []Generation         `json:"generations"`
	CurrentGeneration int                  `json:"current_generation"`
	StartedAt         time.Time            `json:"started_at"`
	LastEvolved       time.Time            `json:"last_evolved"`
	TotalGenerations  int                  `json:"total_generations"`
	Improvement       ObjectiveImprovement `json:"improvement"`
}

func newLineage(seed *patterns.Pattern, now time.Time) *Lineage {
	return &Lineage{
		RootPattern: *seed.Clone(),
		StartedAt:   now,
		LastEvolved: now,
	}
}

// appendGeneration extends the lineage by one generation and advances the
// counter in lockstep.
func (l *Lineage) appendGeneration(gen Generation) {
	l.Generations = append(l.Generations, gen)
	l.CurrentGeneration++
	l.TotalGenerations++
	l.LastEvolved = gen.Timestamp
}

// recordImprovement attributes a fitness gain to the three objectives.
func (l *Lineage) recordImprovement(previous, current Fitness) {
	l.Improvement.Efficiency += current.Efficiency - previous.Efficiency
	l.Improvement.Reliability += current.Reliability - previous.Reliability
	l.Improvement.Complexity += current.Complexity - previous.Complexity
}

// clone returns a deep copy for defensive state snapshots.
func (l *Lineage) clone() *Lineage {
	if l == nil {
		return nil
	}
	cp := *l
	cp.Generations = make([]Generation, len(l.Generations))
	copy(cp.Generations, l.Generations)
	return &cp
}

// newGeneration snapshots a population and its mutation log as an immutable
// generation record.
func newGeneration(number int, population []*patterns.Pattern, mutations []*Mutation, now time.Time) Generation {
	popCopy := make([]patterns.Pattern, len(population))
	for i, p := range population {
		popCopy[i] = *p.Clone()
	}

	mutCopy := make([]Mutation, len(mutations))
	for i, m := range mutations {
		mutCopy[i] = *m
	}

	return Generation{
		ID:         uuid.NewString(),
		Timestamp:  now,
		Population: popCopy,
		Mutations:  mutCopy,
		Stats:      computeGenerationStats(number, population),
	}
}

func computeGenerationStats(number int, population []*patterns.Pattern) GenerationStats {
	stats := GenerationStats{Number: number}
	if len(population) == 0 {
		return stats
	}

	sum := 0.0
	best := population[0].Confidence
	for _, p := range population {
		sum += p.Confidence
		if p.Confidence > best {
			best = p.Confidence
		}
	}
	mean := sum / float64(len(population))

	variance := 0.0
	for _, p := range population {
		d := p.Confidence - mean
		variance += d * d
	}
	variance /= float64(len(population))

	stats.AverageConfidence = mean
	stats.BestConfidence = best
	stats.Diversity = math.Sqrt(variance)
	return stats
}
