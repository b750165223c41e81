package evolution

import (
	"testing"
	"time"

	"github.com/emergentmind/patternevo/pkg/patterns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendGenerationKeepsCounterInLockstep(t *testing.T) {
	seed := &patterns.Pattern{ID: "seed", Confidence: 0.5, Impact: 0.5}
	now := time.Now()
	l := newLineage(seed, now)

	assert.Equal(t, 0, l.CurrentGeneration)
	assert.Empty(t, l.Generations)

	for i := 1; i <= 3; i++ {
		gen := newGeneration(i, testPopulation(0.4, 0.6), nil, now.Add(time.Duration(i)*time.Second))
		l.appendGeneration(gen)
		assert.Equal(t, i, l.CurrentGeneration)
		assert.Len(t, l.Generations, i)
		assert.Equal(t, gen.Timestamp, l.LastEvolved)
	}
	assert.Equal(t, 3, l.TotalGenerations)
}

func TestNewLineageClonesRoot(t *testing.T) {
	seed := &patterns.Pattern{ID: "seed", Confidence: 0.5, Impact: 0.5, Tags: []string{"x"}}
	l := newLineage(seed, time.Now())

	seed.Confidence = 0.9
	seed.Tags[0] = "mutated"

	assert.Equal(t, 0.5, l.RootPattern.Confidence)
	assert.Equal(t, "x", l.RootPattern.Tags[0])
}

func TestNewGenerationSnapshotsPopulation(t *testing.T) {
	pop := testPopulation(0.3, 0.7)
	gen := newGeneration(1, pop, nil, time.Now())

	pop[0].Confidence = 0.99

	require.Len(t, gen.Population, 2)
	assert.Equal(t, 0.3, gen.Population[0].Confidence)
	assert.NotEmpty(t, gen.ID)
}

func TestComputeGenerationStats(t *testing.T) {
	pop := testPopulation(0.2, 0.4, 0.6)
	stats := computeGenerationStats(5, pop)

	assert.Equal(t, 5, stats.Number)
	assert.InDelta(t, 0.4, stats.AverageConfidence, 1e-9)
	assert.InDelta(t, 0.6, stats.BestConfidence, 1e-9)
	// stddev of {0.2, 0.4, 0.6} around 0.4
	assert.InDelta(t, 0.16329931618554522, stats.Diversity, 1e-9)
}

func TestComputeGenerationStatsEmptyPopulation(t *testing.T) {
	stats := computeGenerationStats(1, nil)
	assert.Equal(t, 1, stats.Number)
	assert.Zero(t, stats.AverageConfidence)
	assert.Zero(t, stats.Diversity)
}

func TestRecordImprovementAccumulates(t *testing.T) {
	l := newLineage(&patterns.Pattern{ID: "seed"}, time.Now())

	l.recordImprovement(
		Fitness{Efficiency: 0.5, Reliability: 0.5, Complexity: 0.8},
		Fitness{Efficiency: 0.6, Reliability: 0.7, Complexity: 0.7},
	)
	l.recordImprovement(
		Fitness{Efficiency: 0.6, Reliability: 0.7, Complexity: 0.7},
		Fitness{Efficiency: 0.65, Reliability: 0.7, Complexity: 0.9},
	)

	assert.InDelta(t, 0.15, l.Improvement.Efficiency, 1e-9)
	assert.InDelta(t, 0.2, l.Improvement.Reliability, 1e-9)
	assert.InDelta(t, 0.1, l.Improvement.Complexity, 1e-9)
}

func TestLineageCloneIsDeep(t *testing.T) {
	l := newLineage(&patterns.Pattern{ID: "seed", Confidence: 0.5}, time.Now())
	l.appendGeneration(newGeneration(1, testPopulation(0.5), nil, time.Now()))

	cp := l.clone()
	l.appendGeneration(newGeneration(2, testPopulation(0.6), nil, time.Now()))

	assert.Len(t, cp.Generations, 1)
	assert.Equal(t, 1, cp.CurrentGeneration)
	assert.Len(t, l.Generations, 2)

	var nilLineage *Lineage
	assert.Nil(t, nilLineage.clone())
}
