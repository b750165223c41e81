package evolution

import (
	"math/rand"
	"testing"

	"github.com/emergentmind/patternevo/pkg/patterns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossoverSinglePoint(t *testing.T) {
	p1 := &patterns.Pattern{ID: "a", Confidence: 0.2, Impact: 0.1}
	p2 := &patterns.Pattern{ID: "b", Confidence: 0.8, Impact: 0.9}

	c1, c2 := crossoverSinglePoint(p1, p2)

	assert.InDelta(t, 0.5, c1.Confidence, 1e-9)
	assert.InDelta(t, 0.5, c2.Confidence, 1e-9)
	// Impact untouched: each child keeps its base parent's value
	assert.Equal(t, 0.1, c1.Impact)
	assert.Equal(t, 0.9, c2.Impact)
	// Parents untouched
	assert.Equal(t, 0.2, p1.Confidence)
	assert.Equal(t, 0.8, p2.Confidence)
}

func TestCrossoverMultiPoint(t *testing.T) {
	p1 := &patterns.Pattern{ID: "a", Confidence: 1.0, Impact: 0.0}
	p2 := &patterns.Pattern{ID: "b", Confidence: 0.0, Impact: 1.0}

	c1, c2 := crossoverMultiPoint(p1, p2)

	assert.InDelta(t, 0.7, c1.Confidence, 1e-9)
	assert.InDelta(t, 0.3, c1.Impact, 1e-9)
	assert.InDelta(t, 0.3, c2.Confidence, 1e-9)
	assert.InDelta(t, 0.7, c2.Impact, 1e-9)
}

func TestCrossoverUniformTraitsComeFromParents(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	p1 := &patterns.Pattern{ID: "a", Confidence: 0.25, Impact: 0.75}
	p2 := &patterns.Pattern{ID: "b", Confidence: 0.6, Impact: 0.4}

	for i := 0; i < 100; i++ {
		c1, c2 := crossoverUniform(p1, p2, rng)
		for _, child := range []*patterns.Pattern{c1, c2} {
			assert.Contains(t, []float64{0.25, 0.6}, child.Confidence)
			assert.Contains(t, []float64{0.75, 0.4}, child.Impact)
		}
	}
}

func TestBreedOffspringCount(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	parents := testPopulation(0.3, 0.5, 0.7, 0.9)

	strat := DefaultStrategy()
	offspring := breedOffspring(parents, 10, strat, rng)
	assert.Len(t, offspring, 10)
}

func TestBreedOffspringOddParentsWrapAround(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	parents := testPopulation(0.2, 0.5, 0.8)

	strat := DefaultStrategy()
	strat.CrossoverProbability = 1.0
	strat.Crossover = CrossoverSinglePoint

	offspring := breedOffspring(parents, 6, strat, rng)
	require.Len(t, offspring, 6)
	for _, child := range offspring {
		assert.True(t, child.ValidTraits())
	}
}

func TestBreedOffspringPassThroughWhenUngated(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	parents := testPopulation(0.2, 0.8)

	strat := DefaultStrategy()
	strat.CrossoverProbability = 0.0

	offspring := breedOffspring(parents, 2, strat, rng)
	require.Len(t, offspring, 2)

	// Pass-through copies: traits unchanged, but fresh values
	assert.Equal(t, 0.2, offspring[0].Confidence)
	assert.Equal(t, 0.8, offspring[1].Confidence)
	assert.NotSame(t, parents[0], offspring[0])
	assert.NotSame(t, parents[1], offspring[1])
}

func TestCrossoverClampingLaw(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	p1 := &patterns.Pattern{ID: "a", Confidence: 1.0, Impact: 1.0}
	p2 := &patterns.Pattern{ID: "b", Confidence: 0.0, Impact: 0.0}

	for _, ct := range []CrossoverType{CrossoverSinglePoint, CrossoverMultiPoint, CrossoverUniform} {
		strat := DefaultStrategy()
		strat.Crossover = ct
		for i := 0; i < 50; i++ {
			c1, c2 := crossoverPair(p1, p2, strat, rng)
			assert.True(t, c1.ValidTraits())
			assert.True(t, c2.ValidTraits())
		}
	}
}
