package evolution

import (
	"math/rand"
	"testing"

	"github.com/emergentmind/patternevo/pkg/patterns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPopulation(confidences ...float64) []*patterns.Pattern {
	pop := make([]*patterns.Pattern, len(confidences))
	for i, c := range confidences {
		pop[i] = &patterns.Pattern{ID: string(rune('a' + i)), Confidence: c, Impact: 0.5}
	}
	return pop
}

func TestSelectParentsReturnsHalfThePopulation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	pop := testPopulation(0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8)

	for _, sel := range []SelectionType{SelectionTournament, SelectionRoulette, SelectionRank} {
		t.Run(string(sel), func(t *testing.T) {
			strat := DefaultStrategy()
			strat.Selection = sel

			parents := selectParents(pop, strat, rng)
			assert.Len(t, parents, 4)
		})
	}
}

func TestSelectParentsSingleMember(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	pop := testPopulation(0.5)

	parents := selectParents(pop, DefaultStrategy(), rng)
	require.Len(t, parents, 1)
	assert.Equal(t, pop[0], parents[0])
}

func TestTournamentFavorsHighConfidence(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	pop := testPopulation(0.05, 0.1, 0.15, 0.2, 0.95, 0.9)

	counts := map[string]int{}
	for i := 0; i < 300; i++ {
		for _, p := range tournamentSelection(pop, 3, 3, rng) {
			counts[p.ID]++
		}
	}

	strong := counts[pop[4].ID] + counts[pop[5].ID]
	weak := counts[pop[0].ID] + counts[pop[1].ID]
	assert.Greater(t, strong, weak, "tournament selection should be biased toward high confidence")
}

func TestTournamentSizeCappedAtPopulation(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	pop := testPopulation(0.4, 0.6)

	selected := tournamentSelection(pop, 2, 10, rng)
	assert.Len(t, selected, 2)
}

func TestRouletteFallsBackOnZeroConfidence(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	pop := testPopulation(0, 0, 0)

	selected := rouletteSelection(pop, 2, rng)
	require.Len(t, selected, 2)
	for _, p := range selected {
		assert.Contains(t, pop, p)
	}
}

func TestRouletteProportionalToConfidence(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	pop := testPopulation(0.01, 0.99)

	counts := map[string]int{}
	for i := 0; i < 500; i++ {
		for _, p := range rouletteSelection(pop, 1, rng) {
			counts[p.ID]++
		}
	}

	assert.Greater(t, counts[pop[1].ID], counts[pop[0].ID]*5)
}

func TestRankSelectionBiasedTowardFront(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	pop := testPopulation(0.1, 0.9, 0.3, 0.7, 0.5)

	counts := map[string]int{}
	for i := 0; i < 500; i++ {
		for _, p := range rankSelection(pop, 1, rng) {
			counts[p.ID]++
		}
	}

	// The squared-random index concentrates picks on the highest-ranked member.
	assert.Greater(t, counts[pop[1].ID], counts[pop[0].ID])
}

func TestRankSelectionDoesNotReorderInput(t *testing.T) {
	rng := rand.New(rand.NewSource(8))
	pop := testPopulation(0.1, 0.9, 0.3)
	before := []*patterns.Pattern{pop[0], pop[1], pop[2]}

	rankSelection(pop, 3, rng)

	assert.Equal(t, before, pop)
}
