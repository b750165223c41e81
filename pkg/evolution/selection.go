package evolution

import (
	"math/rand"
	"sort"

	"github.com/emergentmind/patternevo/pkg/patterns"
)

// selectParents picks ~half the population as breeding candidates using the
// configured selection strategy.
func selectParents(population []*patterns.Pattern, strat Strategy, rng *rand.Rand) []*patterns.Pattern {
	count := len(population) / 2
	if count < 1 {
		count = 1
	}

	switch strat.Selection {
	case SelectionRoulette:
		return rouletteSelection(population, count, rng)
	case SelectionRank:
		return rankSelection(population, count, rng)
	default:
		return tournamentSelection(population, count, strat.TournamentSize, rng)
	}
}

// tournamentSelection repeatedly samples a random subset and keeps its
// highest-confidence member until the quota is filled.
func tournamentSelection(population []*patterns.Pattern, count, tournamentSize int, rng *rand.Rand) []*patterns.Pattern {
	if tournamentSize > len(population) {
		tournamentSize = len(population)
	}

	selected := make([]*patterns.Pattern, 0, count)
	for i := 0; i < count; i++ {
		best := population[rng.Intn(len(population))]
		for j := 1; j < tournamentSize; j++ {
			challenger := population[rng.Intn(len(population))]
			if challenger.Confidence > best.Confidence {
				best = challenger
			}
		}
		selected = append(selected, best)
	}

	return selected
}

// rouletteSelection picks members with probability proportional to their
// confidence relative to the population's total confidence. Falls back to
// uniform sampling when the total is zero.
func rouletteSelection(population []*patterns.Pattern, count int, rng *rand.Rand) []*patterns.Pattern {
	total := 0.0
	for _, p := range population {
		total += p.Confidence
	}

	selected := make([]*patterns.Pattern, 0, count)

	if total == 0 {
		for i := 0; i < count; i++ {
			selected = append(selected, population[rng.Intn(len(population))])
		}
		return selected
	}

	for i := 0; i < count; i++ {
		spin := rng.Float64() * total
		cumulative := 0.0
		for _, p := range population {
			cumulative += p.Confidence
			if cumulative >= spin {
				selected = append(selected, p)
				break
			}
		}
	}

	return selected
}

// rankSelection sorts by descending confidence and samples indices biased
// toward the front using a squared-random distribution.
func rankSelection(population []*patterns.Pattern, count int, rng *rand.Rand) []*patterns.Pattern {
	ranked := make([]*patterns.Pattern, len(population))
	copy(ranked, population)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})

	selected := make([]*patterns.Pattern, 0, count)
	for i := 0; i < count; i++ {
		r := rng.Float64()
		idx := int(r * r * float64(len(ranked)))
		if idx >= len(ranked) {
			idx = len(ranked) - 1
		}
		selected = append(selected, ranked[idx])
	}

	return selected
}
