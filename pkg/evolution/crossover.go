package evolution

import (
	"math/rand"

	"github.com/emergentmind/patternevo/pkg/patterns"
)

// breedOffspring sweeps the parent list pairwise, wrapping around when the
// parent count is odd, and accumulates children until `need` offspring
// exist. Each pair's crossover is gated by the crossover probability;
// ungated parents pass through as unchanged copies.
func breedOffspring(parents []*patterns.Pattern, need int, strat Strategy, rng *rand.Rand) []*patterns.Pattern {
	offspring := make([]*patterns.Pattern, 0, need)

	for len(offspring) < need {
		for i := 0; i < len(parents) && len(offspring) < need; i += 2 {
			p1 := parents[i]
			p2 := parents[(i+1)%len(parents)]

			var c1, c2 *patterns.Pattern
			if rng.Float64() < strat.CrossoverProbability {
				c1, c2 = crossoverPair(p1, p2, strat, rng)
			} else {
				c1, c2 = p1.Clone(), p2.Clone()
			}

			offspring = append(offspring, c1)
			if len(offspring) < need {
				offspring = append(offspring, c2)
			}
		}
	}

	return offspring
}

// crossoverPair combines two parents into two children using the configured
// crossover strategy. Children start as copies, so identity, tags, and
// accumulated metrics carry over from their base parent.
func crossoverPair(p1, p2 *patterns.Pattern, strat Strategy, rng *rand.Rand) (*patterns.Pattern, *patterns.Pattern) {
	switch strat.Crossover {
	case CrossoverMultiPoint:
		return crossoverMultiPoint(p1, p2)
	case CrossoverUniform:
		return crossoverUniform(p1, p2, rng)
	default:
		return crossoverSinglePoint(p1, p2)
	}
}

// crossoverSinglePoint sets both children's confidence to the parents'
// average and leaves impact untouched.
func crossoverSinglePoint(p1, p2 *patterns.Pattern) (*patterns.Pattern, *patterns.Pattern) {
	c1, c2 := p1.Clone(), p2.Clone()

	avg := patterns.Clamp01((p1.Confidence + p2.Confidence) / 2)
	c1.Confidence = avg
	c2.Confidence = avg

	return c1, c2
}

// crossoverMultiPoint blends each trait 0.7/0.3; one child favors parent A,
// the other parent B.
func crossoverMultiPoint(p1, p2 *patterns.Pattern) (*patterns.Pattern, *patterns.Pattern) {
	c1, c2 := p1.Clone(), p2.Clone()

	c1.Confidence = patterns.Clamp01(0.7*p1.Confidence + 0.3*p2.Confidence)
	c1.Impact = patterns.Clamp01(0.7*p1.Impact + 0.3*p2.Impact)

	c2.Confidence = patterns.Clamp01(0.3*p1.Confidence + 0.7*p2.Confidence)
	c2.Impact = patterns.Clamp01(0.3*p1.Impact + 0.7*p2.Impact)

	return c1, c2
}

// crossoverUniform copies each trait of each child from a randomly chosen
// parent.
func crossoverUniform(p1, p2 *patterns.Pattern, rng *rand.Rand) (*patterns.Pattern, *patterns.Pattern) {
	c1, c2 := p1.Clone(), p2.Clone()

	for _, child := range []*patterns.Pattern{c1, c2} {
		if rng.Float64() < 0.5 {
			child.Confidence = p1.Confidence
		} else {
			child.Confidence = p2.Confidence
		}
		if rng.Float64() < 0.5 {
			child.Impact = p1.Impact
		} else {
			child.Impact = p2.Impact
		}
	}

	return c1, c2
}
