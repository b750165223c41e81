package evolution

import (
	"github.com/emergentmind/patternevo/pkg/patterns"
	"github.com/sourcegraph/conc/pool"
)

// Fitness is the transient score of one pattern: a weighted scalar plus the
// sub-metric breakdown it was reduced from. Never persisted; recomputed each
// generation.
type Fitness struct {
	Pattern     *patterns.Pattern
	Score       float64
	Efficiency  float64
	Reliability float64
	Complexity  float64
}

// Evaluator scores patterns against a fixed set of objective weights. It is
// stateless given a pattern, so population scoring can fan out safely.
type Evaluator struct {
	weights     Weights
	concurrency int
}

// NewEvaluator creates an evaluator with the given weights.
func NewEvaluator(weights Weights) *Evaluator {
	return &Evaluator{
		weights:     weights,
		concurrency: 4,
	}
}

// EvaluatePattern reduces a pattern's traits to a weighted scalar score.
// Efficiency blends the two traits, reliability is confidence alone, and
// complexity is an inverse-size proxy over the pattern's attribute count.
func (e *Evaluator) EvaluatePattern(p *patterns.Pattern) Fitness {
	efficiency := 0.7*p.Confidence + 0.3*p.Impact
	reliability := p.Confidence
	complexity := patterns.Clamp01(1 - float64(p.AttributeCount())/10)

	return Fitness{
		Pattern:     p,
		Score:       efficiency*e.weights.Efficiency + reliability*e.weights.Reliability + complexity*e.weights.Complexity,
		Efficiency:  efficiency,
		Reliability: reliability,
		Complexity:  complexity,
	}
}

// EvaluatePopulation scores every member and returns only the fittest
// member's Fitness along with the raw per-member scores. Per-member scores
// feed generation statistics but are not retained as Fitness records.
func (e *Evaluator) EvaluatePopulation(population []*patterns.Pattern) (Fitness, []float64) {
	if len(population) == 0 {
		return Fitness{}, nil
	}

	results := make([]Fitness, len(population))

	p := pool.New().WithMaxGoroutines(e.concurrency)
	for i, member := range population {
		i, member := i, member
		p.Go(func() {
			results[i] = e.EvaluatePattern(member)
		})
	}
	p.Wait()

	best := results[0]
	scores := make([]float64, len(results))
	for i, f := range results {
		scores[i] = f.Score
		if f.Score > best.Score {
			best = f
		}
	}

	return best, scores
}
