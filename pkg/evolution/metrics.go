package evolution

import (
	"math"
	"time"
)

// MetricsEventName is the event emitted once per generation with the
// current RunMetrics record. Delivery is fire-and-forget.
const MetricsEventName = "patternEvolution:metrics"

// convergenceWindow is how many trailing metrics entries the convergence
// test compares; fewer recorded entries means the test cannot trigger yet.
const convergenceWindow = 10

// RunMetrics aggregates one generation's run-level statistics. Entries are
// appended in generation order and never reordered or retracted.
type RunMetrics struct {
	GenerationNumber  int           `json:"generation_number"`
	BestConfidence    float64       `json:"best_confidence"`
	AverageConfidence float64       `json:"average_confidence"`
	BestFitness       float64       `json:"best_fitness"`
	Diversity         float64       `json:"diversity"`
	ImprovementRate   float64       `json:"improvement_rate"`
	ConvergenceRate   float64       `json:"convergence_rate"`
	Elapsed           time.Duration `json:"elapsed"`
}

// computeRunMetrics builds the metrics entry for one loop iteration from
// the generation's population statistics and the recorded history so far.
func computeRunMetrics(generation int, stats GenerationStats, best Fitness, history []RunMetrics, elapsed time.Duration) RunMetrics {
	m := RunMetrics{
		GenerationNumber:  generation,
		BestConfidence:    best.Pattern.Confidence,
		AverageConfidence: stats.AverageConfidence,
		BestFitness:       best.Score,
		Diversity:         stats.Diversity,
		Elapsed:           elapsed,
	}

	if len(history) > 0 {
		m.ImprovementRate = best.Score - history[len(history)-1].BestFitness
	}

	start := len(history) - (convergenceWindow - 1)
	if start < 0 {
		start = 0
	}
	window := make([]RunMetrics, 0, convergenceWindow)
	window = append(window, history[start:]...)
	window = append(window, m)
	m.ConvergenceRate = meanFitnessDelta(window)

	return m
}

// hasConverged reports whether the recorded metrics show negligible
// improvement: the mean generation-over-generation delta in best fitness
// across the trailing window is below the threshold. Requires a full window
// of entries before it can trigger.
func hasConverged(history []RunMetrics, threshold float64) bool {
	if len(history) < convergenceWindow {
		return false
	}
	return meanFitnessDelta(history[len(history)-convergenceWindow:]) < threshold
}

// meanFitnessDelta computes the mean absolute generation-over-generation
// delta in best fitness across the given entries.
func meanFitnessDelta(entries []RunMetrics) float64 {
	if len(entries) < 2 {
		return 0
	}

	sum := 0.0
	for i := 1; i < len(entries); i++ {
		sum += math.Abs(entries[i].BestFitness - entries[i-1].BestFitness)
	}
	return sum / float64(len(entries)-1)
}
