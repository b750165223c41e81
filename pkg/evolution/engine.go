package evolution

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/emergentmind/patternevo/pkg/errors"
	"github.com/emergentmind/patternevo/pkg/events"
	"github.com/emergentmind/patternevo/pkg/logging"
	"github.com/emergentmind/patternevo/pkg/patterns"
	"github.com/google/uuid"
)

// Status is the engine's run state. Exactly one state is active at a time
// for a given engine instance.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusEvolving  Status = "evolving"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Result is the outcome of one evolution run.
type Result struct {
	Success  bool              `json:"success"`
	Pattern  *patterns.Pattern `json:"pattern,omitempty"`
	Mutation *Mutation         `json:"mutation,omitempty"`
	Metrics  RunMetrics        `json:"metrics"`
}

// StateSnapshot is a defensive copy of the engine's full run state.
type StateSnapshot struct {
	Status     Status       `json:"status"`
	RunID      string       `json:"run_id"`
	Generation int          `json:"generation"`
	Lineage    *Lineage     `json:"lineage,omitempty"`
	Metrics    []RunMetrics `json:"metrics,omitempty"`
	Config     Config       `json:"config"`
	Strategy   Strategy     `json:"strategy"`
}

// Engine runs population-based evolutionary search over a seed pattern's
// traits. An engine owns exactly one mutable run at a time; for independent
// parallel runs, use separate instances.
type Engine struct {
	mu   sync.Mutex
	cond *sync.Cond

	status   Status
	cfg      Config
	strat    Strategy
	runID    string
	lineage  *Lineage
	metrics  []RunMetrics
	best     Fitness
	bestMut  *Mutation
	genCount int
	started  time.Time

	repo patterns.HistoryProvider
	sink events.Publisher
	rng  *rand.Rand
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfig sets the initial run configuration.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithStrategy sets the initial operator strategy.
func WithStrategy(strat Strategy) Option {
	return func(e *Engine) {
		e.strat = strat
	}
}

// WithRandSeed makes the engine's random source deterministic.
func WithRandSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// New creates an engine with injected collaborators. repo backs guided
// mutation and may be nil when only random mutation is used; sink receives
// per-generation metrics events and may be nil.
func New(repo patterns.HistoryProvider, sink events.Publisher, opts ...Option) *Engine {
	e := &Engine{
		status: StatusIdle,
		cfg:    DefaultConfig(),
		strat:  DefaultStrategy(),
		repo:   repo,
		sink:   sink,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	e.cond = sync.NewCond(&e.mu)

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Evolve runs evolutionary search rooted at the seed pattern. It blocks
// until the run reaches a terminal state; external control calls
// (Pause/Resume/Cancel/UpdateConfig) may be issued from other goroutines
// while it is in flight. A second Evolve while a run is active is rejected.
func (e *Engine) Evolve(ctx context.Context, seed *patterns.Pattern) (*Result, error) {
	if seed == nil {
		return nil, errors.New(errors.InvalidInput, "seed pattern is nil")
	}
	if !seed.ValidTraits() {
		return nil, errors.WithFields(
			errors.New(errors.InvalidInput, "seed traits must lie in [0,1]"),
			errors.Fields{"confidence": seed.Confidence, "impact": seed.Impact},
		)
	}

	e.mu.Lock()
	if e.status == StatusEvolving || e.status == StatusPaused {
		e.mu.Unlock()
		return nil, errors.New(errors.InvalidRunState, "an evolution run is already in flight")
	}
	if err := e.cfg.Validate(); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if err := e.strat.Validate(); err != nil {
		e.mu.Unlock()
		return nil, err
	}

	now := time.Now()
	e.status = StatusEvolving
	e.runID = uuid.NewString()
	e.lineage = newLineage(seed, now)
	e.metrics = nil
	e.best = Fitness{}
	e.bestMut = nil
	e.genCount = 0
	e.started = now
	runID := e.runID
	e.mu.Unlock()

	ctx = logging.WithRunID(ctx, runID)

	// Wake the loop out of a paused wait when the context is canceled.
	stop := context.AfterFunc(ctx, func() {
		e.mu.Lock()
		e.cond.Broadcast()
		e.mu.Unlock()
	})
	defer stop()

	result, err := e.run(ctx, seed)
	if err != nil {
		e.mu.Lock()
		e.status = StatusFailed
		e.mu.Unlock()
		logging.GetLogger().Error(ctx, "evolution run failed: %v", err)
		return nil, errors.Wrap(err, errors.EvolutionFailed, "evolution run failed")
	}

	e.mu.Lock()
	e.status = StatusCompleted
	e.mu.Unlock()
	return result, nil
}

// run is the generation loop. Everything inside one iteration runs to
// completion before pause or cancel takes effect.
func (e *Engine) run(ctx context.Context, seed *patterns.Pattern) (*Result, error) {
	logger := logging.GetLogger()

	cfg, strat := e.snapshotSettings()
	logger.Info(ctx, "Starting evolution: population_size=%d, max_generations=%d, mutation=%s, selection=%s, crossover=%s",
		cfg.PopulationSize, cfg.MaxGenerations, strat.Mutation, strat.Selection, strat.Crossover)

	population := e.buildInitialPopulation(ctx, seed, cfg, strat)

	evaluator := NewEvaluator(strat.Weights)
	initialBest, _ := evaluator.EvaluatePopulation(population)
	e.mu.Lock()
	e.best = initialBest
	e.mu.Unlock()

	for gen := 1; gen <= cfg.MaxGenerations; gen++ {
		if err := e.awaitResume(ctx); err != nil {
			return nil, err
		}

		// Config and strategy updates take effect here, not retroactively.
		cfg, strat = e.snapshotSettings()
		evaluator = NewEvaluator(strat.Weights)
		genCtx := logging.WithGeneration(ctx, gen)

		parents := selectParents(population, strat, e.rng)

		eliteCount := cfg.ElitismCount
		if eliteCount > len(population) {
			eliteCount = len(population)
		}
		need := cfg.PopulationSize - eliteCount
		if need < 1 {
			need = 1
		}

		offspring := breedOffspring(parents, need, strat, e.rng)
		offspring, mutations := e.mutateOffspring(genCtx, offspring, cfg, strat)

		for _, elite := range topByConfidence(population, eliteCount) {
			offspring = append(offspring, elite.Clone())
		}

		if len(offspring) == 0 {
			// Every offspring was dropped by the mutation policy; carry the
			// previous population forward so the run can continue.
			logger.Warn(genCtx, "all offspring dropped this generation, retaining previous population")
			offspring = population
		}

		genBest, _ := evaluator.EvaluatePopulation(offspring)

		if genBest.Score > e.bestScore() {
			e.recordImprovement(genBest, originatingMutation(mutations, genBest.Pattern), offspring, mutations)
			logger.Debug(genCtx, "new best fitness %.4f (confidence=%.4f)", genBest.Score, genBest.Pattern.Confidence)
		}

		population = offspring

		if e.converged(cfg.ConvergenceThreshold) {
			logger.Info(genCtx, "Convergence achieved at generation %d", gen)
			break
		}

		metrics := e.advanceGeneration(gen, population)
		e.emitMetrics(metrics)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	result := &Result{
		Success: true,
		Pattern: e.best.Pattern.Clone(),
	}
	if e.bestMut != nil {
		mut := *e.bestMut
		result.Mutation = &mut
	}
	if len(e.metrics) > 0 {
		result.Metrics = e.metrics[len(e.metrics)-1]
	}

	logger.Info(ctx, "Evolution completed: generations=%d, best_fitness=%.4f, best_confidence=%.4f",
		e.genCount, e.best.Score, e.best.Pattern.Confidence)

	return result, nil
}

// buildInitialPopulation grows the seed into a full population by repeated
// mutation, discarding failed attempts. Attempts are bounded so a mutation
// operator that can never succeed cannot deadlock the build step; the
// remainder is padded with copies of the seed.
func (e *Engine) buildInitialPopulation(ctx context.Context, seed *patterns.Pattern, cfg Config, strat Strategy) []*patterns.Pattern {
	logger := logging.GetLogger()
	population := make([]*patterns.Pattern, 0, cfg.PopulationSize)
	population = append(population, seed.Clone())

	maxAttempts := cfg.PopulationSize * 10
	for attempts := 0; len(population) < cfg.PopulationSize && attempts < maxAttempts; attempts++ {
		child, _, err := e.mutatePattern(ctx, seed, strat, e.rng)
		if err != nil {
			logger.Debug(ctx, "initial mutation attempt skipped: %v", err)
			continue
		}
		population = append(population, child)
	}

	if missing := cfg.PopulationSize - len(population); missing > 0 {
		logger.Warn(ctx, "padding initial population with %d seed copies after %d mutation attempts", missing, maxAttempts)
		for i := 0; i < missing; i++ {
			population = append(population, seed.Clone())
		}
	}

	return population
}

// mutateOffspring rolls each offspring against the mutation probability.
// Skipped or failed attempts are kept unmutated or dropped according to the
// RetainUnmutated policy; operator failures are absorbed here and never
// escalate.
func (e *Engine) mutateOffspring(ctx context.Context, offspring []*patterns.Pattern, cfg Config, strat Strategy) ([]*patterns.Pattern, []*Mutation) {
	logger := logging.GetLogger()

	result := make([]*patterns.Pattern, 0, len(offspring))
	var mutations []*Mutation

	for _, child := range offspring {
		if e.rng.Float64() >= strat.MutationProbability {
			if cfg.RetainUnmutated {
				result = append(result, child)
			}
			continue
		}

		mutated, mut, err := e.mutatePattern(ctx, child, strat, e.rng)
		if err != nil {
			logger.Debug(ctx, "mutation attempt failed: %v", err)
			if cfg.RetainUnmutated {
				result = append(result, child)
			}
			continue
		}

		result = append(result, mutated)
		mutations = append(mutations, mut)
	}

	return result, mutations
}

// awaitResume blocks while the run is paused, waking on Resume, Cancel, or
// context cancellation. Returns an error when the run must stop.
func (e *Engine) awaitResume(ctx context.Context) error {
	e.mu.Lock()
	for e.status == StatusPaused && ctx.Err() == nil {
		e.cond.Wait()
	}
	status := e.status
	e.mu.Unlock()

	if err := errors.CheckContext(ctx, "evolution run"); err != nil {
		return err
	}
	if status != StatusEvolving {
		return errors.Newf(errors.Canceled, "run stopped externally in state %q", status)
	}
	return nil
}

func (e *Engine) snapshotSettings() (Config, Strategy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg, e.strat
}

func (e *Engine) bestScore() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.best.Score
}

// recordImprovement installs a new running best and extends the lineage by
// one generation; the lineage counter only advances on improvement.
func (e *Engine) recordImprovement(newBest Fitness, mut *Mutation, population []*patterns.Pattern, mutations []*Mutation) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.best.Pattern != nil {
		e.lineage.recordImprovement(e.best, newBest)
	}
	e.best = newBest
	if mut != nil {
		e.bestMut = mut
	}
	e.lineage.appendGeneration(newGeneration(e.lineage.CurrentGeneration+1, population, mutations, time.Now()))
}

// advanceGeneration appends this iteration's run metrics and advances the
// loop counter.
func (e *Engine) advanceGeneration(number int, population []*patterns.Pattern) RunMetrics {
	e.mu.Lock()
	defer e.mu.Unlock()

	stats := computeGenerationStats(number, population)
	m := computeRunMetrics(number, stats, e.best, e.metrics, time.Since(e.started))
	e.metrics = append(e.metrics, m)
	e.genCount = number
	return m
}

func (e *Engine) converged(threshold float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return hasConverged(e.metrics, threshold)
}

func (e *Engine) emitMetrics(m RunMetrics) {
	if e.sink == nil {
		return
	}
	e.sink.Emit(events.Event{
		Name:      MetricsEventName,
		Timestamp: time.Now(),
		Payload:   m,
	})
}

// Pause suspends the run at the top of the next generation iteration. A
// no-op unless the engine is currently evolving.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == StatusEvolving {
		e.status = StatusPaused
	}
}

// Resume continues a paused run. A no-op unless the engine is currently
// paused.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == StatusPaused {
		e.status = StatusEvolving
		e.cond.Broadcast()
	}
}

// Cancel stops an in-flight run at the next suspension point. The run
// terminates in the failed state with a Canceled error.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status == StatusEvolving || e.status == StatusPaused {
		e.status = StatusFailed
		e.cond.Broadcast()
	}
}

// State returns a defensive snapshot of the full run state.
func (e *Engine) State() StateSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	metrics := make([]RunMetrics, len(e.metrics))
	copy(metrics, e.metrics)

	return StateSnapshot{
		Status:     e.status,
		RunID:      e.runID,
		Generation: e.genCount,
		Lineage:    e.lineage.clone(),
		Metrics:    metrics,
		Config:     e.cfg,
		Strategy:   e.strat,
	}
}

// UpdateConfig shallow-merges the patch into the live configuration. The
// merged config is validated before it is installed; it takes effect on the
// next generation iteration.
func (e *Engine) UpdateConfig(patch ConfigPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	merged := e.cfg.Apply(patch)
	if err := merged.Validate(); err != nil {
		return err
	}
	e.cfg = merged
	return nil
}

// UpdateStrategy shallow-merges the patch into the live strategy, effective
// on the next generation iteration.
func (e *Engine) UpdateStrategy(patch StrategyPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	merged := e.strat.Apply(patch)
	if err := merged.Validate(); err != nil {
		return err
	}
	e.strat = merged
	return nil
}

// topByConfidence returns the n highest-confidence members.
func topByConfidence(population []*patterns.Pattern, n int) []*patterns.Pattern {
	if n <= 0 {
		return nil
	}
	ranked := make([]*patterns.Pattern, len(population))
	copy(ranked, population)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

// originatingMutation finds the mutation record whose result is the given
// pattern, if any.
func originatingMutation(mutations []*Mutation, p *patterns.Pattern) *Mutation {
	for _, m := range mutations {
		if m.Result == p {
			return m
		}
	}
	return nil
}
