package evolution

import (
	"context"
	"math/rand"
	"time"

	"github.com/emergentmind/patternevo/pkg/errors"
	"github.com/emergentmind/patternevo/pkg/patterns"
	"github.com/google/uuid"
)

// MutationOp is the operator type recorded on a Mutation.
type MutationOp string

const (
	MutationOpMerge   MutationOp = "merge"
	MutationOpSplit   MutationOp = "split"
	MutationOpModify  MutationOp = "modify"
	MutationOpCombine MutationOp = "combine"
)

// Mutation records one successful mutation: the operator, the parent(s),
// the resulting pattern, and the trait-level impact delta. Immutable once
// created.
type Mutation struct {
	ID          string            `json:"id"`
	Op          MutationOp        `json:"op"`
	ParentIDs   []string          `json:"parent_ids"`
	Result      *patterns.Pattern `json:"result"`
	ImpactDelta float64           `json:"impact_delta"`
	Timestamp   time.Time         `json:"timestamp"`
}

const traitNoise = 0.1

// mutatePattern applies the configured mutation strategy to a pattern and
// returns a fresh derived pattern plus its mutation record. A nil pattern
// with a non-nil error means "no mutation produced"; callers recover from
// that locally and never escalate it.
func (e *Engine) mutatePattern(ctx context.Context, p *patterns.Pattern, strat Strategy, rng *rand.Rand) (*patterns.Pattern, *Mutation, error) {
	switch strat.Mutation {
	case MutationRandom:
		return mutateRandom(p, rng)
	case MutationGuided:
		return e.mutateGuided(ctx, p, rng)
	case MutationHybrid:
		if rng.Float64() < 0.5 {
			return mutateRandom(p, rng)
		}
		return e.mutateGuided(ctx, p, rng)
	default:
		return nil, nil, errors.Newf(errors.MutationFailed, "unknown mutation strategy %q", strat.Mutation)
	}
}

// mutateRandom independently re-rolls each trait with 50% probability,
// adding noise in [-0.1, +0.1] and clamping to [0,1].
func mutateRandom(p *patterns.Pattern, rng *rand.Rand) (*patterns.Pattern, *Mutation, error) {
	child := p.Clone()

	if rng.Float64() < 0.5 {
		child.Confidence = patterns.Clamp01(child.Confidence + (rng.Float64()*2-1)*traitNoise)
	}
	if rng.Float64() < 0.5 {
		child.Impact = patterns.Clamp01(child.Impact + (rng.Float64()*2-1)*traitNoise)
	}

	now := time.Now()
	child.RecordSnapshot(now)

	return child, newMutationRecord(MutationOpModify, p, child, now), nil
}

// mutateGuided consults the pattern's stored history and, when a historical
// variant with higher confidence exists, averages the current traits with a
// randomly chosen such variant's traits. No usable history means no
// mutation.
func (e *Engine) mutateGuided(ctx context.Context, p *patterns.Pattern, rng *rand.Rand) (*patterns.Pattern, *Mutation, error) {
	if e.repo == nil {
		return nil, nil, errors.New(errors.MutationFailed, "guided mutation requires a pattern repository")
	}

	history, err := e.repo.GetPatternHistory(ctx, p.ID)
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.MutationFailed, "failed to fetch pattern history")
	}

	var stronger []patterns.Pattern
	for _, variant := range history {
		if variant.Confidence > p.Confidence {
			stronger = append(stronger, variant)
		}
	}
	if len(stronger) == 0 {
		return nil, nil, errors.WithFields(
			errors.New(errors.MutationFailed, "no stronger historical variant to guide mutation"),
			errors.Fields{"pattern_id": p.ID, "history_size": len(history)},
		)
	}

	guide := stronger[rng.Intn(len(stronger))]

	child := p.Clone()
	child.Confidence = patterns.Clamp01((p.Confidence + guide.Confidence) / 2)
	child.Impact = patterns.Clamp01((p.Impact + guide.Impact) / 2)

	now := time.Now()
	child.RecordSnapshot(now)

	return child, newMutationRecord(MutationOpCombine, p, child, now), nil
}

func newMutationRecord(op MutationOp, parent, child *patterns.Pattern, now time.Time) *Mutation {
	return &Mutation{
		ID:          uuid.NewString(),
		Op:          op,
		ParentIDs:   []string{parent.ID},
		Result:      child,
		ImpactDelta: ((child.Confidence - parent.Confidence) + (child.Impact - parent.Impact)) / 2,
		Timestamp:   now,
	}
}
