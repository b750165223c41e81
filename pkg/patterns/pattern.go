// Package patterns defines the reusable behavioral pattern data model and
// its persistence interface.
package patterns

import (
	"time"
)

// Type categorizes what kind of behavioral template a pattern captures.
type Type string

const (
	TypeWorkflow   Type = "workflow"
	TypeCommand    Type = "command"
	TypeDocument   Type = "document"
	TypeAutomation Type = "automation"
)

// Metrics holds usage statistics accumulated for a pattern.
type Metrics struct {
	UsageCount       int           `json:"usage_count"`
	SuccessRate      float64       `json:"success_rate"`
	AvgExecutionTime time.Duration `json:"avg_execution_time"`
	ComplexityScore  float64       `json:"complexity_score"`
}

// TraitSnapshot records a pattern's trait values at a point in time.
type TraitSnapshot struct {
	Timestamp  time.Time `json:"timestamp"`
	Confidence float64   `json:"confidence"`
	Impact     float64   `json:"impact"`
}

// Pattern is a reusable behavioral template. Confidence and Impact are the
// continuous traits the evolution engine optimizes; both always lie in [0,1].
type Pattern struct {
	ID         string          `json:"id"`
	Type       Type            `json:"type"`
	Name       string          `json:"name"`
	Confidence float64         `json:"confidence"`
	Impact     float64         `json:"impact"`
	Tags       []string        `json:"tags,omitempty"`
	Metrics    Metrics         `json:"metrics"`
	Evolution  []TraitSnapshot `json:"evolution,omitempty"`
}

// Clone returns a deep copy. Operators derive new patterns from copies and
// never mutate the caller's value.
func (p *Pattern) Clone() *Pattern {
	cp := *p
	if p.Tags != nil {
		cp.Tags = make([]string, len(p.Tags))
		copy(cp.Tags, p.Tags)
	}
	if p.Evolution != nil {
		cp.Evolution = make([]TraitSnapshot, len(p.Evolution))
		copy(cp.Evolution, p.Evolution)
	}
	return &cp
}

// RecordSnapshot appends the current trait values to the evolution history.
func (p *Pattern) RecordSnapshot(now time.Time) {
	p.Evolution = append(p.Evolution, TraitSnapshot{
		Timestamp:  now,
		Confidence: p.Confidence,
		Impact:     p.Impact,
	})
}

// AttributeCount is the crude size proxy used by fitness scoring: the number
// of tags attached to the pattern.
func (p *Pattern) AttributeCount() int {
	return len(p.Tags)
}

// Clamp01 constrains a trait value to [0,1]. Values are clamped, never
// wrapped.
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ValidTraits reports whether the pattern's traits are within [0,1].
func (p *Pattern) ValidTraits() bool {
	return p.Confidence >= 0 && p.Confidence <= 1 && p.Impact >= 0 && p.Impact <= 1
}
