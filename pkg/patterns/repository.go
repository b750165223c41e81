package patterns

import "context"

// Repository is the persistence collaborator the engine and its callers
// depend on. GetPatternHistory returns a pattern's prior variants as typed
// records, oldest first; the guided mutation operator is its only consumer
// inside the engine.
type Repository interface {
	GetPattern(ctx context.Context, id string) (*Pattern, error)
	SavePattern(ctx context.Context, p *Pattern) error
	GetPatternHistory(ctx context.Context, id string) ([]Pattern, error)
}

// HistoryProvider is the narrow slice of Repository the engine itself needs.
type HistoryProvider interface {
	GetPatternHistory(ctx context.Context, id string) ([]Pattern, error)
}
