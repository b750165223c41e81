// Package testutil provides shared test doubles for the repository and
// event-sink collaborators.
package testutil

import (
	"context"
	"sync"

	"github.com/emergentmind/patternevo/pkg/events"
	"github.com/emergentmind/patternevo/pkg/patterns"
	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of patterns.Repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetPattern(ctx context.Context, id string) (*patterns.Pattern, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*patterns.Pattern), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) SavePattern(ctx context.Context, p *patterns.Pattern) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockRepository) GetPatternHistory(ctx context.Context, id string) ([]patterns.Pattern, error) {
	args := m.Called(ctx, id)
	if h := args.Get(0); h != nil {
		return h.([]patterns.Pattern), args.Error(1)
	}
	return nil, args.Error(1)
}

// StaticHistory is a patterns.HistoryProvider returning a fixed history for
// every pattern, for tests that don't need call assertions.
type StaticHistory struct {
	History []patterns.Pattern
	Err     error
}

func (s *StaticHistory) GetPatternHistory(ctx context.Context, id string) ([]patterns.Pattern, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.History, nil
}

// RecordingSink is an events.Publisher that records every emitted event.
type RecordingSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *RecordingSink) Emit(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of everything emitted so far.
func (r *RecordingSink) Events() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Event, len(r.events))
	copy(out, r.events)
	return out
}
