package mock

import (
	"context"
	"sync"

	"github.com/poiesic/juris/backend"
	"github.com/poiesic/juris/core"
)

// MockAggregator is a test double for backend.StatsAggregator.
type MockAggregator struct {
	// AggregateFunc is called by AggregatePath if set.
	// If nil, AggregatePath returns an empty aggregate.
	AggregateFunc func(ctx context.Context, taxonomy string, path core.HierarchyPath) (backend.Aggregate, error)

	mu        sync.Mutex
	callCount int
}

// NewMockAggregator creates a mock aggregator returning empty aggregates.
func NewMockAggregator() *MockAggregator {
	return &MockAggregator{}
}

var _ backend.StatsAggregator = (*MockAggregator)(nil)

// AggregatePath counts the call and delegates to AggregateFunc when set.
func (m *MockAggregator) AggregatePath(ctx context.Context, taxonomy string, path core.HierarchyPath) (backend.Aggregate, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()

	if m.AggregateFunc != nil {
		return m.AggregateFunc(ctx, taxonomy, path)
	}
	return backend.Aggregate{ChildDistribution: map[string]int{}}, nil
}

// CallCount returns the number of AggregatePath calls received.
func (m *MockAggregator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Reset clears the call count and custom behavior.
func (m *MockAggregator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.AggregateFunc = nil
}
