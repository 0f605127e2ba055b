package mock

import (
	"context"
	"sync"

	"github.com/poiesic/juris/backend"
)

// MockSearcher is a test double for backend.SimilaritySearcher.
// It records every request it receives and allows custom behavior injection
// via a function field.
type MockSearcher struct {
	// SearchFunc is called by Search if set.
	// If nil, Search returns no hits.
	SearchFunc func(ctx context.Context, req backend.SearchRequest) ([]backend.Hit, error)

	mu       sync.Mutex
	requests []backend.SearchRequest
}

// NewMockSearcher creates a mock searcher that returns no hits by default.
// Note: Returns the concrete type so tests can inspect recorded requests.
func NewMockSearcher() *MockSearcher {
	return &MockSearcher{}
}

var _ backend.SimilaritySearcher = (*MockSearcher)(nil)

// Search records the request and delegates to SearchFunc when set.
func (m *MockSearcher) Search(ctx context.Context, req backend.SearchRequest) ([]backend.Hit, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, req)
	}
	return []backend.Hit{}, nil
}

// CallCount returns the number of Search calls received.
func (m *MockSearcher) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of every recorded request, in call order.
func (m *MockSearcher) Requests() []backend.SearchRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]backend.SearchRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// Reset clears recorded requests and custom behavior.
func (m *MockSearcher) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
	m.SearchFunc = nil
}
