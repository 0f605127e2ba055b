package mock

import (
	"context"

	"github.com/poiesic/juris/ai"
)

// MockQueryClassifier is a test double for ai.QueryClassifier.
// It allows custom behavior injection via function fields.
type MockQueryClassifier struct {
	// ClassifyQueryFunc is called by ClassifyQuery if set.
	// If nil, returns the fixed Analysis value.
	ClassifyQueryFunc func(ctx context.Context, query string) (ai.QueryAnalysis, error)

	// Analysis is the fixed result returned when ClassifyQueryFunc is nil.
	// The zero value means "no signal detected".
	Analysis ai.QueryAnalysis

	callCount int
}

// NewMockQueryClassifier creates a mock classifier that detects nothing.
// Note: Returns concrete type to allow test assertions.
func NewMockQueryClassifier() *MockQueryClassifier {
	return &MockQueryClassifier{}
}

// ClassifyQuery returns the configured analysis.
func (m *MockQueryClassifier) ClassifyQuery(ctx context.Context, query string) (ai.QueryAnalysis, error) {
	m.callCount++

	if m.ClassifyQueryFunc != nil {
		return m.ClassifyQueryFunc(ctx, query)
	}
	return m.Analysis, nil
}

// CallCount returns the number of ClassifyQuery calls received.
func (m *MockQueryClassifier) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom behavior.
func (m *MockQueryClassifier) Reset() {
	m.callCount = 0
	m.ClassifyQueryFunc = nil
	m.Analysis = ai.QueryAnalysis{}
}
