package backend

import (
	"context"

	"github.com/poiesic/juris/core"
)

// SearchRequest is one planned call to the similarity backend.
//
// PathFilters restrict the candidate set: a document must descend from (or
// equal) the filter path on every listed taxonomy. Boosts carry the original
// target paths so the backend can reward candidates that match levels deeper
// than the current filter, using the per-level weights of the WeightVector.
type SearchRequest struct {
	// TextQuery is the free-text query, if any.
	TextQuery string

	// Vector is the precomputed embedding of TextQuery. Computing it once per
	// request lets a multi-stage cascade reuse it across stages.
	Vector []float32

	// Weights holds per-level and per-aspect weights for this stage.
	Weights core.WeightVector

	// PathFilters maps taxonomy name to the restricting path for that
	// taxonomy. A missing entry or zero-depth path means no restriction.
	PathFilters map[string]core.HierarchyPath

	// Boosts maps taxonomy name to the originally requested full path, used
	// only for level-weight scoring, never for filtering.
	Boosts map[string]core.HierarchyPath

	// Limit is the result-count ceiling for this stage.
	Limit int
}

// Hit is a single candidate returned by the similarity backend.
type Hit struct {
	DocumentId   core.ID
	Score        float64
	Jurisdiction core.HierarchyPath
	PracticeArea core.HierarchyPath
	Metadata     map[string]string
}

// SimilaritySearcher is the consumed similarity-search collaborator.
// Implementations must return an empty slice, not an error, when no
// documents match, and must be safe for concurrent use.
type SimilaritySearcher interface {
	// Search executes one weighted similarity search.
	// Results are ordered by descending score.
	Search(ctx context.Context, req SearchRequest) ([]Hit, error)
}

// Aggregate holds document-count statistics for one taxonomy path.
type Aggregate struct {
	// Count is the number of documents at or under the path.
	Count int

	// ChildDistribution maps each direct-child segment to its document count.
	ChildDistribution map[string]int
}

// StatsAggregator is the consumed aggregation collaborator.
// Implementations must be safe for concurrent use.
type StatsAggregator interface {
	// AggregatePath computes count statistics for one taxonomy path.
	AggregatePath(ctx context.Context, taxonomy string, path core.HierarchyPath) (Aggregate, error)
}
