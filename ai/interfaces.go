package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// QueryClassifier derives structured retrieval hints from a free-text legal
// query. Implementations must be thread-safe for concurrent use.
type QueryClassifier interface {
	// ClassifyQuery analyzes a query and extracts taxonomy placements and
	// planning hints. Fields the classifier cannot determine are left empty;
	// an empty QueryAnalysis is a valid result, not an error.
	ClassifyQuery(ctx context.Context, query string) (QueryAnalysis, error)
}

// QueryAnalysis is the structured interpretation of a free-text query.
// Paths are slash-separated and may be partial ("united_states/texas") or
// empty when the query carries no signal for that taxonomy. Label fields use
// the vocabularies in types.go; the caller maps them onto its own types.
type QueryAnalysis struct {
	// Jurisdiction is the detected jurisdiction path, e.g. "united_states/texas".
	Jurisdiction string

	// PracticeArea is the detected practice-area path, e.g. "litigation/commercial".
	PracticeArea string

	// Intent is one of IntentLabels ("general", "discovery", "deep_dive").
	Intent string

	// Depth is one of DepthLabels ("auto", "shallow", "deep").
	Depth string

	// Temporal is one of TemporalLabels ("none", "recent", "historical").
	Temporal string

	// Confidence is a score from 1-10 for the taxonomy placements.
	// Placements below the configured minimum are discarded.
	Confidence int
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and QueryClassifier instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// QueryClassifier returns the query classification service.
	// The returned QueryClassifier is safe for concurrent use.
	QueryClassifier() QueryClassifier

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
