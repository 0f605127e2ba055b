package ingestion

import "errors"

var (
	// ErrRepositoryRequired is returned when a document repository is not provided.
	ErrRepositoryRequired = errors.New("document repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrEmbeddingMismatch is returned when the embedder returns a result
	// batch whose size does not match the input batch.
	ErrEmbeddingMismatch = errors.New("embedding result mismatch")
)
