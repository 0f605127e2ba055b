package storage

import (
	"context"
	"time"

	"github.com/poiesic/juris/backend"
	"github.com/poiesic/juris/core"
)

// Repository provides common storage operations shared across backends.
// Implementations must be thread-safe and support concurrent access. Every
// implementation also serves the search coordinator, so it embeds the two
// backend collaborator interfaces.
type Repository interface {
	backend.SimilaritySearcher
	backend.StatsAggregator

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository provides operations for managing legal documents.
type DocumentRepository interface {
	Repository

	// AddDocuments adds one or more documents to storage.
	// For documents with ID=0, derives content-based IDs from title and
	// contents, so identical documents collapse onto the same key.
	// Sets InsertedAt/UpdatedAt timestamps.
	// Returns the documents with IDs and timestamps populated.
	AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// UpdateDocuments updates existing documents.
	// Updates the UpdatedAt timestamp automatically and keeps the taxonomy
	// path indexes in sync.
	// Returns ErrNotFound if any document doesn't exist.
	UpdateDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error)

	// DeleteDocuments removes documents by their IDs.
	// Also removes associated taxonomy and date indexes.
	// Returns ErrNotFound if any document doesn't exist.
	DeleteDocuments(ctx context.Context, ids ...core.ID) error

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocuments retrieves multiple documents by their IDs.
	// Returns only the documents that exist (no error for missing ones).
	GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error)

	// GetDocumentsByDateRange retrieves documents decided within a time
	// range. Returns documents where start <= DecidedAt < end, ordered by
	// decision date ascending.
	GetDocumentsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Document, error)

	// ForEachDocument streams every stored document to fn in key order.
	// Iteration stops at the first error from fn or at context cancellation.
	// Used by bulk maintenance jobs such as re-embedding.
	ForEachDocument(ctx context.Context, fn func(doc *core.Document) error) error
}
