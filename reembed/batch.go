package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/juris/ai"
	"github.com/poiesic/juris/core"
	"github.com/poiesic/juris/storage"
)

// BatchProcessor regenerates both embedding aspects for batches of documents.
type BatchProcessor struct {
	repo           storage.DocumentRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.DocumentRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates summary and content embeddings for a batch of documents
// and updates them in the store. Vectors are normalized after embedding so
// cosine similarity stays well-conditioned.
func (bp *BatchProcessor) Process(ctx context.Context, docs []*core.Document) error {
	if len(docs) == 0 {
		return nil
	}

	summaries := make([]string, len(docs))
	bodies := make([]string, len(docs))
	for i, doc := range docs {
		summaries[i] = summaryText(doc)
		bodies[i] = doc.Contents
	}

	summaryVecs, err := bp.embedBatch(ctx, summaries)
	if err != nil {
		return fmt.Errorf("summary embedding failed after %d attempts: %w", bp.maxRetries, err)
	}
	if len(summaryVecs) != len(docs) {
		return fmt.Errorf("summary embedding count mismatch: expected %d, got %d", len(docs), len(summaryVecs))
	}

	contentVecs, err := bp.embedBatch(ctx, bodies)
	if err != nil {
		return fmt.Errorf("content embedding failed after %d attempts: %w", bp.maxRetries, err)
	}
	if len(contentVecs) != len(docs) {
		return fmt.Errorf("content embedding count mismatch: expected %d, got %d", len(docs), len(contentVecs))
	}

	for i := range docs {
		docs[i].SummaryVector = NormalizeVector(summaryVecs[i])
		docs[i].ContentVector = NormalizeVector(contentVecs[i])
	}

	if _, err := bp.repo.UpdateDocuments(ctx, docs...); err != nil {
		return fmt.Errorf("failed to update documents: %w", err)
	}

	return nil
}

func (bp *BatchProcessor) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return nil, err
	}
	return embeddings, nil
}

// summaryText is the text the summary aspect embeds: the title plus the
// human-written summary when one exists.
func summaryText(doc *core.Document) string {
	if doc.Summary == "" {
		return doc.Title
	}
	return doc.Title + "\n" + doc.Summary
}
