package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/poiesic/juris/ai"
	"github.com/poiesic/juris/core"
	"github.com/poiesic/juris/storage"
)

// embeddingProcessor generates summary and content embeddings for stored
// documents.
type embeddingProcessor struct {
	repository storage.DocumentRepository
	embedder   ai.Embedder
	logger     *slog.Logger
}

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(repository storage.DocumentRepository, embedder ai.Embedder, logger *slog.Logger) (*embeddingProcessor, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		repository: repository,
		embedder:   embedder,
		logger:     logger.With("processor", "embeddings"),
	}, nil
}

// process generates both embedding aspects for the specified documents:
// the summary vector from title plus summary, the content vector from the
// full body.
func (ep *embeddingProcessor) process(ctx context.Context, ids ...core.ID) error {
	ep.logger.Info("processing documents for embeddings", "documents", len(ids))

	slices.Sort(ids)

	docs, err := ep.repository.GetDocuments(ctx, ids...)
	if err != nil {
		ep.logger.Error("error retrieving documents", "err", err)
		return err
	}
	if len(docs) == 0 {
		return nil
	}

	summaries := make([]string, len(docs))
	bodies := make([]string, len(docs))
	for i, doc := range docs {
		summaries[i] = summaryText(doc)
		bodies[i] = doc.Contents
	}

	ep.logger.Debug("generating embeddings for documents", "documents", len(docs))
	summaryVectors, err := ep.embedder.EmbedTexts(ctx, summaries)
	if err != nil {
		ep.logger.Error("error generating summary embeddings", "err", err)
		return err
	}
	contentVectors, err := ep.embedder.EmbedTexts(ctx, bodies)
	if err != nil {
		ep.logger.Error("error generating content embeddings", "err", err)
		return err
	}

	if len(summaryVectors) != len(docs) || len(contentVectors) != len(docs) {
		return fmt.Errorf("%w: expected %d, received %d and %d",
			ErrEmbeddingMismatch, len(docs), len(summaryVectors), len(contentVectors))
	}

	for i := range docs {
		docs[i].SummaryVector = summaryVectors[i]
		docs[i].ContentVector = contentVectors[i]
	}

	_, err = ep.repository.UpdateDocuments(ctx, docs...)
	return err
}

// summaryText is the text the summary aspect embeds: the title plus the
// summary when present, otherwise the title alone.
func summaryText(doc *core.Document) string {
	if doc.Summary == "" {
		return doc.Title
	}
	return doc.Title + "\n" + doc.Summary
}
