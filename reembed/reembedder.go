// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/juris/ai"
	"github.com/poiesic/juris/core"
	"github.com/poiesic/juris/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of documents to process in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of documents)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder orchestrates the reembedding of every stored document. Both
// the summary and content aspects are regenerated, so it is the tool to run
// after switching embedding models.
type Reembedder struct {
	repo      storage.DocumentRepository
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *DocumentIterator
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(repo storage.DocumentRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}

	processor := NewBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay)
	iterator := NewDocumentIterator(repo, config.BatchSize)

	return &Reembedder{
		repo:      repo,
		embedder:  embedder,
		config:    config,
		progress:  progress,
		processor: processor,
		iterator:  iterator,
	}
}

// Run executes the reembedding operation.
// Every document in the store is reembedded with the configured embedder.
// Progress is reported to the configured writer.
func (r *Reembedder) Run(ctx context.Context) error {
	totalDocuments, err := r.iterator.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}

	if totalDocuments == 0 {
		fmt.Fprintf(r.progress, "No documents found in store (0 documents)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reembedding of %d documents (batch size: %d)\n",
		totalDocuments, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, totalDocuments, r.config.ReportInterval)
	tracker.Start()

	processed := 0

	err = r.iterator.ForEach(ctx, func(docs []*core.Document) error {
		if err := r.processor.Process(ctx, docs); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		processed += len(docs)
		tracker.Update(processed)

		return nil
	})
	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reembedding complete. Processed %d documents in %v (%.1f documents/sec)\n",
		totalDocuments, elapsed.Round(time.Second), float64(totalDocuments)/elapsed.Seconds())

	return nil
}
