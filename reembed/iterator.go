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

	"github.com/poiesic/juris/core"
	"github.com/poiesic/juris/storage"
)

const (
	// DefaultBatchSize is the default number of documents to accumulate
	// before invoking the batch callback
	DefaultBatchSize = 100
)

// DocumentIterator streams all stored documents in batches. It never holds
// more than one batch in memory, so corpora larger than RAM re-embed fine.
type DocumentIterator struct {
	repo      storage.DocumentRepository
	batchSize int
}

// NewDocumentIterator creates a new document iterator.
// batchSize: number of documents to accumulate per callback (must be > 0)
func NewDocumentIterator(repo storage.DocumentRepository, batchSize int) *DocumentIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &DocumentIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// Count returns the total number of stored documents. It walks the document
// keyspace once without decoding vectors into longer-lived state.
func (it *DocumentIterator) Count(ctx context.Context) (int, error) {
	total := 0
	err := it.repo.ForEachDocument(ctx, func(*core.Document) error {
		total++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// ForEach iterates over all documents, calling fn once per full batch and
// once more for any remainder. Iteration stops on the first error from fn.
// Context cancellation is checked between documents by the repository.
func (it *DocumentIterator) ForEach(ctx context.Context, fn func([]*core.Document) error) error {
	batch := make([]*core.Document, 0, it.batchSize)

	err := it.repo.ForEachDocument(ctx, func(doc *core.Document) error {
		batch = append(batch, doc)
		if len(batch) < it.batchSize {
			return nil
		}

		if err := fn(batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	})
	if err != nil {
		return err
	}

	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}
