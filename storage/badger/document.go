package badger

import (
	"bytes"
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/juris/core"
	"github.com/poiesic/juris/storage"
)

// DocumentRepository implements storage.DocumentRepository for BadgerDB.
type DocumentRepository struct {
	backend *Backend
}

var _ storage.DocumentRepository = (*DocumentRepository)(nil)

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(backend *Backend) *DocumentRepository {
	return &DocumentRepository{backend: backend}
}

// Close is a no-op; the repository owns no resources beyond the backend.
func (r *DocumentRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *DocumentRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddDocuments adds one or more documents to storage.
func (r *DocumentRepository) AddDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	for _, doc := range docs {
		if err := core.ValidateDocument(doc); err != nil {
			return nil, err
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			if doc.Id == 0 {
				doc.Id = core.IDFromContent(doc.Title + "\n" + doc.Contents)
			}

			doc.InsertedAt = time.Now().UTC()
			doc.UpdatedAt = doc.InsertedAt

			key := makeDocumentKey(doc.Id)

			// Content-based IDs make re-ingestion an upsert: clean up the
			// previous version's index entries before overwriting.
			old, err := r.readDocument(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				doc.InsertedAt = old.InsertedAt
				if err := r.deleteIndexes(tx, old); err != nil {
					return err
				}
			}

			if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
				return err
			}
			if err := r.writeIndexes(tx, doc); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return docs, err
}

// UpdateDocuments updates existing documents.
func (r *DocumentRepository) UpdateDocuments(ctx context.Context, docs ...*core.Document) ([]*core.Document, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, doc := range docs {
			key := makeDocumentKey(doc.Id)

			// Read old document to detect index changes
			old, err := r.readDocument(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			doc.InsertedAt = old.InsertedAt
			doc.UpdatedAt = time.Now().UTC()

			if err := tx.Set(key, storage.MarshalDocument(doc)); err != nil {
				return err
			}

			if !old.Jurisdiction.Equal(doc.Jurisdiction) ||
				!old.PracticeArea.Equal(doc.PracticeArea) ||
				!old.DecidedAt.Equal(doc.DecidedAt) {
				if err := r.deleteIndexes(tx, old); err != nil {
					return err
				}
				if err := r.writeIndexes(tx, doc); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return docs, err
}

// DeleteDocuments removes documents by their IDs.
func (r *DocumentRepository) DeleteDocuments(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeDocumentKey(id)

			// Read document to get paths for index cleanup
			doc, err := r.readDocument(tx, key)
			if err != nil {
				return err
			}
			if doc == nil {
				return storage.ErrNotFound
			}

			if err := r.deleteIndexes(tx, doc); err != nil {
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a single document by ID.
func (r *DocumentRepository) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var result *core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readDocument(tx, makeDocumentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetDocuments retrieves multiple documents by their IDs.
func (r *DocumentRepository) GetDocuments(ctx context.Context, ids ...core.ID) ([]*core.Document, error) {
	var result []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			doc, err := r.readDocument(tx, makeDocumentKey(id))
			if err != nil {
				return err
			}
			if doc != nil {
				result = append(result, doc)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetDocumentsByDateRange retrieves documents decided within a time range.
func (r *DocumentRepository) GetDocumentsByDateRange(ctx context.Context, start, end time.Time) ([]*core.Document, error) {
	if start.Equal(end) {
		end = start.Add(1 * time.Microsecond)
	}

	var results []*core.Document
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialDateIndexKey(start.UnixMicro())
		endKey := makePartialDateIndexKey(end.UnixMicro())

		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(dateIndexPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if bytes.Compare(key, endKey) > 0 {
				break
			}

			var docID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				docID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			doc, err := r.readDocument(tx, makeDocumentKey(docID))
			if err != nil {
				return err
			}
			if doc != nil {
				results = append(results, doc)
			}
		}
		return nil
	}, false)

	return results, err
}

// ForEachDocument streams every stored document to fn in key order.
func (r *DocumentRepository) ForEachDocument(ctx context.Context, fn func(doc *core.Document) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var doc *core.Document
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			}); err != nil {
				return err
			}
			if doc == nil {
				continue
			}
			if err := fn(doc); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// Helper methods

// readDocument reads a document from the transaction.
// Returns (nil, nil) when the key does not exist.
func (r *DocumentRepository) readDocument(tx *badger.Txn, key []byte) (*core.Document, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.Document
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		doc, unmarshalErr = storage.UnmarshalDocument(val)
		return unmarshalErr
	})
	return doc, err
}

// writeIndexes adds taxonomy path and decision-date index entries for a
// document. Each taxonomy path is indexed at every ancestor depth so that
// "at or under path" lookups are prefix scans.
func (r *DocumentRepository) writeIndexes(tx *badger.Txn, doc *core.Document) error {
	for taxonomy, path := range documentPaths(doc) {
		fullPath := []byte(path.String())
		for depth := 1; depth <= path.Depth(); depth++ {
			key := makePathIndexKey(taxonomy, path.Truncate(depth), doc.Id)
			if err := tx.Set(key, fullPath); err != nil {
				return err
			}
		}
	}

	if !doc.DecidedAt.IsZero() {
		key := makeDateIndexKey(doc.DecidedAt.UnixMicro(), doc.Id)
		if err := tx.Set(key, storage.MarshalID(doc.Id)); err != nil {
			return err
		}
	}
	return nil
}

// deleteIndexes removes taxonomy path and decision-date index entries.
func (r *DocumentRepository) deleteIndexes(tx *badger.Txn, doc *core.Document) error {
	for taxonomy, path := range documentPaths(doc) {
		for depth := 1; depth <= path.Depth(); depth++ {
			key := makePathIndexKey(taxonomy, path.Truncate(depth), doc.Id)
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
	}

	if !doc.DecidedAt.IsZero() {
		if err := tx.Delete(makeDateIndexKey(doc.DecidedAt.UnixMicro(), doc.Id)); err != nil {
			return err
		}
	}
	return nil
}

// documentPaths returns the non-zero taxonomy paths of a document keyed by
// taxonomy name.
func documentPaths(doc *core.Document) map[string]core.HierarchyPath {
	paths := make(map[string]core.HierarchyPath, 2)
	if !doc.Jurisdiction.IsZero() {
		paths[core.TaxonomyJurisdiction] = doc.Jurisdiction
	}
	if !doc.PracticeArea.IsZero() {
		paths[core.TaxonomyPracticeArea] = doc.PracticeArea
	}
	return paths
}
