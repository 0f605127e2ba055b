package badger

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/juris/backend"
	"github.com/poiesic/juris/core"
	"github.com/poiesic/juris/storage"
)

const (
	// levelBoostScale converts summed level weights of matched boost-path
	// segments into a score increment small enough that semantic similarity
	// stays the dominant signal.
	levelBoostScale = 0.05

	// recencyScale bounds the contribution of the recency aspect. The aspect
	// weight can be negative, which pushes recent documents down.
	recencyScale = 0.1
)

// Search executes one weighted similarity search over stored documents.
// Implements backend.SimilaritySearcher.
//
// Candidates are restricted by req.PathFilters via the taxonomy path index,
// then scored: a weighted cosine mix of the summary and body aspects, plus a
// boost for matching levels of the req.Boosts paths, plus a signed recency
// term. Results are ordered by descending score; ties break by ascending
// document ID.
func (r *DocumentRepository) Search(ctx context.Context, req backend.SearchRequest) ([]backend.Hit, error) {
	var hits []backend.Hit
	now := time.Now().UTC()

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		return r.forEachCandidate(ctx, tx, req.PathFilters, func(doc *core.Document) error {
			hits = append(hits, backend.Hit{
				DocumentId:   doc.Id,
				Score:        scoreDocument(doc, req, now),
				Jurisdiction: doc.Jurisdiction,
				PracticeArea: doc.PracticeArea,
				Metadata:     doc.Metadata,
			})
			return nil
		})
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(hits, func(a, b backend.Hit) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		if a.DocumentId < b.DocumentId {
			return -1
		}
		if a.DocumentId > b.DocumentId {
			return 1
		}
		return 0
	})

	if req.Limit > 0 && len(hits) > req.Limit {
		hits = hits[:req.Limit]
	}
	if hits == nil {
		hits = []backend.Hit{}
	}
	return hits, nil
}

// AggregatePath computes count statistics for one taxonomy path.
// Implements backend.StatsAggregator. A zero-depth path aggregates over
// every document classified under the taxonomy.
func (r *DocumentRepository) AggregatePath(ctx context.Context, taxonomy string, path core.HierarchyPath) (backend.Aggregate, error) {
	agg := backend.Aggregate{ChildDistribution: make(map[string]int)}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if path.IsZero() {
			return r.aggregateRoot(ctx, tx, taxonomy, &agg)
		}

		prefix := makePartialPathIndexKey(taxonomy, path)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			agg.Count++

			// The value is the document's full path; anything deeper than
			// the aggregated path contributes to the child distribution.
			if err := iter.Item().Value(func(val []byte) error {
				full, err := core.ParsePath(string(val))
				if err != nil {
					return err
				}
				if full.Depth() > path.Depth() {
					agg.ChildDistribution[full.Segment(path.Depth())]++
				}
				return nil
			}); err != nil {
				return err
			}
		}
		return nil
	}, false)

	return agg, err
}

// aggregateRoot counts depth-1 index entries, one per classified document.
func (r *DocumentRepository) aggregateRoot(ctx context.Context, tx *badger.Txn, taxonomy string, agg *backend.Aggregate) error {
	prefix := []byte(pathIndexPrefix + ":" + taxonomy + ":")
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := iter.Item().Key()
		ancestor := key[len(prefix):]
		if end := bytes.IndexByte(ancestor, 0x00); end >= 0 {
			ancestor = ancestor[:end]
		}
		// Depth-1 entries have no path separator in the ancestor.
		if bytes.IndexByte(ancestor, '/') >= 0 {
			continue
		}
		agg.Count++
		agg.ChildDistribution[string(ancestor)]++
	}
	return nil
}

// forEachCandidate streams every document matching the path filters. With a
// filter present, candidates come from a single prefix scan on the most
// specific filter's index; remaining filters are checked per document.
// Without filters it falls back to a full document scan.
func (r *DocumentRepository) forEachCandidate(ctx context.Context, tx *badger.Txn, filters map[string]core.HierarchyPath, fn func(doc *core.Document) error) error {
	scanTaxonomy, scanPath := deepestFilter(filters)

	matches := func(doc *core.Document) bool {
		for taxonomy, filter := range filters {
			if filter.IsZero() {
				continue
			}
			path := pathForTaxonomy(doc, taxonomy)
			if !filter.Equal(path) && !filter.IsAncestorOf(path) {
				return false
			}
		}
		return true
	}

	if scanPath.IsZero() {
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
			if doc == nil || !matches(doc) {
				continue
			}
			if err := fn(doc); err != nil {
				return err
			}
		}
		return nil
	}

	prefix := makePartialPathIndexKey(scanTaxonomy, scanPath)
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := iter.Item().Key()
		if len(key) < 8 {
			continue
		}
		docID := core.ID(binary.BigEndian.Uint64(key[len(key)-8:]))

		doc, err := r.readDocument(tx, makeDocumentKey(docID))
		if err != nil {
			return err
		}
		if doc == nil || !matches(doc) {
			continue
		}
		if err := fn(doc); err != nil {
			return err
		}
	}
	return nil
}

// deepestFilter picks the most selective filter for the index scan.
func deepestFilter(filters map[string]core.HierarchyPath) (string, core.HierarchyPath) {
	var taxonomy string
	var deepest core.HierarchyPath
	for tax, path := range filters {
		if path.Depth() > deepest.Depth() ||
			(path.Depth() == deepest.Depth() && tax < taxonomy) {
			taxonomy, deepest = tax, path
		}
	}
	return taxonomy, deepest
}

// scoreDocument blends semantic similarity with level boosts and recency.
func scoreDocument(doc *core.Document, req backend.SearchRequest, now time.Time) float64 {
	score := semanticScore(doc, req)

	for taxonomy, boost := range req.Boosts {
		if boost.IsZero() {
			continue
		}
		tax, ok := core.TaxonomyByName(taxonomy)
		if !ok {
			continue
		}
		path := pathForTaxonomy(doc, taxonomy)
		matched := commonPrefixDepth(boost, path)
		for level := 0; level < matched; level++ {
			score += levelBoostScale * req.Weights.Levels[tax.LevelName(level)]
		}
	}

	if weight, ok := req.Weights.Aspects[core.AspectRecency]; ok && !doc.DecidedAt.IsZero() {
		ageYears := now.Sub(doc.DecidedAt).Hours() / (24 * 365)
		if ageYears < 0 {
			ageYears = 0
		}
		// Recency decays toward 0 with age; a negative aspect weight
		// therefore favors older documents.
		score += recencyScale * weight / (1 + ageYears)
	}

	return score
}

// semanticScore mixes the summary and body cosine similarities by the
// request's aspect weights. Documents without the relevant vectors, or
// requests without a query vector, contribute nothing.
func semanticScore(doc *core.Document, req backend.SearchRequest) float64 {
	if len(req.Vector) == 0 {
		return 0
	}

	var weighted, total float64
	if w := req.Weights.Aspects[core.AspectSummary]; w > 0 && len(doc.SummaryVector) > 0 {
		weighted += w * cosineSimilarity(req.Vector, doc.SummaryVector)
		total += w
	}
	if w := req.Weights.Aspects[core.AspectBody]; w > 0 && len(doc.ContentVector) > 0 {
		weighted += w * cosineSimilarity(req.Vector, doc.ContentVector)
		total += w
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Mismatched lengths compare over the shorter prefix; zero vectors score 0.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// commonPrefixDepth counts leading segments shared by two paths.
func commonPrefixDepth(a, b core.HierarchyPath) int {
	depth := 0
	for depth < a.Depth() && depth < b.Depth() && a.Segment(depth) == b.Segment(depth) {
		depth++
	}
	return depth
}

func pathForTaxonomy(doc *core.Document, taxonomy string) core.HierarchyPath {
	if taxonomy == core.TaxonomyPracticeArea {
		return doc.PracticeArea
	}
	return doc.Jurisdiction
}
