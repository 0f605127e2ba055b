package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities, generated from document
// content via content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b
// hashing. Identical content always produces the same ID.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// DepthHint tells the weight computer how to distribute weight across
// taxonomy levels.
type DepthHint int

const (
	// DepthHintAuto biases weight toward the deepest explicitly specified
	// level, flattening to uniform weight when no path is given.
	DepthHintAuto DepthHint = iota
	// DepthHintShallow favors higher taxonomy levels (country, primary area).
	DepthHintShallow
	// DepthHintDeep favors leaf levels (city, specific area).
	DepthHintDeep
)

// SearchIntent selects a static content-aspect weight table.
type SearchIntent int

const (
	// IntentGeneral weights all content aspects equally.
	IntentGeneral SearchIntent = iota
	// IntentDiscovery weights summaries and topical aspects higher.
	IntentDiscovery
	// IntentDeepDive weights full-body content higher.
	IntentDeepDive
)

// TemporalHint biases the recency aspect of a cross-hierarchy search.
type TemporalHint int

const (
	// TemporalNone applies no recency weighting.
	TemporalNone TemporalHint = iota
	// TemporalRecent applies a positive recency weight.
	TemporalRecent
	// TemporalHistorical applies a negative recency weight. The inversion is
	// deliberate: it pushes recent documents below older ones.
	TemporalHistorical
)

// WeightVector maps taxonomy level names and content-aspect names to
// relative, non-negative weights. Weights are not normalized; a weight of 0
// excludes that level or aspect from the query.
type WeightVector struct {
	Levels  map[string]float64
	Aspects map[string]float64
}

// Clone returns a deep copy, so callers can rebalance per stage without
// mutating the original.
func (w WeightVector) Clone() WeightVector {
	out := WeightVector{
		Levels:  make(map[string]float64, len(w.Levels)),
		Aspects: make(map[string]float64, len(w.Aspects)),
	}
	for k, v := range w.Levels {
		out.Levels[k] = v
	}
	for k, v := range w.Aspects {
		out.Aspects[k] = v
	}
	return out
}

// Merge returns the union of two weight vectors. Keys present in both keep
// the weight from other.
func (w WeightVector) Merge(other WeightVector) WeightVector {
	out := w.Clone()
	for k, v := range other.Levels {
		out.Levels[k] = v
	}
	for k, v := range other.Aspects {
		out.Aspects[k] = v
	}
	return out
}

// Document is a legal document with its taxonomy placement and embeddings.
// Vectors are populated during ingestion; a document without vectors is
// stored but never surfaces in similarity results.
type Document struct {
	Id            ID
	Title         string
	Summary       string
	Contents      string
	Jurisdiction  HierarchyPath
	PracticeArea  HierarchyPath
	DecidedAt     time.Time // When the underlying matter was decided
	InsertedAt    time.Time // When the document entered the store
	UpdatedAt     time.Time // When the document was last updated
	SummaryVector []float32 // Embedding of title + summary
	ContentVector []float32 // Embedding of the full body
	Metadata      map[string]string
}

// RankedResult is a retrieval hit after hierarchical re-ranking.
// CombinedScore = SemanticScore*semanticWeight + DistanceScore*distanceWeight;
// ties in CombinedScore are broken by earlier stage, then by document ID, so
// the final ordering is total and deterministic.
type RankedResult struct {
	DocumentId    ID
	SemanticScore float64
	DistanceScore float64
	CombinedScore float64
	Jurisdiction  HierarchyPath
	PracticeArea  HierarchyPath
	Stage         int // Stage that first produced this hit (0-based)
	Metadata      map[string]string
}

// HierarchyStatsEntry is a cached aggregate for a taxonomy path.
type HierarchyStatsEntry struct {
	Count             int
	ChildDistribution map[string]int
	ComputedAt        time.Time
}

// Stale reports whether the entry is older than the given TTL at the given
// instant.
func (e HierarchyStatsEntry) Stale(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.ComputedAt) >= ttl
}

// FacetNode is a node in a drill-down facet tree. Children are ordered by
// descending count, ties by segment value. Nodes are never mutated after the
// tree is built.
type FacetNode struct {
	Value    string
	Count    int
	Children []*FacetNode
}
