package search

import (
	"sort"

	"github.com/poiesic/juris/core"
)

// DistanceWeights maps each hierarchical relation between a result path and
// the target path to a score. Relations are checked in priority order:
// exact, child (result more specific than target), parent (result broader),
// sibling, cousin; anything else scores 0.
type DistanceWeights struct {
	Exact   float64
	Parent  float64
	Child   float64
	Sibling float64
	Cousin  float64
}

// RankerConfig tunes how semantic and hierarchical-distance scores blend.
type RankerConfig struct {
	// SemanticWeight and DistanceWeight blend the backend score with the
	// hierarchical distance score.
	SemanticWeight float64
	DistanceWeight float64

	// JurisdictionMix and PracticeMix split the distance score between the
	// two taxonomies. They should sum to 1.
	JurisdictionMix float64
	PracticeMix     float64

	Distance DistanceWeights
}

// DefaultRankerConfig returns the standard blend: jurisdiction dominates the
// distance axis at 0.6/0.4.
func DefaultRankerConfig() RankerConfig {
	return RankerConfig{
		SemanticWeight:  1.0,
		DistanceWeight:  1.0,
		JurisdictionMix: 0.6,
		PracticeMix:     0.4,
		Distance: DistanceWeights{
			Exact:   1.0,
			Child:   0.8,
			Parent:  0.6,
			Sibling: 0.4,
			Cousin:  0.2,
		},
	}
}

// Ranker re-scores merged stage hits by hierarchical distance from the
// requested paths and blends the result with the backend's semantic score.
// It holds only configuration and is safe for concurrent use.
type Ranker struct {
	cfg RankerConfig
}

// NewRanker creates a hierarchical ranker.
func NewRanker(cfg RankerConfig) *Ranker {
	return &Ranker{cfg: cfg}
}

// Rank converts stage hits into ranked results ordered by descending
// combined score. Ties break by earlier stage, then ascending document ID,
// so the ordering is total and deterministic.
func (r *Ranker) Rank(hits []StageHit, targetJurisdiction, targetPractice core.HierarchyPath) []core.RankedResult {
	results := make([]core.RankedResult, 0, len(hits))

	for _, hit := range hits {
		distance := r.cfg.JurisdictionMix*r.relationScore(targetJurisdiction, hit.Jurisdiction) +
			r.cfg.PracticeMix*r.relationScore(targetPractice, hit.PracticeArea)

		results = append(results, core.RankedResult{
			DocumentId:    hit.DocumentId,
			SemanticScore: hit.Score,
			DistanceScore: distance,
			CombinedScore: hit.Score*r.cfg.SemanticWeight + distance*r.cfg.DistanceWeight,
			Jurisdiction:  hit.Jurisdiction,
			PracticeArea:  hit.PracticeArea,
			Stage:         hit.Stage,
			Metadata:      hit.Metadata,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].CombinedScore != results[j].CombinedScore {
			return results[i].CombinedScore > results[j].CombinedScore
		}
		if results[i].Stage != results[j].Stage {
			return results[i].Stage < results[j].Stage
		}
		return results[i].DocumentId < results[j].DocumentId
	})

	return results
}

// relationScore classifies the relation between the target path and a result
// path. A document missing its path for this axis, or a request with no
// target on this axis, scores 0 — that is an expected state, not an error.
func (r *Ranker) relationScore(target, result core.HierarchyPath) float64 {
	if target.IsZero() || result.IsZero() {
		return 0
	}
	switch {
	case target.Equal(result):
		return r.cfg.Distance.Exact
	case target.IsAncestorOf(result):
		// Result is more specific than the target.
		return r.cfg.Distance.Child
	case target.IsDescendantOf(result):
		// Result is broader than the target.
		return r.cfg.Distance.Parent
	case target.IsSiblingOf(result):
		return r.cfg.Distance.Sibling
	case target.IsCousinOf(result):
		return r.cfg.Distance.Cousin
	default:
		return 0
	}
}
