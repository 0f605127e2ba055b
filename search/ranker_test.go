package search

import (
	"testing"

	"github.com/poiesic/juris/backend"
	"github.com/poiesic/juris/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stageHit(id uint64, score float64, jurisdiction, practice string, stage int) StageHit {
	hit := backend.Hit{
		DocumentId: core.ID(id),
		Score:      score,
	}
	if jurisdiction != "" {
		hit.Jurisdiction = core.MustParsePath(jurisdiction)
	}
	if practice != "" {
		hit.PracticeArea = core.MustParsePath(practice)
	}
	return StageHit{Hit: hit, Stage: stage}
}

func TestRankerRelationOrdering(t *testing.T) {
	ranker := NewRanker(DefaultRankerConfig())
	target := core.MustParsePath("united_states/texas")

	hits := []StageHit{
		stageHit(1, 0.5, "united_states/ohio", "", 0),          // sibling
		stageHit(2, 0.5, "united_states/texas", "", 0),         // exact
		stageHit(3, 0.5, "united_states/texas/austin", "", 0),  // child
		stageHit(4, 0.5, "united_states", "", 0),               // parent
		stageHit(5, 0.5, "canada/ontario", "", 0),              // unrelated
	}

	results := ranker.Rank(hits, target, core.HierarchyPath{})
	require.Len(t, results, 5)

	order := make([]core.ID, 0, len(results))
	for _, r := range results {
		order = append(order, r.DocumentId)
	}
	assert.Equal(t, []core.ID{2, 3, 4, 1, 5}, order,
		"exact > child > parent > sibling > unrelated at equal semantic score")
}

func TestRankerExactOutranksSibling(t *testing.T) {
	ranker := NewRanker(DefaultRankerConfig())
	target := core.MustParsePath("united_states/texas")

	hits := []StageHit{
		stageHit(1, 0.80, "united_states/ohio", "", 0),
		stageHit(2, 0.78, "united_states/texas", "", 0),
	}

	results := ranker.Rank(hits, target, core.HierarchyPath{})
	assert.Equal(t, core.ID(2), results[0].DocumentId,
		"exact-path match outranks a slightly more semantically similar sibling")
	assert.Greater(t, results[0].DistanceScore, results[1].DistanceScore)
}

func TestRankerCousinRelation(t *testing.T) {
	ranker := NewRanker(DefaultRankerConfig())
	target := core.MustParsePath("united_states/texas/austin")

	hits := []StageHit{
		stageHit(1, 0.5, "united_states/ohio/columbus", "", 0), // cousin
		stageHit(2, 0.5, "united_states/texas/houston", "", 0), // sibling
	}

	results := ranker.Rank(hits, target, core.HierarchyPath{})
	assert.Equal(t, core.ID(2), results[0].DocumentId)
	assert.InDelta(t, 0.6*0.2, results[1].DistanceScore, 1e-9)
}

func TestRankerBothTaxonomies(t *testing.T) {
	ranker := NewRanker(DefaultRankerConfig())
	jurisdiction := core.MustParsePath("united_states/texas")
	practice := core.MustParsePath("litigation/commercial")

	hits := []StageHit{
		stageHit(1, 0.5, "united_states/texas", "litigation/commercial", 0),
		stageHit(2, 0.5, "united_states/texas", "litigation/employment", 0),
	}

	results := ranker.Rank(hits, jurisdiction, practice)
	require.Len(t, results, 2)

	assert.Equal(t, core.ID(1), results[0].DocumentId)
	// 0.6*exact + 0.4*exact vs 0.6*exact + 0.4*sibling.
	assert.InDelta(t, 1.0, results[0].DistanceScore, 1e-9)
	assert.InDelta(t, 0.6+0.4*0.4, results[1].DistanceScore, 1e-9)
}

func TestRankerMissingPathScoresZero(t *testing.T) {
	ranker := NewRanker(DefaultRankerConfig())
	target := core.MustParsePath("united_states/texas")

	results := ranker.Rank([]StageHit{stageHit(1, 0.9, "", "", 0)}, target, core.HierarchyPath{})
	require.Len(t, results, 1)
	assert.Zero(t, results[0].DistanceScore)
	assert.InDelta(t, 0.9, results[0].CombinedScore, 1e-9)
}

func TestRankerDeterministicTieBreaks(t *testing.T) {
	ranker := NewRanker(DefaultRankerConfig())
	target := core.MustParsePath("united_states/texas")

	hits := []StageHit{
		stageHit(30, 0.5, "united_states/texas", "", 1),
		stageHit(20, 0.5, "united_states/texas", "", 0),
		stageHit(10, 0.5, "united_states/texas", "", 1),
	}

	results := ranker.Rank(hits, target, core.HierarchyPath{})
	order := []core.ID{results[0].DocumentId, results[1].DocumentId, results[2].DocumentId}
	assert.Equal(t, []core.ID{20, 10, 30}, order,
		"equal scores break by earlier stage, then ascending document ID")
}

func TestRankerEmptyInput(t *testing.T) {
	ranker := NewRanker(DefaultRankerConfig())
	results := ranker.Rank(nil, core.MustParsePath("united_states"), core.HierarchyPath{})
	assert.Empty(t, results)
}
