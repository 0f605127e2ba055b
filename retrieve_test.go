package juris

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/juris/ai"
	"github.com/poiesic/juris/ai/mock"
	"github.com/poiesic/juris/core"
)

// topicVector maps text onto one of three orthogonal axes so semantic
// similarity in these tests is exact: 1.0 for the same topic, 0 otherwise.
func topicVector(text string) []float32 {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "non-compete"):
		return []float32{1, 0, 0}
	case strings.Contains(lower, "zoning"):
		return []float32{0, 1, 0}
	default:
		return []float32{0, 0, 1}
	}
}

func topicEmbedder() *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return topicVector(text), nil
	}
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		vecs := make([][]float32, len(texts))
		for i, text := range texts {
			vecs[i] = topicVector(text)
		}
		return vecs, nil
	}
	return embedder
}

func newTestEngine(t *testing.T, classifier *mock.MockQueryClassifier) *Engine {
	t.Helper()

	if classifier == nil {
		classifier = mock.NewMockQueryClassifier()
	}
	provider := mock.NewMockProviderWithServices(topicEmbedder(), classifier)

	engine, err := New("", WithInMemory(), WithProvider(provider))
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })
	return engine
}

func fixtureDocument(title, jurisdiction, practice string, decidedAt time.Time) *core.Document {
	doc := &core.Document{
		Title:     title,
		Summary:   "summary: " + title,
		Contents:  "full opinion text: " + title,
		DecidedAt: decidedAt,
	}
	if jurisdiction != "" {
		doc.Jurisdiction = core.MustParsePath(jurisdiction)
	}
	if practice != "" {
		doc.PracticeArea = core.MustParsePath(practice)
	}
	return doc
}

func seedCorpus(t *testing.T, engine *Engine, docs ...*core.Document) {
	t.Helper()

	pipeline, err := engine.NewIngestionPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	_, err = pipeline.Ingest(context.Background(), docs...)
	require.NoError(t, err)
	pipeline.Wait()
}

// standardCorpus: three Texas non-compete cases, two national ones on the
// same topic, and two Canadian zoning cases that share no topic with the
// query.
func standardCorpus() []*core.Document {
	return []*core.Document{
		fixtureDocument("Texas non-compete enforcement I", "united_states/texas", "litigation/commercial", time.Time{}),
		fixtureDocument("Texas non-compete enforcement II", "united_states/texas", "litigation/commercial", time.Time{}),
		fixtureDocument("Texas non-compete enforcement III", "united_states/texas/austin", "litigation/commercial", time.Time{}),
		fixtureDocument("Federal non-compete rulemaking", "united_states", "litigation/commercial", time.Time{}),
		fixtureDocument("National non-compete survey", "united_states", "litigation/commercial", time.Time{}),
		fixtureDocument("Toronto zoning variance appeal", "canada/ontario", "real_estate/zoning", time.Time{}),
		fixtureDocument("Vancouver zoning bylaw challenge", "canada/british_columbia", "real_estate/zoning", time.Time{}),
	}
}

func TestRetrieve_TexasAboveNational(t *testing.T) {
	engine := newTestEngine(t, nil)
	seedCorpus(t, engine, standardCorpus()...)

	resp, err := engine.Retrieve(context.Background(), Request{
		Text:         "non-compete enforcement",
		Jurisdiction: "US/TX",
		Limit:        10,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Report)
	assert.False(t, resp.Report.Partial())

	// The cascade widens from texas to united_states to the full corpus.
	require.Len(t, resp.Results, 7)

	texasTarget := core.MustParsePath("united_states/texas")
	for i := 0; i < 3; i++ {
		ok := texasTarget.Equal(resp.Results[i].Jurisdiction) || texasTarget.IsAncestorOf(resp.Results[i].Jurisdiction)
		assert.True(t, ok, "result %d should be a Texas document, got %s", i, resp.Results[i].Jurisdiction)
	}
	for i := 3; i < 5; i++ {
		assert.Equal(t, "united_states", resp.Results[i].Jurisdiction.String(),
			"result %d should be a national document", i)
	}
	for i := 5; i < 7; i++ {
		assert.Equal(t, "canada", resp.Results[i].Jurisdiction.Segment(0),
			"result %d should be an off-topic Canadian document", i)
	}
}

func TestRetrieve_ClassifierFillsPlacement(t *testing.T) {
	classifier := mock.NewMockQueryClassifier()
	classifier.Analysis = ai.QueryAnalysis{
		Jurisdiction: "united_states/texas",
		PracticeArea: "litigation/commercial",
		Intent:       "deep_dive",
		Depth:        "deep",
		Temporal:     "none",
		Confidence:   9,
	}

	engine := newTestEngine(t, classifier)
	seedCorpus(t, engine, standardCorpus()...)

	resp, err := engine.Retrieve(context.Background(), Request{
		Text:  "non-compete enforcement in texas courts",
		Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, classifier.CallCount())

	require.NotNil(t, resp.Analysis)
	assert.Equal(t, "united_states/texas", resp.Analysis.Jurisdiction)

	// Both inferred paths present means a single cross-hierarchy stage
	// restricted to Texas commercial litigation.
	assert.Equal(t, 1, resp.Report.StagesRun)
	require.Len(t, resp.Results, 3)
	texasTarget := core.MustParsePath("united_states/texas")
	for _, result := range resp.Results {
		ok := texasTarget.Equal(result.Jurisdiction) || texasTarget.IsAncestorOf(result.Jurisdiction)
		assert.True(t, ok, "unexpected jurisdiction %s", result.Jurisdiction)
	}
}

func TestRetrieve_ClassifierSkipped(t *testing.T) {
	classifier := mock.NewMockQueryClassifier()
	engine := newTestEngine(t, classifier)
	seedCorpus(t, engine, standardCorpus()...)

	t.Run("explicit path bypasses classifier", func(t *testing.T) {
		_, err := engine.Retrieve(context.Background(), Request{
			Text:         "non-compete enforcement",
			Jurisdiction: "united_states",
		})
		require.NoError(t, err)
		assert.Equal(t, 0, classifier.CallCount())
	})

	t.Run("SkipClassifier bypasses classifier", func(t *testing.T) {
		resp, err := engine.Retrieve(context.Background(), Request{
			Text:           "non-compete enforcement",
			SkipClassifier: true,
		})
		require.NoError(t, err)
		assert.Equal(t, 0, classifier.CallCount())
		assert.Nil(t, resp.Analysis)
	})
}

func TestRetrieve_ClassifierFailureFallsBack(t *testing.T) {
	classifier := mock.NewMockQueryClassifier()
	classifier.ClassifyQueryFunc = func(ctx context.Context, query string) (ai.QueryAnalysis, error) {
		return ai.QueryAnalysis{}, errors.New("model unavailable")
	}

	engine := newTestEngine(t, classifier)
	seedCorpus(t, engine, standardCorpus()...)

	resp, err := engine.Retrieve(context.Background(), Request{
		Text: "non-compete enforcement",
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Analysis)
	// Unclassified search covers the whole corpus in one root stage.
	assert.Len(t, resp.Results, 7)
}

func TestRetrieve_EmptyRequest(t *testing.T) {
	engine := newTestEngine(t, nil)

	_, err := engine.Retrieve(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrEmptyRequest)
}

func TestRetrieve_MalformedPath(t *testing.T) {
	engine := newTestEngine(t, nil)

	_, err := engine.Retrieve(context.Background(), Request{
		Text:         "anything",
		Jurisdiction: "united_states//texas",
	})
	assert.ErrorIs(t, err, core.ErrMalformedPath)
}

func TestRetrieve_Facets(t *testing.T) {
	engine := newTestEngine(t, nil)
	seedCorpus(t, engine, standardCorpus()...)

	resp, err := engine.Retrieve(context.Background(), Request{
		Text:           "non-compete enforcement",
		SkipClassifier: true,
		IncludeFacets:  true,
		Limit:          10,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Facets)

	jurTree := resp.Facets[core.TaxonomyJurisdiction]
	require.NotNil(t, jurTree)
	assert.Equal(t, 7, jurTree.Count)

	// Children sum to the total and sort count-descending.
	require.Len(t, jurTree.Children, 2)
	assert.Equal(t, "united_states", jurTree.Children[0].Value)
	assert.Equal(t, 5, jurTree.Children[0].Count)
	assert.Equal(t, "canada", jurTree.Children[1].Value)
	assert.Equal(t, 2, jurTree.Children[1].Count)

	praTree := resp.Facets[core.TaxonomyPracticeArea]
	require.NotNil(t, praTree)
	assert.Equal(t, 7, praTree.Count)
}

func TestRetrieve_TemporalOrdering(t *testing.T) {
	oldCase := fixtureDocument("Historic non-compete doctrine", "united_states/texas", "litigation/commercial",
		time.Date(1990, 3, 1, 0, 0, 0, 0, time.UTC))
	newCase := fixtureDocument("Recent non-compete ruling", "united_states/texas", "litigation/commercial",
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	run := func(t *testing.T, temporal core.TemporalHint) []core.RankedResult {
		engine := newTestEngine(t, nil)
		seedCorpus(t, engine, oldCase, newCase)

		resp, err := engine.Retrieve(context.Background(), Request{
			Text:         "non-compete",
			Jurisdiction: "united_states/texas",
			PracticeArea: "litigation/commercial",
			Temporal:     temporal,
			Limit:        10,
		})
		require.NoError(t, err)
		require.Len(t, resp.Results, 2)
		return resp.Results
	}

	t.Run("recent favors the newer decision", func(t *testing.T) {
		results := run(t, core.TemporalRecent)
		assert.Equal(t, "Recent", titleWord(t, results[0]))
	})

	t.Run("historical inverts recency", func(t *testing.T) {
		results := run(t, core.TemporalHistorical)
		assert.Equal(t, "Historic", titleWord(t, results[0]))
	})
}

// titleWord distinguishes the two temporal fixture documents by ID.
func titleWord(t *testing.T, result core.RankedResult) string {
	t.Helper()

	oldId := core.IDFromContent("Historic non-compete doctrine" + "\n" + "full opinion text: Historic non-compete doctrine")
	newId := core.IDFromContent("Recent non-compete ruling" + "\n" + "full opinion text: Recent non-compete ruling")
	switch result.DocumentId {
	case oldId:
		return "Historic"
	case newId:
		return "Recent"
	default:
		t.Fatalf("unexpected document id %d", result.DocumentId)
		return ""
	}
}
