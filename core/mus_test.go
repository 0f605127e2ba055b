package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentMUSRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	doc := Document{
		Id:            IDFromContent("round trip doc"),
		Title:         "Statute of limitations for breach of contract",
		Summary:       "Four-year limitations period.",
		Contents:      "The limitations period for a breach of contract claim...",
		Jurisdiction:  MustParsePath("united_states/texas/austin"),
		PracticeArea:  MustParsePath("litigation/commercial"),
		DecidedAt:     now.Add(-48 * time.Hour),
		InsertedAt:    now,
		UpdatedAt:     now,
		SummaryVector: []float32{0.1, -0.5, 0.25},
		ContentVector: []float32{0.9, 0.0, -0.125, 1.5},
		Metadata:      map[string]string{"court": "5th circuit", "reporter": "f.4th"},
	}

	bs := make([]byte, DocumentMUS.Size(doc))
	n := DocumentMUS.Marshal(doc, bs)
	assert.Equal(t, len(bs), n, "Size must match Marshal")

	got, n, err := DocumentMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, len(bs), n)

	assert.Equal(t, doc.Id, got.Id)
	assert.Equal(t, doc.Title, got.Title)
	assert.True(t, doc.Jurisdiction.Equal(got.Jurisdiction))
	assert.True(t, doc.PracticeArea.Equal(got.PracticeArea))
	assert.True(t, doc.DecidedAt.Equal(got.DecidedAt))
	assert.Equal(t, doc.SummaryVector, got.SummaryVector)
	assert.Equal(t, doc.ContentVector, got.ContentVector)
	assert.Equal(t, doc.Metadata, got.Metadata)
}

func TestDocumentMUSZeroValues(t *testing.T) {
	doc := Document{Title: "bare"}

	bs := make([]byte, DocumentMUS.Size(doc))
	DocumentMUS.Marshal(doc, bs)

	got, _, err := DocumentMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, "bare", got.Title)
	assert.True(t, got.Jurisdiction.IsZero())
	assert.True(t, got.DecidedAt.IsZero())
	assert.Nil(t, got.SummaryVector)
	assert.Nil(t, got.Metadata)
}
