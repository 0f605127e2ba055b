package juris

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/juris/ai/mock"
)

func TestNew(t *testing.T) {
	t.Run("create new engine", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		engine, err := New(tmpDir, WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, engine)
		defer engine.Close()

		assert.NotNil(t, engine.DocumentRepository())
		assert.NotNil(t, engine.StatsCache())
		assert.NotNil(t, engine.coordinator)
		assert.NotNil(t, engine.ranker)
	})

	t.Run("in-memory engine ignores path", func(t *testing.T) {
		engine, err := New("", WithInMemory(), WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, engine)
		assert.NoError(t, engine.Close())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// A file where the store directory should be.
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		engine, err := New(tmpFile, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, engine)
	})
}

func TestEngine_Close(t *testing.T) {
	engine, err := New("", WithInMemory(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)

	err = engine.Close()
	assert.NoError(t, err)
}

func TestEngine_FactoryMethods(t *testing.T) {
	engine, err := New("", WithInMemory(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	defer engine.Close()

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := engine.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create reembedder", func(t *testing.T) {
		reembedder := engine.NewReembedder(nil, io.Discard)
		require.NotNil(t, reembedder)
	})
}
