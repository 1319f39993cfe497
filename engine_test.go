package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxentia/ingest/ai/mock"
	"github.com/taxentia/ingest/chunk"
	"github.com/taxentia/ingest/config"
	"github.com/taxentia/ingest/core"
	"github.com/taxentia/ingest/ingestion"
	"github.com/taxentia/ingest/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		EmbeddingHost:      "http://localhost:11434/v1",
		EmbeddingModel:     "embeddinggemma",
		Dimension:          8,
		MaxChunkSize:       120,
		ChunkOverlap:       20,
		BatchSize:          4,
		MaxTokensPerBatch:  3500,
		MaxTokensPerChunk:  3000,
		CheckpointDir:      filepath.Join(t.TempDir(), "checkpoints"),
		CheckpointInterval: 5,
	}
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := New(testConfig(t), WithProvider(mock.NewMockProvider(8)), WithInMemoryStorage())
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })
	return engine
}

func TestNew(t *testing.T) {
	t.Run("create new engine", func(t *testing.T) {
		engine, err := New(testConfig(t))
		require.NoError(t, err)
		require.NotNil(t, engine)
		defer engine.Close()

		// Verify components are initialized
		assert.NotNil(t, engine.Checkpoints())
		assert.NotNil(t, engine.backend)
		assert.NotNil(t, engine.provider)
		assert.NotNil(t, engine.counter)
		assert.NotNil(t, engine.logger)
	})

	t.Run("nil config", func(t *testing.T) {
		engine, err := New(nil)
		assert.ErrorIs(t, err, ErrConfigRequired)
		assert.Nil(t, engine)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to open checkpoint storage at a file path instead of a directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0644))

		cfg := testConfig(t)
		cfg.CheckpointDir = tmpFile

		engine, err := New(cfg)
		assert.Error(t, err)
		assert.Nil(t, engine)
	})

	t.Run("error with invalid provider config", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.EmbeddingModel = ""

		engine, err := New(cfg)
		assert.Error(t, err)
		assert.Nil(t, engine)
	})
}

func TestEngine_Close(t *testing.T) {
	engine, err := New(testConfig(t), WithProvider(mock.NewMockProvider(8)))
	require.NoError(t, err)
	require.NotNil(t, engine)

	assert.NoError(t, engine.Close())
}

func TestEngine_Checkpoint(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	_, err := engine.Checkpoint(ctx, "usc:26 U.S.C. § 61")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	saved := &core.Checkpoint{
		DocumentKey: "usc:26 U.S.C. § 61",
		Fingerprint: "abc123",
		TotalChunks: 12,
		NextBatch:   2,
		TokensUsed:  96,
	}
	require.NoError(t, engine.Checkpoints().SaveCheckpoint(ctx, saved))

	cp, err := engine.Checkpoint(ctx, "usc:26 U.S.C. § 61")
	require.NoError(t, err)
	assert.Equal(t, 2, cp.NextBatch)
	assert.WithinDuration(t, time.Now(), cp.UpdatedAt, 5*time.Second)
}

func TestEngine_NewPipeline(t *testing.T) {
	engine := testEngine(t)

	pipeline, err := engine.NewPipeline()
	require.NoError(t, err)
	require.NotNil(t, pipeline)
	defer pipeline.Release()

	docs := []chunk.Document{{
		Text: "Gross income means all income from whatever source derived. " +
			"Compensation for services is included. Gains derived from dealings " +
			"in property are included. Interest and rents are included.",
		Metadata: core.ChunkMetadata{
			SourceType: core.SourceTypeStatute,
			Citation:   "26 U.S.C. § 61",
		},
	}}

	result, err := pipeline.Run(context.Background(), docs)
	require.NoError(t, err)
	require.NotEmpty(t, result.Embedded)

	for _, record := range result.Embedded {
		assert.Len(t, record.Embedding, 8)
		assert.Equal(t, "usc:26 U.S.C. § 61", record.Chunk.Metadata.DocumentKey())
	}
	assert.Equal(t, len(result.Embedded), result.Totals.Chunks)

	// Completed documents leave no checkpoint behind
	_, err = engine.Checkpoint(context.Background(), "usc:26 U.S.C. § 61")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestEngine_NewPipeline_OptionOverride(t *testing.T) {
	engine := testEngine(t)

	pipeline, err := engine.NewPipeline(
		ingestion.WithCheckpointInterval(1),
		ingestion.WithPoolSize(2),
	)
	require.NoError(t, err)
	require.NotNil(t, pipeline)
	pipeline.Release()

	_, err = engine.NewPipeline(ingestion.WithCheckpointInterval(0))
	assert.ErrorIs(t, err, ingestion.ErrInvalidInterval, "invalid overrides should surface the option error")
}
