// Copyright 2025 Taxentia Labs
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


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/taxentia/ingest/ai"
	"github.com/taxentia/ingest/ai/local"
	"github.com/taxentia/ingest/ai/openai"
	"github.com/taxentia/ingest/chunk"
	"github.com/taxentia/ingest/config"
	"github.com/taxentia/ingest/core"
	"github.com/taxentia/ingest/document"
	"github.com/taxentia/ingest/ingestion"
	"github.com/taxentia/ingest/storage/badger"
	"github.com/taxentia/ingest/token"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "taxingest",
		Usage: "Chunk and embed tax authority documents",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "chunk",
				Usage:  "Split documents into chunks and write them as JSONL to stdout",
				Action: chunkCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to documents JSON file",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "max-chunk-size",
						Usage: "Maximum chunk size in characters (overrides MAX_CHUNK_SIZE)",
					},
					&cli.IntFlag{
						Name:  "overlap",
						Usage: "Character overlap between chunks (overrides CHUNK_OVERLAP)",
					},
				},
			},
			{
				Name:   "cost",
				Usage:  "Estimate embedding tokens and cost without calling a provider",
				Action: costCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to documents JSON file",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "max-chunk-size",
						Usage: "Maximum chunk size in characters (overrides MAX_CHUNK_SIZE)",
					},
					&cli.IntFlag{
						Name:  "overlap",
						Usage: "Character overlap between chunks (overrides CHUNK_OVERLAP)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Maximum chunks per batch (overrides BATCH_SIZE_EMBEDDINGS)",
					},
					&cli.IntFlag{
						Name:  "max-batch-tokens",
						Usage: "Token budget per batch (overrides MAX_TOKENS_PER_BATCH)",
					},
					&cli.IntFlag{
						Name:  "max-chunk-tokens",
						Usage: "Token cap per chunk before truncation (overrides MAX_TOKENS_PER_CHUNK)",
					},
					&cli.Float64Flag{
						Name:  "price",
						Usage: "Price per 1M tokens in USD (overrides PRICE_PER_MILLION_TOKENS)",
					},
				},
			},
			{
				Name:   "embed",
				Usage:  "Chunk, batch, and embed documents, writing records as JSONL to stdout",
				Action: embedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to documents JSON file",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "provider",
						Usage: "Embedding provider: openai or local",
						Value: "openai",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL (overrides OPENAI_EMBEDDING_HOST)",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name (overrides OPENAI_EMBEDDING_MODEL)",
					},
					&cli.IntFlag{
						Name:  "dimension",
						Usage: "Embedding vector size (overrides EMBEDDING_DIMENSION)",
					},
					&cli.StringFlag{
						Name:  "checkpoint-dir",
						Usage: "Checkpoint directory (overrides CHECKPOINT_DIR)",
					},
					&cli.IntFlag{
						Name:  "checkpoint-interval",
						Usage: "Save a checkpoint every N batches (overrides CHECKPOINT_INTERVAL)",
					},
					&cli.IntFlag{
						Name:  "max-chunk-size",
						Usage: "Maximum chunk size in characters (overrides MAX_CHUNK_SIZE)",
					},
					&cli.IntFlag{
						Name:  "overlap",
						Usage: "Character overlap between chunks (overrides CHUNK_OVERLAP)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Maximum chunks per batch (overrides BATCH_SIZE_EMBEDDINGS)",
					},
					&cli.IntFlag{
						Name:  "max-batch-tokens",
						Usage: "Token budget per batch (overrides MAX_TOKENS_PER_BATCH)",
					},
					&cli.IntFlag{
						Name:  "max-chunk-tokens",
						Usage: "Token cap per chunk before truncation (overrides MAX_TOKENS_PER_CHUNK)",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
				},
			},
			{
				Name:   "checkpoints",
				Usage:  "List saved ingestion checkpoints",
				Action: checkpointsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "checkpoint-dir",
						Usage: "Checkpoint directory (overrides CHECKPOINT_DIR)",
					},
				},
			},
			{
				Name:   "clear-checkpoints",
				Usage:  "Delete saved ingestion checkpoints",
				Action: clearCheckpointsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "checkpoint-dir",
						Usage: "Checkpoint directory (overrides CHECKPOINT_DIR)",
					},
					&cli.StringFlag{
						Name:  "key",
						Usage: "Document key to clear, e.g. \"usc:26 U.S.C. § 61\"",
					},
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Clear every checkpoint",
					},
				},
			},
		},
	}
}

func chunkCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	docs, err := loadDocuments(c.String("input"))
	if err != nil {
		return err
	}

	chunker, err := chunk.NewChunker(
		chunk.WithMaxChunkSize(cfg.MaxChunkSize),
		chunk.WithOverlapSize(cfg.ChunkOverlap),
	)
	if err != nil {
		return fmt.Errorf("failed to create chunker: %w", err)
	}

	chunks, err := chunker.SplitAll(docs)
	if err != nil {
		return fmt.Errorf("chunking failed: %w", err)
	}

	if err := writeChunks(os.Stdout, chunks); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Documents: %d\n", len(docs))
	fmt.Fprintf(os.Stderr, "Chunks: %d\n", len(chunks))
	return nil
}

func costCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	docs, err := loadDocuments(c.String("input"))
	if err != nil {
		return err
	}

	chunker, err := chunk.NewChunker(
		chunk.WithMaxChunkSize(cfg.MaxChunkSize),
		chunk.WithOverlapSize(cfg.ChunkOverlap),
	)
	if err != nil {
		return fmt.Errorf("failed to create chunker: %w", err)
	}

	chunks, err := chunker.SplitAll(docs)
	if err != nil {
		return fmt.Errorf("chunking failed: %w", err)
	}

	counter := token.NewCounter(slog.Default())
	builder, err := ingestion.NewBatchBuilder(counter,
		ingestion.WithMaxCount(cfg.BatchSize),
		ingestion.WithMaxTokensPerBatch(cfg.MaxTokensPerBatch),
		ingestion.WithMaxTokensPerChunk(cfg.MaxTokensPerChunk),
	)
	if err != nil {
		return fmt.Errorf("failed to create batch builder: %w", err)
	}

	batches := builder.Build(chunks)
	var tokens int
	for i := range batches {
		tokens += batches[i].TokenCount
	}
	cost := ingestion.EstimateCost(tokens, cfg.PricePerMillionTokens)

	fmt.Printf("Documents: %d\n", len(docs))
	fmt.Printf("Chunks: %d\n", len(chunks))
	fmt.Printf("Batches: %d\n", len(batches))
	fmt.Printf("Tokens: %d", tokens)
	if !counter.Precise() {
		fmt.Printf(" (approximate)")
	}
	fmt.Println()
	fmt.Printf("Estimated cost: $%.4f at $%.2f per 1M tokens\n", cost, cfg.PricePerMillionTokens)
	return nil
}

func embedCommand(c *cli.Context) error {
	// Interrupts cancel between batches; the checkpoint allows a later resume
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	docs, err := loadDocuments(c.String("input"))
	if err != nil {
		return err
	}

	backend, err := badger.OpenBackend(cfg.CheckpointDir, false)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint storage: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewCheckpointRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint repository: %w", err)
	}
	defer repo.Close()

	provider, err := buildProvider(c.String("provider"), cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	chunker, err := chunk.NewChunker(
		chunk.WithMaxChunkSize(cfg.MaxChunkSize),
		chunk.WithOverlapSize(cfg.ChunkOverlap),
	)
	if err != nil {
		return fmt.Errorf("failed to create chunker: %w", err)
	}

	counter := token.NewCounter(slog.Default())
	builder, err := ingestion.NewBatchBuilder(counter,
		ingestion.WithMaxCount(cfg.BatchSize),
		ingestion.WithMaxTokensPerBatch(cfg.MaxTokensPerBatch),
		ingestion.WithMaxTokensPerChunk(cfg.MaxTokensPerChunk),
	)
	if err != nil {
		return fmt.Errorf("failed to create batch builder: %w", err)
	}

	progress := ingestion.NewProgressTracker(os.Stderr, c.Int("report-interval"))
	orchestrator, err := ingestion.NewOrchestrator(provider,
		ingestion.WithRetryWait(cfg.RetryWait),
		ingestion.WithInterBatchDelay(cfg.InterBatchDelay),
		ingestion.WithPricePerMillionTokens(cfg.PricePerMillionTokens),
		ingestion.WithProgress(progress),
	)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	pipeline, err := ingestion.NewPipeline(chunker, builder, orchestrator,
		ingestion.WithCheckpoints(repo),
		ingestion.WithCheckpointInterval(cfg.CheckpointInterval),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	fmt.Fprintf(os.Stderr, "Documents: %d\n", len(docs))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", cfg.EmbeddingHost)
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", cfg.EmbeddingModel)
	fmt.Fprintln(os.Stderr)

	result, runErr := pipeline.Run(ctx, docs)
	if result != nil && len(result.Embedded) > 0 {
		if err := writeEmbedded(os.Stdout, result.Embedded); err != nil {
			return err
		}
	}
	if runErr != nil {
		return fmt.Errorf("embedding failed: %w", runErr)
	}

	fmt.Fprintf(os.Stderr, "Embedded %d chunks in %d batches (%d tokens, $%.4f)\n",
		result.Totals.Chunks, result.Totals.Batches, result.Totals.Tokens, result.Totals.CostUSD)
	if result.Skipped > 0 {
		fmt.Fprintf(os.Stderr, "Skipped %d chunks already embedded in a previous run\n", result.Skipped)
	}
	return nil
}

func checkpointsCommand(c *cli.Context) error {
	ctx := context.Background()

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	backend, err := badger.OpenBackend(cfg.CheckpointDir, false)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint storage: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewCheckpointRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint repository: %w", err)
	}
	defer repo.Close()

	checkpoints, err := repo.ListCheckpoints(ctx)
	if err != nil {
		return fmt.Errorf("failed to list checkpoints: %w", err)
	}

	if len(checkpoints) == 0 {
		fmt.Println("No checkpoints")
		return nil
	}

	for _, cp := range checkpoints {
		fmt.Printf("%s: next batch %d, %d chunks, %d tokens used, updated %s\n",
			cp.DocumentKey, cp.NextBatch, cp.TotalChunks, cp.TokensUsed,
			cp.UpdatedAt.Format(time.RFC3339))
	}
	return nil
}

func clearCheckpointsCommand(c *cli.Context) error {
	ctx := context.Background()

	key := c.String("key")
	if key == "" && !c.Bool("all") {
		return fmt.Errorf("either --key or --all is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	backend, err := badger.OpenBackend(cfg.CheckpointDir, false)
	if err != nil {
		return fmt.Errorf("failed to open checkpoint storage: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewCheckpointRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint repository: %w", err)
	}
	defer repo.Close()

	if key != "" {
		if err := repo.DeleteCheckpoint(ctx, key); err != nil {
			return fmt.Errorf("failed to delete checkpoint %s: %w", key, err)
		}
		fmt.Printf("Cleared checkpoint %s\n", key)
		return nil
	}

	checkpoints, err := repo.ListCheckpoints(ctx)
	if err != nil {
		return fmt.Errorf("failed to list checkpoints: %w", err)
	}
	for _, cp := range checkpoints {
		if err := repo.DeleteCheckpoint(ctx, cp.DocumentKey); err != nil {
			return fmt.Errorf("failed to delete checkpoint %s: %w", cp.DocumentKey, err)
		}
	}
	fmt.Printf("Cleared %d checkpoints\n", len(checkpoints))
	return nil
}

// loadConfig reads the environment configuration and applies any command
// line overrides that were set.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if c.IsSet("embedding-host") {
		cfg.EmbeddingHost = c.String("embedding-host")
	}
	if c.IsSet("embedding-model") {
		cfg.EmbeddingModel = c.String("embedding-model")
	}
	if c.IsSet("dimension") {
		cfg.Dimension = c.Int("dimension")
	}
	if c.IsSet("max-chunk-size") {
		cfg.MaxChunkSize = c.Int("max-chunk-size")
	}
	if c.IsSet("overlap") {
		cfg.ChunkOverlap = c.Int("overlap")
	}
	if c.IsSet("batch-size") {
		cfg.BatchSize = c.Int("batch-size")
	}
	if c.IsSet("max-batch-tokens") {
		cfg.MaxTokensPerBatch = c.Int("max-batch-tokens")
	}
	if c.IsSet("max-chunk-tokens") {
		cfg.MaxTokensPerChunk = c.Int("max-chunk-tokens")
	}
	if c.IsSet("price") {
		cfg.PricePerMillionTokens = c.Float64("price")
	}
	if c.IsSet("checkpoint-dir") {
		cfg.CheckpointDir = c.String("checkpoint-dir")
	}
	if c.IsSet("checkpoint-interval") {
		cfg.CheckpointInterval = c.Int("checkpoint-interval")
	}
	return cfg, nil
}

func loadDocuments(path string) ([]chunk.Document, error) {
	col, err := document.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents: %w", err)
	}

	docs, err := col.Documents()
	if err != nil {
		return nil, fmt.Errorf("invalid documents: %w", err)
	}
	return docs, nil
}

func buildProvider(kind string, cfg *config.Config) (ai.EmbeddingProvider, error) {
	aiConfig := cfg.AI()
	switch kind {
	case "openai":
		return openai.NewProvider(aiConfig)
	case "local":
		return local.NewProvider(aiConfig)
	default:
		return nil, fmt.Errorf("unknown provider %q: must be openai or local", kind)
	}
}

// chunkRecord is the JSONL shape emitted for each chunk.
type chunkRecord struct {
	ID          string            `json:"id"`
	NumericID   int64             `json:"numeric_id"`
	Text        string            `json:"text"`
	SourceType  string            `json:"source_type"`
	Citation    string            `json:"citation"`
	ChunkIndex  int               `json:"chunk_index"`
	TotalChunks int               `json:"total_chunks"`
	Title       string            `json:"title,omitempty"`
	Section     string            `json:"section,omitempty"`
	URL         string            `json:"url,omitempty"`
	VersionDate string            `json:"version_date,omitempty"`
	Extra       map[string]string `json:"extra,omitempty"`
}

func newChunkRecord(ch core.Chunk) chunkRecord {
	meta := ch.Metadata
	return chunkRecord{
		ID:          ch.StringID,
		NumericID:   core.NumericID(ch.StringID),
		Text:        ch.Text,
		SourceType:  meta.SourceType.Code(),
		Citation:    meta.Citation,
		ChunkIndex:  meta.ChunkIndex,
		TotalChunks: meta.TotalChunks,
		Title:       meta.Title,
		Section:     meta.Section,
		URL:         meta.URL,
		VersionDate: meta.VersionDate,
		Extra:       meta.Extra,
	}
}

// embeddedRecord adds the vector and token count to the chunk shape.
type embeddedRecord struct {
	chunkRecord
	Embedding []float32 `json:"embedding"`
	Tokens    int       `json:"tokens"`
}

func writeChunks(w io.Writer, chunks []core.Chunk) error {
	enc := json.NewEncoder(w)
	for i := range chunks {
		if err := enc.Encode(newChunkRecord(chunks[i])); err != nil {
			return fmt.Errorf("failed to write chunk %s: %w", chunks[i].StringID, err)
		}
	}
	return nil
}

func writeEmbedded(w io.Writer, records []core.EmbeddedChunk) error {
	enc := json.NewEncoder(w)
	for i := range records {
		record := embeddedRecord{
			chunkRecord: newChunkRecord(records[i].Chunk),
			Embedding:   records[i].Embedding,
			Tokens:      records[i].TokenCount,
		}
		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("failed to write record %s: %w", records[i].Chunk.StringID, err)
		}
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := c.String("log-level")

	// An explicit flag wins; otherwise LOG_LEVEL from the environment.
	if !c.IsSet("log-level") {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		levelStr = cfg.LogLevel
	}

	// Normalize to lowercase
	levelStr = strings.ToLower(levelStr)

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
