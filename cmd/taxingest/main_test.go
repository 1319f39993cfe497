package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/taxentia/ingest/config"
	"github.com/taxentia/ingest/core"
)

func testApp() *cli.App {
	app := newApp()
	app.Writer = io.Discard
	return app
}

func findCommand(t *testing.T, app *cli.App, name string) *cli.Command {
	t.Helper()
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	t.Fatalf("command %q not found", name)
	return nil
}

func findStringFlag(t *testing.T, cmd *cli.Command, name string) *cli.StringFlag {
	t.Helper()
	for _, flag := range cmd.Flags {
		if f, ok := flag.(*cli.StringFlag); ok && f.Name == name {
			return f
		}
	}
	t.Fatalf("string flag %q not found on %q", name, cmd.Name)
	return nil
}

func findIntFlag(t *testing.T, cmd *cli.Command, name string) *cli.IntFlag {
	t.Helper()
	for _, flag := range cmd.Flags {
		if f, ok := flag.(*cli.IntFlag); ok && f.Name == name {
			return f
		}
	}
	t.Fatalf("int flag %q not found on %q", name, cmd.Name)
	return nil
}

func TestNewApp_Commands(t *testing.T) {
	app := testApp()

	var names []string
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"chunk", "cost", "embed", "checkpoints", "clear-checkpoints"}, names)
}

func TestChunkCommandFlags(t *testing.T) {
	app := testApp()
	cmd := findCommand(t, app, "chunk")

	t.Run("input is required", func(t *testing.T) {
		input := findStringFlag(t, cmd, "input")
		assert.True(t, input.Required)
		assert.Contains(t, input.Aliases, "i")

		err := app.Run([]string{"taxingest", "chunk"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input")
	})

	t.Run("size flags have no baked-in default", func(t *testing.T) {
		assert.Zero(t, findIntFlag(t, cmd, "max-chunk-size").Value,
			"defaults come from the environment configuration")
		assert.Zero(t, findIntFlag(t, cmd, "overlap").Value)
	})
}

func TestEmbedCommandFlags(t *testing.T) {
	app := testApp()
	cmd := findCommand(t, app, "embed")

	t.Run("input is required", func(t *testing.T) {
		err := app.Run([]string{"taxingest", "embed"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input")
	})

	t.Run("provider defaults to openai", func(t *testing.T) {
		provider := findStringFlag(t, cmd, "provider")
		assert.Equal(t, "openai", provider.Value)
	})

	t.Run("report-interval has default value of 100", func(t *testing.T) {
		assert.Equal(t, 100, findIntFlag(t, cmd, "report-interval").Value)
	})
}

func TestClearCheckpointsValidation(t *testing.T) {
	app := testApp()

	err := app.Run([]string{"taxingest", "clear-checkpoints"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "either --key or --all")
}

func TestLoadConfig_FlagOverrides(t *testing.T) {
	var cfg *config.Config
	app := &cli.App{
		Name: "test",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max-chunk-size"},
			&cli.IntFlag{Name: "batch-size"},
			&cli.Float64Flag{Name: "price"},
		},
		Action: func(c *cli.Context) error {
			var err error
			cfg, err = loadConfig(c)
			return err
		},
	}

	err := app.Run([]string{"test", "--max-chunk-size", "900", "--price", "0.5"})
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 900, cfg.MaxChunkSize, "set flags override the environment")
	assert.InDelta(t, 0.5, cfg.PricePerMillionTokens, 1e-9)
	assert.Equal(t, 40, cfg.BatchSize, "unset flags keep the configured default")
	assert.Equal(t, 200, cfg.ChunkOverlap)
}

func TestBuildProvider(t *testing.T) {
	cfg := &config.Config{
		EmbeddingHost:  "http://localhost:11434/v1",
		EmbeddingModel: "embeddinggemma",
		Dimension:      768,
	}

	t.Run("openai", func(t *testing.T) {
		provider, err := buildProvider("openai", cfg)
		require.NoError(t, err)
		require.NotNil(t, provider)
		assert.Equal(t, 768, provider.Dimension())
		provider.Close()
	})

	t.Run("local", func(t *testing.T) {
		provider, err := buildProvider("local", cfg)
		require.NoError(t, err)
		require.NotNil(t, provider)
		provider.Close()
	})

	t.Run("unknown", func(t *testing.T) {
		provider, err := buildProvider("qdrant", cfg)
		require.Error(t, err)
		assert.Nil(t, provider)
		assert.Contains(t, err.Error(), `unknown provider "qdrant"`)
	})
}

func testChunk(index int) core.Chunk {
	meta := core.ChunkMetadata{
		SourceType:  core.SourceTypeStatute,
		Citation:    "26 U.S.C. § 61",
		ChunkIndex:  index,
		TotalChunks: 2,
		Title:       "Gross income defined",
		Section:     "61",
		URL:         "https://uscode.house.gov/view.xhtml?req=granuleid:USC-prelim-title26-section61",
	}
	return core.Chunk{
		Text:     "Gross income means all income from whatever source derived.",
		Metadata: meta,
		StringID: core.ChunkID(meta.SourceType, meta.Citation, index),
	}
}

func TestWriteChunks(t *testing.T) {
	var buf bytes.Buffer
	chunks := []core.Chunk{testChunk(0), testChunk(1)}

	require.NoError(t, writeChunks(&buf, chunks))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var record chunkRecord
	require.NoError(t, json.Unmarshal(lines[0], &record))

	assert.Equal(t, chunks[0].StringID, record.ID)
	assert.Equal(t, core.NumericID(chunks[0].StringID), record.NumericID)
	assert.Equal(t, "usc", record.SourceType)
	assert.Equal(t, "26 U.S.C. § 61", record.Citation)
	assert.Equal(t, 0, record.ChunkIndex)
	assert.Equal(t, 2, record.TotalChunks)
	assert.Equal(t, chunks[0].Text, record.Text)
}

func TestWriteEmbedded(t *testing.T) {
	var buf bytes.Buffer
	embedded, err := core.NewEmbeddedChunk(testChunk(0), []float32{0.25, -0.5, 0.25}, 3, 17)
	require.NoError(t, err)

	require.NoError(t, writeEmbedded(&buf, []core.EmbeddedChunk{embedded}))

	// Chunk fields are flattened alongside the vector
	var raw map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &raw))
	assert.Equal(t, embedded.Chunk.StringID, raw["id"])
	assert.Equal(t, float64(17), raw["tokens"])

	vector, ok := raw["embedding"].([]any)
	require.True(t, ok)
	assert.Len(t, vector, 3)
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			t.Run(level, func(t *testing.T) {
				err := testApp().Run([]string{"taxingest", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, level := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			t.Run(level, func(t *testing.T) {
				err := testApp().Run([]string{"taxingest", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := testApp().Run([]string{"taxingest", "--log-level", "verbose"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
		assert.Contains(t, err.Error(), "verbose")
	})

	t.Run("LOG_LEVEL applies when flag is not set", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "debug")
		err := testApp().Run([]string{"taxingest"})
		require.NoError(t, err)
		assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
	})

	t.Run("flag wins over LOG_LEVEL", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "debug")
		err := testApp().Run([]string{"taxingest", "--log-level", "error"})
		require.NoError(t, err)
		assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
	})

	t.Run("invalid LOG_LEVEL returns error", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "verbose")
		err := testApp().Run([]string{"taxingest"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})

	t.Run("log-level flag has alias -l", func(t *testing.T) {
		err := testApp().Run([]string{"taxingest", "-l", "debug"})
		require.NoError(t, err)
	})
}

func TestMain(m *testing.M) {
	// Run tests
	code := m.Run()
	os.Exit(code)
}
