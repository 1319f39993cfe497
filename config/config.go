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


// Package config loads pipeline settings from the environment. Load returns
// a plain value each call; there is no cached or global configuration.
// Callers pass the values explicitly into component constructors.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/taxentia/ingest/ai"
)

// Config holds environment-derived settings for the ingestion pipeline.
// Variable names follow the upstream deployment convention.
type Config struct {
	// Embedding service
	APIKey         string `env:"OPENAI_API_KEY"`
	EmbeddingHost  string `env:"OPENAI_EMBEDDING_HOST" envDefault:"https://api.openai.com/v1"`
	EmbeddingModel string `env:"OPENAI_EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
	Dimension      int    `env:"EMBEDDING_DIMENSION" envDefault:"1536"`

	// Chunking
	MaxChunkSize int `env:"MAX_CHUNK_SIZE" envDefault:"2000"`
	ChunkOverlap int `env:"CHUNK_OVERLAP" envDefault:"200"`

	// Batching
	BatchSize         int `env:"BATCH_SIZE_EMBEDDINGS" envDefault:"40"`
	MaxTokensPerBatch int `env:"MAX_TOKENS_PER_BATCH" envDefault:"3500"`
	MaxTokensPerChunk int `env:"MAX_TOKENS_PER_CHUNK" envDefault:"3000"`

	// Embedding run pacing
	RetryWait             time.Duration `env:"RETRY_WAIT" envDefault:"5s"`
	InterBatchDelay       time.Duration `env:"INTER_BATCH_DELAY" envDefault:"100ms"`
	PricePerMillionTokens float64       `env:"PRICE_PER_MILLION_TOKENS" envDefault:"0.02"`

	// Checkpointing
	CheckpointDir      string `env:"CHECKPOINT_DIR" envDefault:"data/checkpoints"`
	CheckpointInterval int    `env:"CHECKPOINT_INTERVAL" envDefault:"5"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads configuration from the environment into a fresh Config.
//
// With no arguments, a .env file in the working directory is applied first
// when present; a missing file is not an error. Explicit file names must
// exist. Real environment variables always win over file values.
func Load(filenames ...string) (*Config, error) {
	if len(filenames) > 0 {
		if err := godotenv.Load(filenames...); err != nil {
			return nil, fmt.Errorf("loading env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseEnvironment, err)
	}
	return cfg, nil
}

// AI translates the embedding service settings into provider configuration.
func (c *Config) AI() *ai.Config {
	return ai.NewConfig(
		ai.WithHost(c.EmbeddingHost),
		ai.WithAPIKey(c.APIKey),
		ai.WithModel(c.EmbeddingModel),
		ai.WithDimension(c.Dimension),
	)
}
