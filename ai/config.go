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


package ai

import (
	"errors"
	"strings"
)

const (
	// DefaultModel is the embedding model used when none is configured.
	DefaultModel = "text-embedding-3-small"

	// DefaultDimension is the vector size of the default model.
	DefaultDimension = 1536
)

// Config holds configuration for embedding providers.
type Config struct {
	// Host is the base URL for the embedding service API.
	// Example: "https://api.openai.com/v1", or "http://localhost:11434/v1"
	// for a local OpenAI-compatible server.
	Host string

	// APIKey authenticates requests to the service. Local OpenAI-compatible
	// servers accept any value, including empty.
	APIKey string

	// Model is the model identifier to use for text embeddings.
	// Example: "text-embedding-3-small", "embeddinggemma"
	Model string

	// Dimension is the vector size requested from the model. Stored vectors
	// and fresh vectors must agree on this, so it is part of provider
	// configuration rather than a per-request knob.
	Dimension int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets the embedding service host URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithAPIKey sets the API key used to authenticate requests.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithModel sets the embedding model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithDimension sets the requested vector size.
func WithDimension(dim int) ConfigOption {
	return func(c *Config) {
		c.Dimension = dim
	}
}

// DefaultConfig returns a Config targeting the OpenAI API with the default
// embedding model. The API key must still be supplied.
func DefaultConfig() *Config {
	return &Config{
		Host:      "https://api.openai.com/v1",
		Model:     DefaultModel,
		Dimension: DefaultDimension,
	}
}

// NewConfig creates a Config with the default values and applies the provided
// options.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"),
//	    ai.WithModel("embeddinggemma"),
//	    ai.WithDimension(768),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form. It adds the
// /v1 suffix to the host if missing, which OpenAI-compatible APIs (OpenAI,
// Ollama, LocalAI, vLLM) require.
func (c *Config) Normalize() {
	if c.Host != "" && !strings.HasSuffix(c.Host, "/v1") {
		c.Host = strings.TrimSuffix(c.Host, "/")
		c.Host = c.Host + "/v1"
	}
}

// Validate checks that the configuration is valid and complete.
// It normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Host == "" {
		return errors.New("ai config: Host is required")
	}
	if c.Model == "" {
		return errors.New("ai config: Model is required")
	}
	if c.Dimension < 1 {
		return errors.New("ai config: Dimension must be at least 1")
	}
	return nil
}
