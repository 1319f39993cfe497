package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "https://api.openai.com/v1", cfg.Host)
	assert.Equal(t, "text-embedding-3-small", cfg.Model)
	assert.Equal(t, 1536, cfg.Dimension)
	assert.Empty(t, cfg.APIKey)
}

func TestNewConfig(t *testing.T) {
	t.Run("with no options", func(t *testing.T) {
		cfg := NewConfig()

		assert.NotNil(t, cfg)
		assert.Equal(t, DefaultModel, cfg.Model)
		assert.Equal(t, DefaultDimension, cfg.Dimension)
	})

	t.Run("with custom host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434/v1"))

		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	})

	t.Run("with custom model and dimension", func(t *testing.T) {
		cfg := NewConfig(
			WithModel("embeddinggemma"),
			WithDimension(768),
		)

		assert.Equal(t, "embeddinggemma", cfg.Model)
		assert.Equal(t, 768, cfg.Dimension)
	})

	t.Run("with api key", func(t *testing.T) {
		cfg := NewConfig(WithAPIKey("sk-test"))

		assert.Equal(t, "sk-test", cfg.APIKey)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name     string
		host     string
		expected string
	}{
		{
			name:     "adds v1 suffix",
			host:     "http://localhost:11434",
			expected: "http://localhost:11434/v1",
		},
		{
			name:     "strips trailing slash before adding",
			host:     "http://localhost:11434/",
			expected: "http://localhost:11434/v1",
		},
		{
			name:     "leaves v1 suffix alone",
			host:     "https://api.openai.com/v1",
			expected: "https://api.openai.com/v1",
		},
		{
			name:     "leaves empty host alone",
			host:     "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Host: tt.host}
			cfg.Normalize()
			assert.Equal(t, tt.expected, cfg.Host)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := NewConfig(WithAPIKey("sk-test"))
		require.NoError(t, cfg.Validate())
	})

	t.Run("empty api key is allowed", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434"))
		require.NoError(t, cfg.Validate())
	})

	t.Run("missing host", func(t *testing.T) {
		cfg := NewConfig(WithHost(""))
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing model", func(t *testing.T) {
		cfg := NewConfig(WithModel(""))
		assert.Error(t, cfg.Validate())
	})

	t.Run("invalid dimension", func(t *testing.T) {
		cfg := NewConfig(WithDimension(0))
		assert.Error(t, cfg.Validate())
	})

	t.Run("validate normalizes host", func(t *testing.T) {
		cfg := NewConfig(WithHost("http://localhost:11434"))
		require.NoError(t, cfg.Validate())
		assert.Equal(t, "http://localhost:11434/v1", cfg.Host)
	})
}
