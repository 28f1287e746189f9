package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := NewConfig()
		assert.Equal(t, "http://localhost:11434/v1", cfg.EmbeddingHost)
		assert.Equal(t, "all-minilm", cfg.EmbeddingModel)
		assert.Equal(t, DefaultDimensions, cfg.Dimensions)
		require.NoError(t, cfg.Validate())
	})

	t.Run("options override defaults", func(t *testing.T) {
		cfg := NewConfig(
			WithHost("http://embedding.internal:8000/v1"),
			WithModel("text-embedding-3-small"),
			WithDimensions(1536),
		)
		assert.Equal(t, "http://embedding.internal:8000/v1", cfg.EmbeddingHost)
		assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
		assert.Equal(t, 1536, cfg.Dimensions)
	})
}

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{"adds v1 suffix", "http://localhost:11434", "http://localhost:11434/v1"},
		{"strips trailing slash", "http://localhost:11434/", "http://localhost:11434/v1"},
		{"already canonical", "http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"empty host untouched", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{EmbeddingHost: tt.host}
			cfg.Normalize()
			assert.Equal(t, tt.want, cfg.EmbeddingHost)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("missing host", func(t *testing.T) {
		cfg := &Config{EmbeddingModel: "all-minilm", Dimensions: 384}
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing model", func(t *testing.T) {
		cfg := &Config{EmbeddingHost: "http://localhost:11434/v1", Dimensions: 384}
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive dimensions", func(t *testing.T) {
		cfg := &Config{EmbeddingHost: "http://localhost:11434/v1", EmbeddingModel: "all-minilm"}
		assert.Error(t, cfg.Validate())
	})
}

func TestNormalize(t *testing.T) {
	t.Run("unit length", func(t *testing.T) {
		v := Normalize([]float32{3, 4})
		assert.InDelta(t, 0.6, v[0], 1e-6)
		assert.InDelta(t, 0.8, v[1], 1e-6)
	})

	t.Run("zero vector stays zero", func(t *testing.T) {
		v := Normalize([]float32{0, 0, 0})
		assert.Equal(t, []float32{0, 0, 0}, v)
	})

	t.Run("empty vector", func(t *testing.T) {
		assert.Empty(t, Normalize(nil))
	})
}
