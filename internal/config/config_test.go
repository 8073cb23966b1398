package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
chunk_size: 800
similarity_threshold: 0.5
chunker:
  strategy: size
vector_store:
  type: qdrant
  qdrant:
    url: http://qdrant:6333
    timeout: 5s
generation:
  model: mistral-7b
  temperature: 0.1
validation:
  context_factor: 0.5
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 800, cfg.ChunkSize)
	assert.Equal(t, 50, cfg.OverlapSize, "unset keys keep defaults")
	assert.Equal(t, 0.5, cfg.SimilarityThreshold)
	assert.Equal(t, "size", cfg.Chunker.Strategy)
	assert.Equal(t, "qdrant", cfg.VectorStore.Type)
	assert.Equal(t, 5*time.Second, cfg.VectorStore.Qdrant.Timeout)
	assert.Equal(t, "docmind", cfg.VectorStore.Collection)
	assert.Equal(t, "mistral-7b", cfg.Generation.Model)
	assert.Equal(t, 0.5, cfg.Validation.ContextFactor)
	assert.Equal(t, 0.7, cfg.Validation.ConfidenceThreshold)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "chunk_size: 800\n")
	t.Setenv("DOCMIND_CHUNK_SIZE", "300")
	t.Setenv("DOCMIND_CHUNKER", "size")
	t.Setenv("PORT", "9999")
	t.Setenv("DOCMIND_SIMILARITY_THRESHOLD", "not-a-number")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.ChunkSize)
	assert.Equal(t, "size", cfg.Chunker.Strategy)
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, 0.6, cfg.SimilarityThreshold, "unparsable values fall back")
}

func TestChunkerStrategyFollowsEmbedder(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "tfidf", cfg.Embedding.Provider)
	assert.Equal(t, "size", cfg.Chunker.Strategy)

	t.Setenv("EMBEDDING_PROVIDER", "openai")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "semantic", cfg.Chunker.Strategy)
	assert.NoError(t, cfg.Validate())

	cfg, err = Load(writeConfig(t, "chunker:\n  strategy: size\n"))
	require.NoError(t, err)
	assert.Equal(t, "size", cfg.Chunker.Strategy, "explicit strategy wins")
}

func TestLoadRejectsBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "chunk_size: [oops\n"))
	assert.Error(t, err)
}

func TestAnthropicDefaults(t *testing.T) {
	t.Setenv("GENERATION_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "ANTHROPIC_API_KEY", cfg.Generation.APIKeyEnv)
	assert.Equal(t, defaultAnthropicModel, cfg.Generation.Model)
	assert.Empty(t, cfg.Generation.BaseURL)
	assert.Equal(t, "sk-test", cfg.Generation.APIKey())
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero chunk size", func(c *Config) { c.ChunkSize = 0 }},
		{"negative overlap", func(c *Config) { c.OverlapSize = -1 }},
		{"threshold above one", func(c *Config) { c.SimilarityThreshold = 1.5 }},
		{"unknown strategy", func(c *Config) { c.Chunker.Strategy = "paragraph" }},
		{"semantic with tfidf", func(c *Config) { c.Chunker.Strategy = "semantic" }},
		{"unknown embedder", func(c *Config) { c.Embedding.Provider = "word2vec" }},
		{"qdrant without url", func(c *Config) { c.VectorStore.Type = "qdrant"; c.VectorStore.Qdrant.URL = "" }},
		{"unknown store", func(c *Config) { c.VectorStore.Type = "chroma" }},
		{"anthropic without key", func(c *Config) {
			c.Generation.Provider = "anthropic"
			c.Generation.APIKeyEnv = "DOCMIND_TEST_UNSET_KEY"
		}},
		{"zero context factor", func(c *Config) { c.Validation.ContextFactor = 0 }},
		{"grounding threshold out of range", func(c *Config) { c.Validation.GroundingThreshold = 2 }},
		{"empty port", func(c *Config) { c.Server.Port = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
