// Package config loads docmind settings from an optional YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ChunkerConfig selects the chunking strategy.
type ChunkerConfig struct {
	Strategy string `yaml:"strategy"` // semantic or size
}

// EmbeddingConfig selects and configures the embedder.
type EmbeddingConfig struct {
	Provider  string        `yaml:"provider"` // tfidf or openai
	Model     string        `yaml:"model"`
	BaseURL   string        `yaml:"base_url"`
	APIKeyEnv string        `yaml:"api_key_env"`
	Timeout   time.Duration `yaml:"timeout"`
}

// APIKey reads the key from the configured environment variable.
func (c EmbeddingConfig) APIKey() string { return os.Getenv(c.APIKeyEnv) }

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL     string        `yaml:"url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// VectorStoreConfig selects and configures the vector store.
type VectorStoreConfig struct {
	Type       string       `yaml:"type"` // memory or qdrant
	Collection string       `yaml:"collection"`
	Qdrant     QdrantConfig `yaml:"qdrant"`
}

// GenerationConfig selects and configures the answer generator.
type GenerationConfig struct {
	Provider    string        `yaml:"provider"` // openai or anthropic
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	APIKeyEnv   string        `yaml:"api_key_env"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// APIKey reads the key from the configured environment variable.
func (c GenerationConfig) APIKey() string { return os.Getenv(c.APIKeyEnv) }

// ValidationConfig holds answer scoring thresholds.
type ValidationConfig struct {
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
	ContextFactor       float64 `yaml:"context_factor"`
	GroundingThreshold  float64 `yaml:"grounding_threshold"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           string        `yaml:"port"`
	APIKey         string        `yaml:"api_key"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	UploadDir      string        `yaml:"upload_dir"`
	StatsWindow    time.Duration `yaml:"stats_window"`
}

type Config struct {
	ChunkSize           int     `yaml:"chunk_size"`
	OverlapSize         int     `yaml:"overlap_size"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	BatchSize           int     `yaml:"batch_size"`
	TopK                int     `yaml:"top_k"`

	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext"`

	Chunker     ChunkerConfig     `yaml:"chunker"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Generation  GenerationConfig  `yaml:"generation"`
	Validation  ValidationConfig  `yaml:"validation"`
	Server      ServerConfig      `yaml:"server"`
}

const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		ChunkSize:            500,
		OverlapSize:          50,
		SimilarityThreshold:  0.6,
		BatchSize:            16,
		TopK:                 5,
		PDFFallbackPdftotext: true,
		Chunker:              ChunkerConfig{Strategy: DefaultStrategy("tfidf")},
		Embedding: EmbeddingConfig{
			Provider:  "tfidf",
			APIKeyEnv: "OPENAI_API_KEY",
			Timeout:   30 * time.Second,
		},
		VectorStore: VectorStoreConfig{
			Type:       "memory",
			Collection: "docmind",
			Qdrant:     QdrantConfig{URL: "http://localhost:6333", Timeout: 30 * time.Second},
		},
		Generation: GenerationConfig{
			Provider:    "openai",
			BaseURL:     "http://localhost:1234/v1",
			Model:       "local-model",
			APIKeyEnv:   "OPENAI_API_KEY",
			Temperature: 0.2,
			MaxTokens:   500,
			Timeout:     120 * time.Second,
		},
		Validation: ValidationConfig{
			ConfidenceThreshold: 0.7,
			ContextFactor:       0.3,
			GroundingThreshold:  0.3,
		},
		Server: ServerConfig{
			Port:           "8090",
			MaxUploadBytes: 52428800, // 50MB
			UploadDir:      "uploads",
			StatsWindow:    time.Hour,
		},
	}
}

// DefaultStrategy picks the chunker for an embedding provider. TF-IDF is
// fitted per node, so adjacent sentences share almost no weighted terms and
// every sentence would become its own semantic chunk.
func DefaultStrategy(embeddingProvider string) string {
	if embeddingProvider == "tfidf" {
		return "size"
	}
	return "semantic"
}

// Load reads path over the defaults, then applies environment overrides. A
// missing file is not an error. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	cfg.Chunker.Strategy = ""
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(c *Config) {
	c.ChunkSize = envInt("DOCMIND_CHUNK_SIZE", c.ChunkSize)
	c.OverlapSize = envInt("DOCMIND_OVERLAP_SIZE", c.OverlapSize)
	c.SimilarityThreshold = envFloat("DOCMIND_SIMILARITY_THRESHOLD", c.SimilarityThreshold)
	c.BatchSize = envInt("DOCMIND_BATCH_SIZE", c.BatchSize)
	c.Chunker.Strategy = envOr("DOCMIND_CHUNKER", c.Chunker.Strategy)
	c.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", c.PDFFallbackPdftotext)

	c.Embedding.Provider = envOr("EMBEDDING_PROVIDER", c.Embedding.Provider)
	c.Embedding.Model = envOr("EMBEDDING_MODEL", c.Embedding.Model)
	c.Embedding.BaseURL = envOr("EMBEDDING_BASE_URL", c.Embedding.BaseURL)

	c.VectorStore.Type = envOr("VECTOR_STORE", c.VectorStore.Type)
	c.VectorStore.Qdrant.URL = envOr("QDRANT_URL", c.VectorStore.Qdrant.URL)
	c.VectorStore.Qdrant.APIKey = envOr("QDRANT_API_KEY", c.VectorStore.Qdrant.APIKey)

	c.Generation.Provider = envOr("GENERATION_PROVIDER", c.Generation.Provider)
	c.Generation.BaseURL = envOr("GENERATION_BASE_URL", c.Generation.BaseURL)
	c.Generation.Model = envOr("GENERATION_MODEL", c.Generation.Model)
	c.Generation.Timeout = envDuration("GENERATION_TIMEOUT", c.Generation.Timeout)

	c.Server.Port = envOr("PORT", c.Server.Port)
	c.Server.APIKey = envOr("DOCMIND_API_KEY", c.Server.APIKey)
	c.Server.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", c.Server.MaxUploadBytes)
	c.Server.UploadDir = envOr("UPLOAD_DIR", c.Server.UploadDir)
}

func applyDefaults(c *Config) {
	d := Default()
	if c.Chunker.Strategy == "" {
		c.Chunker.Strategy = DefaultStrategy(c.Embedding.Provider)
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.TopK <= 0 {
		c.TopK = d.TopK
	}
	if c.VectorStore.Collection == "" {
		c.VectorStore.Collection = d.VectorStore.Collection
	}
	if c.Generation.Provider == "anthropic" {
		if c.Generation.APIKeyEnv == "" || c.Generation.APIKeyEnv == d.Generation.APIKeyEnv {
			c.Generation.APIKeyEnv = "ANTHROPIC_API_KEY"
		}
		if c.Generation.Model == "" || c.Generation.Model == d.Generation.Model {
			c.Generation.Model = defaultAnthropicModel
		}
		if c.Generation.BaseURL == d.Generation.BaseURL {
			c.Generation.BaseURL = ""
		}
	}
	if c.Embedding.Provider == "openai" && c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Server.MaxUploadBytes <= 0 {
		c.Server.MaxUploadBytes = d.Server.MaxUploadBytes
	}
	if c.Server.StatsWindow <= 0 {
		c.Server.StatsWindow = d.Server.StatsWindow
	}
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.OverlapSize < 0 {
		return fmt.Errorf("overlap_size must not be negative, got %d", c.OverlapSize)
	}
	if c.SimilarityThreshold <= 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity_threshold must be in (0, 1], got %v", c.SimilarityThreshold)
	}
	switch c.Chunker.Strategy {
	case "size":
	case "semantic":
		if c.Embedding.Provider == "tfidf" {
			return fmt.Errorf("chunker strategy semantic needs a model embedder; use strategy size with the tfidf provider")
		}
	default:
		return fmt.Errorf("unknown chunker strategy %q", c.Chunker.Strategy)
	}
	switch c.Embedding.Provider {
	case "tfidf":
	case "openai":
		if c.Embedding.Model == "" {
			return fmt.Errorf("embedding.model is required for the openai provider")
		}
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider)
	}
	switch c.VectorStore.Type {
	case "memory":
	case "qdrant":
		if c.VectorStore.Qdrant.URL == "" {
			return fmt.Errorf("vector_store.qdrant.url is required")
		}
	default:
		return fmt.Errorf("unknown vector store %q", c.VectorStore.Type)
	}
	switch c.Generation.Provider {
	case "openai":
	case "anthropic":
		if c.Generation.APIKey() == "" {
			return fmt.Errorf("%s is required for the anthropic provider", c.Generation.APIKeyEnv)
		}
	default:
		return fmt.Errorf("unknown generation provider %q", c.Generation.Provider)
	}
	if c.Generation.Model == "" {
		return fmt.Errorf("generation.model is required")
	}
	if c.Validation.ContextFactor <= 0 {
		return fmt.Errorf("validation.context_factor must be positive")
	}
	for name, v := range map[string]float64{
		"confidence_threshold": c.Validation.ConfidenceThreshold,
		"grounding_threshold":  c.Validation.GroundingThreshold,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("validation.%s must be in [0, 1], got %v", name, v)
		}
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
