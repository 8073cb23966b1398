package chunker

import (
	"context"
	"strings"
	"unicode/utf8"
)

// Chunker splits one node's text into chunks. Empty or whitespace-only
// input yields no chunks; any other input yields at least one.
type Chunker interface {
	Split(ctx context.Context, text string) []string
}

// Strategy names a chunking algorithm.
type Strategy string

const (
	StrategySemantic Strategy = "semantic"
	StrategySize     Strategy = "size"
)

// Config controls chunking behavior. Sizes are measured in characters.
type Config struct {
	ChunkSize           int     // Maximum chunk length.
	Overlap             int     // Context shared between adjacent chunks.
	SimilarityThreshold float64 // Semantic boundary when adjacent sentences fall below this.
	BatchSize           int     // Sentences per embedding request.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ChunkSize:           500,
		Overlap:             50,
		SimilarityThreshold: 0.6,
		BatchSize:           16,
	}
}

// normalize fills zero values with defaults and caps the overlap so that a
// chunk always advances.
func (c Config) normalize() Config {
	d := DefaultConfig()
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	if c.Overlap < 0 {
		c.Overlap = 0
	}
	if c.Overlap >= c.ChunkSize {
		c.Overlap = c.ChunkSize - 1
	}
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = d.SimilarityThreshold
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	return c
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
