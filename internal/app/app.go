// Package app wires configured components into a ready pipeline for the
// server and CLI binaries.
package app

import (
	"fmt"
	"log/slog"

	"github.com/dgallion1/docmind/internal/chunker"
	"github.com/dgallion1/docmind/internal/config"
	"github.com/dgallion1/docmind/internal/embed"
	embedopenai "github.com/dgallion1/docmind/internal/embed/openai"
	"github.com/dgallion1/docmind/internal/embed/tfidf"
	"github.com/dgallion1/docmind/internal/generate"
	"github.com/dgallion1/docmind/internal/index"
	"github.com/dgallion1/docmind/internal/parser"
	"github.com/dgallion1/docmind/internal/pipeline"
	"github.com/dgallion1/docmind/internal/validate"
	"github.com/dgallion1/docmind/internal/vectorstore"
	"github.com/dgallion1/docmind/internal/vectorstore/memory"
	"github.com/dgallion1/docmind/internal/vectorstore/qdrant"
)

// App holds the wired pipeline and the resources behind it.
type App struct {
	Pipeline *pipeline.Pipeline
	Stats    *generate.LLMStats

	closers []func()
}

// New builds every component named by cfg. cfg should already be validated.
func New(cfg config.Config, log *slog.Logger) (*App, error) {
	a := &App{Stats: generate.NewLLMStats(cfg.Server.StatsWindow)}

	embedder, err := newEmbedder(cfg.Embedding)
	if err != nil {
		return nil, err
	}
	store := newStore(cfg.VectorStore)

	chunkCfg := chunker.Config{
		ChunkSize:           cfg.ChunkSize,
		Overlap:             cfg.OverlapSize,
		SimilarityThreshold: cfg.SimilarityThreshold,
		BatchSize:           cfg.BatchSize,
	}
	var ch chunker.Chunker
	switch chunker.Strategy(cfg.Chunker.Strategy) {
	case chunker.StrategySize:
		ch = chunker.NewSize(chunkCfg)
	default:
		ch = chunker.NewSemantic(chunkCfg, embedder, chunker.RegexSplitter{}, log.With("component", "chunker"))
	}

	gen, err := a.newGenerator(cfg.Generation, log)
	if err != nil {
		return nil, err
	}

	pdfOpts := parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext}
	p, err := pipeline.New(pipeline.Deps{
		ParserFor: func(filename string) (parser.Parser, error) { return parser.ForFile(filename, pdfOpts) },
		Chunker:   ch,
		Index: index.New(store, embedder, index.Config{
			Collection: cfg.VectorStore.Collection,
			BatchSize:  cfg.BatchSize,
		}, log.With("component", "index")),
		Generator: generate.WithStats(gen, a.Stats),
		Validator: validate.New(validate.Config{
			ConfidenceThreshold: cfg.Validation.ConfidenceThreshold,
			ContextFactor:       cfg.Validation.ContextFactor,
			GroundingThreshold:  cfg.Validation.GroundingThreshold,
		}),
	}, pipeline.Config{ChunkSize: cfg.ChunkSize, TopK: cfg.TopK}, log.With("component", "pipeline"))
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Pipeline = p
	log.Info("pipeline ready",
		"chunker", cfg.Chunker.Strategy,
		"embedding", cfg.Embedding.Provider,
		"vector_store", cfg.VectorStore.Type,
		"generation", cfg.Generation.Provider,
		"model", cfg.Generation.Model,
	)
	return a, nil
}

// Close releases client connections.
func (a *App) Close() {
	for _, c := range a.closers {
		c()
	}
	a.closers = nil
}

func newEmbedder(cfg config.EmbeddingConfig) (embed.Embedder, error) {
	switch cfg.Provider {
	case "openai":
		e, err := embedopenai.New(embedopenai.Config{
			BaseURL:    cfg.BaseURL,
			APIKey:     cfg.APIKey(),
			Model:      cfg.Model,
			Timeout:    cfg.Timeout,
			MaxRetries: generate.MaxRetries,
		})
		if err != nil {
			return nil, fmt.Errorf("embedder: %w", err)
		}
		return e, nil
	default:
		return tfidf.NewEmbedder(), nil
	}
}

func newStore(cfg config.VectorStoreConfig) vectorstore.Store {
	if cfg.Type == "qdrant" {
		return qdrant.New(qdrant.Config{
			URL:     cfg.Qdrant.URL,
			APIKey:  cfg.Qdrant.APIKey,
			Timeout: cfg.Qdrant.Timeout,
		})
	}
	return memory.New()
}

func (a *App) newGenerator(cfg config.GenerationConfig, log *slog.Logger) (generate.Generator, error) {
	switch cfg.Provider {
	case "anthropic":
		g, err := generate.NewAnthropic(generate.AnthropicConfig{
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey(),
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		}, log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, g.Close)
		return g, nil
	default:
		return generate.NewOpenAI(generate.OpenAIConfig{
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey(),
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Timeout:     cfg.Timeout,
		}, log)
	}
}
