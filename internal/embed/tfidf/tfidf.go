// Package tfidf is a local embedder that needs no model download. The
// vocabulary is fitted on the corpus being indexed.
package tfidf

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/dgallion1/docmind/internal/embed"
)

var tokenPattern = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)

// Embedder is an unfitted TF-IDF vectorizer. Embedding with it fails with
// embed.ErrEmbeddingUnavailable; call Fit to obtain a Model.
type Embedder struct {
	stopwords map[string]struct{}
}

func NewEmbedder() *Embedder {
	return &Embedder{stopwords: defaultStopwords()}
}

func (e *Embedder) Embed(context.Context, string) ([]float64, error) {
	return nil, fmt.Errorf("tfidf: %w: not fitted", embed.ErrEmbeddingUnavailable)
}

func (e *Embedder) EmbedBatch(context.Context, []string) ([][]float64, error) {
	return nil, fmt.Errorf("tfidf: %w: not fitted", embed.ErrEmbeddingUnavailable)
}

// Fit builds the vocabulary and smoothed IDF values from corpus.
func (e *Embedder) Fit(corpus []string) (embed.Embedder, error) {
	if len(corpus) == 0 {
		return nil, errors.New("tfidf: empty corpus")
	}
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range tokenize(text, e.stopwords) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return nil, errors.New("tfidf: no tokens found in corpus")
	}

	// Stable ordering keeps dimensions reproducible across fits.
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	m := &Model{
		vocabulary: make(map[string]int, len(terms)),
		idf:        make([]float64, len(terms)),
		stopwords:  e.stopwords,
	}
	n := float64(len(corpus))
	for i, term := range terms {
		m.vocabulary[term] = i
		m.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return m, nil
}

// Model is a fitted TF-IDF embedder. It is immutable and safe for
// concurrent use.
type Model struct {
	vocabulary map[string]int
	idf        []float64
	stopwords  map[string]struct{}
}

// Dimension returns the vocabulary size.
func (m *Model) Dimension() int { return len(m.idf) }

func (m *Model) Embed(_ context.Context, text string) ([]float64, error) {
	return m.vector(text), nil
}

func (m *Model) EmbedBatch(_ context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *Model) vector(text string) []float64 {
	vec := make([]float64, len(m.idf))
	tf := make(map[int]int)
	total := 0
	for _, tok := range tokenize(text, m.stopwords) {
		if idx, ok := m.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}
	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * m.idf[idx]
	}
	// L2 normalize
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

func tokenize(text string, stopwords map[string]struct{}) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"и", "в", "во", "не", "что", "он", "на", "я", "с", "со", "как", "а", "то", "все", "она", "так", "его", "но", "да", "ты", "к", "у", "же", "вы", "за", "бы", "по", "только", "ее", "мне", "было", "вот", "от", "меня", "еще", "нет", "о", "из", "ему", "это", "для", "при", "или",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
