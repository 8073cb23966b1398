package chunker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgallion1/docmind/internal/embed"
)

// Semantic places chunk boundaries where adjacent sentences stop being
// similar. When embeddings are unavailable it degrades to sentence windows
// with character overlap; embedding failures are never returned.
type Semantic struct {
	cfg      Config
	embedder embed.Embedder
	splitter SentenceSplitter
	log      *slog.Logger
}

// NewSemantic creates a semantic chunker. A nil splitter selects
// RegexSplitter; a nil embedder always degrades to sentence windows.
func NewSemantic(cfg Config, e embed.Embedder, splitter SentenceSplitter, log *slog.Logger) *Semantic {
	if splitter == nil {
		splitter = RegexSplitter{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Semantic{cfg: cfg.normalize(), embedder: e, splitter: splitter, log: log}
}

func (s *Semantic) Split(ctx context.Context, text string) []string {
	if isBlank(text) {
		return nil
	}
	if runeLen(text) < s.cfg.ChunkSize {
		return []string{text}
	}
	sentences := s.splitter.Split(text)
	if len(sentences) <= 1 {
		return []string{text}
	}

	vecs, err := s.embedSentences(ctx, sentences)
	if err != nil {
		s.log.Warn("semantic chunking degraded to sentence windows", "sentences", len(sentences), "error", err)
		return nonEmpty(s.windows(sentences), text)
	}

	bounds := []int{0}
	for i := 1; i < len(vecs); i++ {
		if embed.Cosine(vecs[i-1], vecs[i]) < s.cfg.SimilarityThreshold {
			bounds = append(bounds, i)
		}
	}
	bounds = append(bounds, len(sentences))

	var out []string
	for i := 0; i+1 < len(bounds); i++ {
		group := sentences[bounds[i]:bounds[i+1]]
		chunk := strings.Join(group, " ")
		if isBlank(chunk) {
			continue
		}
		if runeLen(chunk) > s.cfg.ChunkSize && len(group) > 1 {
			out = append(out, s.windows(group)...)
			continue
		}
		out = append(out, chunk)
	}
	return nonEmpty(out, text)
}

func (s *Semantic) embedSentences(ctx context.Context, sentences []string) ([][]float64, error) {
	e := s.embedder
	if e == nil {
		return nil, embed.ErrEmbeddingUnavailable
	}
	if f, ok := e.(embed.Fitter); ok {
		fitted, err := f.Fit(sentences)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", embed.ErrEmbeddingUnavailable, err)
		}
		e = fitted
	}
	vecs := make([][]float64, 0, len(sentences))
	for start := 0; start < len(sentences); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(sentences))
		batch, err := e.EmbedBatch(ctx, sentences[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed sentences %d-%d: %w", start, end, err)
		}
		if len(batch) != end-start {
			return nil, errors.New("embedder returned wrong number of vectors")
		}
		vecs = append(vecs, batch...)
	}
	return vecs, nil
}

// windows packs sentences up to ChunkSize characters, counting the joining
// spaces. Each new window starts with the trailing sentences of the previous
// one whose combined length stays under Overlap.
func (s *Semantic) windows(sentences []string) []string {
	var out []string
	var cur []string
	size := 0
	for _, sent := range sentences {
		sent = strings.TrimSpace(sent)
		if sent == "" {
			continue
		}
		n := runeLen(sent)
		if len(cur) > 0 && size+len(cur)+n > s.cfg.ChunkSize {
			out = append(out, strings.Join(cur, " "))

			var carry []string
			carried := 0
			for j := len(cur) - 1; j >= 0; j-- {
				l := runeLen(cur[j])
				if carried+l >= s.cfg.Overlap || carried+l+len(carry)+1+n > s.cfg.ChunkSize {
					break
				}
				carry = append([]string{cur[j]}, carry...)
				carried += l
			}
			cur, size = carry, carried
		}
		cur = append(cur, sent)
		size += n
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, " "))
	}
	return out
}

func nonEmpty(chunks []string, text string) []string {
	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}
