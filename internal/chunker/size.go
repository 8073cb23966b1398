package chunker

import (
	"context"
	"strings"
)

// Size accumulates whitespace-separated words up to ChunkSize characters and
// seeds each chunk with the last Overlap/10 words of the previous one.
type Size struct {
	cfg Config
}

func NewSize(cfg Config) *Size {
	return &Size{cfg: cfg.normalize()}
}

func (s *Size) Split(_ context.Context, text string) []string {
	if isBlank(text) {
		return nil
	}
	if runeLen(text) < s.cfg.ChunkSize {
		return []string{text}
	}
	words := strings.Fields(text)
	spans := wordSpans(words, s.cfg.ChunkSize, s.cfg.Overlap/10)
	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = strings.Join(words[sp.start:sp.end], " ")
	}
	return out
}

type span struct {
	start, end int
}

// wordSpans returns half-open word ranges. Each span after the first begins
// at most overlapWords before the previous span's end; carried words are
// dropped from the front when they would push the next word past size.
func wordSpans(words []string, size, overlapWords int) []span {
	var spans []span
	start, length := 0, 0
	for i, w := range words {
		wl := runeLen(w) + 1 // +1 for the joining space
		if length+wl > size && i > start {
			spans = append(spans, span{start, i})

			start = i - overlapWords
			if start < spans[len(spans)-1].start+1 {
				start = spans[len(spans)-1].start + 1
			}
			length = 0
			for j := start; j < i; j++ {
				length += runeLen(words[j]) + 1
			}
			for start < i && length+wl > size {
				length -= runeLen(words[start]) + 1
				start++
			}
		}
		length += wl
	}
	if start < len(words) {
		spans = append(spans, span{start, len(words)})
	}
	return spans
}
