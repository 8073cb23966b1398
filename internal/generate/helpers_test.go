package generate

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dgallion1/docmind/internal/doctree"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fastBackoff(t *testing.T) {
	t.Helper()
	prev := backoff
	backoff = func(int) time.Duration { return time.Millisecond }
	t.Cleanup(func() { backoff = prev })
}

func chunk(id, text, chapter, section string) doctree.Retrieved {
	return doctree.Retrieved{Record: doctree.Record{
		ID:   id,
		Text: text,
		Meta: doctree.ChunkMeta{ChapterTitle: chapter, SectionTitle: section},
	}}
}
