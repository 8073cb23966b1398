package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/docmind/internal/chunker"
	"github.com/dgallion1/docmind/internal/doctree"
)

// ParseError reports a document that could not be turned into a structure.
// Pipeline state is unchanged when it is returned.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", filepath.Base(e.Path), e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IngestSummary describes a committed ingest.
type IngestSummary struct {
	Document      string `json:"document"`
	Title         string `json:"title"`
	ChaptersCount int    `json:"chapters_count"`
	ChunksCount   int    `json:"chunks_count"`
	Collection    string `json:"collection"`
	ContentHash   string `json:"content_hash"`
	Fallback      bool   `json:"fallback"`
}

// IngestFile parses the file at path and ingests the result.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (IngestSummary, error) {
	log := p.log.With("path", path)

	prs, err := p.deps.ParserFor(path)
	if err != nil {
		return IngestSummary{}, &ParseError{Path: path, Err: err}
	}
	f, err := os.Open(path)
	if err != nil {
		return IngestSummary{}, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	start := time.Now()
	doc, err := prs.Parse(f, filepath.Base(path))
	if err != nil {
		log.Error("parse failed", "error", err)
		return IngestSummary{}, &ParseError{Path: path, Err: err}
	}
	if len(doc.Chapters) == 0 {
		return IngestSummary{}, &ParseError{Path: path, Err: errNoContent}
	}
	if doc.Source == "" {
		doc.Source = filepath.Base(path)
	}
	log.Info("parsed document", "chapters", len(doc.Chapters), "duration_ms", time.Since(start).Milliseconds())
	return p.Ingest(ctx, doc)
}

// Ingest chunks and indexes doc, then commits it as the active document. A
// second call blocks until the first finishes. On any error the previously
// committed state is kept.
func (p *Pipeline) Ingest(ctx context.Context, doc *doctree.Document) (IngestSummary, error) {
	if doc == nil || len(doc.Chapters) == 0 {
		return IngestSummary{}, errNoContent
	}
	release, err := p.acquire(ctx)
	if err != nil {
		return IngestSummary{}, err
	}
	defer release()

	p.mu.Lock()
	p.staged = true
	p.mu.Unlock()

	log := p.log.With("document", doc.Source)

	// Phase 1: Chunk
	texts, metas := p.collect(ctx, doc)
	if err := ctx.Err(); err != nil {
		return IngestSummary{}, wrapStage("chunking", err)
	}
	fallback := false
	if len(texts) == 0 {
		text, meta, ok := p.fallbackChunk(doc)
		if !ok {
			return IngestSummary{}, errNoContent
		}
		log.Warn("no chunks from document nodes, using single fallback chunk")
		texts, metas = []string{text}, []doctree.ChunkMeta{meta}
		fallback = true
	}
	tokens := 0
	for _, t := range texts {
		tokens += chunker.EstimateTokens(t)
	}
	log.Info("chunked document", "chunks", len(texts), "est_tokens", tokens)

	// Phase 2: Index
	handle, err := p.deps.Index.Build(ctx, texts, metas)
	if err != nil {
		log.Error("index build failed", "error", err)
		return IngestSummary{}, wrapStage("indexing", err)
	}

	// Phase 3: Commit. The index swap and the document state change under
	// one lock so Status, Structure and Ask always agree on the document.
	hash := ContentHashHex([]byte(doc.FlattenText()))
	p.mu.Lock()
	retired, err := p.deps.Index.Commit(handle)
	if err != nil {
		p.mu.Unlock()
		p.deps.Index.Discard(ctx, handle.Collection)
		log.Error("index commit failed", "error", err)
		return IngestSummary{}, wrapStage("indexing", err)
	}
	p.doc = doc
	p.indexed = true
	p.chunks = handle.Count
	p.hash = hash
	p.indexedAt = handle.BuiltAt
	p.mu.Unlock()

	if retired != "" {
		p.deps.Index.Discard(ctx, retired)
	}

	log.Info("document indexed", "chapters", len(doc.Chapters), "chunks", handle.Count, "collection", handle.Collection)
	return IngestSummary{
		Document:      doc.Source,
		Title:         doc.Title,
		ChaptersCount: len(doc.Chapters),
		ChunksCount:   handle.Count,
		Collection:    handle.Collection,
		ContentHash:   hash,
		Fallback:      fallback,
	}, nil
}

// collect walks chapters, their sections and any deeper subsections in
// document order, chunking each node's own content.
func (p *Pipeline) collect(ctx context.Context, doc *doctree.Document) ([]string, []doctree.ChunkMeta) {
	var (
		texts []string
		metas []doctree.ChunkMeta
	)
	add := func(content string, meta doctree.ChunkMeta) {
		if strings.TrimSpace(content) == "" || ctx.Err() != nil {
			return
		}
		for _, c := range p.deps.Chunker.Split(ctx, content) {
			texts = append(texts, c)
			metas = append(metas, meta)
		}
	}

	var subsections func(chapter, section *doctree.Node, nodes []*doctree.Node)
	subsections = func(chapter, section *doctree.Node, nodes []*doctree.Node) {
		for _, sub := range nodes {
			add(sub.Content, doctree.ChunkMeta{
				ChapterID:       chapter.ID,
				ChapterTitle:    chapter.Title,
				SectionID:       section.ID,
				SectionTitle:    section.Title,
				SubsectionID:    sub.ID,
				SubsectionTitle: sub.Title,
				Level:           sub.Level,
				Type:            doctree.TypeSubsection,
			})
			subsections(chapter, section, sub.Children)
		}
	}

	for _, ch := range doc.Chapters {
		add(ch.Content, doctree.ChunkMeta{
			ChapterID:    ch.ID,
			ChapterTitle: ch.Title,
			Level:        1,
			Type:         doctree.TypeChapter,
		})
		for _, sec := range ch.Children {
			add(sec.Content, doctree.ChunkMeta{
				ChapterID:    ch.ID,
				ChapterTitle: ch.Title,
				SectionID:    sec.ID,
				SectionTitle: sec.Title,
				Level:        2,
				Type:         doctree.TypeSection,
			})
			subsections(ch, sec, sec.Children)
		}
	}
	return texts, metas
}

// fallbackChunk joins all chapter content, or the heading titles when there
// is none, truncated to the chunk size.
func (p *Pipeline) fallbackChunk(doc *doctree.Document) (string, doctree.ChunkMeta, bool) {
	var parts []string
	for _, ch := range doc.Chapters {
		if c := strings.TrimSpace(ch.Content); c != "" {
			parts = append(parts, c)
		}
	}
	if len(parts) == 0 {
		doc.Walk(func(n *doctree.Node) {
			if t := strings.TrimSpace(n.Title); t != "" {
				parts = append(parts, t)
			}
		})
	}
	text := strings.Join(parts, "\n")
	if r := []rune(text); len(r) > p.cfg.ChunkSize {
		text = strings.TrimSpace(string(r[:p.cfg.ChunkSize]))
	}
	if text == "" {
		return "", doctree.ChunkMeta{}, false
	}
	title := doc.Title
	if title == "" {
		title = "Entire document"
	}
	return text, doctree.ChunkMeta{
		ChapterID:    doctree.FallbackChapterID,
		ChapterTitle: title,
		Level:        0,
		Type:         doctree.TypeFull,
	}, true
}

// IsNoContent reports whether err means the document had nothing to index.
func IsNoContent(err error) bool {
	return errors.Is(err, errNoContent)
}
