// Package index embeds chunks into a vector store and answers filtered
// similarity queries against the most recent successful build.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/docmind/internal/doctree"
	"github.com/dgallion1/docmind/internal/embed"
	"github.com/dgallion1/docmind/internal/vectorstore"
)

// ErrNotIndexed is returned by Query before any build has been committed.
var ErrNotIndexed = errors.New("no document indexed")

// ErrNotStaged is returned by Commit for a handle that is not the pending build.
var ErrNotStaged = errors.New("build is not staged")

const DefaultBatchSize = 16

type Config struct {
	Collection string // Base name; each build writes <Collection>_<generation>.
	BatchSize  int
}

// Handle describes a build.
type Handle struct {
	Collection string    `json:"collection"`
	Count      int       `json:"count"`
	BuiltAt    time.Time `json:"built_at"`
}

type snapshot struct {
	Handle
	embedder embed.Embedder
}

// Index owns the active collection. Build writes a fresh collection and
// stages it; Commit makes it the one Query reads. Queries see either the
// previous build or the new one, never a partial one.
type Index struct {
	store    vectorstore.Store
	embedder embed.Embedder
	cfg      Config
	log      *slog.Logger

	buildMu    sync.Mutex
	generation int

	mu      sync.RWMutex
	active  *snapshot
	pending *snapshot
}

func New(store vectorstore.Store, embedder embed.Embedder, cfg Config, log *slog.Logger) *Index {
	if cfg.Collection == "" {
		cfg.Collection = "docmind"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if log == nil {
		log = slog.Default()
	}
	return &Index{store: store, embedder: embedder, cfg: cfg, log: log}
}

// Build indexes texts with their metadata under positional ids chunk_<i>
// into a new collection and stages it. Queries keep reading the previous
// build until Commit.
func (ix *Index) Build(ctx context.Context, texts []string, metas []doctree.ChunkMeta) (Handle, error) {
	if len(texts) != len(metas) {
		return Handle{}, fmt.Errorf("build: %d chunks but %d metadata entries", len(texts), len(metas))
	}
	if len(texts) == 0 {
		return Handle{}, errors.New("build: no chunks to index")
	}

	ix.buildMu.Lock()
	defer ix.buildMu.Unlock()

	ix.generation++
	collection := fmt.Sprintf("%s_%d", ix.cfg.Collection, ix.generation)
	log := ix.log.With("collection", collection, "chunks", len(texts))

	e := ix.embedder
	if f, ok := e.(embed.Fitter); ok {
		fitted, err := f.Fit(texts)
		if err != nil {
			return Handle{}, fmt.Errorf("build: fit embedder: %w", err)
		}
		e = fitted
	}

	if err := ix.fill(ctx, collection, e, texts, metas); err != nil {
		if derr := ix.store.Delete(context.WithoutCancel(ctx), collection); derr != nil {
			log.Warn("failed to drop partial collection", "error", derr)
		}
		return Handle{}, err
	}

	snap := &snapshot{
		Handle:   Handle{Collection: collection, Count: len(texts), BuiltAt: time.Now()},
		embedder: e,
	}
	ix.mu.Lock()
	stale := ix.pending
	ix.pending = snap
	ix.mu.Unlock()

	if stale != nil {
		ix.Discard(ctx, stale.Collection)
	}
	log.Info("index built")
	return snap.Handle, nil
}

// Commit makes the staged build h active and returns the collection it
// replaced, empty for the first commit. The caller drops the replaced
// collection with Discard once nothing refers to it.
func (ix *Index) Commit(h Handle) (retired string, err error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.pending == nil || ix.pending.Collection != h.Collection {
		return "", fmt.Errorf("commit %s: %w", h.Collection, ErrNotStaged)
	}
	if ix.active != nil {
		retired = ix.active.Collection
	}
	ix.active, ix.pending = ix.pending, nil
	return retired, nil
}

// Discard deletes a collection that is no longer active. Failures are
// logged; a leftover collection does not affect queries.
func (ix *Index) Discard(ctx context.Context, collection string) {
	ix.mu.Lock()
	if ix.pending != nil && ix.pending.Collection == collection {
		ix.pending = nil
	}
	live := ix.active != nil && ix.active.Collection == collection
	ix.mu.Unlock()
	if live || collection == "" {
		return
	}
	if err := ix.store.Delete(context.WithoutCancel(ctx), collection); err != nil {
		ix.log.Warn("failed to drop collection", "collection", collection, "error", err)
	}
}

func (ix *Index) fill(ctx context.Context, collection string, e embed.Embedder, texts []string, metas []doctree.ChunkMeta) error {
	created := false
	for start := 0; start < len(texts); start += ix.cfg.BatchSize {
		end := min(start+ix.cfg.BatchSize, len(texts))
		batch := texts[start:end]

		vecs, err := e.EmbedBatch(ctx, batch)
		if err != nil {
			return fmt.Errorf("build: embed batch %d-%d: %w", start, end, err)
		}
		if len(vecs) != len(batch) {
			return fmt.Errorf("build: embedder returned %d vectors for %d chunks", len(vecs), len(batch))
		}
		if !created {
			if err := ix.store.Create(ctx, collection, len(vecs[0])); err != nil {
				return fmt.Errorf("build: create collection: %w", err)
			}
			created = true
		}

		ids := make([]string, len(batch))
		fields := make([]map[string]any, len(batch))
		for i := range batch {
			ids[i] = ChunkID(start + i)
			fields[i] = metas[start+i].Fields()
		}
		if err := ix.store.Add(ctx, collection, ids, vecs, batch, fields); err != nil {
			return fmt.Errorf("build: add batch %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// ChunkID is the positional id of the i-th chunk in a build.
func ChunkID(i int) string {
	return fmt.Sprintf("chunk_%d", i)
}

// Query returns up to topK chunks closest to question, most relevant first.
func (ix *Index) Query(ctx context.Context, question string, topK int, filter vectorstore.Filter) ([]doctree.Retrieved, error) {
	snap := ix.current()
	if snap == nil {
		return nil, ErrNotIndexed
	}
	matches, err := ix.query(ctx, snap, question, topK, filter)
	if errors.Is(err, vectorstore.ErrCollectionNotFound) {
		// A concurrent Build may have dropped the collection we started on.
		if next := ix.current(); next != nil && next != snap {
			matches, err = ix.query(ctx, next, question, topK, filter)
		}
	}
	if err != nil {
		return nil, err
	}

	out := make([]doctree.Retrieved, len(matches))
	for i, m := range matches {
		out[i] = doctree.Retrieved{
			Record: doctree.Record{
				ID:   m.ID,
				Text: m.Document,
				Meta: doctree.MetaFromFields(m.Metadata),
			},
			Distance: m.Distance,
		}
	}
	return out, nil
}

func (ix *Index) query(ctx context.Context, snap *snapshot, question string, topK int, filter vectorstore.Filter) ([]vectorstore.Match, error) {
	vec, err := snap.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("query: embed question: %w", err)
	}
	matches, err := ix.store.Query(ctx, snap.Collection, vec, topK, filter)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	return matches, nil
}

// Current reports the committed build, if any.
func (ix *Index) Current() (Handle, bool) {
	snap := ix.current()
	if snap == nil {
		return Handle{}, false
	}
	return snap.Handle, true
}

func (ix *Index) current() *snapshot {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.active
}
