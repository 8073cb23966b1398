// Package pipeline sequences parse, chunk, index, retrieve, generate and
// validate for one active document.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/docmind/internal/chunker"
	"github.com/dgallion1/docmind/internal/doctree"
	"github.com/dgallion1/docmind/internal/generate"
	"github.com/dgallion1/docmind/internal/index"
	"github.com/dgallion1/docmind/internal/parser"
	"github.com/dgallion1/docmind/internal/validate"
	"github.com/dgallion1/docmind/internal/vectorstore"
)

const DefaultTopK = 5

// Index is the subset of *index.Index the pipeline drives.
type Index interface {
	Build(ctx context.Context, texts []string, metas []doctree.ChunkMeta) (index.Handle, error)
	Commit(h index.Handle) (retired string, err error)
	Discard(ctx context.Context, collection string)
	Query(ctx context.Context, question string, topK int, filter vectorstore.Filter) ([]doctree.Retrieved, error)
}

// Validator scores an answer against its chunks.
type Validator interface {
	Validate(answer string, chunks []doctree.Retrieved) validate.Result
}

// Deps are the capabilities a pipeline needs. All are required.
type Deps struct {
	ParserFor func(filename string) (parser.Parser, error)
	Chunker   chunker.Chunker
	Index     Index
	Generator generate.Generator
	Validator Validator
}

// Config holds pipeline-level tunables.
type Config struct {
	ChunkSize int // Caps the single fallback chunk.
	TopK      int
}

// UnreadyError lists the capabilities missing at construction.
type UnreadyError struct {
	Missing []string
}

func (e *UnreadyError) Error() string {
	return "pipeline not ready: missing " + strings.Join(e.Missing, ", ")
}

// Pipeline owns the committed document and index state. Ingests are
// serialized; Ask and Status may be called concurrently with anything.
type Pipeline struct {
	deps Deps
	cfg  Config
	log  *slog.Logger

	ingestSem chan struct{}

	mu        sync.RWMutex
	doc       *doctree.Document
	indexed   bool
	chunks    int
	hash      string
	indexedAt time.Time
	ingesting bool
	staged    bool
}

// New checks that every capability is present and returns *UnreadyError
// otherwise.
func New(deps Deps, cfg Config, log *slog.Logger) (*Pipeline, error) {
	var missing []string
	if deps.ParserFor == nil {
		missing = append(missing, "parser")
	}
	if deps.Chunker == nil {
		missing = append(missing, "chunker")
	}
	if deps.Index == nil {
		missing = append(missing, "index")
	}
	if deps.Generator == nil {
		missing = append(missing, "generator")
	}
	if deps.Validator == nil {
		missing = append(missing, "validator")
	}
	if len(missing) > 0 {
		return nil, &UnreadyError{Missing: missing}
	}

	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = chunker.DefaultConfig().ChunkSize
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		deps:      deps,
		cfg:       cfg,
		log:       log,
		ingestSem: make(chan struct{}, 1),
	}, nil
}

// Agents names the wired capabilities in pipeline order.
func (p *Pipeline) Agents() []string {
	return []string{"parser", "chunker", "index", "generator", "validator"}
}

// acquire blocks until no other ingest is running or ctx is done.
func (p *Pipeline) acquire(ctx context.Context) (func(), error) {
	select {
	case p.ingestSem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	p.mu.Lock()
	p.ingesting = true
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		p.ingesting = false
		p.staged = false
		p.mu.Unlock()
		<-p.ingestSem
	}, nil
}

func (p *Pipeline) isIndexed() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.indexed
}

// Structure returns the committed document tree, or nil. Callers must not
// modify it.
func (p *Pipeline) Structure() *doctree.Document {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.doc
}

var errNoContent = errors.New("document has no extractable content")

func wrapStage(stage string, err error) error {
	return fmt.Errorf("%s: %w", stage, err)
}
