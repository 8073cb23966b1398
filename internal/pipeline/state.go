package pipeline

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Phase is the pipeline's position in uninitialized → structured → indexed.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseStructured    Phase = "structured" // an ingest has parsed a document that is not yet indexed
	PhaseIndexed       Phase = "indexed"
)

// Status is a read-only, JSON-safe copy of pipeline state.
type Status struct {
	IsIndexed     bool       `json:"is_indexed"`
	HasStructure  bool       `json:"has_structure"`
	ChaptersCount int        `json:"chapters_count"`
	Agents        []string   `json:"agents"`
	Phase         Phase      `json:"phase"`
	Document      string     `json:"document,omitempty"`
	ChunksCount   int        `json:"chunks_count"`
	ContentHash   string     `json:"content_hash,omitempty"`
	IndexedAt     *time.Time `json:"indexed_at,omitempty"`
	Ingesting     bool       `json:"ingesting"`
}

// Status reports committed state. Phase is structured only while the first
// ingest is between parsing and a successful build.
func (p *Pipeline) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s := Status{
		IsIndexed:    p.indexed,
		HasStructure: p.doc != nil,
		Agents:       p.Agents(),
		Phase:        PhaseUninitialized,
		ChunksCount:  p.chunks,
		ContentHash:  p.hash,
		Ingesting:    p.ingesting,
	}
	if p.doc != nil {
		s.ChaptersCount = len(p.doc.Chapters)
		s.Document = p.doc.Source
	}
	switch {
	case p.indexed:
		s.Phase = PhaseIndexed
		at := p.indexedAt
		s.IndexedAt = &at
	case p.staged:
		s.Phase = PhaseStructured
	}
	return s
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
