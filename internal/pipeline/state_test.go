package pipeline

import (
	"testing"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_DifferentInputs(t *testing.T) {
	h1 := ContentHashHex([]byte("aaa"))
	h2 := ContentHashHex([]byte("bbb"))
	if h1 == h2 {
		t.Error("expected different hashes for different inputs")
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	// SHA-256 of empty input is well-known.
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestStatus_Uninitialized(t *testing.T) {
	p := &Pipeline{ingestSem: make(chan struct{}, 1)}
	s := p.Status()
	if s.IsIndexed || s.HasStructure {
		t.Fatalf("expected empty status, got %+v", s)
	}
	if s.Phase != PhaseUninitialized {
		t.Errorf("expected phase %q, got %q", PhaseUninitialized, s.Phase)
	}
	if s.IndexedAt != nil {
		t.Errorf("expected no indexed_at, got %v", s.IndexedAt)
	}
	if len(s.Agents) != 5 {
		t.Errorf("expected 5 agents, got %v", s.Agents)
	}
}

func TestStatus_StructuredWhileFirstIngestRuns(t *testing.T) {
	p := &Pipeline{ingestSem: make(chan struct{}, 1)}
	p.staged = true
	p.ingesting = true
	if got := p.Status().Phase; got != PhaseStructured {
		t.Errorf("expected phase %q, got %q", PhaseStructured, got)
	}
	p.indexed = true
	if got := p.Status().Phase; got != PhaseIndexed {
		t.Errorf("expected committed index to win, got %q", got)
	}
}
