// Package memory is an in-process vector store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dgallion1/docmind/internal/embed"
	"github.com/dgallion1/docmind/internal/vectorstore"
)

type collection struct {
	dim     int
	ids     []string
	vectors [][]float64
	docs    []string
	metas   []map[string]any
}

// Store keeps collections in memory, guarded by a RWMutex.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

func New() *Store {
	return &Store{collections: make(map[string]*collection)}
}

func (s *Store) Create(_ context.Context, name string, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("memory store: invalid dimension %d", dim)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[name] = &collection{dim: dim}
	return nil
}

func (s *Store) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

func (s *Store) Add(_ context.Context, name string, ids []string, vectors [][]float64, docs []string, metas []map[string]any) error {
	if err := vectorstore.CheckAdd(ids, vectors, docs, metas); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("memory store: %w: %s", vectorstore.ErrCollectionNotFound, name)
	}
	for i, v := range vectors {
		if len(v) != c.dim {
			return fmt.Errorf("memory store: vector %s has dimension %d, want %d", ids[i], len(v), c.dim)
		}
	}
	c.ids = append(c.ids, ids...)
	c.vectors = append(c.vectors, vectors...)
	c.docs = append(c.docs, docs...)
	c.metas = append(c.metas, metas...)
	return nil
}

func (s *Store) Query(_ context.Context, name string, vector []float64, k int, filter vectorstore.Filter) ([]vectorstore.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("memory store: %w: %s", vectorstore.ErrCollectionNotFound, name)
	}
	if k <= 0 {
		return nil, nil
	}

	matches := make([]vectorstore.Match, 0, len(c.ids))
	for i := range c.ids {
		if !filter.Match(c.metas[i]) {
			continue
		}
		matches = append(matches, vectorstore.Match{
			ID:       c.ids[i],
			Document: c.docs[i],
			Metadata: c.metas[i],
			Distance: 1 - embed.Cosine(vector, c.vectors[i]),
		})
	}
	sort.SliceStable(matches, func(a, b int) bool { return matches[a].Distance < matches[b].Distance })
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Collections lists collection names, for diagnostics and tests.
func (s *Store) Collections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for n := range s.collections {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
