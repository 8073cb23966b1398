// Package vectorstore defines the collection-oriented nearest-neighbour
// store the index writes into.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
)

// ErrCollectionNotFound is returned when querying or adding to a missing
// collection.
var ErrCollectionNotFound = errors.New("collection not found")

// Filter is a conjunction of exact matches on scalar metadata fields.
// A nil or empty filter matches everything.
type Filter map[string]any

// Match reports whether every filter field is present in fields with an
// equal value. Numbers compare by value regardless of Go type.
func (f Filter) Match(fields map[string]any) bool {
	for k, want := range f {
		got, ok := fields[k]
		if !ok || !scalarEqual(got, want) {
			return false
		}
	}
	return true
}

// Match is one ranked query result. Distance is 1 - cosine similarity.
type Match struct {
	ID       string
	Document string
	Metadata map[string]any
	Distance float64
}

// Store holds named collections of vectors with documents and metadata.
type Store interface {
	// Create makes an empty collection, replacing any existing one.
	Create(ctx context.Context, collection string, dim int) error
	// Delete drops a collection. Deleting a missing collection is not an error.
	Delete(ctx context.Context, collection string) error
	Add(ctx context.Context, collection string, ids []string, vectors [][]float64, docs []string, metas []map[string]any) error
	// Query returns up to k matches ordered by ascending distance.
	Query(ctx context.Context, collection string, vector []float64, k int, filter Filter) ([]Match, error)
}

// CheckAdd validates the parallel slices passed to Add.
func CheckAdd(ids []string, vectors [][]float64, docs []string, metas []map[string]any) error {
	n := len(ids)
	if len(vectors) != n || len(docs) != n || len(metas) != n {
		return fmt.Errorf("add: length mismatch: ids=%d vectors=%d docs=%d metas=%d", n, len(vectors), len(docs), len(metas))
	}
	return nil
}

func scalarEqual(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
