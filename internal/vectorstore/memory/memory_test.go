package memory

import (
	"context"
	"testing"

	"github.com/dgallion1/docmind/internal/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) *Store {
	t.Helper()
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, "c", 2))
	require.NoError(t, s.Add(ctx, "c",
		[]string{"chunk_0", "chunk_1", "chunk_2"},
		[][]float64{{1, 0}, {0, 1}, {1, 1}},
		[]string{"east", "north", "north-east"},
		[]map[string]any{
			{"chapter_id": "ch_1", "level": 1},
			{"chapter_id": "ch_2", "level": 2},
			{"chapter_id": "ch_1", "level": 2},
		},
	))
	return s
}

func TestQueryOrdersByDistance(t *testing.T) {
	s := seed(t)
	got, err := s.Query(context.Background(), "c", []float64{1, 0}, 3, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"chunk_0", "chunk_2", "chunk_1"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.InDelta(t, 0, got[0].Distance, 1e-9)
	assert.InDelta(t, 1, got[2].Distance, 1e-9)
}

func TestQueryFilterAndLimit(t *testing.T) {
	s := seed(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter vectorstore.Filter
		k      int
		want   []string
	}{
		{name: "chapter filter", filter: vectorstore.Filter{"chapter_id": "ch_1"}, k: 5, want: []string{"chunk_0", "chunk_2"}},
		{name: "conjunction", filter: vectorstore.Filter{"chapter_id": "ch_1", "level": 2}, k: 5, want: []string{"chunk_2"}},
		{name: "float level from json", filter: vectorstore.Filter{"level": float64(2)}, k: 5, want: []string{"chunk_2", "chunk_1"}},
		{name: "no match", filter: vectorstore.Filter{"chapter_id": "ch_9"}, k: 5, want: []string{}},
		{name: "limit", filter: nil, k: 1, want: []string{"chunk_0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Query(ctx, "c", []float64{1, 0}, tt.k, tt.filter)
			require.NoError(t, err)
			ids := make([]string, 0, len(got))
			for _, m := range got {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestMissingCollection(t *testing.T) {
	s := New()
	ctx := context.Background()
	_, err := s.Query(ctx, "nope", []float64{1}, 1, nil)
	assert.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)
	assert.NoError(t, s.Delete(ctx, "nope"))
	err = s.Add(ctx, "nope", []string{"a"}, [][]float64{{1}}, []string{"a"}, []map[string]any{{}})
	assert.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)
}

func TestAddValidation(t *testing.T) {
	s := New()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, "c", 2))
	assert.Error(t, s.Add(ctx, "c", []string{"a", "b"}, [][]float64{{1, 0}}, []string{"a"}, []map[string]any{{}}))
	assert.Error(t, s.Add(ctx, "c", []string{"a"}, [][]float64{{1, 0, 0}}, []string{"a"}, []map[string]any{{}}))
	assert.Error(t, s.Create(ctx, "d", 0))
}

func TestCreateReplacesAndCollections(t *testing.T) {
	s := seed(t)
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, "c", 2))
	got, err := s.Query(ctx, "c", []float64{1, 0}, 3, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	require.NoError(t, s.Create(ctx, "b", 2))
	assert.Equal(t, []string{"b", "c"}, s.Collections())
}
