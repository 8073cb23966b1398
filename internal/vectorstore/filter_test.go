package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterMatch(t *testing.T) {
	fields := map[string]any{"chapter_id": "ch_1", "level": 2, "type": "section"}
	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{name: "nil matches all", filter: nil, want: true},
		{name: "exact string", filter: Filter{"chapter_id": "ch_1"}, want: true},
		{name: "different string", filter: Filter{"chapter_id": "ch_2"}, want: false},
		{name: "missing field", filter: Filter{"section_id": "x"}, want: false},
		{name: "int vs float", filter: Filter{"level": 2.0}, want: true},
		{name: "string vs number", filter: Filter{"level": "2"}, want: false},
		{name: "conjunction", filter: Filter{"chapter_id": "ch_1", "type": "chapter"}, want: false},
		{name: "uncomparable value", filter: Filter{"chapter_id": []any{"ch_1"}}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(fields))
		})
	}
}

func TestCheckAdd(t *testing.T) {
	assert.NoError(t, CheckAdd([]string{"a"}, [][]float64{{1}}, []string{"a"}, []map[string]any{{}}))
	assert.Error(t, CheckAdd([]string{"a"}, nil, []string{"a"}, []map[string]any{{}}))
}
