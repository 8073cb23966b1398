package mcpserver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docmind/internal/pipeline"
	"github.com/dgallion1/docmind/internal/validate"
)

type fakePipeline struct {
	answer  pipeline.Answer
	err     error
	status  pipeline.Status
	chapter string
}

func (f *fakePipeline) Ask(_ context.Context, _, chapter string) (pipeline.Answer, error) {
	f.chapter = chapter
	return f.answer, f.err
}

func (f *fakePipeline) Status() pipeline.Status { return f.status }

func TestAskDocument(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	tests := []struct {
		name        string
		pipeline    *fakePipeline
		input       InputAskDocument
		errContains string
		validate    func(t *testing.T, out OutputAskDocument)
	}{
		{
			name:        "empty question returns error",
			pipeline:    &fakePipeline{},
			input:       InputAskDocument{Question: " "},
			errContains: "question is required",
		},
		{
			name: "validated answer is passed through",
			pipeline: &fakePipeline{answer: pipeline.Answer{Result: validate.Result{
				Answer:       "Revenue grew 10% (Section 1.1).",
				Sources:      []validate.Source{{Chapter: "Results", Section: "1.1 Revenue", ChunkID: "chunk_0"}},
				Confidence:   1,
				HasCitations: true,
				IsGrounded:   true,
				Warnings:     []string{},
			}}},
			input: InputAskDocument{Question: "What grew?", Chapter: "ch_1"},
			validate: func(t *testing.T, out OutputAskDocument) {
				assert.Equal(t, "Revenue grew 10% (Section 1.1).", out.Answer)
				assert.Equal(t, 1.0, out.Confidence)
				assert.True(t, out.HasCitations)
				assert.Len(t, out.Sources, 1)
				assert.Empty(t, out.Reason)
			},
		},
		{
			name: "recoverable non-answer carries reason",
			pipeline: &fakePipeline{answer: pipeline.Answer{
				Result: validate.Result{Answer: pipeline.AnswerNotLoaded, Sources: []validate.Source{}},
				Reason: pipeline.ReasonNotIndexed,
			}},
			input: InputAskDocument{Question: "anything"},
			validate: func(t *testing.T, out OutputAskDocument) {
				assert.Equal(t, "not_indexed", out.Reason)
				assert.Zero(t, out.Confidence)
			},
		},
		{
			name:        "retrieval failure propagates",
			pipeline:    &fakePipeline{err: errors.New("retrieve: connection refused")},
			input:       InputAskDocument{Question: "q"},
			errContains: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, out, err := NewTools(tt.pipeline).AskDocument(ctx, req, tt.input)
			assert.Nil(t, result)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input.Chapter, tt.pipeline.chapter)
			tt.validate(t, out)
		})
	}
}

func TestDocumentStatus(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fp := &fakePipeline{status: pipeline.Status{
		IsIndexed:     true,
		Phase:         pipeline.PhaseIndexed,
		Document:      "report.docx",
		ChaptersCount: 2,
		ChunksCount:   7,
		IndexedAt:     &at,
	}}
	_, out, err := NewTools(fp).DocumentStatus(context.Background(), &mcp.CallToolRequest{}, InputDocumentStatus{})
	require.NoError(t, err)
	assert.True(t, out.IsIndexed)
	assert.Equal(t, "indexed", out.Phase)
	assert.Equal(t, 7, out.ChunksCount)
	assert.Equal(t, "2026-03-01T12:00:00Z", out.IndexedAt)

	_, out, err = NewTools(&fakePipeline{}).DocumentStatus(context.Background(), &mcp.CallToolRequest{}, InputDocumentStatus{})
	require.NoError(t, err)
	assert.Empty(t, out.IndexedAt)
}

func TestNewServerRegistersTools(t *testing.T) {
	assert.NotNil(t, NewServer(&fakePipeline{}, "test"))
}
