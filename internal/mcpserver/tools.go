// Package mcpserver exposes the active document to MCP clients over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dgallion1/docmind/internal/pipeline"
	"github.com/dgallion1/docmind/internal/validate"
)

// Pipeline is the subset of *pipeline.Pipeline the tools call.
type Pipeline interface {
	Ask(ctx context.Context, question, chapter string) (pipeline.Answer, error)
	Status() pipeline.Status
}

// MetadataAskDocument describes the ask_document tool.
var MetadataAskDocument = &mcp.Tool{
	Name: "ask_document",
	Description: "Answer a question from the loaded document. The answer is generated only from " +
		"retrieved passages and is returned with its sources, a confidence score between 0 and 1, " +
		"and warnings when it cites no chapter or section or may not be grounded in the text. " +
		"A non-empty reason means no answer was generated (not_indexed, no_matches, generation_failed).",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"question"},
		"properties": map[string]interface{}{
			"question": map[string]interface{}{
				"type":        "string",
				"description": "Natural-language question about the document",
			},
			"chapter": map[string]interface{}{
				"type":        "string",
				"description": "Optional chapter id (for example ch_2) to restrict retrieval to one chapter",
			},
		},
	},
}

// InputAskDocument is the input for the ask_document tool.
type InputAskDocument struct {
	Question string `json:"question"`
	Chapter  string `json:"chapter"`
}

// OutputAskDocument is the output for the ask_document tool.
type OutputAskDocument struct {
	Answer       string            `json:"answer"`
	Sources      []validate.Source `json:"sources"`
	Confidence   float64           `json:"confidence"`
	HasCitations bool              `json:"has_citations"`
	IsGrounded   bool              `json:"is_grounded"`
	Warnings     []string          `json:"warnings"`
	Reason       string            `json:"reason,omitempty"`
}

// MetadataDocumentStatus describes the document_status tool.
var MetadataDocumentStatus = &mcp.Tool{
	Name:        "document_status",
	Description: "Report whether a document is indexed, its name, chapter and chunk counts, and content hash.",
	InputSchema: map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	},
}

// InputDocumentStatus is the (empty) input for the document_status tool.
type InputDocumentStatus struct{}

// OutputDocumentStatus is the output for the document_status tool.
type OutputDocumentStatus struct {
	IsIndexed     bool     `json:"is_indexed"`
	Phase         string   `json:"phase"`
	Document      string   `json:"document"`
	ChaptersCount int      `json:"chapters_count"`
	ChunksCount   int      `json:"chunks_count"`
	ContentHash   string   `json:"content_hash"`
	IndexedAt     string   `json:"indexed_at"`
	Agents        []string `json:"agents"`
}

// Tools binds tool handlers to a pipeline.
type Tools struct {
	pipeline Pipeline
}

func NewTools(p Pipeline) *Tools {
	return &Tools{pipeline: p}
}

// AskDocument answers a question against the active document.
func (t *Tools) AskDocument(ctx context.Context, _ *mcp.CallToolRequest, input InputAskDocument) (*mcp.CallToolResult, OutputAskDocument, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, OutputAskDocument{}, fmt.Errorf("question is required")
	}
	ans, err := t.pipeline.Ask(ctx, input.Question, input.Chapter)
	if err != nil {
		return nil, OutputAskDocument{}, err
	}
	return nil, OutputAskDocument{
		Answer:       ans.Answer,
		Sources:      ans.Sources,
		Confidence:   ans.Confidence,
		HasCitations: ans.HasCitations,
		IsGrounded:   ans.IsGrounded,
		Warnings:     ans.Warnings,
		Reason:       string(ans.Reason),
	}, nil
}

// DocumentStatus reports the pipeline state.
func (t *Tools) DocumentStatus(_ context.Context, _ *mcp.CallToolRequest, _ InputDocumentStatus) (*mcp.CallToolResult, OutputDocumentStatus, error) {
	st := t.pipeline.Status()
	out := OutputDocumentStatus{
		IsIndexed:     st.IsIndexed,
		Phase:         string(st.Phase),
		Document:      st.Document,
		ChaptersCount: st.ChaptersCount,
		ChunksCount:   st.ChunksCount,
		ContentHash:   st.ContentHash,
		Agents:        st.Agents,
	}
	if st.IndexedAt != nil {
		out.IndexedAt = st.IndexedAt.Format(time.RFC3339)
	}
	return nil, out, nil
}

// NewServer registers both tools on a new MCP server.
func NewServer(p Pipeline, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "docmind", Version: version}, nil)
	tools := NewTools(p)
	mcp.AddTool(server, MetadataAskDocument, tools.AskDocument)
	mcp.AddTool(server, MetadataDocumentStatus, tools.DocumentStatus)
	return server
}

// Serve runs the server on stdin/stdout until ctx is done or the client
// disconnects.
func Serve(ctx context.Context, p Pipeline, version string) error {
	return NewServer(p, version).Run(ctx, &mcp.StdioTransport{})
}
