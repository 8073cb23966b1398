package parser

import (
	"strings"
	"testing"
)

func TestMarkdownParser_HeadingHierarchy(t *testing.T) {
	input := `# Title

Intro text.

## Section A

Section A content.

### Subsection A1

Subsection A1 content.

## Section B

Section B content.
`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "doc" {
		t.Errorf("expected title %q, got %q", "doc", doc.Title)
	}
	if len(doc.Chapters) != 1 {
		t.Fatalf("expected 1 chapter (h1), got %d", len(doc.Chapters))
	}

	h1 := doc.Chapters[0]
	if h1.Title != "Title" {
		t.Errorf("expected h1 title %q, got %q", "Title", h1.Title)
	}
	if h1.Content != "Intro text." {
		t.Errorf("expected h1 content %q, got %q", "Intro text.", h1.Content)
	}
	if len(h1.Children) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(h1.Children))
	}

	secA := h1.Children[0]
	if secA.Title != "Section A" || secA.ID != "ch_1_sec_1" {
		t.Errorf("unexpected section A: %+v", secA)
	}
	if secA.Content != "Section A content." {
		t.Errorf("expected section A content, got %q", secA.Content)
	}
	if len(secA.Children) != 1 {
		t.Fatalf("expected 1 subsection under Section A, got %d", len(secA.Children))
	}
	sub := secA.Children[0]
	if sub.Title != "Subsection A1" || sub.Level != 3 {
		t.Errorf("unexpected subsection: %+v", sub)
	}

	secB := h1.Children[1]
	if secB.Title != "Section B" || secB.ID != "ch_1_sec_2" {
		t.Errorf("unexpected section B: %+v", secB)
	}
}

func TestMarkdownParser_NoHeadings(t *testing.T) {
	input := `Just some plain text.

Another paragraph here.`

	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Chapters) != 1 {
		t.Fatalf("expected 1 chapter for headingless markdown, got %d", len(doc.Chapters))
	}
	text := doc.Chapters[0].Content
	if !strings.Contains(text, "Just some plain text.") {
		t.Errorf("expected content to contain first paragraph, got %q", text)
	}
	if !strings.Contains(text, "Another paragraph here.") {
		t.Errorf("expected content to contain second paragraph, got %q", text)
	}
}

func TestMarkdownParser_MixedContentWithCodeBlocks(t *testing.T) {
	input := "# API Reference\n\nSome intro.\n\n## Endpoints\n\nList of endpoints:\n\n```\nGET /api/users\nPOST /api/users\n```\n\nMore text after code.\n"

	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "api.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Chapters) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(doc.Chapters))
	}

	h1 := doc.Chapters[0]
	if len(h1.Children) != 1 {
		t.Fatalf("expected 1 section, got %d", len(h1.Children))
	}
	endpoints := h1.Children[0]
	if !strings.Contains(endpoints.Content, "GET /api/users") {
		t.Errorf("expected code block content, got %q", endpoints.Content)
	}
	if !strings.Contains(endpoints.Content, "More text after code.") {
		t.Errorf("expected post-code text, got %q", endpoints.Content)
	}
	if strings.Count(endpoints.Content, "List of endpoints:") != 1 {
		t.Errorf("expected paragraph text exactly once, got %q", endpoints.Content)
	}
}

func TestMarkdownParser_EmptyInput(t *testing.T) {
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Chapters) != 0 {
		t.Errorf("expected 0 chapters for empty input, got %d", len(doc.Chapters))
	}
}
