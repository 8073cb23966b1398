package parser

import (
	"strings"
	"testing"
)

func TestTextParser_NumberedHeadings(t *testing.T) {
	input := "1. Introduction\nWhy this manual exists.\n\n1.1 Audience\nOperators and developers.\n\n1.1.1 Prerequisites\nA shell.\n\n2. Setup\nInstall the binary."
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "manual.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.Title != "manual" {
		t.Errorf("expected title %q, got %q", "manual", doc.Title)
	}
	if len(doc.Chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(doc.Chapters))
	}
	intro := doc.Chapters[0]
	if intro.Title != "1. Introduction" || intro.Content != "Why this manual exists." {
		t.Errorf("unexpected chapter: title=%q content=%q", intro.Title, intro.Content)
	}
	if len(intro.Children) != 1 || intro.Children[0].ID != "ch_1_sec_1" {
		t.Fatalf("expected one section ch_1_sec_1, got %+v", intro.Children)
	}
	sec := intro.Children[0]
	if len(sec.Children) != 1 || sec.Children[0].Content != "A shell." {
		t.Errorf("expected subsection with content %q, got %+v", "A shell.", sec.Children)
	}
	if doc.Chapters[1].Content != "Install the binary." {
		t.Errorf("unexpected chapter 2 content %q", doc.Chapters[1].Content)
	}
}

func TestTextParser_NoHeadings(t *testing.T) {
	input := "First paragraph line one.\nFirst paragraph line two.\n\nSecond paragraph.\n\nThird paragraph."
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(doc.Chapters) != 1 {
		t.Fatalf("expected 1 synthetic chapter, got %d", len(doc.Chapters))
	}
	want := "First paragraph line one.\nFirst paragraph line two.\nSecond paragraph.\nThird paragraph."
	if doc.Chapters[0].Content != want {
		t.Errorf("expected %q, got %q", want, doc.Chapters[0].Content)
	}
	if doc.Chapters[0].Title != "notes" {
		t.Errorf("expected synthetic chapter titled %q, got %q", "notes", doc.Chapters[0].Title)
	}
}

func TestTextParser_EmptyInput(t *testing.T) {
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(""), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "empty" {
		t.Errorf("expected title %q, got %q", "empty", doc.Title)
	}
	if len(doc.Chapters) != 0 {
		t.Errorf("expected 0 chapters for empty input, got %d", len(doc.Chapters))
	}
}

func TestTextParser_WhitespaceOnlyLines(t *testing.T) {
	// Lines with only whitespace should be treated as blank.
	input := "1. One\n   \nPara two."
	p := &TextParser{}
	doc, err := p.Parse(strings.NewReader(input), "ws.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Chapters) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(doc.Chapters))
	}
	if doc.Chapters[0].Content != "Para two." {
		t.Errorf("expected %q, got %q", "Para two.", doc.Chapters[0].Content)
	}
}
