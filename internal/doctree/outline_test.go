package doctree

import "testing"

func TestBuilder_Hierarchy(t *testing.T) {
	b := NewBuilder("Manual", "manual.docx")
	b.Heading(1, "Introduction")
	b.Text("Intro line one.")
	b.Text("Intro line two.")
	b.Heading(2, "Scope")
	b.Text("Scope text.")
	b.Heading(3, "Limits")
	b.Text("Limits text.")
	b.Heading(2, "Terms")
	b.Heading(1, "Installation")
	b.Text("Install text.")
	doc := b.Build()

	if len(doc.Chapters) != 2 {
		t.Fatalf("expected 2 chapters, got %d", len(doc.Chapters))
	}
	ch1 := doc.Chapters[0]
	if ch1.ID != "ch_1" || ch1.Level != 1 {
		t.Errorf("unexpected chapter 1: id=%q level=%d", ch1.ID, ch1.Level)
	}
	if ch1.Content != "Intro line one.\nIntro line two." {
		t.Errorf("expected newline-joined content, got %q", ch1.Content)
	}
	if len(ch1.Children) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(ch1.Children))
	}
	scope := ch1.Children[0]
	if scope.ID != "ch_1_sec_1" || scope.Content != "Scope text." {
		t.Errorf("unexpected section: id=%q content=%q", scope.ID, scope.Content)
	}
	if len(scope.Children) != 1 || scope.Children[0].ID != "ch_1_sec_1_sub_1" {
		t.Fatalf("expected subsection ch_1_sec_1_sub_1, got %+v", scope.Children)
	}
	if scope.Children[0].Content != "Limits text." {
		t.Errorf("expected subsection content, got %q", scope.Children[0].Content)
	}
	if ch1.Children[1].ID != "ch_1_sec_2" {
		t.Errorf("expected ch_1_sec_2, got %q", ch1.Children[1].ID)
	}
	if doc.Chapters[1].ID != "ch_2" || doc.Chapters[1].Content != "Install text." {
		t.Errorf("unexpected chapter 2: %+v", doc.Chapters[1])
	}
}

func TestBuilder_OrphanHeadingsBecomeText(t *testing.T) {
	b := NewBuilder("Doc", "doc.txt")
	b.Heading(2, "Loose section")
	b.Heading(1, "Chapter")
	b.Heading(3, "Loose subsection")
	doc := b.Build()

	if len(doc.Chapters) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(doc.Chapters))
	}
	ch := doc.Chapters[0]
	if len(ch.Children) != 0 {
		t.Errorf("expected no sections, got %d", len(ch.Children))
	}
	if ch.Content != "Loose section\nLoose subsection" {
		t.Errorf("expected orphan headings as content, got %q", ch.Content)
	}
}

func TestBuilder_NoHeadings(t *testing.T) {
	b := NewBuilder("Notes", "notes.txt")
	b.Text("First paragraph.")
	b.Text("   ")
	b.Text("Second paragraph.")
	doc := b.Build()

	if len(doc.Chapters) != 1 {
		t.Fatalf("expected synthetic chapter, got %d", len(doc.Chapters))
	}
	ch := doc.Chapters[0]
	if ch.Title != "Notes" || ch.ID != "ch_1" {
		t.Errorf("unexpected synthetic chapter: %+v", ch)
	}
	if ch.Content != "First paragraph.\nSecond paragraph." {
		t.Errorf("unexpected content %q", ch.Content)
	}
}

func TestBuilder_EmptyInput(t *testing.T) {
	doc := NewBuilder("Empty", "empty.txt").Build()
	if len(doc.Chapters) != 0 {
		t.Errorf("expected 0 chapters, got %d", len(doc.Chapters))
	}
}

func TestChunkMeta_FieldsRoundTrip(t *testing.T) {
	m := ChunkMeta{
		ChapterID:    "ch_2",
		ChapterTitle: "Setup",
		SectionID:    "ch_2_sec_1",
		SectionTitle: "Requirements",
		Level:        2,
		Type:         TypeSection,
	}
	f := m.Fields()
	if _, ok := f["subsection_id"]; ok {
		t.Error("expected empty subsection fields to be omitted")
	}
	f["level"] = float64(2) // as decoded from JSON
	if got := MetaFromFields(f); got != m {
		t.Errorf("expected %+v, got %+v", m, got)
	}
}

func TestDocument_FlattenAndFind(t *testing.T) {
	b := NewBuilder("Doc", "doc.md")
	b.Heading(1, "A")
	b.Text("alpha")
	b.Heading(2, "B")
	b.Text("beta")
	doc := b.Build()

	if got := doc.FlattenText(); got != "alpha\nbeta" {
		t.Errorf("expected %q, got %q", "alpha\nbeta", got)
	}
	if n := doc.Find("ch_1_sec_1"); n == nil || n.Title != "B" {
		t.Errorf("expected to find section B, got %+v", n)
	}
	if doc.Find("ch_9") != nil {
		t.Error("expected nil for unknown id")
	}
}
