package doctree

import (
	"fmt"
	"strings"
)

// Builder assembles a Document from a flat stream of headings and text, the
// way a reader walks paragraphs top to bottom.
//
// A section heading seen before any chapter, or a subsection heading seen
// before any section, has no parent and is treated as body text. Text seen
// before the first chapter is prepended to the first chapter; a document with
// no chapter headings at all becomes a single chapter titled after the
// document.
type Builder struct {
	doc      *Document
	chapter  *Node
	section  *Node
	current  *Node
	preamble []string
	lines    map[*Node][]string
}

func NewBuilder(title, source string) *Builder {
	return &Builder{
		doc:   &Document{Title: title, Source: source},
		lines: make(map[*Node][]string),
	}
}

// Heading opens a new node at the given level. Levels above 3 nest as
// subsections.
func (b *Builder) Heading(level int, title string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return
	}
	switch {
	case level <= 0:
		b.Text(title)
	case level == 1:
		n := &Node{
			ID:    fmt.Sprintf("ch_%d", len(b.doc.Chapters)+1),
			Title: title,
			Level: 1,
		}
		b.doc.Chapters = append(b.doc.Chapters, n)
		b.chapter, b.section, b.current = n, nil, n
	case level == 2:
		if b.chapter == nil {
			b.Text(title)
			return
		}
		n := &Node{
			ID:    fmt.Sprintf("%s_sec_%d", b.chapter.ID, len(b.chapter.Children)+1),
			Title: title,
			Level: 2,
		}
		b.chapter.Children = append(b.chapter.Children, n)
		b.section, b.current = n, n
	default:
		if b.section == nil {
			b.Text(title)
			return
		}
		n := &Node{
			ID:    fmt.Sprintf("%s_sub_%d", b.section.ID, len(b.section.Children)+1),
			Title: title,
			Level: level,
		}
		b.section.Children = append(b.section.Children, n)
		b.current = n
	}
}

// Text appends a body paragraph to the innermost open node.
func (b *Builder) Text(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if b.current == nil {
		b.preamble = append(b.preamble, text)
		return
	}
	b.lines[b.current] = append(b.lines[b.current], text)
}

// Build finalizes node contents and returns the document. The builder must
// not be reused afterwards.
func (b *Builder) Build() *Document {
	for n, lines := range b.lines {
		n.Content = strings.Join(lines, "\n")
	}
	if len(b.preamble) > 0 {
		pre := strings.Join(b.preamble, "\n")
		if len(b.doc.Chapters) == 0 {
			b.doc.Chapters = []*Node{{ID: "ch_1", Title: b.doc.Title, Level: 1, Content: pre}}
		} else {
			first := b.doc.Chapters[0]
			if first.Content == "" {
				first.Content = pre
			} else {
				first.Content = pre + "\n" + first.Content
			}
		}
	}
	return b.doc
}
