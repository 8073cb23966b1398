package doctree

// Document is the parsed chapter/section/subsection hierarchy of one source file.
type Document struct {
	Title    string  `json:"title"`    // Document title (from metadata or filename)
	Source   string  `json:"document"` // Source file name
	Chapters []*Node `json:"chapters"`
}

// Node is a chapter (level 1), section (level 2) or subsection (level 3+).
type Node struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Level    int     `json:"level"`
	Content  string  `json:"content"` // Body text not claimed by a deeper heading
	Children []*Node `json:"children,omitempty"`
}

// ChunkType records which structural level a chunk was cut from.
type ChunkType string

const (
	TypeChapter    ChunkType = "chapter"
	TypeSection    ChunkType = "section"
	TypeSubsection ChunkType = "subsection"
	TypeFull       ChunkType = "full" // single-chunk fallback
)

// FallbackChapterID tags the fallback chunk built when no node yields a chunk.
const FallbackChapterID = "all"

// ChunkMeta is the structural metadata stored alongside each indexed chunk.
type ChunkMeta struct {
	ChapterID       string    `json:"chapter_id"`
	ChapterTitle    string    `json:"chapter_title"`
	SectionID       string    `json:"section_id,omitempty"`
	SectionTitle    string    `json:"section_title,omitempty"`
	SubsectionID    string    `json:"subsection_id,omitempty"`
	SubsectionTitle string    `json:"subsection_title,omitempty"`
	Level           int       `json:"level"`
	Type            ChunkType `json:"type"`
}

// Fields flattens the metadata into scalar key/value pairs. Empty optional
// fields are omitted so they never satisfy an exact-match filter.
func (m ChunkMeta) Fields() map[string]any {
	f := map[string]any{
		"chapter_id":    m.ChapterID,
		"chapter_title": m.ChapterTitle,
		"level":         m.Level,
		"type":          string(m.Type),
	}
	if m.SectionID != "" {
		f["section_id"] = m.SectionID
		f["section_title"] = m.SectionTitle
	}
	if m.SubsectionID != "" {
		f["subsection_id"] = m.SubsectionID
		f["subsection_title"] = m.SubsectionTitle
	}
	return f
}

// MetaFromFields is the inverse of Fields. Numbers decoded from JSON arrive
// as float64 and are accepted.
func MetaFromFields(f map[string]any) ChunkMeta {
	str := func(k string) string {
		s, _ := f[k].(string)
		return s
	}
	m := ChunkMeta{
		ChapterID:       str("chapter_id"),
		ChapterTitle:    str("chapter_title"),
		SectionID:       str("section_id"),
		SectionTitle:    str("section_title"),
		SubsectionID:    str("subsection_id"),
		SubsectionTitle: str("subsection_title"),
		Type:            ChunkType(str("type")),
	}
	switch v := f["level"].(type) {
	case int:
		m.Level = v
	case int64:
		m.Level = int(v)
	case float64:
		m.Level = int(v)
	}
	return m
}

// Record is an indexed chunk.
type Record struct {
	ID   string    `json:"id"`
	Text string    `json:"text"`
	Meta ChunkMeta `json:"metadata"`
}

// Retrieved is a Record returned by a similarity query. Lower distance is
// more relevant.
type Retrieved struct {
	Record
	Distance float64 `json:"distance"`
}
