package generate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/docmind/internal/doctree"
)

// Context caps, in characters.
const (
	MaxContextChunks = 5
	MaxChunkChars    = 500
	MaxContextChars  = 2000
)

const SystemPrompt = `You are an assistant that answers questions about a single document.
Use only the document fragments provided.
Always cite the chapter and section numbers you relied on.
If the fragments do not contain enough information, say so.
Answer in the same language as the question.`

// FormatContext renders up to MaxContextChunks fragments, each clipped to
// MaxChunkChars, stopping before the total would exceed MaxContextChars.
func FormatContext(chunks []doctree.Retrieved) string {
	fragments := make([]string, 0, MaxContextChunks)
	total := 0
	n := 0
	for _, ch := range chunks {
		if n == MaxContextChunks {
			break
		}
		text := strings.TrimSpace(ch.Text)
		if text == "" {
			continue
		}
		n++
		fragment := fmt.Sprintf("Fragment %d%s:\n%s", n, sourceLabel(ch.Meta), truncate(text, MaxChunkChars))
		size := utf8.RuneCountInString(fragment)
		if total+size > MaxContextChars {
			break
		}
		fragments = append(fragments, fragment)
		total += size
	}
	return strings.Join(fragments, "\n\n")
}

// BuildUserPrompt combines the question with the formatted context.
func BuildUserPrompt(question string, chunks []doctree.Retrieved) string {
	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(question)
	sb.WriteString("\n\nDocument context:\n")
	sb.WriteString(FormatContext(chunks))
	sb.WriteString("\n\nAnswer using only the context above and name the chapter and section you used.")
	return sb.String()
}

func sourceLabel(m doctree.ChunkMeta) string {
	var parts []string
	if m.ChapterTitle != "" {
		parts = append(parts, "Chapter: "+m.ChapterTitle)
	}
	if m.SectionTitle != "" {
		parts = append(parts, "Section: "+m.SectionTitle)
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}
