package generate

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/dgallion1/docmind/internal/doctree"
	"github.com/stretchr/testify/assert"
)

func TestFormatContextLabelsFragments(t *testing.T) {
	got := FormatContext([]doctree.Retrieved{
		chunk("chunk_0", "Revenue grew 10%.", "Results", "1.1 Revenue"),
		chunk("chunk_1", "Intro text.", "Intro", ""),
		chunk("chunk_2", "Loose text.", "", ""),
	})
	want := "Fragment 1 [Chapter: Results, Section: 1.1 Revenue]:\nRevenue grew 10%.\n\n" +
		"Fragment 2 [Chapter: Intro]:\nIntro text.\n\n" +
		"Fragment 3:\nLoose text."
	assert.Equal(t, want, got)
}

func TestFormatContextCaps(t *testing.T) {
	long := strings.Repeat("ж", 800)
	got := FormatContext([]doctree.Retrieved{chunk("a", long, "", "")})
	assert.True(t, strings.HasSuffix(got, strings.Repeat("ж", MaxChunkChars)+"..."))
	assert.Equal(t, MaxChunkChars+3+len("Fragment 1:\n"), utf8.RuneCountInString(got))

	var many []doctree.Retrieved
	for range 8 {
		many = append(many, chunk("c", strings.Repeat("w", 450), "", ""))
	}
	got = FormatContext(many)
	assert.Equal(t, 4, strings.Count(got, "Fragment "), "fifth fragment would exceed the total cap")
	assert.LessOrEqual(t, utf8.RuneCountInString(got)-3*2, MaxContextChars)

	var small []doctree.Retrieved
	for range 8 {
		small = append(small, chunk("c", "short", "", ""))
	}
	assert.Equal(t, MaxContextChunks, strings.Count(FormatContext(small), "Fragment "))
}

func TestFormatContextSkipsBlankChunks(t *testing.T) {
	got := FormatContext([]doctree.Retrieved{chunk("a", "  ", "", ""), chunk("b", "body", "", "")})
	assert.Equal(t, "Fragment 1:\nbody", got)
}

func TestBuildUserPrompt(t *testing.T) {
	p := BuildUserPrompt("What grew?", []doctree.Retrieved{chunk("a", "Revenue grew.", "Results", "")})
	assert.Contains(t, p, "Question: What grew?")
	assert.Contains(t, p, "Fragment 1 [Chapter: Results]:\nRevenue grew.")
}
