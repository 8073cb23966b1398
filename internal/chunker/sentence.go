package chunker

import (
	"regexp"
	"strings"
)

// SentenceSplitter breaks text into sentences.
type SentenceSplitter interface {
	Split(text string) []string
}

// A terminator only ends a sentence when whitespace or the end of text
// follows it, so "10.5%" and "v1.2" stay whole.
var sentenceRe = regexp.MustCompile(`(?s).*?[.!?…]+["'»”)\]]*(?:\s+|$)`)

// RegexSplitter ends a sentence at terminal punctuation followed by
// whitespace. Trailing text with no terminator becomes the last sentence.
type RegexSplitter struct{}

func (RegexSplitter) Split(text string) []string {
	var out []string
	last := 0
	for _, loc := range sentenceRe.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[loc[0]:loc[1]]); s != "" && !isPunctOnly(s) {
			out = append(out, s)
		} else if s != "" && len(out) > 0 {
			out[len(out)-1] += s
		}
		last = loc[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		out = append(out, rest)
	}
	return out
}

// NaiveSplitter splits on periods only.
type NaiveSplitter struct{}

func (NaiveSplitter) Split(text string) []string {
	var out []string
	for _, part := range strings.Split(text, ".") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p+".")
		}
	}
	return out
}

func isPunctOnly(s string) bool {
	return strings.Trim(s, `.!?…"'»”)]`) == ""
}
