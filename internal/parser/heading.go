package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxHeadingRunes bounds how long a numbered paragraph may be and still be
// read as a heading.
const MaxHeadingRunes = 150

var (
	styleLevelRe = regexp.MustCompile(`(?i)(?:heading|заголовок)\s*(\d+)`)

	// Most specific prefix first. A dotted number ends in a dot ("2.1.",
	// "1.Intro") or is followed by a capitalized title ("2.1 Scope"), so
	// "3.5 million" and "1.5%" stay body text.
	numberedRes = []struct {
		re    *regexp.Regexp
		level int
	}{
		{regexp.MustCompile(`^\d+\.\d+\.\d+(?:\.(?:\D|$)|\s+\p{Lu})`), 3},
		{regexp.MustCompile(`^\d+\.\d+(?:\.(?:\D|$)|\s+\p{Lu})`), 2},
		{regexp.MustCompile(`^\d+\.(?:\D|$)`), 1},
	}
)

// StyleLevel reads a heading level out of a paragraph style name such as
// "Heading 2", "heading2" or "Заголовок 1". Zero means body text.
func StyleLevel(style string) int {
	m := styleLevelRe.FindStringSubmatch(strings.TrimSpace(style))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// NumberedLevel infers a heading level from a numeric prefix: "3." is a
// chapter, "3.1." a section, "3.1.2." a subsection. Zero means body text.
func NumberedLevel(text string) int {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > MaxHeadingRunes {
		return 0
	}
	for _, n := range numberedRes {
		if n.re.MatchString(text) {
			return n.level
		}
	}
	return 0
}

// HeadingLevel prefers the style name and falls back to the numeric prefix.
func HeadingLevel(style, text string) int {
	if lvl := StyleLevel(style); lvl > 0 {
		return lvl
	}
	return NumberedLevel(text)
}
