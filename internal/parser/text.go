package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docmind/internal/doctree"
)

// TextParser handles plain text files. Paragraphs are separated by blank
// lines; a numbered first line ("2.1 Scope") opens a heading.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	b := doctree.NewBuilder(titleFromFilename(filename), filename)
	var para []string

	flush := func() {
		if len(para) == 0 {
			return
		}
		lines := para
		para = nil
		if level := NumberedLevel(lines[0]); level > 0 {
			b.Heading(level, lines[0])
			lines = lines[1:]
		}
		if len(lines) > 0 {
			b.Text(strings.Join(lines, "\n"))
		}
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		para = append(para, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return b.Build(), nil
}
