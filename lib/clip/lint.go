package clip

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// LintFinding is an advisory diagnostic: a line that reads like a
// chunk directive (it matches the store's Open, Slot, or Close
// pattern) but sits in prose rather than inside a fenced or indented
// code block.
// Read still honors the directive wherever it appears; a finding only
// flags a likely authoring mistake in a Markdown-authored document.
type LintFinding struct {
	FileLabel string
	Line      int // zero-based
	Text      string
}

var lintParser = goldmark.New()

// LintDocuments parses text as Markdown and returns one LintFinding
// per line that matches this Clip's configured directive patterns
// but falls outside every fenced or indented code block.
func (c *Clip) LintDocuments(text_, fileLabel string) []LintFinding {
	source := []byte(text_)
	document := lintParser.Parser().Parse(text.NewReader(source))

	fenced := fencedLines(document, source)

	var findings []LintFinding
	lines := strings.Split(text_, "\n")
	for i, line := range lines {
		if fenced[i] {
			continue
		}
		if c.store.LooksLikeDirective(line) {
			findings = append(findings, LintFinding{
				FileLabel: fileLabel,
				Line:      i,
				Text:      line,
			})
		}
	}
	return findings
}

// fencedLines walks document and marks every zero-based source line
// covered by a fenced or indented code block.
func fencedLines(document ast.Node, source []byte) map[int]bool {
	covered := make(map[int]bool)
	ast.Walk(document, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				segment := lines.At(i)
				lineNo := countNewlines(source[:segment.Start])
				covered[lineNo] = true
			}
		}
		return ast.WalkContinue, nil
	})
	return covered
}

func countNewlines(b []byte) int {
	count := 0
	for _, c := range b {
		if c == '\n' {
			count++
		}
	}
	return count
}
