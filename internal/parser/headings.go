package parser

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Heading represents a parsed heading.
type Heading struct {
	Level int
	Text  string
	Line  int // 1-indexed
}

// Headings extracts ATX and setext headings from markdown content.
func Headings(content string) []Heading {
	var headings []Heading

	src := []byte(content)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	lineStarts := computeLineStarts(content)

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		headingText := strings.TrimSpace(nodeText(heading, src))
		if headingText == "" {
			return ast.WalkSkipChildren, nil
		}

		line := 1
		if heading.Lines().Len() > 0 {
			line = 1 + offsetToLine(lineStarts, heading.Lines().At(0).Start)
		}
		headings = append(headings, Heading{Level: heading.Level, Text: headingText, Line: line})
		return ast.WalkSkipChildren, nil
	})

	return headings
}

// nodeText concatenates the text segments below n.
func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
			continue
		}
		b.WriteString(nodeText(c, src))
	}
	return b.String()
}

// computeLineStarts computes the byte offset of each line start.
func computeLineStarts(content string) []int {
	starts := []int{0}
	for i, c := range content {
		if c == '\n' && i+1 < len(content) {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// offsetToLine converts a byte offset to a 0-indexed line number.
func offsetToLine(lineStarts []int, offset int) int {
	for i := len(lineStarts) - 1; i >= 0; i-- {
		if lineStarts[i] <= offset {
			return i
		}
	}
	return 0
}
