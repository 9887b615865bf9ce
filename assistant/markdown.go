// Package assistant adapts the search and graph services to a
// tool-calling protocol for AI assistants.
package assistant

import (
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// maxDescriptionLength bounds cleaned descriptions returned by tools.
const maxDescriptionLength = 1000

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// CleanMarkdown reduces a markdown description to plain prose: code
// blocks and tables are stripped, block structure collapses to
// paragraphs, and the result is truncated at a word boundary.
func CleanMarkdown(source string) string {
	if source == "" {
		return ""
	}

	src := []byte(source)
	doc := markdown.Parser().Parse(text.NewReader(src))

	var blocks []string
	var current strings.Builder

	flush := func() {
		// Collapse segment separators and source line breaks into
		// single spaces.
		if block := strings.Join(strings.Fields(current.String()), " "); block != "" {
			blocks = append(blocks, block)
		}
		current.Reset()
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock, east.KindTable:
			return ast.WalkSkipChildren, nil
		case ast.KindCodeSpan:
			return ast.WalkSkipChildren, nil
		}
		if !entering {
			if n.Type() == ast.TypeBlock {
				flush()
			}
			return ast.WalkContinue, nil
		}
		if textNode, ok := n.(*ast.Text); ok {
			current.Write(textNode.Segment.Value(src))
			if textNode.SoftLineBreak() || textNode.HardLineBreak() {
				current.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})
	flush()

	return Truncate(strings.Join(blocks, "\n\n"), maxDescriptionLength)
}

// Truncate shortens s to at most limit bytes, cutting on a rune and
// word boundary and appending an ellipsis.
func Truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	end := limit
	for end > 0 && !utf8.RuneStart(s[end]) {
		end--
	}
	cut := s[:end]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimSpace(cut) + "…"
}
