// Package markdown extracts plain text from README files.
package markdown

import (
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var (
	parserInstance goldmark.Markdown
	parserOnce     sync.Once
)

func getParser() goldmark.Markdown {
	parserOnce.Do(func() {
		parserInstance = goldmark.New(goldmark.WithExtensions(extension.GFM))
	})
	return parserInstance
}

// Summary returns the text of the first top-level paragraph of a markdown
// document, with inline markup removed and whitespace collapsed. Headings,
// badges-only paragraphs, code blocks and HTML are skipped. It returns ""
// when the document has no prose paragraph.
func Summary(input string) string {
	source := []byte(input)
	document := getParser().Parser().Parse(text.NewReader(source))

	for node := document.FirstChild(); node != nil; node = node.NextSibling() {
		if node.Kind() != ast.KindParagraph {
			continue
		}
		if summary := paragraphText(node, source); summary != "" {
			return summary
		}
	}
	return ""
}

// paragraphText concatenates the text leaves of a paragraph. Images are
// dropped so a row of badges yields nothing.
func paragraphText(paragraph ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(paragraph, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Image, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			sb.Write(n.Segment.Value(source))
			if n.SoftLineBreak() || n.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(n.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.Join(strings.Fields(sb.String()), " ")
}
