// Package preview renders Markdown to HTML for the preview endpoint and
// the MCP read tool.
package preview

import (
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Render converts Markdown text to an HTML fragment. The parser is not
// reusable across documents, so a fresh one is built per call.
func Render(text string) []byte {
	exts := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(exts)
	doc := p.Parse([]byte(text))

	opts := html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank}
	renderer := html.NewRenderer(opts)
	return markdown.Render(doc, renderer)
}
