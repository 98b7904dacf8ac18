package app

import (
	"html/template"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// RenderCard converts a markdown dataset card to HTML. YAML front matter is
// dropped, raw HTML in the source is skipped and only safe link schemes
// become anchors.
func RenderCard(md string) template.HTML {
	md = stripFrontMatter(md)
	if strings.TrimSpace(md) == "" {
		return ""
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.SkipHTML | html.Safelink | html.NofollowLinks | html.HrefTargetBlank,
	})
	return template.HTML(markdown.ToHTML([]byte(md), p, r))
}

func stripFrontMatter(md string) string {
	trimmed := strings.TrimPrefix(md, "\ufeff")
	if !strings.HasPrefix(trimmed, "---\n") && !strings.HasPrefix(trimmed, "---\r\n") {
		return md
	}
	rest := trimmed[strings.Index(trimmed, "\n")+1:]
	end := strings.Index(rest, "\n---")
	if end < 0 {
		return md
	}
	rest = rest[end+len("\n---"):]
	if i := strings.Index(rest, "\n"); i >= 0 {
		return rest[i+1:]
	}
	return ""
}
