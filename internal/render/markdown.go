// File: internal/render/markdown.go
package render

import (
	"bytes"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// md renders model replies. Raw HTML in the source is not passed through.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// Markdown converts a model reply to HTML safe to embed in a page.
func Markdown(text string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// MarkdownOrEscaped is Markdown that falls back to escaped plain text.
func MarkdownOrEscaped(text string) template.HTML {
	out, err := Markdown(text)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return out
}

// Clock formats a message time as HH:MM in local time.
func Clock(t time.Time) string {
	return t.Local().Format("15:04")
}
