package service

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	noteMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	noteSanitizer = bluemonday.UGCPolicy()
)

// RenderNoteHTML 把备注渲染成净化后的 HTML，备注里允许写 Markdown
func RenderNoteHTML(content string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := noteMarkdown.Convert([]byte(content), &buf); err != nil {
		return "", err
	}
	safe := noteSanitizer.SanitizeBytes(buf.Bytes())
	return template.HTML(safe), nil
}
