// Package markdown renders user-authored markdown to sanitized HTML.
// Comment bodies are stored as markdown and rendered through this pipeline
// before the HTML ever reaches the database.
package markdown

import (
	"bytes"
	"errors"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/trelliskit/trellis/pkg/sanitizer"
)

// ErrRenderFailed is returned when markdown conversion fails.
var ErrRenderFailed = errors.New("markdown: render failed")

var (
	md       goldmark.Markdown
	initOnce sync.Once
)

func processor() goldmark.Markdown {
	initOnce.Do(func() {
		md = goldmark.New(
			goldmark.WithExtensions(
				extension.Linkify,
				extension.Strikethrough,
			),
		)
	})
	return md
}

// Render converts markdown to HTML and sanitizes the result. The returned
// HTML is safe to store and serve as-is.
func Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := processor().Convert([]byte(source), &buf); err != nil {
		return "", errors.Join(ErrRenderFailed, err)
	}
	return sanitizer.SanitizeHTML(buf.String()), nil
}

// Excerpt renders markdown and strips all markup, truncating to at most n
// runes. Used for notification subjects and previews.
func Excerpt(source string, n int) string {
	html, err := Render(source)
	if err != nil {
		html = source
	}
	text := strings.TrimSpace(sanitizer.StripHTML(html))

	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "…"
}
