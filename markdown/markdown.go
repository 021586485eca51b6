// Package markdown renders post content and derives the plain-text fields
// (excerpt, reading time) the admin panel fills in when an editor leaves
// them blank.
package markdown

import (
	"bytes"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

const wordsPerMinute = 200

var renderer = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
)

var reTags = regexp.MustCompile(`<[^>]*>`)

// Render converts markdown to HTML.
func Render(content string) (string, error) {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// PlainText strips markdown formatting, returning the bare prose.
func PlainText(content string) string {
	rendered, err := Render(content)
	if err != nil {
		rendered = content
	}
	text := reTags.ReplaceAllString(rendered, " ")
	text = html.UnescapeString(text)
	return strings.Join(strings.Fields(text), " ")
}

// Excerpt returns the first maxLen characters of the post's prose, cut at a
// word boundary with a trailing ellipsis when truncated.
func Excerpt(content string, maxLen int) string {
	text := PlainText(content)
	if len(text) <= maxLen {
		return text
	}
	cut := text[:maxLen]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}

// ReadingTime estimates how long the post takes to read, never less than
// one minute.
func ReadingTime(content string) string {
	words := len(strings.Fields(PlainText(content)))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}
