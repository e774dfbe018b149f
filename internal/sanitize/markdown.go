package sanitize

import (
	"bytes"

	"github.com/yuin/goldmark"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// md renders CommonMark, fenced code blocks included. Raw HTML passthrough
// is enabled because this renderer must only ever receive text that has
// already been through Sanitize; the allowlisted inline tags are part of
// the stored content and have to survive the markdown pass.
var md = goldmark.New(
	goldmark.WithRendererOptions(goldmarkhtml.WithUnsafe()),
)

// RenderMarkdown converts already-sanitized markdown text to HTML.
func RenderMarkdown(sanitized string) (string, error) {
	if sanitized == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := md.Convert([]byte(sanitized), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
