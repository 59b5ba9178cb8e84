// Package markdown converts note content to sanitized HTML.
package markdown

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	renderer = goldmark.New(
		goldmark.WithExtensions(extension.Table),
	)

	// policy whitelists the HTML that may survive rendering. Everything
	// else, scripts and inline event handlers included, is stripped.
	policy = newPolicy()
)

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements(
		"p", "h1", "h2", "h3", "h4", "h5", "h6",
		"strong", "em", "ul", "ol", "li",
		"code", "pre", "blockquote", "br",
	)
	p.AllowAttrs("href", "title").OnElements("a")
	p.AllowStandardURLs()

	return p
}

// Render converts markdown to sanitized HTML safe for direct template
// embedding. Conversion failures degrade to an empty string rather than
// leaking raw input into the page.
func Render(content string) template.HTML {
	var buf bytes.Buffer
	if err := renderer.Convert([]byte(content), &buf); err != nil {
		log.Warn().Err(err).Msg("markdown conversion failed")
		return ""
	}

	return template.HTML(policy.SanitizeBytes(buf.Bytes())) //nolint:gosec
}
