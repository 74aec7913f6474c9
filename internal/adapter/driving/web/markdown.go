package web

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// bannerMarkdown renders operator-supplied banner text. Raw HTML in the
// source is dropped by goldmark and anything left is filtered by
// bannerPolicy, so the result is safe to embed unescaped.
var (
	bannerMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
	)
	bannerPolicy = newBannerPolicy()
)

func newBannerPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// RenderMarkdown converts the operator banner from markdown to sanitized HTML.
// Empty input yields "".
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := bannerMarkdown.Convert([]byte(src), &buf); err != nil {
		return bannerPolicy.Sanitize(src)
	}
	return bannerPolicy.Sanitize(buf.String())
}
