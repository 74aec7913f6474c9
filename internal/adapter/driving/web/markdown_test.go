package web

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		contains []string
		excludes []string
	}{
		{
			name:     "bold",
			src:      "Files are deleted after **24 hours**.",
			contains: []string{"<strong>24 hours</strong>"},
		},
		{
			name: "link opens in new tab without referrer",
			src:  "[status](https://status.example.com)",
			contains: []string{
				`href="https://status.example.com"`,
				`target="_blank"`,
				"noreferrer",
				"status</a>",
			},
		},
		{
			name:     "bare url is linkified",
			src:      "Report abuse at https://example.com/abuse",
			contains: []string{`href="https://example.com/abuse"`},
		},
		{
			name:     "strikethrough",
			src:      "~~old limit~~",
			contains: []string{"<del>old limit</del>"},
		},
		{
			name:     "raw html dropped",
			src:      `<script>alert("xss")</script>`,
			excludes: []string{"<script>", "alert("},
		},
		{
			name:     "javascript link stripped",
			src:      "[click](javascript:alert(1))",
			excludes: []string{"javascript:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderMarkdown(tt.src)
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, bad := range tt.excludes {
				assert.NotContains(t, got, bad)
			}
		})
	}
}

func TestRenderMarkdown_EmptyInput(t *testing.T) {
	assert.Equal(t, "", RenderMarkdown(""))
}
