package render

import (
	"sync"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

var (
	htmlPolicyOnce sync.Once
	htmlPolicy     *bluemonday.Policy
)

// HTML converts markdown to HTML and strips anything outside the UGC
// policy. Model output ends up in the markdown, so it is treated as
// untrusted.
func HTML(md string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.HardLineBreak)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	raw := markdown.ToHTML([]byte(md), p, r)
	return sanitizer().Sanitize(string(raw))
}

// Sanitize applies the same policy to HTML that did not come from markdown.
func Sanitize(raw string) string {
	return sanitizer().Sanitize(raw)
}

func sanitizer() *bluemonday.Policy {
	htmlPolicyOnce.Do(func() {
		htmlPolicy = bluemonday.UGCPolicy()
	})
	return htmlPolicy
}
