// Package sanitizer wraps bluemonday policies tuned for user-generated
// content: comment bodies keep basic formatting, everything else is stripped.
package sanitizer

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy  *bluemonday.Policy
	commentPolicy *bluemonday.Policy
	initOnce      sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		// Strict: all HTML removed, plain text remains.
		strictPolicy = bluemonday.StrictPolicy()

		// Comment bodies: basic formatting produced by markdown rendering.
		commentPolicy = bluemonday.NewPolicy()
		commentPolicy.AllowStandardURLs()
		commentPolicy.AllowElements(
			"p", "br", "hr",
			"strong", "b", "em", "i", "del",
			"ul", "ol", "li",
			"h1", "h2", "h3", "h4",
			"code", "pre", "blockquote",
		)
		commentPolicy.AllowAttrs("href").OnElements("a")
		commentPolicy.RequireNoFollowOnLinks(true)
	})
}

// SanitizeHTML keeps the formatting tags markdown rendering produces and
// strips everything dangerous: scripts, event handlers, javascript: URLs.
func SanitizeHTML(s string) string {
	initPolicies()
	return commentPolicy.Sanitize(s)
}

// StripHTML removes all markup, returning plain text. Used for excerpts and
// notification subjects.
func StripHTML(s string) string {
	initPolicies()
	return strictPolicy.Sanitize(s)
}
