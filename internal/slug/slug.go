// Package slug derives URL-safe slugs and plain-text excerpts from post
// titles and content.
package slug

import (
	"regexp"
	"strings"
)

var (
	invalidChars = regexp.MustCompile(`[^\w\s-]`)
	whitespace   = regexp.MustCompile(`\s+`)
	hyphenRuns   = regexp.MustCompile(`-+`)
	htmlTags     = regexp.MustCompile(`<[^>]*>`)
)

// FromTitle derives a lowercase [a-z0-9-]+ slug from a title.
func FromTitle(title string) string {
	s := strings.ToLower(title)
	s = invalidChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(strings.TrimSpace(s), "-")
	s = hyphenRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Excerpt derives a short plain-text excerpt from rich-text content: tags
// stripped, whitespace collapsed, truncated to maxLen with an ellipsis when
// the content is longer.
func Excerpt(content string, maxLen int) string {
	plain := htmlTags.ReplaceAllString(content, "")
	plain = whitespace.ReplaceAllString(plain, " ")
	plain = strings.TrimSpace(plain)

	runes := []rune(plain)
	if len(runes) <= maxLen {
		return plain
	}
	return string(runes[:maxLen]) + "..."
}
