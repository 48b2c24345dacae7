// Package sanitize provides text sanitization for user supplied labels.
package sanitize

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	// htmlTagRegex matches HTML tags
	htmlTagRegex = regexp.MustCompile(`<[^>]*>`)
	spaceRegex   = regexp.MustCompile(`\s+`)
)

// StripHTML removes all HTML tags from a string, making it safe for text-only display.
func StripHTML(s string) string {
	result := htmlTagRegex.ReplaceAllString(s, "")
	result = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&", "&quot;", "\"", "&#39;", "'").Replace(result)
	// encoded tags become real tags after decoding
	result = htmlTagRegex.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}

// Text sanitizes free text such as a category description: HTML is stripped
// and control characters other than newlines and tabs are dropped.
func Text(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, StripHTML(s))
}

// Name sanitizes a single line label such as a category name: Text plus
// whitespace collapsed to single spaces.
func Name(s string) string {
	return spaceRegex.ReplaceAllString(Text(s), " ")
}

// TextPtr is a helper for optional string pointers
func TextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	result := Text(*s)
	return &result
}
