// Package sanitize strips markup from user-provided text before storage.
package sanitize

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

var entities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", `"`,
	"&#39;", "'",
)

// Text removes HTML tags from free-text input such as notes and display
// names. Entities are decoded and the result re-stripped so encoded tags
// cannot survive a single pass.
func Text(s string) string {
	stripped := tagPattern.ReplaceAllString(s, "")
	stripped = entities.Replace(stripped)
	stripped = tagPattern.ReplaceAllString(stripped, "")
	return strings.TrimSpace(stripped)
}
