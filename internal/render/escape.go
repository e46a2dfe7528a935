// Package render turns tasks into HTML and locale-aware text.
//
// Task text is interpolated into markup only after EscapeHTML; it is the
// sole defense against markup injection from stored titles and descriptions.
package render

import "strings"

// The ampersand is listed first so already-produced entities are not
// escaped twice. strings.Replacer also never rescans its own output.
var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML replaces the five HTML-significant characters with entities.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
