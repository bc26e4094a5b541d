package domain

import "strings"

var markupEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#x27;",
	"/", "&#x2F;",
	"\\", "&#x5C;",
	"`", "&#96;",
)

// EscapeMarkup replaces HTML-significant characters with entities. User text is
// stored escaped so no reader can render it as markup.
func EscapeMarkup(s string) string {
	return markupEscaper.Replace(s)
}
