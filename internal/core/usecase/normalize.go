package usecase

import (
	"strings"
	"unicode"
)

// normalizeQuery cleans raw query text for both search paths. The vector path
// keeps original casing (embeddings are case-insensitive by construction);
// the keyword path is lowercased on top of the shared cleanup.
func normalizeQuery(raw string) (vectorQuery, keywordQuery string) {
	var b strings.Builder
	b.Grow(len(raw))
	pendingSpace := false
	for _, r := range raw {
		if unicode.IsSpace(r) {
			pendingSpace = b.Len() > 0
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		if pendingSpace {
			b.WriteByte(' ')
			pendingSpace = false
		}
		b.WriteRune(r)
	}
	vectorQuery = b.String()
	return vectorQuery, strings.ToLower(vectorQuery)
}
