package dedup

import (
	"net/url"
	"sort"
	"strings"
	"unicode"

	"recipe-keeper/internal/pkg/common"
)

// NormalizeText lowercases, trims, strips punctuation and collapses
// whitespace runs to a single space. Idempotent.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			// Punctuation is removed outright, not replaced by a space.
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// NormalizeURL canonicalizes a source URL to scheme://host/path, lowercased,
// without query string, fragment or trailing slash. A string that does not
// parse as a URL is returned lowercased and trimmed; this function never
// fails.
func NormalizeURL(s string) string {
	raw := strings.TrimSpace(s)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return strings.ToLower(raw)
	}
	normalized := u.Scheme + "://" + u.Host + u.Path
	normalized = strings.TrimSuffix(normalized, "/")
	return strings.ToLower(normalized)
}

// NormalizeIngredients maps ingredients to their normalized names, sorted
// lexicographically so list order cannot affect set comparison.
func NormalizeIngredients(ingredients []common.Ingredient) []string {
	names := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		names = append(names, NormalizeText(ing.Name))
	}
	sort.Strings(names)
	return names
}
