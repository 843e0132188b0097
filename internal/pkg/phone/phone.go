// Package phone canonicalises user-typed phone numbers into the lookup key
// used by the verification store.
package phone

import "strings"

// Normalize keeps only digits and '+' and guarantees a leading '+'.
// "+1 (246) 555-1234" becomes "+12465551234". Normalize is idempotent.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw) + 1)
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if !strings.HasPrefix(s, "+") {
		s = "+" + s
	}
	return s
}

// HasDigits reports whether a normalized number carries any digit at all.
// Input such as "n/a" normalizes to "+" and must be treated as missing.
func HasDigits(normalized string) bool {
	return strings.ContainsAny(normalized, "0123456789")
}
