package textutil

import (
	"strings"
	"unicode/utf8"
)

// Replacement is written in place of every rune outside the allowed set.
const Replacement = '_'

// SanitizeName replaces every rune outside [A-Za-z0-9 ._-] with an
// underscore. It never fails and is idempotent: sanitizing an already
// sanitized name returns it unchanged.
func SanitizeName(name string) string {
	if IsSanitized(name) {
		return name
	}
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); {
		r, size := utf8.DecodeRuneInString(name[i:])
		if allowedRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(Replacement)
		}
		i += size
	}
	return b.String()
}

// IsSanitized reports whether name only contains allowed runes.
func IsSanitized(name string) bool {
	for _, r := range name {
		if !allowedRune(r) {
			return false
		}
	}
	return utf8.ValidString(name)
}

func allowedRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == ' ' || r == '.' || r == '_' || r == '-':
		return true
	default:
		return false
	}
}
