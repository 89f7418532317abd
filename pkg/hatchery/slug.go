package hatchery

import (
	"math/rand/v2"
	"strings"
)

// FallbackSlugLength is the length of the random slug used when a name has no
// usable characters.
const FallbackSlugLength = 5

const alphanumerics = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DeriveSlug turns a goose name into a slug candidate. Spaces become hyphens
// and everything that is not an ASCII letter, digit or hyphen is dropped. An
// empty result is replaced by a random alphanumeric string.
func DeriveSlug(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == ' ':
			b.WriteByte('-')
		case r == '-' || isAlphanumeric(r):
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		return RandomAlphanumeric(FallbackSlugLength)
	}
	return b.String()
}

// RandomAlphanumeric returns n random ASCII letters and digits.
func RandomAlphanumeric(n int) string {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = alphanumerics[rand.IntN(len(alphanumerics))]
	}
	return string(buf)
}

// IsValidSlug reports whether s is non-empty and contains only ASCII letters,
// digits and hyphens.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '-' && !isAlphanumeric(r) {
			return false
		}
	}
	return true
}

func isAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
