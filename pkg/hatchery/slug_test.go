package hatchery_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/hatchery/pkg/hatchery"
)

func TestDeriveSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"spaces become hyphens", "Silly Goose", "Silly-Goose"},
		{"punctuation dropped", "Mr. Honk!", "Mr-Honk"},
		{"hyphens kept", "goose-o-matic 3000", "goose-o-matic-3000"},
		{"non-ascii dropped", "Gänse Über", "Gnse-ber"},
		{"leading and trailing spaces kept as hyphens", " goose ", "-goose-"},
		{"tabs dropped", "a\tb", "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hatchery.DeriveSlug(tt.in))
		})
	}
}

func TestDeriveSlugIdempotent(t *testing.T) {
	for _, in := range []string{"Silly Goose", "a--b", "X", "honk honk honk", "¿Qué?"} {
		once := hatchery.DeriveSlug(in)
		if !hatchery.IsValidSlug(once) {
			t.Fatalf("DeriveSlug(%q) = %q is not a valid slug", in, once)
		}
		assert.Equal(t, once, hatchery.DeriveSlug(once), "input %q", in)
	}
}

func TestDeriveSlugFallback(t *testing.T) {
	for _, in := range []string{"", "!!!", "日本語", "\t\n"} {
		slug := hatchery.DeriveSlug(in)
		assert.Len(t, slug, hatchery.FallbackSlugLength, "input %q", in)
		assert.True(t, hatchery.IsValidSlug(slug))
		assert.NotContains(t, slug, "-")
	}
}

func TestRandomAlphanumeric(t *testing.T) {
	s := hatchery.RandomAlphanumeric(64)
	assert.Len(t, s, 64)
	assert.Empty(t, strings.Trim(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"))
	assert.Empty(t, hatchery.RandomAlphanumeric(0))
}

func TestIsValidSlug(t *testing.T) {
	assert.True(t, hatchery.IsValidSlug("Silly-Goose-7"))
	assert.False(t, hatchery.IsValidSlug(""))
	assert.False(t, hatchery.IsValidSlug("../etc"))
	assert.False(t, hatchery.IsValidSlug("geese/abc"))
	assert.False(t, hatchery.IsValidSlug("a b"))
}
