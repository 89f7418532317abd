package hatchery_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tendant/hatchery/pkg/hatchery"
)

func flock(slugs ...string) []*hatchery.Goose {
	geese := make([]*hatchery.Goose, 0, len(slugs))
	for _, slug := range slugs {
		geese = append(geese, &hatchery.Goose{Name: slug, Slug: slug})
	}
	return geese
}

func pageSlugs(geese []*hatchery.Goose) []string {
	out := make([]string, 0, len(geese))
	for _, g := range geese {
		out = append(out, g.Slug)
	}
	return out
}

func TestListParamsOffset(t *testing.T) {
	assert.Equal(t, 0, hatchery.ListParams{Limit: 10}.Offset())
	assert.Equal(t, 20, hatchery.ListParams{Limit: 10, Page: 2}.Offset())
	assert.Equal(t, 0, hatchery.ListParams{Limit: 10, Page: -3}.Offset())
	assert.Equal(t, math.MaxInt, hatchery.ListParams{Limit: 2, Page: math.MaxInt}.Offset())
	assert.Equal(t, math.MaxInt, hatchery.ListParams{Limit: math.MaxInt, Page: 2}.Offset())
}

func TestPageGeese(t *testing.T) {
	geese := flock("a", "b", "c", "d", "e")

	tests := []struct {
		name   string
		params hatchery.ListParams
		want   []string
	}{
		{"first page", hatchery.ListParams{Limit: 2}, []string{"a", "b"}},
		{"last partial page", hatchery.ListParams{Limit: 2, Page: 2}, []string{"e"}},
		{"past the end", hatchery.ListParams{Limit: 2, Page: 3}, []string{}},
		{"huge page", hatchery.ListParams{Limit: 2, Page: math.MaxInt}, []string{}},
		{"huge limit", hatchery.ListParams{Limit: math.MaxInt}, []string{"a", "b", "c", "d", "e"}},
		{"huge limit second page", hatchery.ListParams{Limit: math.MaxInt, Page: 1}, []string{}},
		{"zero limit", hatchery.ListParams{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Equal(t, tt.want, pageSlugs(hatchery.PageGeese(geese, tt.params)))
			})
		})
	}
}

func TestSortGeeseBreaksTiesBySlug(t *testing.T) {
	geese := flock("c", "a", "b")
	for _, g := range geese {
		g.Name = "Goose"
	}
	hatchery.SortGeese(geese, hatchery.SortNameDesc)
	assert.Equal(t, []string{"a", "b", "c"}, pageSlugs(geese))
}
