// Package repotest holds behavior tests shared by every hatchery.Repository
// implementation.
package repotest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/hatchery/pkg/hatchery"
)

// NewGoose returns a goose with the given name and slug created at ts.
func NewGoose(name, slug string, ts time.Time) *hatchery.Goose {
	return &hatchery.Goose{
		ID:          uuid.New(),
		Name:        name,
		Description: "a goose named " + name,
		Color:       "#ffffff",
		Slug:        slug,
		Image:       "https://res.example.com/geese/" + slug,
		Timestamp:   ts.UTC().Truncate(time.Microsecond),
	}
}

// Run exercises repo, which must start empty.
func Run(t *testing.T, repo hatchery.Repository) {
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("find missing", func(t *testing.T) {
		_, err := repo.FindBySlug(ctx, "missing")
		assert.ErrorIs(t, err, hatchery.ErrGooseNotFound)
	})

	t.Run("insert and find", func(t *testing.T) {
		goose := NewGoose("Silly Goose", "Silly-Goose", base)
		require.NoError(t, repo.InsertUnique(ctx, goose))

		found, err := repo.FindBySlug(ctx, "Silly-Goose")
		require.NoError(t, err)
		assert.Equal(t, goose.ID, found.ID)
		assert.Equal(t, goose.Name, found.Name)
		assert.Equal(t, goose.Description, found.Description)
		assert.Equal(t, goose.Color, found.Color)
		assert.Equal(t, goose.Image, found.Image)
		assert.Equal(t, int64(0), found.Likes)
		assert.True(t, goose.Timestamp.Equal(found.Timestamp), "timestamp %s != %s", found.Timestamp, goose.Timestamp)
	})

	t.Run("duplicate slug rejected", func(t *testing.T) {
		err := repo.InsertUnique(ctx, NewGoose("Impostor", "Silly-Goose", base))
		assert.ErrorIs(t, err, hatchery.ErrDuplicateSlug)

		found, err := repo.FindBySlug(ctx, "Silly-Goose")
		require.NoError(t, err)
		assert.Equal(t, "Silly Goose", found.Name)
	})

	t.Run("concurrent inserts of one slug", func(t *testing.T) {
		const n = 8
		var wg sync.WaitGroup
		errs := make([]error, n)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = repo.InsertUnique(ctx, NewGoose("Racer", "Racer", base))
			}(i)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, hatchery.ErrDuplicateSlug)
		}
		assert.Equal(t, 1, succeeded)
	})

	t.Run("list", func(t *testing.T) {
		require.NoError(t, repo.InsertUnique(ctx, NewGoose("Alpha", "Alpha", base.Add(time.Hour))))
		require.NoError(t, repo.InsertUnique(ctx, NewGoose("Bravo", "Bravo", base.Add(2*time.Hour))))

		slugs := func(params hatchery.ListParams) []string {
			geese, err := repo.List(ctx, params)
			require.NoError(t, err)
			out := make([]string, 0, len(geese))
			for _, g := range geese {
				out = append(out, g.Slug)
			}
			return out
		}

		// Racer was created with the base timestamp, as was Silly-Goose.
		assert.Equal(t, []string{"Alpha", "Bravo", "Racer", "Silly-Goose"},
			slugs(hatchery.ListParams{Sort: hatchery.SortNameAsc, Limit: 10}))
		assert.Equal(t, []string{"Silly-Goose", "Racer", "Bravo", "Alpha"},
			slugs(hatchery.ListParams{Sort: hatchery.SortNameDesc, Limit: 10}))
		assert.Equal(t, []string{"Bravo", "Alpha", "Racer", "Silly-Goose"},
			slugs(hatchery.ListParams{Sort: hatchery.SortTimeDesc, Limit: 10}))
		assert.Equal(t, []string{"Racer", "Silly-Goose"},
			slugs(hatchery.ListParams{Sort: hatchery.SortTimeAsc, Limit: 2}))
		assert.Equal(t, []string{"Racer", "Silly-Goose"},
			slugs(hatchery.ListParams{Sort: hatchery.SortNameAsc, Limit: 2, Page: 1}))
		assert.Empty(t, slugs(hatchery.ListParams{Sort: hatchery.SortNameAsc, Limit: 2, Page: 2}))
	})
}
