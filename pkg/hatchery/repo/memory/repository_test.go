package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/hatchery/pkg/hatchery/repo/repotest"
)

func TestRepository(t *testing.T) {
	repotest.Run(t, New())
}

func TestFindReturnsCopy(t *testing.T) {
	repo := New()
	require.NoError(t, repo.InsertUnique(context.Background(), repotest.NewGoose("Goose", "Goose", time.Now())))

	found, err := repo.FindBySlug(context.Background(), "Goose")
	require.NoError(t, err)
	found.Likes = 99

	again, err := repo.FindBySlug(context.Background(), "Goose")
	require.NoError(t, err)
	assert.Equal(t, int64(0), again.Likes)
}
