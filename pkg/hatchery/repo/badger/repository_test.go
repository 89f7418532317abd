package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/hatchery/pkg/hatchery"
	"github.com/tendant/hatchery/pkg/hatchery/repo/repotest"
)

func TestRepository(t *testing.T) {
	repo, err := New(Config{Path: t.TempDir()}, nil)
	require.NoError(t, err)
	defer repo.Close()

	repotest.Run(t, repo)
}

func TestRepositoryInMemory(t *testing.T) {
	repo, err := New(Config{InMemory: true}, nil)
	require.NoError(t, err)
	defer repo.Close()

	repotest.Run(t, repo)
}

func TestNewRequiresPath(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}

func TestReopenKeepsGeese(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := New(Config{Path: dir}, nil)
	require.NoError(t, err)
	require.NoError(t, repo.InsertUnique(ctx, repotest.NewGoose("Goose", "Goose", time.Now())))
	require.NoError(t, repo.Close())

	repo, err = New(Config{Path: dir}, nil)
	require.NoError(t, err)
	defer repo.Close()

	_, err = repo.FindBySlug(ctx, "Goose")
	assert.NoError(t, err)
	assert.ErrorIs(t, repo.InsertUnique(ctx, repotest.NewGoose("Other", "Goose", time.Now())), hatchery.ErrDuplicateSlug)
}
