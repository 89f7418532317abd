package postgres

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/tendant/hatchery/pkg/hatchery"
	"github.com/tendant/hatchery/pkg/hatchery/repo/repotest"
)

// TEST_DATABASE_URL points at a scratch database; each run uses its own schema.
func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	schema := pgx.Identifier{"hatchery_test_" + randomSuffix()}.Sanitize()
	admin, err := pgx.Connect(ctx, databaseURL)
	require.NoError(t, err)
	_, err = admin.Exec(ctx, "CREATE SCHEMA "+schema)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = admin.Exec(context.Background(), "DROP SCHEMA "+schema+" CASCADE")
		admin.Close(context.Background())
	})

	cfg, err := pgxpool.ParseConfig(databaseURL)
	require.NoError(t, err)
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, "SET search_path TO "+schema)
		return err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := NewWithPool(pool)
	require.NoError(t, repo.Migrate(ctx))
	return repo
}

func randomSuffix() string {
	return strings.ToLower(hatchery.RandomAlphanumeric(8))
}

func TestRepository(t *testing.T) {
	repotest.Run(t, newTestRepository(t))
}
