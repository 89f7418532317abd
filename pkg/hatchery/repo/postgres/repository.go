package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/hatchery/pkg/hatchery"
)

// Schema creates the geese table. The unique constraint on slug is what keeps
// concurrent creations from sharing a slug.
const Schema = `
CREATE TABLE IF NOT EXISTS geese (
	id          UUID PRIMARY KEY,
	name        TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	color       VARCHAR(7) NOT NULL DEFAULT '',
	slug        TEXT NOT NULL,
	image       TEXT NOT NULL,
	likes       BIGINT NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL,
	CONSTRAINT geese_slug_key UNIQUE (slug)
)`

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements hatchery.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

// Migrate creates the geese table if it does not exist
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return r.handlePostgresError("migrate", err)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if pgErr.ConstraintName == "geese_slug_key" {
				return hatchery.ErrDuplicateSlug
			}
			return fmt.Errorf("duplicate entry on %s", pgErr.ConstraintName)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

const selectColumns = `id, name, description, color, slug, image, likes, created_at`

func scanGoose(row pgx.Row) (*hatchery.Goose, error) {
	var goose hatchery.Goose
	err := row.Scan(
		&goose.ID, &goose.Name, &goose.Description, &goose.Color,
		&goose.Slug, &goose.Image, &goose.Likes, &goose.Timestamp)
	if err != nil {
		return nil, err
	}
	return &goose, nil
}

func (r *Repository) FindBySlug(ctx context.Context, slug string) (*hatchery.Goose, error) {
	query := `SELECT ` + selectColumns + ` FROM geese WHERE slug = $1`

	goose, err := scanGoose(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, hatchery.ErrGooseNotFound
		}
		return nil, r.handlePostgresError("find goose", err)
	}
	return goose, nil
}

// InsertUnique inserts the goose unless the slug is taken. The conflict check
// and the insert are one statement.
func (r *Repository) InsertUnique(ctx context.Context, goose *hatchery.Goose) error {
	query := `
		INSERT INTO geese (
			id, name, description, color, slug, image, likes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (slug) DO NOTHING`

	tag, err := r.db.Exec(ctx, query,
		goose.ID, goose.Name, goose.Description, goose.Color,
		goose.Slug, goose.Image, goose.Likes, goose.Timestamp)
	if err != nil {
		return r.handlePostgresError("insert goose", err)
	}
	if tag.RowsAffected() == 0 {
		return hatchery.ErrDuplicateSlug
	}
	return nil
}

var orderBy = map[hatchery.SortKey]string{
	hatchery.SortNameAsc:  "name ASC, slug ASC",
	hatchery.SortNameDesc: "name DESC, slug ASC",
	hatchery.SortTimeAsc:  "created_at ASC, slug ASC",
	hatchery.SortTimeDesc: "created_at DESC, slug ASC",
}

func (r *Repository) List(ctx context.Context, params hatchery.ListParams) ([]*hatchery.Goose, error) {
	order, ok := orderBy[params.Sort]
	if !ok {
		order = orderBy[hatchery.SortNameAsc]
	}
	query := `SELECT ` + selectColumns + ` FROM geese ORDER BY ` + order + ` LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, params.Limit, params.Offset())
	if err != nil {
		return nil, r.handlePostgresError("list geese", err)
	}
	defer rows.Close()

	geese := []*hatchery.Goose{}
	for rows.Next() {
		goose, err := scanGoose(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan goose", err)
		}
		geese = append(geese, goose)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("list geese", err)
	}
	return geese, nil
}
