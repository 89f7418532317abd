package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/tendant/hatchery/pkg/hatchery"
)

// slugPrefix namespaces goose entries. Format: goose:slug:{slug}
const slugPrefix = "goose:slug:"

// Repository implements hatchery.Repository on an embedded BadgerDB.
// InsertUnique reads and writes the slug key in one transaction, so a
// concurrent insert of the same slug fails with a conflict.
type Repository struct {
	db     *badger.DB
	logger *slog.Logger
}

// Config options for the Badger repository
type Config struct {
	Path     string // Directory holding the database files
	InMemory bool   // Keep everything in memory; Path is ignored
}

// New opens the database described by config.
func New(config Config, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Path == "" && !config.InMemory {
		return nil, errors.New("badger path is required")
	}

	opts := badger.DefaultOptions(config.Path)
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(&badgerLogger{logger.With("component", "badgerdb")})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db at %s: %w", config.Path, err)
	}
	logger.Info("BadgerDB opened", "path", config.Path, "in_memory", config.InMemory)

	return &Repository{
		db:     db,
		logger: logger.With("component", "repository"),
	}, nil
}

// Close closes the database.
func (r *Repository) Close() error {
	if err := r.db.Close(); err != nil {
		r.logger.Error("Error closing BadgerDB", "err", err)
		return err
	}
	return nil
}

func slugKey(slug string) []byte {
	return []byte(slugPrefix + slug)
}

func (r *Repository) FindBySlug(ctx context.Context, slug string) (*hatchery.Goose, error) {
	var goose hatchery.Goose
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(slugKey(slug))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &goose)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, hatchery.ErrGooseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find goose %q: %w", slug, err)
	}
	return &goose, nil
}

func (r *Repository) InsertUnique(ctx context.Context, goose *hatchery.Goose) error {
	value, err := json.Marshal(goose)
	if err != nil {
		return fmt.Errorf("failed to marshal goose: %w", err)
	}

	key := slugKey(goose.Slug)
	err = r.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return hatchery.ErrDuplicateSlug
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.SetEntry(badger.NewEntry(key, value))
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, hatchery.ErrDuplicateSlug):
		return err
	case errors.Is(err, badger.ErrConflict):
		// Another transaction wrote the key we read.
		return hatchery.ErrDuplicateSlug
	default:
		return fmt.Errorf("failed to insert goose %q: %w", goose.Slug, err)
	}
}

func (r *Repository) List(ctx context.Context, params hatchery.ListParams) ([]*hatchery.Goose, error) {
	var geese []*hatchery.Goose
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(slugPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var goose hatchery.Goose
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &goose)
			}); err != nil {
				return err
			}
			geese = append(geese, &goose)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list geese: %w", err)
	}

	hatchery.SortGeese(geese, params.Sort)
	return hatchery.PageGeese(geese, params), nil
}

// badgerLogger forwards badger's internal logging to slog.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
