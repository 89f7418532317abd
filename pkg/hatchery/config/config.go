package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/hatchery/pkg/hatchery"
	"github.com/tendant/hatchery/pkg/hatchery/form"
	badgerrepo "github.com/tendant/hatchery/pkg/hatchery/repo/badger"
	"github.com/tendant/hatchery/pkg/hatchery/repo/memory"
	repopg "github.com/tendant/hatchery/pkg/hatchery/repo/postgres"
	"github.com/tendant/hatchery/pkg/hatchery/storage/cloudinary"
	fsstorage "github.com/tendant/hatchery/pkg/hatchery/storage/fs"
	memorystorage "github.com/tendant/hatchery/pkg/hatchery/storage/memory"
	s3storage "github.com/tendant/hatchery/pkg/hatchery/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:               "8080",
		Environment:        "development",
		DatabaseType:       "memory",
		StorageType:        "memory",
		TempDir:            os.TempDir(),
		MaxTextBytes:       form.DefaultTextLimit,
		MaxImageBytes:      form.DefaultImageLimit,
		SlugAttempts:       hatchery.DefaultSlugAttempts,
		MaxInsertConflicts: hatchery.DefaultMaxInsertConflicts,
		S3: S3Config{
			Region:       "us-east-1",
			SSEAlgorithm: "AES256",
		},
	}
}

// ServerConfig represents server configuration for the hatchery service
type ServerConfig struct {
	Port        string `validate:"required"`
	Environment string `validate:"oneof=development production testing"`

	// Record store
	DatabaseType string `validate:"oneof=memory postgres badger"`
	DatabaseURL  string `validate:"required_if=DatabaseType postgres"`
	DBSchema     string // Postgres schema to use; empty keeps the server default
	BadgerPath   string `validate:"required_if=DatabaseType badger"`

	// Asset host
	StorageType string `validate:"oneof=memory fs s3 cloudinary"`
	FSBaseDir   string `validate:"required_if=StorageType fs"`
	S3          S3Config
	Cloudinary  CloudinaryConfig
	// FetchURLPrefix + slug is the image URL stored on each goose. Hatchery
	// does not serve images itself, so the prefix must point at whatever
	// serves the asset host's objects: the CDN or bucket URL, or a static
	// file server over FSBaseDir. Empty stores the bare slug.
	FetchURLPrefix string
	PublicIDPrefix string // Asset host identifier is PublicIDPrefix + slug

	// Creation pipeline
	TempDir            string `validate:"required"`
	MaxTextBytes       int64  `validate:"gt=0"`
	MaxImageBytes      int64  `validate:"gt=0"`
	SlugAttempts       int    `validate:"min=1"`
	MaxInsertConflicts int    `validate:"min=0"`

	Logger *slog.Logger `validate:"-"`
}

// S3Config holds the S3 asset host settings
type S3Config struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string
	UsePathStyle    bool
	EnableSSE       bool
	SSEAlgorithm    string `validate:"omitempty,oneof=AES256 aws:kms"`
	SSEKMSKeyID     string
	EnsureBucket    bool
}

// CloudinaryConfig holds the signed-upload asset host settings
type CloudinaryConfig struct {
	UploadURL string `validate:"omitempty,url"`
	APIKey    string
	APISecret string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			msgs := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	switch c.StorageType {
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("s3 bucket is required when using s3 storage")
		}
	case "cloudinary":
		if c.Cloudinary.UploadURL == "" {
			return errors.New("cloudinary upload URL is required when using cloudinary storage")
		}
		if c.Cloudinary.APIKey == "" || c.Cloudinary.APISecret == "" {
			return errors.New("cloudinary API key and secret are required when using cloudinary storage")
		}
	}

	return nil
}

// Limits returns the form field limits for the creation endpoint
func (c *ServerConfig) Limits() form.Limits {
	return form.Limits{Text: c.MaxTextBytes, Image: c.MaxImageBytes}
}

func (c *ServerConfig) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// BuildService creates a Service instance from the server configuration.
// The returned cleanup releases the record store and must be called once
// the service is no longer used.
func (c *ServerConfig) BuildService(ctx context.Context) (hatchery.Service, func(), error) {
	repo, closeRepo, err := c.buildRepository(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build repository: %w", err)
	}

	store, err := c.buildBlobStore(ctx)
	if err != nil {
		closeRepo()
		return nil, nil, fmt.Errorf("failed to build storage backend %s: %w", c.StorageType, err)
	}

	svc, err := hatchery.New(
		hatchery.WithRepository(repo),
		hatchery.WithBlobStore(store),
		hatchery.WithFetchURLPrefix(c.FetchURLPrefix),
		hatchery.WithTempDir(c.TempDir),
		hatchery.WithSlugAllocator(hatchery.NewSlugAllocator(hatchery.WithSlugAttempts(c.SlugAttempts))),
		hatchery.WithMaxInsertConflicts(c.MaxInsertConflicts),
		hatchery.WithLogger(c.logger()),
	)
	if err != nil {
		closeRepo()
		return nil, nil, err
	}

	return svc, closeRepo, nil
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository(ctx context.Context) (hatchery.Repository, func(), error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), func() {}, nil
	case "badger":
		repo, err := badgerrepo.New(badgerrepo.Config{Path: c.BadgerPath}, c.logger())
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			if err := repo.Close(); err != nil {
				c.logger().Error("Failed to close badger", "err", err)
			}
		}, nil
	case "postgres":
		pool, err := newPool(ctx, c.DatabaseURL, c.DBSchema)
		if err != nil {
			return nil, nil, err
		}
		repo := repopg.NewWithPool(pool)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
		return repo, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

func newPool(ctx context.Context, databaseURL, schema string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, errors.New("database_url is required for postgres")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		searchPath := "SET search_path TO " + pgx.Identifier{schema}.Sanitize()
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, searchPath)
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

// buildBlobStore creates a BlobStore based on the configuration
func (c *ServerConfig) buildBlobStore(ctx context.Context) (hatchery.BlobStore, error) {
	switch c.StorageType {
	case "memory":
		return memorystorage.New(), nil

	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir:        c.FSBaseDir,
			PublicIDPrefix: c.PublicIDPrefix,
		})

	case "s3":
		return s3storage.New(ctx, s3storage.Config{
			Region:          c.S3.Region,
			Bucket:          c.S3.Bucket,
			AccessKeyID:     c.S3.AccessKeyID,
			SecretAccessKey: c.S3.SecretAccessKey,
			Endpoint:        c.S3.Endpoint,
			UsePathStyle:    c.S3.UsePathStyle,
			PublicIDPrefix:  c.PublicIDPrefix,
			EnableSSE:       c.S3.EnableSSE,
			SSEAlgorithm:    c.S3.SSEAlgorithm,
			SSEKMSKeyID:     c.S3.SSEKMSKeyID,
			EnsureBucket:    c.S3.EnsureBucket,
		})

	case "cloudinary":
		return cloudinary.New(cloudinary.Config{
			UploadURL:      c.Cloudinary.UploadURL,
			APIKey:         c.Cloudinary.APIKey,
			APISecret:      c.Cloudinary.APISecret,
			PublicIDPrefix: c.PublicIDPrefix,
			Logger:         c.logger(),
		})

	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", c.StorageType)
	}
}
