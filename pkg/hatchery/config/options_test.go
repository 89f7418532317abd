package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/hatchery/pkg/hatchery"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "memory", cfg.DatabaseType)
	assert.Equal(t, "memory", cfg.StorageType)
	assert.Equal(t, hatchery.DefaultSlugAttempts, cfg.SlugAttempts)
	assert.Equal(t, hatchery.DefaultMaxInsertConflicts, cfg.MaxInsertConflicts)
	assert.NotEmpty(t, cfg.TempDir)
	assert.Empty(t, cfg.FetchURLPrefix)
	assert.Equal(t, int64(10<<20), cfg.Limits().Image)
}

func TestWithPortEmpty(t *testing.T) {
	_, err := Load(WithPort(""))
	assert.Error(t, err)
}

func TestWithEnvironment(t *testing.T) {
	cfg, err := Load(WithEnvironment("production"))
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)

	_, err = Load(WithEnvironment("staging"))
	assert.Error(t, err)
}

func TestWithDatabase(t *testing.T) {
	tests := []struct {
		name       string
		dbType     string
		url        string
		wantURL    string
		wantBadger string
		wantError  bool
	}{
		{"memory valid", "memory", "", "", "", false},
		{"postgres valid", "postgres", "postgresql://localhost/test", "postgresql://localhost/test", "", false},
		{"postgres missing url", "postgres", "", "", "", true},
		{"badger valid", "badger", "/var/lib/geese", "", "/var/lib/geese", false},
		{"badger missing path", "badger", "", "", "", true},
		{"invalid type", "mysql", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(WithDatabase(tt.dbType, tt.url))
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dbType, cfg.DatabaseType)
			assert.Equal(t, tt.wantURL, cfg.DatabaseURL)
			assert.Equal(t, tt.wantBadger, cfg.BadgerPath)
		})
	}
}

func TestWithStorage(t *testing.T) {
	cfg, err := Load(WithFilesystemStorage("./data"), WithPublicIDPrefix("geese/"))
	require.NoError(t, err)
	assert.Equal(t, "fs", cfg.StorageType)
	assert.Equal(t, "./data", cfg.FSBaseDir)
	assert.Equal(t, "geese/", cfg.PublicIDPrefix)

	cfg, err = Load(WithS3Storage(S3Config{Bucket: "geese"}))
	require.NoError(t, err)
	assert.Equal(t, "s3", cfg.StorageType)
	assert.Equal(t, "us-east-1", cfg.S3.Region)
	assert.Equal(t, "AES256", cfg.S3.SSEAlgorithm)

	cfg, err = Load(WithCloudinaryStorage("https://api.cloudinary.com/v1_1/demo/image/upload", "key", "secret"))
	require.NoError(t, err)
	assert.Equal(t, "cloudinary", cfg.StorageType)
	assert.Equal(t, "key", cfg.Cloudinary.APIKey)

	_, err = Load(WithFilesystemStorage(""))
	assert.Error(t, err)
	_, err = Load(WithS3Storage(S3Config{}))
	assert.Error(t, err)
	_, err = Load(WithCloudinaryStorage("https://example.com/upload", "", "secret"))
	assert.Error(t, err)
}

func TestPipelineOptions(t *testing.T) {
	cfg, err := Load(
		WithSlugAttempts(8),
		WithMaxInsertConflicts(0),
		WithMaxImageBytes(1<<20),
		WithTempDir("/tmp/geese"),
		WithFetchURLPrefix("https://res.example.com/geese/"),
	)
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.SlugAttempts)
	assert.Equal(t, 0, cfg.MaxInsertConflicts)
	assert.Equal(t, int64(1<<20), cfg.Limits().Image)
	assert.Equal(t, "/tmp/geese", cfg.TempDir)
	assert.Equal(t, "https://res.example.com/geese/", cfg.FetchURLPrefix)

	_, err = Load(WithSlugAttempts(0))
	assert.Error(t, err)
	_, err = Load(WithMaxInsertConflicts(-1))
	assert.Error(t, err)
	_, err = Load(WithMaxImageBytes(0))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ServerConfig)
	}{
		{"unknown storage type", func(c *ServerConfig) { c.StorageType = "ftp" }},
		{"postgres without url", func(c *ServerConfig) { c.DatabaseType = "postgres" }},
		{"badger without path", func(c *ServerConfig) { c.DatabaseType = "badger" }},
		{"fs without base dir", func(c *ServerConfig) { c.StorageType = "fs" }},
		{"s3 without bucket", func(c *ServerConfig) { c.StorageType = "s3" }},
		{"cloudinary without credentials", func(c *ServerConfig) {
			c.StorageType = "cloudinary"
			c.Cloudinary.UploadURL = "https://example.com/upload"
		}},
		{"cloudinary with malformed url", func(c *ServerConfig) { c.Cloudinary.UploadURL = "not a url" }},
		{"unknown sse algorithm", func(c *ServerConfig) { c.S3.SSEAlgorithm = "rot13" }},
		{"missing temp dir", func(c *ServerConfig) { c.TempDir = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestBuildService(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		opts func(t *testing.T) []Option
	}{
		{"memory", func(t *testing.T) []Option { return nil }},
		{"badger and fs", func(t *testing.T) []Option {
			return []Option{
				WithDatabase("badger", t.TempDir()),
				WithFilesystemStorage(t.TempDir()),
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]Option{WithTempDir(t.TempDir()), WithFetchURLPrefix("/images/")}, tt.opts(t)...)
			cfg, err := Load(opts...)
			require.NoError(t, err)

			svc, cleanup, err := cfg.BuildService(ctx)
			require.NoError(t, err)
			defer cleanup()

			goose, err := svc.CreateGoose(ctx, hatchery.CreateGooseRequest{
				Name:  "Silly Goose",
				Image: hatchery.AssetInMemory{Data: []byte("honk")},
			})
			require.NoError(t, err)
			assert.Equal(t, "Silly-Goose", goose.Slug)
			assert.Equal(t, "/images/Silly-Goose", goose.Image)

			found, err := svc.GetGoose(ctx, "Silly-Goose")
			require.NoError(t, err)
			assert.Equal(t, goose.ID, found.ID)
		})
	}
}
