package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tendant/hatchery/pkg/hatchery"
)

// Backend is a filesystem implementation of the hatchery.BlobStore interface.
// It stands in for a remote asset host in development; BaseDir is expected to
// be served at the configured fetch URL prefix.
type Backend struct {
	baseDir string
	prefix  string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir        string // Base directory for storing files
	PublicIDPrefix string // Optional prefix prepended to the slug, may contain '/'
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	// Validate and create base directory if it doesn't exist
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{
		baseDir: config.BaseDir,
		prefix:  config.PublicIDPrefix,
	}, nil
}

// Path returns where the content for slug is stored
func (b *Backend) Path(slug string) string {
	return filepath.Join(b.baseDir, filepath.FromSlash(b.prefix+slug))
}

// Upload writes the content to BaseDir/PublicIDPrefix+slug. A partially
// written file is removed.
func (b *Backend) Upload(ctx context.Context, slug string, reader io.Reader) error {
	if !hatchery.IsValidSlug(slug) {
		return &hatchery.UploadError{Backend: "fs", PublicID: b.prefix + slug, Err: errors.New("invalid slug")}
	}
	filePath := b.Path(slug)

	// Create directory structure if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return &hatchery.UploadError{Backend: "fs", PublicID: b.prefix + slug, Err: fmt.Errorf("failed to create directory: %w", err)}
	}

	file, err := os.Create(filePath)
	if err != nil {
		return &hatchery.UploadError{Backend: "fs", PublicID: b.prefix + slug, Err: fmt.Errorf("failed to create file: %w", err)}
	}

	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		os.Remove(filePath)
		return &hatchery.UploadError{Backend: "fs", PublicID: b.prefix + slug, Err: fmt.Errorf("failed to write file: %w", err)}
	}
	if err := file.Close(); err != nil {
		os.Remove(filePath)
		return &hatchery.UploadError{Backend: "fs", PublicID: b.prefix + slug, Err: fmt.Errorf("failed to close file: %w", err)}
	}

	return nil
}
