package hatchery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// AssetUploader resolves an AssetSource to a readable file and hands it to a
// BlobStore. In-memory assets are written to a temporary file that is removed
// when the upload returns, whatever the outcome.
type AssetUploader struct {
	store   BlobStore
	tempDir string
	logger  *slog.Logger
}

// NewAssetUploader creates an uploader writing temporary files under tempDir.
// An empty tempDir means os.TempDir().
func NewAssetUploader(store BlobStore, tempDir string, logger *slog.Logger) *AssetUploader {
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AssetUploader{
		store:   store,
		tempDir: tempDir,
		logger:  logger,
	}
}

// Upload transmits src under slug. Failures are reported as *UploadError.
func (u *AssetUploader) Upload(ctx context.Context, src AssetSource, slug string) error {
	var path string
	switch s := src.(type) {
	case AssetOnDisk:
		path = s.Path
	case AssetInMemory:
		persisted, err := u.persist(slug, s.Data)
		if err != nil {
			return &UploadError{Backend: "local", PublicID: slug, Err: err}
		}
		defer u.remove(persisted)
		path = persisted
	default:
		return &UploadError{Backend: "local", PublicID: slug, Err: fmt.Errorf("unsupported asset source %T", src)}
	}

	file, err := os.Open(path)
	if err != nil {
		return &UploadError{Backend: "local", PublicID: slug, Err: fmt.Errorf("failed to open asset: %w", err)}
	}
	defer file.Close()

	if err := u.store.Upload(ctx, slug, file); err != nil {
		var uploadErr *UploadError
		if errors.As(err, &uploadErr) || errors.Is(err, ErrTimeSource) {
			return err
		}
		return &UploadError{Backend: "blobstore", PublicID: slug, Err: err}
	}
	return nil
}

// persist writes data to a new file whose name starts with the slug.
func (u *AssetUploader) persist(slug string, data []byte) (string, error) {
	file, err := os.CreateTemp(u.tempDir, slug+"-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := file.Name()

	if _, err := file.Write(data); err != nil {
		file.Close()
		u.remove(path)
		return "", fmt.Errorf("failed to write temp file %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		u.remove(path)
		return "", fmt.Errorf("failed to close temp file %s: %w", path, err)
	}
	return path, nil
}

func (u *AssetUploader) remove(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		u.logger.Warn("Failed to remove temp asset", "path", path, "err", err)
	}
}
