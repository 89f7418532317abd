package hatchery_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/hatchery/pkg/hatchery"
)

// recordingStore captures the last upload and can be told to fail.
type recordingStore struct {
	err      error
	calls    int
	slug     string
	data     []byte
	fileName string
}

func (s *recordingStore) Upload(_ context.Context, slug string, reader io.Reader) error {
	s.calls++
	s.slug = slug
	if f, ok := reader.(*os.File); ok {
		s.fileName = f.Name()
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	s.data = data
	return s.err
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestUploadInMemoryRemovesTempFile(t *testing.T) {
	tempDir := t.TempDir()
	store := &recordingStore{}
	uploader := hatchery.NewAssetUploader(store, tempDir, nil)

	err := uploader.Upload(context.Background(), hatchery.AssetInMemory{Data: []byte("honk")}, "Silly-Goose")
	require.NoError(t, err)

	assert.Equal(t, "Silly-Goose", store.slug)
	assert.Equal(t, []byte("honk"), store.data)
	assert.Equal(t, tempDir, filepath.Dir(store.fileName))
	assert.True(t, strings.HasPrefix(filepath.Base(store.fileName), "Silly-Goose-"))
	assert.Empty(t, dirEntries(t, tempDir))
}

func TestUploadInMemoryRemovesTempFileOnFailure(t *testing.T) {
	tempDir := t.TempDir()
	store := &recordingStore{err: &hatchery.UploadError{Backend: "test", PublicID: "goose", StatusCode: 500, Err: errors.New("boom")}}
	uploader := hatchery.NewAssetUploader(store, tempDir, nil)

	err := uploader.Upload(context.Background(), hatchery.AssetInMemory{Data: []byte("honk")}, "goose")
	require.Error(t, err)
	assert.ErrorIs(t, err, hatchery.ErrUploadFailed)

	var uploadErr *hatchery.UploadError
	require.ErrorAs(t, err, &uploadErr)
	assert.Equal(t, 500, uploadErr.StatusCode)
	assert.Empty(t, dirEntries(t, tempDir))
}

func TestUploadWrapsPlainStoreErrors(t *testing.T) {
	store := &recordingStore{err: errors.New("disk full")}
	uploader := hatchery.NewAssetUploader(store, t.TempDir(), nil)

	err := uploader.Upload(context.Background(), hatchery.AssetInMemory{Data: []byte("honk")}, "goose")
	assert.ErrorIs(t, err, hatchery.ErrUploadFailed)
}

func TestUploadPassesTimeSourceErrors(t *testing.T) {
	store := &recordingStore{err: hatchery.ErrTimeSource}
	uploader := hatchery.NewAssetUploader(store, t.TempDir(), nil)

	err := uploader.Upload(context.Background(), hatchery.AssetInMemory{Data: []byte("honk")}, "goose")
	assert.ErrorIs(t, err, hatchery.ErrTimeSource)
	assert.NotErrorIs(t, err, hatchery.ErrUploadFailed)
}

func TestUploadOnDiskIsNotCopied(t *testing.T) {
	srcDir := t.TempDir()
	tempDir := t.TempDir()
	path := filepath.Join(srcDir, "multipart-123")
	require.NoError(t, os.WriteFile(path, []byte("honk"), 0o600))

	store := &recordingStore{}
	uploader := hatchery.NewAssetUploader(store, tempDir, nil)

	require.NoError(t, uploader.Upload(context.Background(), hatchery.AssetOnDisk{Path: path}, "goose"))
	assert.Equal(t, path, store.fileName)
	assert.Equal(t, []byte("honk"), store.data)
	assert.Empty(t, dirEntries(t, tempDir))

	// The caller owns on-disk assets.
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestUploadOnDiskMissing(t *testing.T) {
	store := &recordingStore{}
	uploader := hatchery.NewAssetUploader(store, t.TempDir(), nil)

	err := uploader.Upload(context.Background(), hatchery.AssetOnDisk{Path: filepath.Join(t.TempDir(), "nope")}, "goose")
	assert.ErrorIs(t, err, hatchery.ErrUploadFailed)
	assert.Equal(t, 0, store.calls)
}

func TestUploadMissingTempDir(t *testing.T) {
	store := &recordingStore{}
	uploader := hatchery.NewAssetUploader(store, filepath.Join(t.TempDir(), "missing"), nil)

	err := uploader.Upload(context.Background(), hatchery.AssetInMemory{Data: []byte("honk")}, "goose")
	assert.ErrorIs(t, err, hatchery.ErrUploadFailed)
	assert.Equal(t, 0, store.calls)
}
