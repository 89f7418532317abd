package hatchery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// DefaultMaxInsertConflicts is how many times a duplicate slug on insert
// sends the pipeline back to allocation.
const DefaultMaxInsertConflicts = 1

// service implements the Service interface
type service struct {
	repository         Repository
	blobStore          BlobStore
	allocator          *SlugAllocator
	fetchURLPrefix     string
	tempDir            string
	maxInsertConflicts int
	logger             *slog.Logger
	now                func() time.Time

	uploader *AssetUploader
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the asset host the images are uploaded to
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithFetchURLPrefix sets the prefix the slug is appended to for Goose.Image
func WithFetchURLPrefix(prefix string) Option {
	return func(s *service) {
		s.fetchURLPrefix = prefix
	}
}

// WithTempDir sets where in-memory images are written before upload
func WithTempDir(dir string) Option {
	return func(s *service) {
		s.tempDir = dir
	}
}

// WithSlugAllocator replaces the default allocator
func WithSlugAllocator(allocator *SlugAllocator) Option {
	return func(s *service) {
		s.allocator = allocator
	}
}

// WithMaxInsertConflicts sets how many duplicate-slug inserts are retried
func WithMaxInsertConflicts(n int) Option {
	return func(s *service) {
		s.maxInsertConflicts = n
	}
}

// WithLogger sets the logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// WithClock sets the time source used for Goose.Timestamp
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		maxInsertConflicts: DefaultMaxInsertConflicts,
		logger:             slog.Default(),
		now:                time.Now,
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if s.allocator == nil {
		s.allocator = NewSlugAllocator()
	}
	if s.maxInsertConflicts < 0 {
		s.maxInsertConflicts = 0
	}
	s.uploader = NewAssetUploader(s.blobStore, s.tempDir, s.logger)

	return s, nil
}

// CreateGoose allocates a slug, uploads the image and inserts the goose, in
// that order. Nothing is uploaded unless a slug was allocated and nothing is
// inserted unless the upload succeeded.
func (s *service) CreateGoose(ctx context.Context, req CreateGooseRequest) (*Goose, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	candidate := DeriveSlug(req.Name)
	for conflicts := 0; ; conflicts++ {
		slug, err := s.allocator.Allocate(ctx, candidate, s.slugExists)
		if err != nil {
			s.logger.Error("Failed to allocate slug", "candidate", candidate, "err", err)
			return nil, err
		}

		if err := s.uploader.Upload(ctx, req.Image, slug); err != nil {
			s.logger.Error("Failed to upload goose image", "slug", slug, "err", err)
			return nil, err
		}

		goose := &Goose{
			ID:          uuid.New(),
			Name:        req.Name,
			Description: req.Description,
			Color:       req.Color,
			Slug:        slug,
			Image:       s.fetchURLPrefix + slug,
			Likes:       0,
			Timestamp:   s.now().UTC(),
		}

		err = s.repository.InsertUnique(ctx, goose)
		if err == nil {
			s.logger.Info("Goose created", "slug", slug, "image", goose.Image)
			return goose, nil
		}

		// No compensating delete on the asset host; the orphan is logged for
		// out-of-band cleanup.
		s.logger.Warn("Uploaded asset orphaned", "orphaned_public_id", slug, "image", goose.Image, "err", err)

		if errors.Is(err, ErrDuplicateSlug) && conflicts < s.maxInsertConflicts {
			s.logger.Info("Slug claimed concurrently, allocating again", "slug", slug)
			candidate = slug
			continue
		}

		s.logger.Error("Failed to insert goose", "slug", slug, "err", err)
		return nil, &StoreError{Op: "insert", Slug: slug, Err: err}
	}
}

func (s *service) GetGoose(ctx context.Context, slug string) (*Goose, error) {
	if !IsValidSlug(slug) {
		return nil, ErrGooseNotFound
	}
	goose, err := s.repository.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, ErrGooseNotFound) {
			return nil, err
		}
		return nil, &StoreError{Op: "find_by_slug", Slug: slug, Err: err}
	}
	return goose, nil
}

func (s *service) ListGeese(ctx context.Context, params ListParams) ([]*Goose, error) {
	if !params.Sort.IsValid() {
		return nil, &ValidationError{Field: "sort", Reason: "is not a known sort key"}
	}
	if params.Limit <= 0 {
		return nil, &ValidationError{Field: "limit", Reason: "must be positive"}
	}
	if params.Page < 0 || params.Page > MaxPage(params.Limit) {
		return nil, &ValidationError{Field: "page", Reason: fmt.Sprintf("must be between 0 and %d", MaxPage(params.Limit))}
	}

	geese, err := s.repository.List(ctx, params)
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	return geese, nil
}

func (s *service) slugExists(ctx context.Context, slug string) (bool, error) {
	_, err := s.repository.FindBySlug(ctx, slug)
	if errors.Is(err, ErrGooseNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
