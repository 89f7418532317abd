package hatchery

import (
	"context"
	"io"
)

// Repository defines the interface for goose persistence
type Repository interface {
	// FindBySlug returns ErrGooseNotFound when no goose has the slug
	FindBySlug(ctx context.Context, slug string) (*Goose, error)

	// InsertUnique stores the goose, returning ErrDuplicateSlug when the slug
	// is already taken
	InsertUnique(ctx context.Context, goose *Goose) error

	// List returns one page of geese in the requested order
	List(ctx context.Context, params ListParams) ([]*Goose, error)
}

// BlobStore transmits an image to an asset host under a slug
type BlobStore interface {
	// Upload makes a single attempt to store the content read from reader
	Upload(ctx context.Context, slug string, reader io.Reader) error
}

// Service defines the goose operations exposed to transports
type Service interface {
	// CreateGoose runs the creation pipeline and returns the inserted goose
	CreateGoose(ctx context.Context, req CreateGooseRequest) (*Goose, error)

	// GetGoose returns the goose with the given slug
	GetGoose(ctx context.Context, slug string) (*Goose, error)

	// ListGeese returns one page of geese
	ListGeese(ctx context.Context, params ListParams) ([]*Goose, error)
}
