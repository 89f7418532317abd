package memory

import (
	"context"
	"sync"

	"github.com/tendant/hatchery/pkg/hatchery"
)

// Repository implements hatchery.Repository using in-memory storage
type Repository struct {
	mu    sync.RWMutex
	geese map[string]*hatchery.Goose // slug -> goose
}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		geese: make(map[string]*hatchery.Goose),
	}
}

func (r *Repository) FindBySlug(ctx context.Context, slug string) (*hatchery.Goose, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	goose, exists := r.geese[slug]
	if !exists {
		return nil, hatchery.ErrGooseNotFound
	}
	// Return a copy to prevent external modifications
	gooseCopy := *goose
	return &gooseCopy, nil
}

func (r *Repository) InsertUnique(ctx context.Context, goose *hatchery.Goose) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.geese[goose.Slug]; exists {
		return hatchery.ErrDuplicateSlug
	}

	// Create a copy to avoid external modifications
	gooseCopy := *goose
	r.geese[goose.Slug] = &gooseCopy
	return nil
}

func (r *Repository) List(ctx context.Context, params hatchery.ListParams) ([]*hatchery.Goose, error) {
	r.mu.RLock()
	result := make([]*hatchery.Goose, 0, len(r.geese))
	for _, goose := range r.geese {
		gooseCopy := *goose
		result = append(result, &gooseCopy)
	}
	r.mu.RUnlock()

	hatchery.SortGeese(result, params.Sort)
	return hatchery.PageGeese(result, params), nil
}
